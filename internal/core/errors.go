package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind tags the stage at which an evaluation failed.
type ErrorKind string

const (
	// KindConfig means no API key was configured; no request was made.
	KindConfig ErrorKind = "config"
	// KindEmptyInput means the symptom description was blank; no request was made.
	KindEmptyInput ErrorKind = "empty_input"
	// KindTransport covers network and service failures.
	KindTransport ErrorKind = "transport"
	// KindParse means the reply did not contain decodable JSON.
	KindParse ErrorKind = "parse"
	// KindShape means the JSON lacked one or more required fields.
	KindShape ErrorKind = "shape"
)

// User facing text for the failures that happen before any request.
const (
	MissingAPIKeyMessage = "NEBIUS_API_KEY environment variable not set."
	EmptySymptomsMessage = "Please provide a symptom description."
)

var (
	// ErrMissingAPIKey is wrapped by KindConfig errors.
	ErrMissingAPIKey = errors.New("nebius api key not set")
	// ErrEmptySymptoms is wrapped by KindEmptyInput errors.
	ErrEmptySymptoms = errors.New("symptom description is empty")
)

// TriageError is the only error type returned by TriageService.Evaluate.
type TriageError struct {
	Kind ErrorKind
	// RawOutput is the unmodified model reply (parse and shape errors).
	RawOutput string
	// Partial is the decoded object when required fields are missing.
	Partial map[string]any
	// Missing lists the absent required fields, in RequiredFields order.
	Missing []string
	Err     error
}

func (e *TriageError) Error() string {
	switch e.Kind {
	case KindConfig:
		return MissingAPIKeyMessage
	case KindEmptyInput:
		return EmptySymptomsMessage
	case KindParse:
		return "Invalid JSON format: " + e.Err.Error()
	case KindShape:
		return "Missing fields in response: " + strings.Join(e.Missing, ", ")
	case KindTransport:
		return "Nebius API Error: " + e.Err.Error()
	}
	return fmt.Sprintf("triage %s error: %v", e.Kind, e.Err)
}

func (e *TriageError) Unwrap() error { return e.Err }

func configError() *TriageError {
	return &TriageError{Kind: KindConfig, Err: ErrMissingAPIKey}
}

func emptyInputError() *TriageError {
	return &TriageError{Kind: KindEmptyInput, Err: ErrEmptySymptoms}
}

func transportError(err error) *TriageError {
	return &TriageError{Kind: KindTransport, Err: err}
}

func parseError(raw string, err error) *TriageError {
	return &TriageError{Kind: KindParse, RawOutput: raw, Err: err}
}

func shapeError(raw string, partial map[string]any, missing []string) *TriageError {
	return &TriageError{
		Kind:      KindShape,
		RawOutput: raw,
		Partial:   partial,
		Missing:   missing,
		Err:       fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")),
	}
}

// KindOf reports the kind of a TriageError anywhere in err's chain.  Other
// errors are treated as transport failures.
func KindOf(err error) ErrorKind {
	var te *TriageError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindTransport
}
