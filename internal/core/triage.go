package core

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"triage-advisor/internal/llm"
	"triage-advisor/pkg"
)

const (
	// DefaultModel is the Nebius hosted model the prompt was written for.
	DefaultModel       = "Qwen/Qwen3-14B"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 600
)

// RequiredFields are the keys a reply must contain to be accepted.
var RequiredFields = []string{"urgency_level", "possible_condition", "recommended_action", "suggested_medication"}

// Settings is the per-process configuration of a TriageService.  An empty
// APIKey makes every evaluation fail with KindConfig.
type Settings struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// DefaultSettings returns the settings used by the hosted form.
func DefaultSettings(apiKey string) Settings {
	return Settings{
		APIKey:      apiKey,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// TriageService turns patient input into a validated TriageRecord with a
// single completion call.  It holds no mutable state and may be shared by
// concurrent requests.
type TriageService struct {
	LLM      llm.Completer
	Settings Settings
	Log      *zap.Logger
}

// NewTriageService constructs a TriageService.  A nil logger disables logging.
func NewTriageService(client llm.Completer, settings Settings, logger *zap.Logger) *TriageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriageService{LLM: client, Settings: settings, Log: logger}
}

// Evaluate runs the prompt/validate pipeline once.  Exactly one of the
// returned values is non-nil and a non-nil error is always a *TriageError.
// There is no retry: a transport failure is reported as is.
func (s *TriageService) Evaluate(ctx context.Context, in pkg.PatientInput) (*pkg.TriageRecord, error) {
	if s.Settings.APIKey == "" || s.LLM == nil {
		return nil, configError()
	}
	if strings.TrimSpace(in.Symptoms) == "" {
		return nil, emptyInputError()
	}

	log := s.Log.With(zap.String("model", s.Settings.Model))
	log.Debug("requesting triage completion",
		zap.String("gender", string(in.Gender)),
		zap.Int("symptoms_len", len(in.Symptoms)))

	started := time.Now()
	raw, err := s.LLM.Complete(ctx, llm.CompletionRequest{
		Model:       s.Settings.Model,
		System:      SystemPrompt,
		User:        BuildPrompt(in.Gender, in.Age, in.PreExisting, in.Symptoms),
		Temperature: s.Settings.Temperature,
		MaxTokens:   s.Settings.MaxTokens,
	})
	if err != nil {
		log.Warn("triage completion failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return nil, transportError(err)
	}

	rec, terr := decodeRecord(raw)
	if terr != nil {
		log.Warn("triage reply rejected",
			zap.String("kind", string(terr.Kind)),
			zap.Error(terr.Err))
		log.Debug("rejected triage reply", zap.String("raw_output", raw))
		return nil, terr
	}
	log.Info("triage completed",
		zap.String("urgency_level", string(rec.UrgencyLevel)),
		zap.Duration("elapsed", time.Since(started)))
	return rec, nil
}

// decodeRecord extracts, decodes and shape-checks a model reply.
func decodeRecord(raw string) (*pkg.TriageRecord, *TriageError) {
	var decoded any
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &decoded); err != nil {
		return nil, parseError(raw, err)
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		// valid JSON that is not an object has none of the fields
		return nil, shapeError(raw, nil, RequiredFields)
	}
	var missing []string
	for _, f := range RequiredFields {
		if _, ok := obj[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, shapeError(raw, obj, missing)
	}
	return &pkg.TriageRecord{
		UrgencyLevel:        pkg.UrgencyLevel(fieldText(obj["urgency_level"])),
		PossibleCondition:   fieldText(obj["possible_condition"]),
		RecommendedAction:   fieldText(obj["recommended_action"]),
		SuggestedMedication: fieldText(obj["suggested_medication"]),
	}, nil
}

// fieldText renders a decoded JSON value as display text.  Strings are kept
// verbatim, null is empty and anything else is re-encoded compactly.
func fieldText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
