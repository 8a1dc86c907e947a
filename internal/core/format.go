package core

import (
	"errors"
	"fmt"
	"strings"

	"triage-advisor/pkg"
)

const (
	ErrorMarker   = "❌"
	NeutralMarker = "⚪"
	NotSpecified  = "Not specified"
	Disclaimer    = "*This tool is for educational use only. Always consult a medical professional.*"
)

var urgencyMarkers = map[pkg.UrgencyLevel]string{
	pkg.UrgencyLow:       "🟢",
	pkg.UrgencyModerate:  "🟡",
	pkg.UrgencyHigh:      "🟠",
	pkg.UrgencyEmergency: "🔴",
}

// UrgencyMarker returns the indicator for level.  Matching is exact; any
// other value gets NeutralMarker.
func UrgencyMarker(level pkg.UrgencyLevel) string {
	if m, ok := urgencyMarkers[level]; ok {
		return m
	}
	return NeutralMarker
}

// Format renders the outcome of Evaluate as markdown.  A non-nil err always
// yields a single error line, otherwise rec is rendered with the disclaimer.
func Format(rec *pkg.TriageRecord, err error) string {
	if err != nil {
		return ErrorMarker + " Error: " + ErrorMessage(err)
	}
	if rec == nil {
		return ErrorMarker + " Error: " + ErrorMessage(transportError(errors.New("empty response")))
	}

	urgency := strings.TrimSpace(string(rec.UrgencyLevel))
	if urgency == "" {
		urgency = "Unknown"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s **Urgency Level:** %s\n", UrgencyMarker(rec.UrgencyLevel), urgency)
	fmt.Fprintf(&b, "🩺 **Possible Condition:** %s\n", orNotSpecified(rec.PossibleCondition))
	fmt.Fprintf(&b, "📋 **Recommended Action:** %s\n", orNotSpecified(rec.RecommendedAction))
	fmt.Fprintf(&b, "💊 **Suggested Medication:** %s\n", orNotSpecified(rec.SuggestedMedication))
	b.WriteString("\n---\n")
	b.WriteString(Disclaimer)
	return b.String()
}

// ErrorMessage is the single-line, user facing description of err.
func ErrorMessage(err error) string {
	var te *TriageError
	if !errors.As(err, &te) {
		te = transportError(err)
	}
	return strings.Join(strings.Fields(te.Error()), " ")
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotSpecified
	}
	return s
}
