package core

import (
	"time"

	"github.com/google/uuid"

	"triage-advisor/pkg"
)

// NewAssessment builds the audit row for one evaluation.  Only the outcome
// category is kept; nothing the patient typed is copied.
func NewAssessment(model string, rec *pkg.TriageRecord, err error, latency time.Duration) *pkg.Assessment {
	a := &pkg.Assessment{
		ID:        uuid.NewString(),
		Model:     model,
		LatencyMS: latency.Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}
	if err != nil {
		a.ErrorKind = string(KindOf(err))
	} else if rec != nil {
		a.UrgencyLevel = rec.UrgencyLevel
	}
	return a
}
