package pkg

import "time"

// Gender is the patient's gender as selected on the intake form.  The value
// is interpolated verbatim into the prompt and is never validated.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Genders lists the choices offered by the intake form, default first.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// UrgencyLevel is the triage category returned by the model.  The model is
// asked for one of the four constants below but nothing enforces it.
type UrgencyLevel string

const (
	UrgencyLow       UrgencyLevel = "Low"
	UrgencyModerate  UrgencyLevel = "Moderate"
	UrgencyHigh      UrgencyLevel = "High"
	UrgencyEmergency UrgencyLevel = "Emergency"
)

// PatientInput holds the intake form fields for a single triage request.
type PatientInput struct {
	Gender      Gender `json:"gender" form:"gender"`
	Age         string `json:"age" form:"age"`
	PreExisting string `json:"pre_existing" form:"pre_existing"`
	Symptoms    string `json:"symptoms" form:"symptoms"`
}

// TriageRecord is the validated assessment extracted from the model reply.
type TriageRecord struct {
	UrgencyLevel        UrgencyLevel `json:"urgency_level"`
	PossibleCondition   string       `json:"possible_condition"`
	RecommendedAction   string       `json:"recommended_action"`
	SuggestedMedication string       `json:"suggested_medication"`
}

// Assessment is the audit row written for every evaluated request.  It never
// contains patient supplied text.
type Assessment struct {
	ID           string       `json:"id"`
	Model        string       `json:"model"`
	UrgencyLevel UrgencyLevel `json:"urgency_level,omitempty"`
	ErrorKind    string       `json:"error_kind,omitempty"`
	LatencyMS    int64        `json:"latency_ms"`
	CreatedAt    time.Time    `json:"created_at"`
}

// UrgencyCount is one row of the per-level aggregate over the audit log.
type UrgencyCount struct {
	UrgencyLevel UrgencyLevel `json:"urgency_level"`
	Count        int          `json:"count"`
}

// TriageResponse is returned by the JSON API.  Exactly one of Record and
// Error is set.
type TriageResponse struct {
	ID     string        `json:"id"`
	Report string        `json:"report"`
	Record *TriageRecord `json:"record,omitempty"`
	Error  *ErrorDetail  `json:"error,omitempty"`
}

// ErrorDetail is the JSON shape of a failed assessment.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
