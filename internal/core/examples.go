package core

import "triage-advisor/pkg"

// Examples returns the sample cases offered next to the intake form.
func Examples() []pkg.PatientInput {
	return []pkg.PatientInput{
		{Gender: pkg.GenderFemale, Age: "55", PreExisting: "High BP", Symptoms: "Chest tightness and breathlessness"},
		{Gender: pkg.GenderMale, Age: "18", PreExisting: "None", Symptoms: "High fever, severe body pain, sore throat"},
	}
}
