package model

import "time"

// Patient mirrors the `patients` table. Like Donor it is a 1:1
// extension of a user, created once through the health-details flow
// and updated thereafter.
type Patient struct {
	ID               uint64     `json:"id"`
	UserID           uint64     `json:"userId"`
	Condition        string     `json:"condition"`
	UrgencyLevel     string     `json:"urgencyLevel"`
	NextRequiredDate *time.Time `json:"nextRequiredDate,omitempty"`
	HemoglobinLevel  float64    `json:"hemoglobinLevel,omitempty"`
	WeightKg         float64    `json:"weight,omitempty"`
	Age              int        `json:"age,omitempty"`
	MedicalHistory   string     `json:"medicalHistory,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// ApplyPatientDefaults fills the documented defaults for fields the
// client may omit: condition "thalassemia", urgency "medium".
func ApplyPatientDefaults(p *Patient) {
	if p.Condition == "" {
		p.Condition = "thalassemia"
	}
	if p.UrgencyLevel == "" {
		p.UrgencyLevel = UrgencyMedium
	}
}

// ValidatePatient checks the creation payload for a patient profile.
func ValidatePatient(p *Patient) map[string]string {
	errs := map[string]string{}
	if p.UserID == 0 {
		errs["userId"] = "required"
	}
	if !IsValidUrgency(p.UrgencyLevel) {
		errs["urgencyLevel"] = "must be low, medium or high"
	}
	if p.HemoglobinLevel < 0 {
		errs["hemoglobinLevel"] = "must not be negative"
	}
	if p.Age < 0 {
		errs["age"] = "must not be negative"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
