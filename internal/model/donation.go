package model

import "time"

// HealthMetrics is the point-in-time snapshot captured when a donation
// is recorded. All fields are optional.
type HealthMetrics struct {
	Hemoglobin    float64 `json:"hemoglobin,omitempty"`
	BloodPressure string  `json:"bloodPressure,omitempty"`
	WeightKg      float64 `json:"weight,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
}

// DonationHistory mirrors the `donation_history` table. Rows are
// append-only; a completed row drives the donor's counters, badge and
// token ledger through the accrual service.
type DonationHistory struct {
	ID            uint64        `json:"id"`
	DonorID       uint64        `json:"donorId"`
	PatientID     uint64        `json:"patientId"`
	DonationDate  time.Time     `json:"donationDate"`
	AmountMl      int           `json:"amountMl"`
	Hospital      string        `json:"hospital"`
	Status        string        `json:"status"`
	HealthMetrics HealthMetrics `json:"healthMetrics"`
	TokensEarned  int           `json:"tokensEarned"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Documented defaults: a standard 450ml draw worth 10 tokens, recorded
// as completed unless stated otherwise.
const (
	DefaultDonationAmountMl = 450
	DefaultDonationTokens   = 10
)

// ApplyDonationDefaults fills defaults on an incoming donation record.
func ApplyDonationDefaults(d *DonationHistory) {
	if d.AmountMl == 0 {
		d.AmountMl = DefaultDonationAmountMl
	}
	if d.TokensEarned == 0 {
		d.TokensEarned = DefaultDonationTokens
	}
	if d.Status == "" {
		d.Status = DonationCompleted
	}
	if d.DonationDate.IsZero() {
		d.DonationDate = time.Now().UTC()
	}
}

// ValidateDonation checks a donation record before it is persisted.
func ValidateDonation(d *DonationHistory) map[string]string {
	errs := map[string]string{}
	if d.DonorID == 0 {
		errs["donorId"] = "required"
	}
	if d.PatientID == 0 {
		errs["patientId"] = "required"
	}
	if d.Hospital == "" {
		errs["hospital"] = "required"
	}
	if !IsValidDonationStatus(d.Status) {
		errs["status"] = "must be completed, pending or cancelled"
	}
	if d.AmountMl <= 0 {
		errs["amountMl"] = "must be positive"
	}
	if d.TokensEarned < 0 {
		errs["tokensEarned"] = "must not be negative"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
