package model

import "time"

// MLPrediction mirrors the `ml_predictions` table. Rows are produced by
// an external forecasting service and ingested through the API; this
// service only stores and serves them.
type MLPrediction struct {
	ID                uint64    `json:"id"`
	PatientID         uint64    `json:"patientId"`
	NextRequiredDate  time.Time `json:"nextRequiredDate"`
	UrgencyScore      int       `json:"urgencyScore"` // 1-10
	PredictedAmountMl int       `json:"predictedAmountMl"`
	ConfidenceLevel   int       `json:"confidenceLevel"` // percent
	FactorsConsidered []string  `json:"factorsConsidered"`
	Recommendations   []string  `json:"recommendations"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ValidatePrediction checks an ingested forecast row.
func ValidatePrediction(p *MLPrediction) map[string]string {
	errs := map[string]string{}
	if p.PatientID == 0 {
		errs["patientId"] = "required"
	}
	if p.NextRequiredDate.IsZero() {
		errs["nextRequiredDate"] = "required"
	}
	if p.UrgencyScore < 1 || p.UrgencyScore > 10 {
		errs["urgencyScore"] = "must be between 1 and 10"
	}
	if p.ConfidenceLevel < 0 || p.ConfidenceLevel > 100 {
		errs["confidenceLevel"] = "must be between 0 and 100"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
