package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/blood-uber/server/internal/model"
)

// PredictionRepo stores forecast rows ingested from the external ML
// service. The string lists are persisted as JSON text columns.
type PredictionRepo struct{ db *sql.DB }

func NewPredictionRepo(db *sql.DB) *PredictionRepo { return &PredictionRepo{db: db} }

// Create inserts a forecast row.
func (r *PredictionRepo) Create(ctx context.Context, p *model.MLPrediction) error {
	factors, err := json.Marshal(p.FactorsConsidered)
	if err != nil {
		return err
	}
	recs, err := json.Marshal(p.Recommendations)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ml_predictions (patient_id, next_required_date, urgency_score,
			predicted_amount_ml, confidence_level, factors_considered, recommendations, created_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		p.PatientID, p.NextRequiredDate, p.UrgencyScore,
		p.PredictedAmountMl, p.ConfidenceLevel, string(factors), string(recs), now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.CreatedAt = now
	return nil
}

// GetLatestByPatient returns the most recently ingested forecast for a
// patient, or ErrNotFound when none has been ingested yet.
func (r *PredictionRepo) GetLatestByPatient(ctx context.Context, patientID uint64) (model.MLPrediction, error) {
	var p model.MLPrediction
	var factors, recs sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, patient_id, next_required_date, urgency_score, predicted_amount_ml,
			confidence_level, factors_considered, recommendations, created_at
		 FROM ml_predictions WHERE patient_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`, patientID).Scan(
		&p.ID, &p.PatientID, &p.NextRequiredDate, &p.UrgencyScore, &p.PredictedAmountMl,
		&p.ConfidenceLevel, &factors, &recs, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return model.MLPrediction{}, ErrNotFound
	}
	if err != nil {
		return model.MLPrediction{}, err
	}
	p.FactorsConsidered = decodeStringList(factors.String)
	p.Recommendations = decodeStringList(recs.String)
	return p, nil
}

func decodeStringList(s string) []string {
	if s == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}
