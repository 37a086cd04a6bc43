package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/blood-uber/server/internal/model"
)

// DonationRepo provides the append-only `donation_history` ledger.
// Completed rows are inserted through CreateTx inside the accrual
// transaction; pending/cancelled records go through Create directly.
type DonationRepo struct{ db *sql.DB }

func NewDonationRepo(db *sql.DB) *DonationRepo { return &DonationRepo{db: db} }

const donationInsert = `INSERT INTO donation_history (donor_id, patient_id, donation_date,
	amount_ml, hospital, status, hemoglobin, blood_pressure, weight_kg, temperature,
	tokens_earned, created_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`

func donationArgs(d *model.DonationHistory, now time.Time) []any {
	return []any{
		d.DonorID, d.PatientID, d.DonationDate, d.AmountMl, d.Hospital, d.Status,
		nullFloat(d.HealthMetrics.Hemoglobin), nullStr(d.HealthMetrics.BloodPressure),
		nullFloat(d.HealthMetrics.WeightKg), nullFloat(d.HealthMetrics.Temperature),
		d.TokensEarned, now,
	}
}

// Create inserts a donation record outside any transaction.
func (r *DonationRepo) Create(ctx context.Context, d *model.DonationHistory) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, donationInsert, donationArgs(d, now)...)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	d.CreatedAt = now
	return nil
}

// CreateTx inserts a donation record within the accrual transaction.
func (r *DonationRepo) CreateTx(ctx context.Context, tx *sql.Tx, d *model.DonationHistory) error {
	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, donationInsert, donationArgs(d, now)...)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	d.CreatedAt = now
	return nil
}

// DonationWithPatient is a history row enriched with the receiving
// patient's display fields.
type DonationWithPatient struct {
	model.DonationHistory
	Patient struct {
		FirstName  string `json:"firstName"`
		LastName   string `json:"lastName"`
		BloodGroup string `json:"bloodGroup"`
	} `json:"patient"`
}

// ListByDonor returns a donor's donation history, most recent first,
// joined with the counterpart patient's name and blood group.
func (r *DonationRepo) ListByDonor(ctx context.Context, donorID uint64) ([]DonationWithPatient, error) {
	const q = `SELECT h.id, h.donor_id, h.patient_id, h.donation_date, h.amount_ml,
			h.hospital, h.status, h.hemoglobin, h.blood_pressure, h.weight_kg, h.temperature,
			h.tokens_earned, h.created_at,
			u.first_name, u.last_name, u.blood_group
		FROM donation_history h
		JOIN patients p ON p.id = h.patient_id
		JOIN users u ON u.id = p.user_id
		WHERE h.donor_id = ?
		ORDER BY h.donation_date DESC, h.id DESC`
	rows, err := r.db.QueryContext(ctx, q, donorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]DonationWithPatient, 0)
	for rows.Next() {
		var d DonationWithPatient
		var hb, weight, temp sql.NullFloat64
		var bp sql.NullString
		if err := rows.Scan(
			&d.ID, &d.DonorID, &d.PatientID, &d.DonationDate, &d.AmountMl,
			&d.Hospital, &d.Status, &hb, &bp, &weight, &temp,
			&d.TokensEarned, &d.CreatedAt,
			&d.Patient.FirstName, &d.Patient.LastName, &d.Patient.BloodGroup,
		); err != nil {
			return nil, err
		}
		d.HealthMetrics.Hemoglobin = hb.Float64
		d.HealthMetrics.BloodPressure = bp.String
		d.HealthMetrics.WeightKg = weight.Float64
		d.HealthMetrics.Temperature = temp.Float64
		out = append(out, d)
	}
	return out, rows.Err()
}

// HasCompletedForPair reports whether at least one completed donation
// exists between the donor and patient. Used to gate match completion.
func (r *DonationRepo) HasCompletedForPair(ctx context.Context, donorID, patientID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM donation_history
		 WHERE donor_id = ? AND patient_id = ? AND status = 'completed' LIMIT 1`,
		donorID, patientID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
