package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/blood-uber/server/internal/model"
)

// PatientRepo provides CRUD over the `patients` table.
type PatientRepo struct{ db *sql.DB }

func NewPatientRepo(db *sql.DB) *PatientRepo { return &PatientRepo{db: db} }

const patientColumns = `id, user_id, medical_condition, urgency_level, next_required_date,
	hemoglobin_level, weight_kg, age, medical_history, created_at, updated_at`

func scanPatient(row interface{ Scan(...any) error }) (model.Patient, error) {
	var p model.Patient
	var next sql.NullTime
	var hb, weight sql.NullFloat64
	var age sql.NullInt64
	var history sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &p.Condition, &p.UrgencyLevel, &next,
		&hb, &weight, &age, &history, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Patient{}, err
	}
	if next.Valid {
		t := next.Time
		p.NextRequiredDate = &t
	}
	p.HemoglobinLevel = hb.Float64
	p.WeightKg = weight.Float64
	p.Age = int(age.Int64)
	p.MedicalHistory = history.String
	return p, nil
}

// Create inserts a patient profile. A second profile for the same user
// returns ErrDuplicate.
func (r *PatientRepo) Create(ctx context.Context, p *model.Patient) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO patients (user_id, medical_condition, urgency_level, next_required_date,
			hemoglobin_level, weight_kg, age, medical_history, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		p.UserID, p.Condition, p.UrgencyLevel, p.NextRequiredDate,
		nullFloat(p.HemoglobinLevel), nullFloat(p.WeightKg), nullInt(p.Age),
		nullStr(p.MedicalHistory), now, now)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// GetByID fetches a patient by id.
func (r *PatientRepo) GetByID(ctx context.Context, id uint64) (model.Patient, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id=? LIMIT 1`, id)
	p, err := scanPatient(row)
	if err == sql.ErrNoRows {
		return model.Patient{}, ErrNotFound
	}
	return p, err
}

// GetByUserID fetches the patient profile owned by a user.
func (r *PatientRepo) GetByUserID(ctx context.Context, userID uint64) (model.Patient, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE user_id=? LIMIT 1`, userID)
	p, err := scanPatient(row)
	if err == sql.ErrNoRows {
		return model.Patient{}, ErrNotFound
	}
	return p, err
}

func nullFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
