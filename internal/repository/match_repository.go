package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/blood-uber/server/internal/model"
)

// MatchRepo provides CRUD over the `matches` table and the enriched
// per-side listings. All timestamp fields are stored in UTC.
type MatchRepo struct{ db *sql.DB }

func NewMatchRepo(db *sql.DB) *MatchRepo { return &MatchRepo{db: db} }

const matchColumns = `id, donor_id, patient_id, match_score, compatibility_score,
	status, scheduled_date, distance_km, created_at, updated_at`

func scanMatch(row interface{ Scan(...any) error }) (model.Match, error) {
	var m model.Match
	var sched sql.NullTime
	err := row.Scan(&m.ID, &m.DonorID, &m.PatientID, &m.MatchScore, &m.CompatibilityScore,
		&m.Status, &sched, &m.DistanceKm, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.Match{}, err
	}
	if sched.Valid {
		t := sched.Time
		m.ScheduledDate = &t
	}
	return m, nil
}

// Create inserts a match with its scores already computed.
func (r *MatchRepo) Create(ctx context.Context, m *model.Match) error {
	if m.Status == "" {
		m.Status = model.MatchPending
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO matches (donor_id, patient_id, match_score, compatibility_score,
			status, scheduled_date, distance_km, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		m.DonorID, m.PatientID, m.MatchScore, m.CompatibilityScore,
		m.Status, m.ScheduledDate, m.DistanceKm, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	m.CreatedAt = now
	m.UpdatedAt = now
	return nil
}

// GetByID fetches a match by id.
func (r *MatchRepo) GetByID(ctx context.Context, id uint64) (model.Match, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id=? LIMIT 1`, id)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return model.Match{}, ErrNotFound
	}
	return m, err
}

// UpdateStatus persists a lifecycle transition validated by the
// service layer against the from status. The WHERE clause re-checks
// from, so a transition raced by another writer matches zero rows and
// returns ErrNotFound instead of overwriting the newer state. A
// non-nil scheduledDate also records the agreed time.
func (r *MatchRepo) UpdateStatus(ctx context.Context, id uint64, from, to string, scheduledDate *time.Time) (model.Match, error) {
	var (
		res sql.Result
		err error
	)
	now := time.Now().UTC()
	if scheduledDate != nil {
		res, err = r.db.ExecContext(ctx,
			`UPDATE matches SET status=?, scheduled_date=?, updated_at=? WHERE id=? AND status=?`,
			to, *scheduledDate, now, id, from)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE matches SET status=?, updated_at=? WHERE id=? AND status=?`,
			to, now, id, from)
	}
	if err != nil {
		return model.Match{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Match{}, err
	}
	if n == 0 {
		return model.Match{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// MatchWithDonor is a match enriched with the donor side for patient
// dashboards.
type MatchWithDonor struct {
	model.Match
	Donor     model.Donor `json:"donor"`
	DonorUser model.User  `json:"donorUser"`
}

// MatchWithPatient is a match enriched with the patient side for donor
// dashboards.
type MatchWithPatient struct {
	model.Match
	Patient     model.Patient `json:"patient"`
	PatientUser model.User    `json:"patientUser"`
}

// ListByPatient returns all matches for a patient joined with each
// counterpart donor and its user, newest first. A single three-way
// join replaces the per-match lookups of the old storage layer.
func (r *MatchRepo) ListByPatient(ctx context.Context, patientID uint64) ([]MatchWithDonor, error) {
	const q = `SELECT m.id, m.donor_id, m.patient_id, m.match_score, m.compatibility_score,
			m.status, m.scheduled_date, m.distance_km, m.created_at, m.updated_at,
			d.id, d.user_id, d.last_donation_date, d.total_donations, d.is_active,
			d.current_tokens, d.total_tokens_earned, d.badge_level, d.created_at, d.updated_at,
			u.id, u.username, u.email, u.first_name, u.last_name, u.phone, u.blood_group,
			u.user_type, u.location, u.availability, u.is_verified, u.lat, u.lng, u.created_at, u.updated_at
		FROM matches m
		JOIN donors d ON d.id = m.donor_id
		JOIN users u ON u.id = d.user_id
		WHERE m.patient_id = ?
		ORDER BY m.created_at DESC, m.id DESC`
	rows, err := r.db.QueryContext(ctx, q, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]MatchWithDonor, 0)
	for rows.Next() {
		var mw MatchWithDonor
		var sched, last sql.NullTime
		var phone, availability sql.NullString
		if err := rows.Scan(
			&mw.Match.ID, &mw.DonorID, &mw.PatientID, &mw.MatchScore, &mw.CompatibilityScore,
			&mw.Status, &sched, &mw.DistanceKm, &mw.Match.CreatedAt, &mw.Match.UpdatedAt,
			&mw.Donor.ID, &mw.Donor.UserID, &last, &mw.Donor.TotalDonations, &mw.Donor.IsActive,
			&mw.Donor.CurrentTokens, &mw.Donor.TotalTokensEarned, &mw.Donor.BadgeLevel,
			&mw.Donor.CreatedAt, &mw.Donor.UpdatedAt,
			&mw.DonorUser.ID, &mw.DonorUser.Username, &mw.DonorUser.Email, &mw.DonorUser.FirstName,
			&mw.DonorUser.LastName, &phone, &mw.DonorUser.BloodGroup, &mw.DonorUser.UserType,
			&mw.DonorUser.Location, &availability, &mw.DonorUser.IsVerified,
			&mw.DonorUser.Lat, &mw.DonorUser.Lng, &mw.DonorUser.CreatedAt, &mw.DonorUser.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if sched.Valid {
			t := sched.Time
			mw.ScheduledDate = &t
		}
		if last.Valid {
			t := last.Time
			mw.Donor.LastDonationDate = &t
		}
		mw.DonorUser.Phone = phone.String
		mw.DonorUser.Availability = availability.String
		out = append(out, mw)
	}
	return out, rows.Err()
}

// ListByDonor returns all matches for a donor joined with each
// counterpart patient and its user, newest first.
func (r *MatchRepo) ListByDonor(ctx context.Context, donorID uint64) ([]MatchWithPatient, error) {
	const q = `SELECT m.id, m.donor_id, m.patient_id, m.match_score, m.compatibility_score,
			m.status, m.scheduled_date, m.distance_km, m.created_at, m.updated_at,
			p.id, p.user_id, p.medical_condition, p.urgency_level, p.next_required_date,
			p.hemoglobin_level, p.weight_kg, p.age, p.medical_history, p.created_at, p.updated_at,
			u.id, u.username, u.email, u.first_name, u.last_name, u.phone, u.blood_group,
			u.user_type, u.location, u.availability, u.is_verified, u.lat, u.lng, u.created_at, u.updated_at
		FROM matches m
		JOIN patients p ON p.id = m.patient_id
		JOIN users u ON u.id = p.user_id
		WHERE m.donor_id = ?
		ORDER BY m.created_at DESC, m.id DESC`
	rows, err := r.db.QueryContext(ctx, q, donorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]MatchWithPatient, 0)
	for rows.Next() {
		var mw MatchWithPatient
		var sched, next sql.NullTime
		var hb, weight sql.NullFloat64
		var age sql.NullInt64
		var history, phone, availability sql.NullString
		if err := rows.Scan(
			&mw.Match.ID, &mw.DonorID, &mw.PatientID, &mw.MatchScore, &mw.CompatibilityScore,
			&mw.Status, &sched, &mw.DistanceKm, &mw.Match.CreatedAt, &mw.Match.UpdatedAt,
			&mw.Patient.ID, &mw.Patient.UserID, &mw.Patient.Condition, &mw.Patient.UrgencyLevel, &next,
			&hb, &weight, &age, &history, &mw.Patient.CreatedAt, &mw.Patient.UpdatedAt,
			&mw.PatientUser.ID, &mw.PatientUser.Username, &mw.PatientUser.Email, &mw.PatientUser.FirstName,
			&mw.PatientUser.LastName, &phone, &mw.PatientUser.BloodGroup, &mw.PatientUser.UserType,
			&mw.PatientUser.Location, &availability, &mw.PatientUser.IsVerified,
			&mw.PatientUser.Lat, &mw.PatientUser.Lng, &mw.PatientUser.CreatedAt, &mw.PatientUser.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if sched.Valid {
			t := sched.Time
			mw.ScheduledDate = &t
		}
		if next.Valid {
			t := next.Time
			mw.Patient.NextRequiredDate = &t
		}
		mw.Patient.HemoglobinLevel = hb.Float64
		mw.Patient.WeightKg = weight.Float64
		mw.Patient.Age = int(age.Int64)
		mw.Patient.MedicalHistory = history.String
		mw.PatientUser.Phone = phone.String
		mw.PatientUser.Availability = availability.String
		out = append(out, mw)
	}
	return out, rows.Err()
}
