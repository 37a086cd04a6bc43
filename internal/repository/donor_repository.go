package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/blood-uber/server/internal/model"
)

// DonorRepo provides CRUD over the `donors` table plus the derived
// lookups used by search, matching and the leaderboard. The *Tx
// methods participate in the accrual/redemption transactions; the
// caller owns commit and rollback.
type DonorRepo struct{ db *sql.DB }

func NewDonorRepo(db *sql.DB) *DonorRepo { return &DonorRepo{db: db} }

const donorColumns = `id, user_id, last_donation_date, total_donations, is_active,
	current_tokens, total_tokens_earned, badge_level, created_at, updated_at`

func scanDonor(row interface{ Scan(...any) error }) (model.Donor, error) {
	var d model.Donor
	var last sql.NullTime
	err := row.Scan(&d.ID, &d.UserID, &last, &d.TotalDonations, &d.IsActive,
		&d.CurrentTokens, &d.TotalTokensEarned, &d.BadgeLevel, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return model.Donor{}, err
	}
	if last.Valid {
		t := last.Time
		d.LastDonationDate = &t
	}
	return d, nil
}

// Create inserts a donor profile. A second profile for the same user
// returns ErrDuplicate.
func (r *DonorRepo) Create(ctx context.Context, d *model.Donor) error {
	if d.BadgeLevel == "" {
		d.BadgeLevel = model.BadgeNovice
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO donors (user_id, last_donation_date, total_donations, is_active,
			current_tokens, total_tokens_earned, badge_level, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		d.UserID, d.LastDonationDate, d.TotalDonations, d.IsActive,
		d.CurrentTokens, d.TotalTokensEarned, d.BadgeLevel, now, now)
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
	d.ID = uint64(id)
	d.CreatedAt = now
	d.UpdatedAt = now
	return nil
}

// GetByID fetches a donor by id.
func (r *DonorRepo) GetByID(ctx context.Context, id uint64) (model.Donor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+donorColumns+` FROM donors WHERE id=? LIMIT 1`, id)
	d, err := scanDonor(row)
	if err == sql.ErrNoRows {
		return model.Donor{}, ErrNotFound
	}
	return d, err
}

// GetByUserID fetches the donor profile owned by a user.
func (r *DonorRepo) GetByUserID(ctx context.Context, userID uint64) (model.Donor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+donorColumns+` FROM donors WHERE user_id=? LIMIT 1`, userID)
	d, err := scanDonor(row)
	if err == sql.ErrNoRows {
		return model.Donor{}, ErrNotFound
	}
	return d, err
}

// DonorWithUser is the donor search projection: the donor joined with
// the identity fields dashboards render next to it.
type DonorWithUser struct {
	model.Donor
	User model.User `json:"user"`
}

// ListByBloodGroup returns all active donors whose user has exactly the
// given blood group, joined with their user projection in one query.
func (r *DonorRepo) ListByBloodGroup(ctx context.Context, bloodGroup string) ([]DonorWithUser, error) {
	const q = `SELECT d.id, d.user_id, d.last_donation_date, d.total_donations, d.is_active,
			d.current_tokens, d.total_tokens_earned, d.badge_level, d.created_at, d.updated_at,
			u.id, u.username, u.email, u.first_name, u.last_name, u.phone, u.blood_group,
			u.user_type, u.location, u.availability, u.is_verified, u.lat, u.lng, u.created_at, u.updated_at
		FROM donors d
		JOIN users u ON u.id = d.user_id
		WHERE u.blood_group = ? AND d.is_active = TRUE
		ORDER BY d.total_donations DESC, d.id ASC`
	rows, err := r.db.QueryContext(ctx, q, bloodGroup)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]DonorWithUser, 0)
	for rows.Next() {
		var dw DonorWithUser
		var last sql.NullTime
		var phone, availability sql.NullString
		if err := rows.Scan(
			&dw.Donor.ID, &dw.Donor.UserID, &last, &dw.TotalDonations, &dw.IsActive,
			&dw.CurrentTokens, &dw.TotalTokensEarned, &dw.BadgeLevel, &dw.Donor.CreatedAt, &dw.Donor.UpdatedAt,
			&dw.User.ID, &dw.User.Username, &dw.User.Email, &dw.User.FirstName, &dw.User.LastName,
			&phone, &dw.User.BloodGroup, &dw.User.UserType, &dw.User.Location, &availability,
			&dw.User.IsVerified, &dw.User.Lat, &dw.User.Lng, &dw.User.CreatedAt, &dw.User.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if last.Valid {
			t := last.Time
			dw.LastDonationDate = &t
		}
		dw.User.Phone = phone.String
		dw.User.Availability = availability.String
		out = append(out, dw)
	}
	return out, rows.Err()
}

// LeaderboardEntry is one ranked row of the donor leaderboard.
type LeaderboardEntry struct {
	UserID         uint64 `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Location       string `json:"location"`
	TotalDonations int    `json:"totalDonations"`
	TotalTokens    int    `json:"totalTokens"`
	BadgeLevel     string `json:"badgeLevel"`
	Rank           int    `json:"rank"`
}

// Leaderboard ranks active donors by completed donations, ties broken
// by lifetime tokens. Ranks are assigned after the ordered scan.
func (r *DonorRepo) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT u.id, u.first_name, u.last_name, u.location,
			d.total_donations, d.total_tokens_earned, d.badge_level
		FROM donors d
		JOIN users u ON u.id = d.user_id
		WHERE d.is_active = TRUE
		ORDER BY d.total_donations DESC, d.total_tokens_earned DESC, d.id ASC
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LeaderboardEntry, 0)
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.FirstName, &e.LastName, &e.Location,
			&e.TotalDonations, &e.TotalTokens, &e.BadgeLevel); err != nil {
			return nil, err
		}
		e.Rank = len(out) + 1
		out = append(out, e)
	}
	return out, rows.Err()
}

// ApplyDonationTx bumps the donor's counters for one completed
// donation inside tx and returns the updated row. The UPDATE takes the
// row lock that serializes racing completions for the same donor.
func (r *DonorRepo) ApplyDonationTx(ctx context.Context, tx *sql.Tx, donorID uint64, tokens int, when time.Time) (model.Donor, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE donors SET total_donations = total_donations + 1,
			current_tokens = current_tokens + ?,
			total_tokens_earned = total_tokens_earned + ?,
			last_donation_date = ?,
			updated_at = ?
		 WHERE id = ?`,
		tokens, tokens, when, time.Now().UTC(), donorID)
	if err != nil {
		return model.Donor{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Donor{}, ErrNotFound
	}
	row := tx.QueryRowContext(ctx,
		`SELECT `+donorColumns+` FROM donors WHERE id=? LIMIT 1`, donorID)
	return scanDonor(row)
}

// SetBadgeLevelTx raises the donor's badge level inside tx. Callers
// hold the donor row lock from ApplyDonationTx in the same tx, which
// serializes concurrent awards.
func (r *DonorRepo) SetBadgeLevelTx(ctx context.Context, tx *sql.Tx, donorID uint64, level string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE donors SET badge_level = ?, updated_at = ? WHERE id = ?`,
		level, time.Now().UTC(), donorID)
	return err
}

// SpendTokensTx atomically deducts amount from the donor's spendable
// balance inside tx. It reports false when the balance is short; the
// conditional UPDATE makes check and deduct a single step.
func (r *DonorRepo) SpendTokensTx(ctx context.Context, tx *sql.Tx, donorID uint64, amount int) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE donors SET current_tokens = current_tokens - ?, updated_at = ?
		 WHERE id = ? AND current_tokens >= ?`,
		amount, time.Now().UTC(), donorID, amount)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
