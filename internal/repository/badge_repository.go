package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/blood-uber/server/internal/model"
)

// BadgeRepo provides the append-only `donor_badges` ledger.
type BadgeRepo struct{ db *sql.DB }

func NewBadgeRepo(db *sql.DB) *BadgeRepo { return &BadgeRepo{db: db} }

// CreateTx appends a badge row within the accrual transaction.
func (r *BadgeRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.DonorBadge) error {
	now := time.Now().UTC()
	if b.EarnedAt.IsZero() {
		b.EarnedAt = now
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO donor_badges (donor_id, badge_type, donation_count, description, earned_at)
		 VALUES (?,?,?,?,?)`,
		b.DonorID, b.BadgeType, b.DonationCount, nullStr(b.Description), b.EarnedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// ListByDonor returns a donor's badges in the order they were earned.
func (r *BadgeRepo) ListByDonor(ctx context.Context, donorID uint64) ([]model.DonorBadge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, donor_id, badge_type, donation_count, description, earned_at
		 FROM donor_badges WHERE donor_id = ? ORDER BY earned_at ASC, id ASC`, donorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.DonorBadge, 0)
	for rows.Next() {
		var b model.DonorBadge
		var desc sql.NullString
		if err := rows.Scan(&b.ID, &b.DonorID, &b.BadgeType, &b.DonationCount, &desc, &b.EarnedAt); err != nil {
			return nil, err
		}
		b.Description = desc.String
		out = append(out, b)
	}
	return out, rows.Err()
}

// HasBadgeTx reports within tx whether the donor already holds the
// given badge type. Keeps a threshold from awarding twice.
func (r *BadgeRepo) HasBadgeTx(ctx context.Context, tx *sql.Tx, donorID uint64, badgeType string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM donor_badges WHERE donor_id = ? AND badge_type = ? LIMIT 1`,
		donorID, badgeType).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
