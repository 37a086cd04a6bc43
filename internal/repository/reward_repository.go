package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/blood-uber/server/internal/model"
)

// RewardRepo provides the reward catalog and the per-donor redemption
// ledger. Catalog entries are shared; redemptions are append-only.
type RewardRepo struct{ db *sql.DB }

func NewRewardRepo(db *sql.DB) *RewardRepo { return &RewardRepo{db: db} }

const rewardColumns = `id, reward_type, reward_value, provider, description,
	tokens_required, expires_at, is_active, created_at`

func scanReward(row interface{ Scan(...any) error }) (model.DonorReward, error) {
	var rw model.DonorReward
	var expires sql.NullTime
	err := row.Scan(&rw.ID, &rw.RewardType, &rw.RewardValue, &rw.Provider, &rw.Description,
		&rw.TokensRequired, &expires, &rw.IsActive, &rw.CreatedAt)
	if err != nil {
		return model.DonorReward{}, err
	}
	if expires.Valid {
		t := expires.Time
		rw.ExpiresAt = &t
	}
	return rw, nil
}

// Create inserts a catalog entry.
func (r *RewardRepo) Create(ctx context.Context, rw *model.DonorReward) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO donor_rewards (reward_type, reward_value, provider, description,
			tokens_required, expires_at, is_active, created_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		rw.RewardType, rw.RewardValue, rw.Provider, rw.Description,
		rw.TokensRequired, rw.ExpiresAt, rw.IsActive, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rw.ID = uint64(id)
	rw.CreatedAt = now
	return nil
}

// GetByID fetches a catalog entry.
func (r *RewardRepo) GetByID(ctx context.Context, id uint64) (model.DonorReward, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+rewardColumns+` FROM donor_rewards WHERE id=? LIMIT 1`, id)
	rw, err := scanReward(row)
	if err == sql.ErrNoRows {
		return model.DonorReward{}, ErrNotFound
	}
	return rw, err
}

// ListActive returns the catalog entries currently redeemable,
// cheapest first.
func (r *RewardRepo) ListActive(ctx context.Context) ([]model.DonorReward, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+rewardColumns+` FROM donor_rewards
		 WHERE is_active = TRUE ORDER BY tokens_required ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.DonorReward, 0)
	for rows.Next() {
		rw, err := scanReward(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rw)
	}
	return out, rows.Err()
}

// CreateRedemptionTx appends a redemption row within the redemption
// transaction.
func (r *RewardRepo) CreateRedemptionTx(ctx context.Context, tx *sql.Tx, red *model.RewardRedemption) error {
	now := time.Now().UTC()
	if red.RedeemedAt.IsZero() {
		red.RedeemedAt = now
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO reward_redemptions (reward_id, donor_id, tokens_spent, redeemed_at)
		 VALUES (?,?,?,?)`,
		red.RewardID, red.DonorID, red.TokensSpent, red.RedeemedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	red.ID = uint64(id)
	return nil
}

// ListRedemptionsByDonor returns a donor's redemption history, most
// recent first.
func (r *RewardRepo) ListRedemptionsByDonor(ctx context.Context, donorID uint64) ([]model.RewardRedemption, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, reward_id, donor_id, tokens_spent, redeemed_at
		 FROM reward_redemptions WHERE donor_id = ? ORDER BY redeemed_at DESC, id DESC`, donorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RewardRedemption, 0)
	for rows.Next() {
		var red model.RewardRedemption
		if err := rows.Scan(&red.ID, &red.RewardID, &red.DonorID, &red.TokensSpent, &red.RedeemedAt); err != nil {
			return nil, err
		}
		out = append(out, red)
	}
	return out, rows.Err()
}
