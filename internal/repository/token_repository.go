package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/blood-uber/server/internal/model"
)

// TokenRepo provides the append-only `blockchain_tokens` ledger. Rows
// are never mutated after creation.
type TokenRepo struct{ db *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// CreateTx appends a ledger entry within the accrual transaction.
func (r *TokenRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.BlockchainToken) error {
	now := time.Now().UTC()
	if t.EarnedAt.IsZero() {
		t.EarnedAt = now
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO blockchain_tokens (donor_id, token_amount, earned_from, transaction_ref, earned_at)
		 VALUES (?,?,?,?,?)`,
		t.DonorID, t.TokenAmount, t.EarnedFrom, nullStr(t.TransactionRef), t.EarnedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// ListByDonor returns a donor's token ledger, most recent first.
func (r *TokenRepo) ListByDonor(ctx context.Context, donorID uint64) ([]model.BlockchainToken, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, donor_id, token_amount, earned_from, transaction_ref, earned_at
		 FROM blockchain_tokens WHERE donor_id = ? ORDER BY earned_at DESC, id DESC`, donorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BlockchainToken, 0)
	for rows.Next() {
		var t model.BlockchainToken
		var ref sql.NullString
		if err := rows.Scan(&t.ID, &t.DonorID, &t.TokenAmount, &t.EarnedFrom, &ref, &t.EarnedAt); err != nil {
			return nil, err
		}
		t.TransactionRef = ref.String
		out = append(out, t)
	}
	return out, rows.Err()
}
