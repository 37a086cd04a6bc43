package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blood-uber/server/internal/model"
	"github.com/blood-uber/server/internal/repository"
)

// ErrInsufficientTokens is returned when a donor's spendable balance
// cannot cover a reward's cost.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// ErrRewardInactive is returned when redeeming a disabled or expired
// reward.
var ErrRewardInactive = errors.New("reward not active")

// RewardService redeems catalog rewards against donor token balances.
type RewardService struct {
	db      *sql.DB
	rewards *repository.RewardRepo
	donors  *repository.DonorRepo
}

func NewRewardService(db *sql.DB, r *repository.RewardRepo, d *repository.DonorRepo) *RewardService {
	return &RewardService{db: db, rewards: r, donors: d}
}

// Redeem spends a donor's tokens on a reward. The debit and the
// redemption record commit together; a failed debit leaves both the
// balance and the ledger untouched. Lifetime earnings never change on
// redemption.
func (s *RewardService) Redeem(ctx context.Context, donorID, rewardID uint64) (model.RewardRedemption, error) {
	reward, err := s.rewards.GetByID(ctx, rewardID)
	if err != nil {
		return model.RewardRedemption{}, err
	}
	if !reward.IsActive {
		return model.RewardRedemption{}, ErrRewardInactive
	}
	if reward.ExpiresAt != nil && reward.ExpiresAt.Before(time.Now().UTC()) {
		return model.RewardRedemption{}, ErrRewardInactive
	}

	// The conditional debit below matches zero rows for a missing donor
	// just as for a short balance, so resolve the donor first to keep
	// the two cases distinguishable.
	if _, err := s.donors.GetByID(ctx, donorID); err != nil {
		return model.RewardRedemption{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.RewardRedemption{}, fmt.Errorf("begin redemption tx: %w", err)
	}
	defer tx.Rollback()

	ok, err := s.donors.SpendTokensTx(ctx, tx, donorID, reward.TokensRequired)
	if err != nil {
		return model.RewardRedemption{}, err
	}
	if !ok {
		return model.RewardRedemption{}, ErrInsufficientTokens
	}

	red := model.RewardRedemption{
		RewardID:    rewardID,
		DonorID:     donorID,
		TokensSpent: reward.TokensRequired,
		RedeemedAt:  time.Now().UTC(),
	}
	if err := s.rewards.CreateRedemptionTx(ctx, tx, &red); err != nil {
		return model.RewardRedemption{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.RewardRedemption{}, fmt.Errorf("commit redemption tx: %w", err)
	}
	return red, nil
}
