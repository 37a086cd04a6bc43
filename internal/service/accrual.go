package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blood-uber/server/internal/model"
	"github.com/blood-uber/server/internal/repository"
)

// EventPublisher emits domain events after a donation has been
// committed. A nil publisher disables emission.
type EventPublisher interface {
	PublishDonationCompleted(ctx context.Context, donationID, donorID, patientID uint64, tokens int) error
}

// AccrualService records donations and, in the same transaction,
// updates the donor's counters, tokens, badge progress and token
// ledger.
type AccrualService struct {
	db        *sql.DB
	donations *repository.DonationRepo
	donors    *repository.DonorRepo
	badges    *repository.BadgeRepo
	tokens    *repository.TokenRepo
	publisher EventPublisher
}

func NewAccrualService(db *sql.DB, dh *repository.DonationRepo, d *repository.DonorRepo,
	b *repository.BadgeRepo, t *repository.TokenRepo, pub EventPublisher) *AccrualService {
	return &AccrualService{db: db, donations: dh, donors: d, badges: b, tokens: t, publisher: pub}
}

// AccrualResult describes everything a completed donation produced.
type AccrualResult struct {
	Donation    model.DonationHistory `json:"donation"`
	Donor       model.Donor           `json:"donor"`
	BadgeEarned string                `json:"badgeEarned,omitempty"`
	Token       model.BlockchainToken `json:"token"`
}

// RecordDonation persists a donation atomically with its side effects.
// Only completed donations accrue: increment total_donations, add the
// token amount to both balances, set last_donation_date, award any
// newly crossed badge once, and append a blockchain token entry. A
// pending or cancelled donation is stored without side effects.
func (s *AccrualService) RecordDonation(ctx context.Context, d *model.DonationHistory) (AccrualResult, error) {
	model.ApplyDonationDefaults(d)
	if errs := model.ValidateDonation(d); len(errs) > 0 {
		return AccrualResult{}, fmt.Errorf("invalid donation: %v", errs)
	}

	if d.Status != model.DonationCompleted {
		if err := s.donations.Create(ctx, d); err != nil {
			return AccrualResult{}, err
		}
		return AccrualResult{Donation: *d}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AccrualResult{}, fmt.Errorf("begin accrual tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.donations.CreateTx(ctx, tx, d); err != nil {
		return AccrualResult{}, err
	}

	donor, err := s.donors.ApplyDonationTx(ctx, tx, d.DonorID, d.TokensEarned, d.DonationDate)
	if err != nil {
		return AccrualResult{}, err
	}

	res := AccrualResult{Donation: *d, Donor: donor}

	// Badge progress only moves forward. A donor who already holds the
	// level for the new count keeps it without a duplicate row.
	earned := model.BadgeForCount(donor.TotalDonations)
	if model.BadgeRank(earned) > model.BadgeRank(model.BadgeNovice) {
		has, err := s.badges.HasBadgeTx(ctx, tx, donor.ID, earned)
		if err != nil {
			return AccrualResult{}, err
		}
		if !has {
			badge := model.DonorBadge{
				DonorID:       donor.ID,
				BadgeType:     earned,
				DonationCount: donor.TotalDonations,
				Description:   fmt.Sprintf("Earned at %d completed donations", donor.TotalDonations),
				EarnedAt:      d.DonationDate,
			}
			if err := s.badges.CreateTx(ctx, tx, &badge); err != nil {
				return AccrualResult{}, err
			}
			res.BadgeEarned = earned
		}
		if model.BadgeRank(earned) > model.BadgeRank(donor.BadgeLevel) {
			if err := s.donors.SetBadgeLevelTx(ctx, tx, donor.ID, earned); err != nil {
				return AccrualResult{}, err
			}
			res.Donor.BadgeLevel = earned
		}
	}

	token := model.BlockchainToken{
		DonorID:        donor.ID,
		TokenAmount:    d.TokensEarned,
		EarnedFrom:     model.TokenSourceDonation,
		TransactionRef: "txn-" + uuid.NewString(),
		EarnedAt:       d.DonationDate,
	}
	if err := s.tokens.CreateTx(ctx, tx, &token); err != nil {
		return AccrualResult{}, err
	}
	res.Token = token

	if err := tx.Commit(); err != nil {
		return AccrualResult{}, fmt.Errorf("commit accrual tx: %w", err)
	}

	// Event emission is best effort. The accrual already committed.
	if s.publisher != nil {
		if err := s.publisher.PublishDonationCompleted(ctx, d.ID, d.DonorID, d.PatientID, d.TokensEarned); err != nil {
			zap.L().Warn("publish donation event failed",
				zap.Uint64("donation_id", d.ID), zap.Error(err))
		}
	}
	return res, nil
}

// NextDonationDate returns when the donor may give again, using the
// standard 56 day whole-blood deferral.
func NextDonationDate(last time.Time) time.Time {
	return last.AddDate(0, 0, 56)
}
