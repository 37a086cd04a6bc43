package model

import "time"

// DonorReward is a catalog entry describing a redeemable benefit. The
// catalog is donor-independent; redemption creates a RewardRedemption
// row rather than mutating the catalog entry.
type DonorReward struct {
	ID             uint64     `json:"id"`
	RewardType     string     `json:"rewardType"`
	RewardValue    string     `json:"rewardValue"`
	Provider       string     `json:"provider"`
	Description    string     `json:"description"`
	TokensRequired int        `json:"tokensRequired"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	IsActive       bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// RewardRedemption records one donor spending tokens on one catalog
// reward. Append-only.
type RewardRedemption struct {
	ID          uint64    `json:"id"`
	RewardID    uint64    `json:"rewardId"`
	DonorID     uint64    `json:"donorId"`
	TokensSpent int       `json:"tokensSpent"`
	RedeemedAt  time.Time `json:"redeemedAt"`
}

// ValidateReward checks a catalog entry before insertion.
func ValidateReward(r *DonorReward) map[string]string {
	errs := map[string]string{}
	if !IsValidRewardType(r.RewardType) {
		errs["rewardType"] = "unknown reward type"
	}
	if r.RewardValue == "" {
		errs["rewardValue"] = "required"
	}
	if r.Provider == "" {
		errs["provider"] = "required"
	}
	if r.TokensRequired <= 0 {
		errs["tokensRequired"] = "must be positive"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
