package model

import "time"

// Donor mirrors the `donors` table. Each donor references exactly one
// user and carries the running donation and token counters updated by
// the accrual service.
//
// Fields:
//  ID                – primary key identifier.
//  UserID            – owning user (unique; at most one donor per user).
//  LastDonationDate  – when the donor last completed a donation.
//  TotalDonations    – cumulative count of completed donations.
//  IsActive          – whether the donor is currently donating.
//  CurrentTokens     – spendable token balance. Never exceeds
//                      TotalTokensEarned.
//  TotalTokensEarned – lifetime tokens earned, monotonically increasing.
//  BadgeLevel        – highest badge tier reached, never lowered.
type Donor struct {
	ID                uint64     `json:"id"`
	UserID            uint64     `json:"userId"`
	LastDonationDate  *time.Time `json:"lastDonationDate,omitempty"`
	TotalDonations    int        `json:"totalDonations"`
	IsActive          bool       `json:"isActive"`
	CurrentTokens     int        `json:"currentTokens"`
	TotalTokensEarned int        `json:"totalTokensEarned"`
	BadgeLevel        string     `json:"badgeLevel"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// ValidateDonor checks the creation payload for a donor profile.
func ValidateDonor(d *Donor) map[string]string {
	errs := map[string]string{}
	if d.UserID == 0 {
		errs["userId"] = "required"
	}
	if d.TotalDonations < 0 {
		errs["totalDonations"] = "must not be negative"
	}
	if d.CurrentTokens < 0 || d.TotalTokensEarned < 0 {
		errs["currentTokens"] = "must not be negative"
	}
	if d.CurrentTokens > d.TotalTokensEarned {
		errs["currentTokens"] = "cannot exceed totalTokensEarned"
	}
	if d.BadgeLevel != "" && BadgeRank(d.BadgeLevel) < 0 {
		errs["badgeLevel"] = "unknown badge level"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
