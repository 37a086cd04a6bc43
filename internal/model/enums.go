// Package model defines the persistent entities of the donor/patient
// matching service together with their enumerated value sets and
// validation helpers. Validation is pure: each ValidateX function
// inspects a record and returns a field-level error report without
// touching storage.
package model

// User types.
const (
	UserTypePatient = "patient"
	UserTypeDonor   = "donor"
	UserTypeBoth    = "both"
)

// Match lifecycle states. Transitions only move forward:
// pending -> confirmed -> completed, with cancelled reachable from
// any non-terminal state. Completed and cancelled are terminal.
const (
	MatchPending   = "pending"
	MatchConfirmed = "confirmed"
	MatchCompleted = "completed"
	MatchCancelled = "cancelled"
)

// Donation record states.
const (
	DonationCompleted = "completed"
	DonationPending   = "pending"
	DonationCancelled = "cancelled"
)

// Patient urgency classification.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Badge levels in ascending order of achievement.
const (
	BadgeNovice    = "novice"
	BadgeLifesaver = "lifesaver"
	BadgeHero      = "hero"
	BadgeChampion  = "champion"
	BadgeLegend    = "legend"
)

// Token ledger sources.
const (
	TokenSourceDonation  = "donation"
	TokenSourceReferral  = "referral"
	TokenSourceMilestone = "milestone"
	TokenSourceBonus     = "bonus"
)

// bloodGroups is the closed set of ABO/Rh groups accepted anywhere a
// blood group appears (users, donor search).
var bloodGroups = map[string]bool{
	"A+": true, "A-": true,
	"B+": true, "B-": true,
	"AB+": true, "AB-": true,
	"O+": true, "O-": true,
}

// badgeRank orders badge levels so that accrual can compare tiers.
// Higher rank never regresses to a lower one for the same donor.
var badgeRank = map[string]int{
	BadgeNovice:    0,
	BadgeLifesaver: 1,
	BadgeHero:      2,
	BadgeChampion:  3,
	BadgeLegend:    4,
}

var userTypes = map[string]bool{
	UserTypePatient: true,
	UserTypeDonor:   true,
	UserTypeBoth:    true,
}

var urgencyLevels = map[string]bool{
	UrgencyLow:    true,
	UrgencyMedium: true,
	UrgencyHigh:   true,
}

var donationStatuses = map[string]bool{
	DonationCompleted: true,
	DonationPending:   true,
	DonationCancelled: true,
}

var matchStatuses = map[string]bool{
	MatchPending:   true,
	MatchConfirmed: true,
	MatchCompleted: true,
	MatchCancelled: true,
}

var tokenSources = map[string]bool{
	TokenSourceDonation:  true,
	TokenSourceReferral:  true,
	TokenSourceMilestone: true,
	TokenSourceBonus:     true,
}

var rewardTypes = map[string]bool{
	"health_checkup":       true,
	"medical_consultation": true,
	"insurance_discount":   true,
	"hospital_voucher":     true,
}

// IsValidBloodGroup reports whether bg is one of the eight ABO/Rh groups.
func IsValidBloodGroup(bg string) bool { return bloodGroups[bg] }

// IsValidUserType reports whether t is patient, donor or both.
func IsValidUserType(t string) bool { return userTypes[t] }

// IsValidUrgency reports whether u is low, medium or high.
func IsValidUrgency(u string) bool { return urgencyLevels[u] }

// IsValidMatchStatus reports whether s is a known match state.
func IsValidMatchStatus(s string) bool { return matchStatuses[s] }

// IsValidDonationStatus reports whether s is a known donation state.
func IsValidDonationStatus(s string) bool { return donationStatuses[s] }

// IsValidTokenSource reports whether s is a known ledger source.
func IsValidTokenSource(s string) bool { return tokenSources[s] }

// IsValidRewardType reports whether t is a known reward category.
func IsValidRewardType(t string) bool { return rewardTypes[t] }

// BadgeRank returns the ordinal tier of a badge level, or -1 for an
// unknown level so comparisons against it always fail.
func BadgeRank(level string) int {
	if r, ok := badgeRank[level]; ok {
		return r
	}
	return -1
}
