package model

import "time"

// DonorBadge mirrors the `donor_badges` table. Entries are append-only
// ledger rows; per donor the badge ranks only ever increase.
type DonorBadge struct {
	ID            uint64    `json:"id"`
	DonorID       uint64    `json:"donorId"`
	BadgeType     string    `json:"badgeType"`
	DonationCount int       `json:"donationCount"`
	Description   string    `json:"description,omitempty"`
	EarnedAt      time.Time `json:"earnedAt"`
}

// badgeThresholds maps cumulative completed donations to the badge
// earned at that count. Novice is the starting level and has no row.
var badgeThresholds = []struct {
	Count int
	Badge string
}{
	{5, BadgeLifesaver},
	{8, BadgeHero},
	{15, BadgeChampion},
	{25, BadgeLegend},
}

// BadgeForCount returns the highest badge whose threshold is at or
// below count, or BadgeNovice when none is reached.
func BadgeForCount(count int) string {
	badge := BadgeNovice
	for _, t := range badgeThresholds {
		if count >= t.Count {
			badge = t.Badge
		}
	}
	return badge
}
