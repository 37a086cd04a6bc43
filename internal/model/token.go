package model

import "time"

// BlockchainToken mirrors the `blockchain_tokens` table: an append-only
// ledger row recording tokens earned by a donor from one source. The
// transaction reference is an opaque handle for the external chain
// integration; in-process it is a generated UUID.
type BlockchainToken struct {
	ID             uint64    `json:"id"`
	DonorID        uint64    `json:"donorId"`
	TokenAmount    int       `json:"tokenAmount"`
	EarnedFrom     string    `json:"earnedFrom"`
	TransactionRef string    `json:"transactionRef,omitempty"`
	EarnedAt       time.Time `json:"earnedAt"`
}

// ValidateToken checks a ledger entry before insertion.
func ValidateToken(t *BlockchainToken) map[string]string {
	errs := map[string]string{}
	if t.DonorID == 0 {
		errs["donorId"] = "required"
	}
	if t.TokenAmount <= 0 {
		errs["tokenAmount"] = "must be positive"
	}
	if !IsValidTokenSource(t.EarnedFrom) {
		errs["earnedFrom"] = "must be donation, referral, milestone or bonus"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
