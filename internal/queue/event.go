// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records completed donations.
package queue

// DonationCompletedEvent is published after a donation and its accrual
// side effects have committed. It carries enough for downstream
// consumers to log or notify without querying the primary database.
type DonationCompletedEvent struct {
	DonationID   uint64 `json:"donation_id"`
	DonorID      uint64 `json:"donor_id"`
	PatientID    uint64 `json:"patient_id"`
	TokensEarned int    `json:"tokens_earned"`
	CompletedAt  string `json:"completed_at"`
}
