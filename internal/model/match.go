package model

import "time"

// Match is the join entity pairing one donor with one patient. The
// scores are fixed at creation by the scoring service; only Status and
// ScheduledDate change afterwards, and only along the forward
// lifecycle.
//
// Fields:
//  ID                 – primary key identifier.
//  DonorID, PatientID – the proposed pairing.
//  MatchScore         – overall suitability in [0,100].
//  CompatibilityScore – ABO/Rh component in [0,100]; 0 means the donor
//                       cannot give to the patient and the match is
//                       not confirmable.
//  Status             – lifecycle state (pending/confirmed/completed/cancelled).
//  ScheduledDate      – agreed donation time, required to confirm.
//  DistanceKm         – straight-line distance between the two users.
type Match struct {
	ID                 uint64     `json:"id"`
	DonorID            uint64     `json:"donorId"`
	PatientID          uint64     `json:"patientId"`
	MatchScore         int        `json:"matchScore"`
	CompatibilityScore int        `json:"compatibilityScore"`
	Status             string     `json:"status"`
	ScheduledDate      *time.Time `json:"scheduledDate,omitempty"`
	DistanceKm         float64    `json:"distanceKm"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// Terminal reports whether the match can no longer change state.
func (m *Match) Terminal() bool {
	return m.Status == MatchCompleted || m.Status == MatchCancelled
}

// CanTransition reports whether moving from the match's current state
// to next is a legal forward step. It encodes the full state machine;
// side conditions (scheduled date, recorded donation) are enforced by
// the lifecycle service.
func (m *Match) CanTransition(next string) bool {
	switch m.Status {
	case MatchPending:
		return next == MatchConfirmed || next == MatchCancelled
	case MatchConfirmed:
		return next == MatchCompleted || next == MatchCancelled
	default:
		return false
	}
}
