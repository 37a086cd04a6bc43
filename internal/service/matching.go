// Package service holds the business rules that sit between the HTTP
// handlers and the repositories: match scoring and lifecycle, donation
// accrual, reward redemption and the assistant responder.
package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/blood-uber/server/internal/model"
	"github.com/blood-uber/server/internal/repository"
)

// ErrInvalidTransition is returned when a match status change is not a
// legal forward step, or its side conditions are unmet.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrIncompatible is returned when a pairing fails the ABO/Rh table
// and therefore must not be confirmed.
var ErrIncompatible = errors.New("blood groups incompatible")

// canReceiveFrom is the standard ABO/Rh donor-recipient compatibility
// table, keyed by recipient group.
var canReceiveFrom = map[string][]string{
	"O-":  {"O-"},
	"O+":  {"O-", "O+"},
	"A-":  {"O-", "A-"},
	"A+":  {"O-", "O+", "A-", "A+"},
	"B-":  {"O-", "B-"},
	"B+":  {"O-", "O+", "B-", "B+"},
	"AB-": {"O-", "A-", "B-", "AB-"},
	"AB+": {"O-", "O+", "A-", "A+", "B-", "B+", "AB-", "AB+"},
}

// Compatible reports whether a donor of group donorBG can give to a
// recipient of group recipientBG.
func Compatible(donorBG, recipientBG string) bool {
	for _, g := range canReceiveFrom[recipientBG] {
		if g == donorBG {
			return true
		}
	}
	return false
}

// CompatibilityScore grades a pairing: 100 for an exact group match,
// 85 for a compatible non-exact pairing, 0 for an incompatible one.
func CompatibilityScore(donorBG, recipientBG string) int {
	switch {
	case !Compatible(donorBG, recipientBG):
		return 0
	case donorBG == recipientBG:
		return 100
	default:
		return 85
	}
}

// Scoring weights. Compatibility dominates; distance, urgency and
// donor activity refine the ranking among compatible donors.
const (
	weightCompatibility = 0.55
	weightDistance      = 0.25
	weightUrgency       = 0.12
	weightActivity      = 0.08

	maxMatchDistanceKm = 50.0
)

// MatchScore computes the overall match score in [0,100] as a
// deterministic function of the pairing. Incompatible pairs score 0
// regardless of the remaining factors.
func MatchScore(donorBG, patientBG string, distanceKm float64, donorActive bool, urgency string) int {
	comp := CompatibilityScore(donorBG, patientBG)
	if comp == 0 {
		return 0
	}
	dist := 0.0
	if distanceKm < maxMatchDistanceKm {
		dist = 100 * (1 - distanceKm/maxMatchDistanceKm)
	}
	urg := 30.0
	switch urgency {
	case model.UrgencyHigh:
		urg = 100
	case model.UrgencyMedium:
		urg = 60
	}
	act := 0.0
	if donorActive {
		act = 100
	}
	score := weightCompatibility*float64(comp) + weightDistance*dist +
		weightUrgency*urg + weightActivity*act
	s := int(math.Round(score))
	if s < 0 {
		s = 0
	}
	if s > 100 {
		s = 100
	}
	return s
}

// DistanceKm returns the great-circle distance between two
// geocoordinates using the haversine formula.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// MatchService creates scored matches and drives their lifecycle.
type MatchService struct {
	Matches   *repository.MatchRepo
	Donors    *repository.DonorRepo
	Patients  *repository.PatientRepo
	Users     *repository.UserRepo
	Donations *repository.DonationRepo
}

func NewMatchService(m *repository.MatchRepo, d *repository.DonorRepo, p *repository.PatientRepo,
	u *repository.UserRepo, dh *repository.DonationRepo) *MatchService {
	return &MatchService{Matches: m, Donors: d, Patients: p, Users: u, Donations: dh}
}

// CreateMatch scores the pairing and persists a pending match. When
// distanceKm is negative the distance is derived from the two users'
// geocoordinates. Referencing an unknown donor or patient returns
// repository.ErrNotFound.
func (s *MatchService) CreateMatch(ctx context.Context, donorID, patientID uint64, distanceKm float64) (model.Match, error) {
	donor, err := s.Donors.GetByID(ctx, donorID)
	if err != nil {
		return model.Match{}, err
	}
	patient, err := s.Patients.GetByID(ctx, patientID)
	if err != nil {
		return model.Match{}, err
	}
	donorUser, err := s.Users.GetByID(ctx, donor.UserID)
	if err != nil {
		return model.Match{}, err
	}
	patientUser, err := s.Users.GetByID(ctx, patient.UserID)
	if err != nil {
		return model.Match{}, err
	}
	if distanceKm < 0 {
		distanceKm = DistanceKm(donorUser.Lat, donorUser.Lng, patientUser.Lat, patientUser.Lng)
	}
	m := model.Match{
		DonorID:            donorID,
		PatientID:          patientID,
		CompatibilityScore: CompatibilityScore(donorUser.BloodGroup, patientUser.BloodGroup),
		MatchScore: MatchScore(donorUser.BloodGroup, patientUser.BloodGroup,
			distanceKm, donor.IsActive, patient.UrgencyLevel),
		Status:     model.MatchPending,
		DistanceKm: math.Round(distanceKm*10) / 10,
	}
	if err := s.Matches.Create(ctx, &m); err != nil {
		return model.Match{}, err
	}
	return m, nil
}

// Transition advances a match to next, enforcing the state machine and
// its side conditions:
//   - confirmed requires a scheduled date (given now or already set)
//     and a nonzero compatibility score;
//   - completed requires a completed donation between the pair;
//   - cancelled is allowed from any non-terminal state.
func (s *MatchService) Transition(ctx context.Context, matchID uint64, next string, scheduledDate *time.Time) (model.Match, error) {
	m, err := s.Matches.GetByID(ctx, matchID)
	if err != nil {
		return model.Match{}, err
	}
	if !m.CanTransition(next) {
		return model.Match{}, ErrInvalidTransition
	}
	switch next {
	case model.MatchConfirmed:
		if m.CompatibilityScore == 0 {
			return model.Match{}, ErrIncompatible
		}
		if scheduledDate == nil && m.ScheduledDate == nil {
			return model.Match{}, ErrInvalidTransition
		}
	case model.MatchCompleted:
		done, err := s.Donations.HasCompletedForPair(ctx, m.DonorID, m.PatientID)
		if err != nil {
			return model.Match{}, err
		}
		if !done {
			return model.Match{}, ErrInvalidTransition
		}
	}
	updated, err := s.Matches.UpdateStatus(ctx, matchID, m.Status, next, scheduledDate)
	if errors.Is(err, repository.ErrNotFound) {
		// The status moved between the read and the write, so the
		// validation above ran against a stale state.
		return model.Match{}, ErrInvalidTransition
	}
	return updated, err
}
