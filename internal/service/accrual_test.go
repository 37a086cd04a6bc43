package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/blood-uber/server/internal/model"
	"github.com/blood-uber/server/internal/repository"
	"github.com/blood-uber/server/internal/testutil"
)

type testEnv struct {
	db        *sql.DB
	users     *repository.UserRepo
	donors    *repository.DonorRepo
	patients  *repository.PatientRepo
	matches   *repository.MatchRepo
	donations *repository.DonationRepo
	badges    *repository.BadgeRepo
	tokens    *repository.TokenRepo
	rewards   *repository.RewardRepo

	accrual    *AccrualService
	matching   *MatchService
	redemption *RewardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.OpenDB(t)
	env := &testEnv{
		db:        db,
		users:     repository.NewUserRepo(db),
		donors:    repository.NewDonorRepo(db),
		patients:  repository.NewPatientRepo(db),
		matches:   repository.NewMatchRepo(db),
		donations: repository.NewDonationRepo(db),
		badges:    repository.NewBadgeRepo(db),
		tokens:    repository.NewTokenRepo(db),
		rewards:   repository.NewRewardRepo(db),
	}
	env.accrual = NewAccrualService(db, env.donations, env.donors, env.badges, env.tokens, nil)
	env.matching = NewMatchService(env.matches, env.donors, env.patients, env.users, env.donations)
	env.redemption = NewRewardService(db, env.rewards, env.donors)
	return env
}

func (env *testEnv) addUser(t *testing.T, name, bloodGroup, userType string, lat, lng float64) model.User {
	t.Helper()
	u := model.User{
		Username:   name,
		Email:      name + "@example.com",
		FirstName:  name,
		LastName:   "Test",
		BloodGroup: bloodGroup,
		UserType:   userType,
		Location:   "Karachi",
		Lat:        lat,
		Lng:        lng,
	}
	if err := env.users.Create(context.Background(), &u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func (env *testEnv) addDonor(t *testing.T, userID uint64, active bool) model.Donor {
	t.Helper()
	d := model.Donor{UserID: userID, IsActive: active, BadgeLevel: model.BadgeNovice}
	if err := env.donors.Create(context.Background(), &d); err != nil {
		t.Fatalf("create donor: %v", err)
	}
	return d
}

func (env *testEnv) addPatient(t *testing.T, userID uint64, urgency string) model.Patient {
	t.Helper()
	p := model.Patient{UserID: userID, Condition: "thalassemia", UrgencyLevel: urgency}
	if err := env.patients.Create(context.Background(), &p); err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return p
}

func (env *testEnv) donate(t *testing.T, donorID, patientID uint64) AccrualResult {
	t.Helper()
	res, err := env.accrual.RecordDonation(context.Background(), &model.DonationHistory{
		DonorID:   donorID,
		PatientID: patientID,
		Hospital:  "Aga Khan",
	})
	if err != nil {
		t.Fatalf("record donation: %v", err)
	}
	return res
}

func TestAccrualArithmetic(t *testing.T) {
	env := newTestEnv(t)
	du := env.addUser(t, "donor1", "O-", "donor", 0, 0)
	pu := env.addUser(t, "patient1", "A+", "patient", 0, 0)
	d := env.addDonor(t, du.ID, true)
	p := env.addPatient(t, pu.ID, model.UrgencyMedium)

	res := env.donate(t, d.ID, p.ID)

	if res.Donor.TotalDonations != 1 {
		t.Errorf("total donations = %d, want 1", res.Donor.TotalDonations)
	}
	if res.Donor.CurrentTokens != model.DefaultDonationTokens {
		t.Errorf("current tokens = %d, want %d", res.Donor.CurrentTokens, model.DefaultDonationTokens)
	}
	if res.Donor.TotalTokensEarned != model.DefaultDonationTokens {
		t.Errorf("lifetime tokens = %d, want %d", res.Donor.TotalTokensEarned, model.DefaultDonationTokens)
	}
	if res.Donor.LastDonationDate == nil {
		t.Errorf("last donation date not set")
	}
	if res.Token.TokenAmount != model.DefaultDonationTokens || res.Token.EarnedFrom != model.TokenSourceDonation {
		t.Errorf("ledger entry wrong: %+v", res.Token)
	}
	if res.Token.TransactionRef == "" {
		t.Errorf("ledger entry missing transaction ref")
	}
	if res.BadgeEarned != "" {
		t.Errorf("badge earned on first donation: %s", res.BadgeEarned)
	}
}

func TestPendingDonationDoesNotAccrue(t *testing.T) {
	env := newTestEnv(t)
	du := env.addUser(t, "donor1", "O-", "donor", 0, 0)
	pu := env.addUser(t, "patient1", "A+", "patient", 0, 0)
	d := env.addDonor(t, du.ID, true)
	p := env.addPatient(t, pu.ID, model.UrgencyMedium)

	_, err := env.accrual.RecordDonation(context.Background(), &model.DonationHistory{
		DonorID:   d.ID,
		PatientID: p.ID,
		Hospital:  "Aga Khan",
		Status:    model.DonationPending,
	})
	if err != nil {
		t.Fatalf("record pending donation: %v", err)
	}

	got, err := env.donors.GetByID(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("get donor: %v", err)
	}
	if got.TotalDonations != 0 || got.CurrentTokens != 0 {
		t.Errorf("pending donation accrued: %+v", got)
	}
}

func TestBadgeAwardedOnceAtThreshold(t *testing.T) {
	env := newTestEnv(t)
	du := env.addUser(t, "donor1", "O-", "donor", 0, 0)
	pu := env.addUser(t, "patient1", "A+", "patient", 0, 0)
	d := env.addDonor(t, du.ID, true)
	p := env.addPatient(t, pu.ID, model.UrgencyMedium)

	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		res := env.donate(t, d.ID, p.ID)
		if res.BadgeEarned != "" {
			t.Fatalf("badge earned at donation %d: %s", i, res.BadgeEarned)
		}
	}

	fifth := env.donate(t, d.ID, p.ID)
	if fifth.BadgeEarned != model.BadgeLifesaver {
		t.Fatalf("5th donation badge = %q, want %s", fifth.BadgeEarned, model.BadgeLifesaver)
	}
	if fifth.Donor.BadgeLevel != model.BadgeLifesaver {
		t.Errorf("badge level = %s, want %s", fifth.Donor.BadgeLevel, model.BadgeLifesaver)
	}

	sixth := env.donate(t, d.ID, p.ID)
	if sixth.BadgeEarned != "" {
		t.Errorf("6th donation re-awarded badge: %s", sixth.BadgeEarned)
	}

	badges, err := env.badges.ListByDonor(ctx, d.ID)
	if err != nil {
		t.Fatalf("list badges: %v", err)
	}
	if len(badges) != 1 || badges[0].BadgeType != model.BadgeLifesaver {
		t.Errorf("badge ledger = %+v, want single lifesaver", badges)
	}
}

func TestTokenConservation(t *testing.T) {
	env := newTestEnv(t)
	du := env.addUser(t, "donor1", "O-", "donor", 0, 0)
	pu := env.addUser(t, "patient1", "A+", "patient", 0, 0)
	d := env.addDonor(t, du.ID, true)
	p := env.addPatient(t, pu.ID, model.UrgencyMedium)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		env.donate(t, d.ID, p.ID)
	}

	reward := model.DonorReward{
		RewardType:     "health_checkup",
		RewardValue:    "Free checkup",
		Provider:       "Aga Khan",
		TokensRequired: 25,
		IsActive:       true,
	}
	if err := env.rewards.Create(ctx, &reward); err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if _, err := env.redemption.Redeem(ctx, d.ID, reward.ID); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	donor, err := env.donors.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("get donor: %v", err)
	}

	ledger, err := env.tokens.ListByDonor(ctx, d.ID)
	if err != nil {
		t.Fatalf("list tokens: %v", err)
	}
	earned := 0
	for _, e := range ledger {
		earned += e.TokenAmount
	}
	reds, err := env.rewards.ListRedemptionsByDonor(ctx, d.ID)
	if err != nil {
		t.Fatalf("list redemptions: %v", err)
	}
	spent := 0
	for _, r := range reds {
		spent += r.TokensSpent
	}

	if donor.TotalTokensEarned != earned {
		t.Errorf("lifetime earned %d != ledger sum %d", donor.TotalTokensEarned, earned)
	}
	if donor.CurrentTokens != earned-spent {
		t.Errorf("balance %d != earned %d - spent %d", donor.CurrentTokens, earned, spent)
	}
	if donor.CurrentTokens > donor.TotalTokensEarned {
		t.Errorf("balance above lifetime earned: %+v", donor)
	}
}

func TestRedeemInsufficientTokens(t *testing.T) {
	env := newTestEnv(t)
	du := env.addUser(t, "donor1", "O-", "donor", 0, 0)
	pu := env.addUser(t, "patient1", "A+", "patient", 0, 0)
	d := env.addDonor(t, du.ID, true)
	p := env.addPatient(t, pu.ID, model.UrgencyMedium)

	ctx := context.Background()
	env.donate(t, d.ID, p.ID) // balance 10

	reward := model.DonorReward{
		RewardType:     "insurance_discount",
		RewardValue:    "20% off",
		Provider:       "EFU",
		TokensRequired: 50,
		IsActive:       true,
	}
	if err := env.rewards.Create(ctx, &reward); err != nil {
		t.Fatalf("create reward: %v", err)
	}

	_, err := env.redemption.Redeem(ctx, d.ID, reward.ID)
	if !errors.Is(err, ErrInsufficientTokens) {
		t.Fatalf("err = %v, want ErrInsufficientTokens", err)
	}

	donor, err := env.donors.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("get donor: %v", err)
	}
	if donor.CurrentTokens != 10 {
		t.Errorf("failed redemption changed balance: %d", donor.CurrentTokens)
	}
	reds, err := env.rewards.ListRedemptionsByDonor(ctx, d.ID)
	if err != nil {
		t.Fatalf("list redemptions: %v", err)
	}
	if len(reds) != 0 {
		t.Errorf("failed redemption recorded: %+v", reds)
	}
}

func TestRedeemInactiveReward(t *testing.T) {
	env := newTestEnv(t)
	du := env.addUser(t, "donor1", "O-", "donor", 0, 0)
	pu := env.addUser(t, "patient1", "A+", "patient", 0, 0)
	d := env.addDonor(t, du.ID, true)
	p := env.addPatient(t, pu.ID, model.UrgencyMedium)
	env.donate(t, d.ID, p.ID)

	ctx := context.Background()
	reward := model.DonorReward{
		RewardType:     "hospital_voucher",
		RewardValue:    "500 PKR",
		Provider:       "Indus",
		TokensRequired: 5,
		IsActive:       false,
	}
	if err := env.rewards.Create(ctx, &reward); err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if _, err := env.redemption.Redeem(ctx, d.ID, reward.ID); !errors.Is(err, ErrRewardInactive) {
		t.Fatalf("err = %v, want ErrRewardInactive", err)
	}
}

func TestRedeemUnknownDonor(t *testing.T) {
	env := newTestEnv(t)

	ctx := context.Background()
	reward := model.DonorReward{
		RewardType:     "hospital_voucher",
		RewardValue:    "500 PKR",
		Provider:       "Indus",
		TokensRequired: 5,
		IsActive:       true,
	}
	if err := env.rewards.Create(ctx, &reward); err != nil {
		t.Fatalf("create reward: %v", err)
	}

	// A missing donor must not be reported as a balance problem.
	_, err := env.redemption.Redeem(ctx, 9999, reward.ID)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	reds, err := env.rewards.ListRedemptionsByDonor(ctx, 9999)
	if err != nil {
		t.Fatalf("list redemptions: %v", err)
	}
	if len(reds) != 0 {
		t.Errorf("redemption recorded for unknown donor: %+v", reds)
	}
}

func TestCreateMatchScoresPairing(t *testing.T) {
	env := newTestEnv(t)
	du := env.addUser(t, "donor1", "O-", "donor", 24.8607, 67.0011)
	pu := env.addUser(t, "patient1", "A+", "patient", 24.8138, 67.0300)
	d := env.addDonor(t, du.ID, true)
	p := env.addPatient(t, pu.ID, model.UrgencyHigh)

	ctx := context.Background()
	m, err := env.matching.CreateMatch(ctx, d.ID, p.ID, -1)
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	if m.Status != model.MatchPending {
		t.Errorf("new match status = %s", m.Status)
	}
	if m.CompatibilityScore != 85 {
		t.Errorf("compatibility = %d, want 85", m.CompatibilityScore)
	}
	if m.MatchScore <= 0 || m.MatchScore > 100 {
		t.Errorf("match score out of range: %d", m.MatchScore)
	}
	if m.DistanceKm <= 0 || m.DistanceKm > 15 {
		t.Errorf("derived distance implausible: %f", m.DistanceKm)
	}
}

func TestCreateMatchUnknownParties(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.matching.CreateMatch(context.Background(), 99, 99, 0); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	env := newTestEnv(t)
	du := env.addUser(t, "donor1", "A+", "donor", 0, 0)
	pu := env.addUser(t, "patient1", "A+", "patient", 0, 0)
	d := env.addDonor(t, du.ID, true)
	p := env.addPatient(t, pu.ID, model.UrgencyMedium)

	ctx := context.Background()
	m, err := env.matching.CreateMatch(ctx, d.ID, p.ID, 5)
	if err != nil {
		t.Fatalf("create match: %v", err)
	}

	when := time.Now().UTC().Add(48 * time.Hour)
	m, err = env.matching.Transition(ctx, m.ID, model.MatchConfirmed, &when)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if m.Status != model.MatchConfirmed || m.ScheduledDate == nil {
		t.Fatalf("confirmed state wrong: %+v", m)
	}

	// Completion requires a recorded donation for the pair.
	if _, err := env.matching.Transition(ctx, m.ID, model.MatchCompleted, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("complete without donation: err = %v, want ErrInvalidTransition", err)
	}

	env.donate(t, d.ID, p.ID)

	m, err = env.matching.Transition(ctx, m.ID, model.MatchCompleted, nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if m.Status != model.MatchCompleted {
		t.Errorf("status = %s, want completed", m.Status)
	}

	// Terminal states are frozen.
	if _, err := env.matching.Transition(ctx, m.ID, model.MatchCancelled, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("completed match cancelled: err = %v", err)
	}
}

func TestTransitionStaleStateLoses(t *testing.T) {
	env := newTestEnv(t)
	du := env.addUser(t, "donor1", "A+", "donor", 0, 0)
	pu := env.addUser(t, "patient1", "A+", "patient", 0, 0)
	d := env.addDonor(t, du.ID, true)
	p := env.addPatient(t, pu.ID, model.UrgencyMedium)

	ctx := context.Background()
	m, err := env.matching.CreateMatch(ctx, d.ID, p.ID, 5)
	if err != nil {
		t.Fatalf("create match: %v", err)
	}

	// A writer that validated against pending moves the match first.
	if _, err := env.matches.UpdateStatus(ctx, m.ID, model.MatchPending, model.MatchCancelled, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// The second writer still holds the pending snapshot; its write
	// must match zero rows rather than resurrect the match.
	when := time.Now().UTC().Add(48 * time.Hour)
	_, err = env.matches.UpdateStatus(ctx, m.ID, model.MatchPending, model.MatchConfirmed, &when)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("stale update: err = %v, want ErrNotFound", err)
	}

	got, err := env.matches.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if got.Status != model.MatchCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
}

func TestConfirmRequiresScheduleAndCompatibility(t *testing.T) {
	env := newTestEnv(t)
	du := env.addUser(t, "donor1", "A+", "donor", 0, 0)
	pu := env.addUser(t, "patient1", "B+", "patient", 0, 0) // incompatible
	d := env.addDonor(t, du.ID, true)
	p := env.addPatient(t, pu.ID, model.UrgencyMedium)

	ctx := context.Background()
	m, err := env.matching.CreateMatch(ctx, d.ID, p.ID, 5)
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	if m.CompatibilityScore != 0 || m.MatchScore != 0 {
		t.Fatalf("incompatible pair scored: %+v", m)
	}

	when := time.Now().UTC().Add(24 * time.Hour)
	if _, err := env.matching.Transition(ctx, m.ID, model.MatchConfirmed, &when); !errors.Is(err, ErrIncompatible) {
		t.Fatalf("incompatible confirm: err = %v, want ErrIncompatible", err)
	}

	// A compatible pending match still needs a schedule.
	du2 := env.addUser(t, "donor2", "B+", "donor", 0, 0)
	d2 := env.addDonor(t, du2.ID, true)
	m2, err := env.matching.CreateMatch(ctx, d2.ID, p.ID, 5)
	if err != nil {
		t.Fatalf("create second match: %v", err)
	}
	if _, err := env.matching.Transition(ctx, m2.ID, model.MatchConfirmed, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("unscheduled confirm: err = %v, want ErrInvalidTransition", err)
	}

	// Cancel works from pending.
	m2, err = env.matching.Transition(ctx, m2.ID, model.MatchCancelled, nil)
	if err != nil || m2.Status != model.MatchCancelled {
		t.Fatalf("cancel from pending failed: %v %+v", err, m2)
	}
}

func TestNextDonationDate(t *testing.T) {
	last := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	want := time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC)
	if got := NextDonationDate(last); !got.Equal(want) {
		t.Errorf("NextDonationDate = %v, want %v", got, want)
	}
}

func TestAssistantDeterministic(t *testing.T) {
	a := NewAssistant()
	for _, msg := range []string{
		"What is thalassemia?",
		"How do I earn tokens?",
		"When can I donate blood?",
		"how does matching work",
		"completely unrelated question",
	} {
		first := a.Reply(msg)
		if first == "" {
			t.Fatalf("empty reply for %q", msg)
		}
		if second := a.Reply(msg); second != first {
			t.Errorf("nondeterministic reply for %q", msg)
		}
	}
	if a.Reply("tell me about tokens") == a.Reply("what is thalassemia") {
		t.Errorf("distinct topics share a reply")
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pu := env.addUser(t, "patient1", "A+", "patient", 0, 0)
	p := env.addPatient(t, pu.ID, model.UrgencyMedium)

	counts := []int{2, 5, 3}
	for i, n := range counts {
		u := env.addUser(t, fmt.Sprintf("donor%d", i+1), "O-", "donor", 0, 0)
		d := env.addDonor(t, u.ID, true)
		for j := 0; j < n; j++ {
			env.donate(t, d.ID, p.ID)
		}
	}

	entries, err := env.donors.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	if entries[0].TotalDonations != 5 || entries[1].TotalDonations != 3 || entries[2].TotalDonations != 2 {
		t.Errorf("wrong ordering: %+v", entries)
	}
	for i, e := range entries {
		if e.Rank != i+1 {
			t.Errorf("rank[%d] = %d", i, e.Rank)
		}
	}
}
