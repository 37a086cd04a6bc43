package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/blood-uber/server/internal/model"
	"github.com/blood-uber/server/internal/testutil"
)

func seedUser(t *testing.T, repo *UserRepo, name, bloodGroup, userType string) model.User {
	t.Helper()
	u := model.User{
		Username:   name,
		Email:      name + "@example.com",
		FirstName:  name,
		LastName:   "Test",
		BloodGroup: bloodGroup,
		UserType:   userType,
		Location:   "Karachi",
	}
	if err := repo.Create(context.Background(), &u); err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

func TestUserCreateGetUpdate(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	u := seedUser(t, repo, "amina", "A+", "donor")
	if u.ID == 0 {
		t.Fatalf("id not populated")
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Email != "amina@example.com" || got.BloodGroup != "A+" {
		t.Errorf("stored user wrong: %+v", got)
	}

	byEmail, err := repo.GetByEmail(ctx, " AMINA@example.com ")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("email lookup returned wrong user")
	}

	loc := "Lahore"
	verified := true
	upd, err := repo.Update(ctx, u.ID, UserUpdate{Location: &loc, IsVerified: &verified})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Location != "Lahore" || !upd.IsVerified {
		t.Errorf("update not applied: %+v", upd)
	}
	if upd.Username != "amina" {
		t.Errorf("untouched column changed: %+v", upd)
	}
}

func TestUserNotFoundAndDuplicate(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, 12345); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id: err = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing email: err = %v, want ErrNotFound", err)
	}

	seedUser(t, repo, "amina", "A+", "donor")
	dup := model.User{
		Username:   "amina",
		Email:      "other@example.com",
		FirstName:  "Amina",
		LastName:   "Test",
		BloodGroup: "A+",
		UserType:   "donor",
		Location:   "Karachi",
	}
	if err := repo.Create(ctx, &dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate username: err = %v, want ErrDuplicate", err)
	}
}

func TestDonorBloodGroupFilter(t *testing.T) {
	db := testutil.OpenDB(t)
	users := NewUserRepo(db)
	donors := NewDonorRepo(db)
	ctx := context.Background()

	mk := func(name, bg string, active bool) {
		u := seedUser(t, users, name, bg, "donor")
		d := model.Donor{UserID: u.ID, IsActive: active, BadgeLevel: model.BadgeNovice}
		if err := donors.Create(ctx, &d); err != nil {
			t.Fatalf("create donor %s: %v", name, err)
		}
	}
	mk("apos1", "A+", true)
	mk("apos2", "A+", true)
	mk("apos3", "A+", false) // inactive, excluded
	mk("oneg", "O-", true)   // compatible but not exact, excluded
	mk("bpos", "B+", true)

	got, err := donors.ListByBloodGroup(ctx, "A+")
	if err != nil {
		t.Fatalf("list by blood group: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("result count = %d, want 2", len(got))
	}
	for _, d := range got {
		if d.User.BloodGroup != "A+" {
			t.Errorf("wrong blood group in result: %+v", d.User)
		}
		if !d.IsActive {
			t.Errorf("inactive donor returned: %+v", d)
		}
		if d.User.ID == 0 || d.User.Username == "" {
			t.Errorf("joined user not populated: %+v", d)
		}
	}
}

func TestDonorGetByUserID(t *testing.T) {
	db := testutil.OpenDB(t)
	users := NewUserRepo(db)
	donors := NewDonorRepo(db)
	ctx := context.Background()

	u := seedUser(t, users, "amina", "A+", "donor")
	d := model.Donor{UserID: u.ID, IsActive: true, BadgeLevel: model.BadgeNovice}
	if err := donors.Create(ctx, &d); err != nil {
		t.Fatalf("create donor: %v", err)
	}

	got, err := donors.GetByUserID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get by user id: %v", err)
	}
	if got.ID != d.ID {
		t.Errorf("wrong donor: %+v", got)
	}

	if _, err := donors.GetByUserID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing donor: err = %v, want ErrNotFound", err)
	}

	dup := model.Donor{UserID: u.ID, IsActive: true, BadgeLevel: model.BadgeNovice}
	if err := donors.Create(ctx, &dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second profile for user: err = %v, want ErrDuplicate", err)
	}
}

func TestMessageThreadOrdering(t *testing.T) {
	db := testutil.OpenDB(t)
	users := NewUserRepo(db)
	messages := NewMessageRepo(db)
	ctx := context.Background()

	a := seedUser(t, users, "amina", "A+", "donor")
	b := seedUser(t, users, "bilal", "B+", "patient")

	texts := []struct {
		from, to uint64
		body     string
	}{
		{a.ID, b.ID, "salaam"},
		{b.ID, a.ID, "wa alaikum"},
		{a.ID, b.ID, "can you donate on friday?"},
	}
	for _, m := range texts {
		msg := model.Message{SenderID: m.from, RecipientID: m.to, Content: m.body}
		if err := messages.Create(ctx, &msg); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}

	thread, err := messages.ListBetween(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("list between: %v", err)
	}
	if len(thread) != 3 {
		t.Fatalf("thread length = %d, want 3", len(thread))
	}
	for i, want := range texts {
		if thread[i].Content != want.body {
			t.Errorf("thread[%d] = %q, want %q", i, thread[i].Content, want.body)
		}
	}

	// Reversed argument order returns the same thread.
	rev, err := messages.ListBetween(ctx, b.ID, a.ID)
	if err != nil {
		t.Fatalf("list between reversed: %v", err)
	}
	if len(rev) != 3 || rev[0].Content != thread[0].Content {
		t.Errorf("direction-dependent thread")
	}
}

func TestConversationsLatestPerCounterpart(t *testing.T) {
	db := testutil.OpenDB(t)
	users := NewUserRepo(db)
	messages := NewMessageRepo(db)
	ctx := context.Background()

	me := seedUser(t, users, "amina", "A+", "donor")
	b := seedUser(t, users, "bilal", "B+", "patient")
	c := seedUser(t, users, "chandni", "O-", "patient")

	send := func(from, to uint64, body string) {
		m := model.Message{SenderID: from, RecipientID: to, Content: body}
		if err := messages.Create(ctx, &m); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}
	send(me.ID, b.ID, "first to bilal")
	send(b.ID, me.ID, "reply from bilal")
	send(me.ID, c.ID, "first to chandni")
	send(me.ID, b.ID, "latest to bilal")

	convs, err := messages.ConversationsForUser(ctx, me.ID)
	if err != nil {
		t.Fatalf("conversations: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("conversations = %d, want 2", len(convs))
	}
	// Most recent thread first, each with the latest message only.
	if convs[0].User.ID != b.ID || convs[0].LastMessage.Content != "latest to bilal" {
		t.Errorf("first conversation wrong: %+v", convs[0])
	}
	if convs[1].User.ID != c.ID || convs[1].LastMessage.Content != "first to chandni" {
		t.Errorf("second conversation wrong: %+v", convs[1])
	}
}

func TestMarkRead(t *testing.T) {
	db := testutil.OpenDB(t)
	users := NewUserRepo(db)
	messages := NewMessageRepo(db)
	ctx := context.Background()

	me := seedUser(t, users, "amina", "A+", "donor")
	b := seedUser(t, users, "bilal", "B+", "patient")

	for i := 0; i < 3; i++ {
		m := model.Message{SenderID: b.ID, RecipientID: me.ID, Content: fmt.Sprintf("msg %d", i)}
		if err := messages.Create(ctx, &m); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}
	out := model.Message{SenderID: me.ID, RecipientID: b.ID, Content: "outgoing"}
	if err := messages.Create(ctx, &out); err != nil {
		t.Fatalf("create outgoing: %v", err)
	}

	n, err := messages.MarkRead(ctx, me.ID, b.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if n != 3 {
		t.Errorf("marked %d, want 3", n)
	}

	// Second call is a no-op.
	n, err = messages.MarkRead(ctx, me.ID, b.ID)
	if err != nil {
		t.Fatalf("mark read again: %v", err)
	}
	if n != 0 {
		t.Errorf("re-marked %d, want 0", n)
	}

	thread, err := messages.ListBetween(ctx, me.ID, b.ID)
	if err != nil {
		t.Fatalf("list between: %v", err)
	}
	for _, m := range thread {
		if m.SenderID == b.ID && !m.IsRead {
			t.Errorf("incoming message still unread: %+v", m)
		}
		if m.SenderID == me.ID && m.IsRead {
			t.Errorf("outgoing message flipped: %+v", m)
		}
	}
}

func TestDonationHistoryJoinsPatient(t *testing.T) {
	db := testutil.OpenDB(t)
	users := NewUserRepo(db)
	donors := NewDonorRepo(db)
	patients := NewPatientRepo(db)
	donations := NewDonationRepo(db)
	ctx := context.Background()

	du := seedUser(t, users, "donor1", "O-", "donor")
	pu := seedUser(t, users, "patient1", "A+", "patient")
	d := model.Donor{UserID: du.ID, IsActive: true, BadgeLevel: model.BadgeNovice}
	if err := donors.Create(ctx, &d); err != nil {
		t.Fatalf("create donor: %v", err)
	}
	p := model.Patient{UserID: pu.ID, Condition: "thalassemia", UrgencyLevel: model.UrgencyMedium}
	if err := patients.Create(ctx, &p); err != nil {
		t.Fatalf("create patient: %v", err)
	}

	for i := 0; i < 2; i++ {
		dh := model.DonationHistory{
			DonorID:      d.ID,
			PatientID:    p.ID,
			DonationDate: time.Now().UTC().Add(time.Duration(i) * time.Hour),
			AmountMl:     450,
			Hospital:     "Aga Khan",
			Status:       model.DonationCompleted,
			TokensEarned: 10,
		}
		if err := donations.Create(ctx, &dh); err != nil {
			t.Fatalf("create donation: %v", err)
		}
	}

	list, err := donations.ListByDonor(ctx, d.ID)
	if err != nil {
		t.Fatalf("list by donor: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("history length = %d, want 2", len(list))
	}
	for _, e := range list {
		if e.Patient.FirstName != "patient1" || e.Patient.BloodGroup != "A+" {
			t.Errorf("joined patient wrong: %+v", e.Patient)
		}
	}

	done, err := donations.HasCompletedForPair(ctx, d.ID, p.ID)
	if err != nil || !done {
		t.Errorf("HasCompletedForPair = %v, %v", done, err)
	}
	done, err = donations.HasCompletedForPair(ctx, d.ID, 999)
	if err != nil || done {
		t.Errorf("unknown pair reported completed")
	}
}

func TestRewardCatalogAndRedemptions(t *testing.T) {
	db := testutil.OpenDB(t)
	rewards := NewRewardRepo(db)
	ctx := context.Background()

	mk := func(typ string, cost int, active bool) model.DonorReward {
		r := model.DonorReward{
			RewardType:     typ,
			RewardValue:    "value",
			Provider:       "provider",
			TokensRequired: cost,
			IsActive:       active,
		}
		if err := rewards.Create(ctx, &r); err != nil {
			t.Fatalf("create reward: %v", err)
		}
		return r
	}
	mk("health_checkup", 30, true)
	mk("hospital_voucher", 10, true)
	mk("insurance_discount", 5, false)

	active, err := rewards.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active rewards = %d, want 2", len(active))
	}
	if active[0].TokensRequired != 10 || active[1].TokensRequired != 30 {
		t.Errorf("not ordered cheapest first: %+v", active)
	}
}

func TestPredictionLatest(t *testing.T) {
	db := testutil.OpenDB(t)
	users := NewUserRepo(db)
	patients := NewPatientRepo(db)
	predictions := NewPredictionRepo(db)
	ctx := context.Background()

	pu := seedUser(t, users, "patient1", "A+", "patient")
	p := model.Patient{UserID: pu.ID, Condition: "thalassemia", UrgencyLevel: model.UrgencyHigh}
	if err := patients.Create(ctx, &p); err != nil {
		t.Fatalf("create patient: %v", err)
	}

	if _, err := predictions.GetLatestByPatient(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("no forecast: err = %v, want ErrNotFound", err)
	}

	for i, score := range []int{4, 7} {
		pr := model.MLPrediction{
			PatientID:         p.ID,
			NextRequiredDate:  time.Now().UTC().AddDate(0, 0, 14),
			UrgencyScore:      score,
			PredictedAmountMl: 450,
			ConfidenceLevel:   80 + i,
			FactorsConsidered: []string{"transfusion interval", "hemoglobin trend"},
			Recommendations:   []string{"schedule within two weeks"},
		}
		if err := predictions.Create(ctx, &pr); err != nil {
			t.Fatalf("create prediction: %v", err)
		}
	}

	latest, err := predictions.GetLatestByPatient(ctx, p.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.UrgencyScore != 7 {
		t.Errorf("latest urgency = %d, want 7", latest.UrgencyScore)
	}
	if len(latest.FactorsConsidered) != 2 || len(latest.Recommendations) != 1 {
		t.Errorf("string lists not round-tripped: %+v", latest)
	}
}
