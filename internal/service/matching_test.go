package service

import (
	"testing"

	"github.com/blood-uber/server/internal/model"
)

func TestCompatibilityTable(t *testing.T) {
	groups := []string{"O-", "O+", "A-", "A+", "B-", "B+", "AB-", "AB+"}

	// O- gives to everyone; AB+ receives from everyone.
	for _, g := range groups {
		if !Compatible("O-", g) {
			t.Errorf("O- should donate to %s", g)
		}
		if !Compatible(g, "AB+") {
			t.Errorf("AB+ should receive from %s", g)
		}
	}

	// AB+ gives only to AB+.
	for _, g := range groups {
		want := g == "AB+"
		if got := Compatible("AB+", g); got != want {
			t.Errorf("AB+ -> %s = %v, want %v", g, got, want)
		}
	}

	// Rh-positive never donates to Rh-negative.
	for _, pair := range [][2]string{{"A+", "A-"}, {"B+", "B-"}, {"O+", "O-"}, {"AB+", "AB-"}} {
		if Compatible(pair[0], pair[1]) {
			t.Errorf("%s -> %s should be incompatible", pair[0], pair[1])
		}
	}

	// ABO mismatches.
	if Compatible("A+", "B+") || Compatible("B-", "A-") {
		t.Errorf("A/B cross-donation should be incompatible")
	}
}

func TestCompatibilityScore(t *testing.T) {
	if got := CompatibilityScore("A+", "A+"); got != 100 {
		t.Errorf("exact match score = %d, want 100", got)
	}
	if got := CompatibilityScore("O-", "A+"); got != 85 {
		t.Errorf("compatible non-exact score = %d, want 85", got)
	}
	if got := CompatibilityScore("A+", "B+"); got != 0 {
		t.Errorf("incompatible score = %d, want 0", got)
	}
}

func TestMatchScoreDeterministic(t *testing.T) {
	a := MatchScore("A+", "A+", 10, true, model.UrgencyHigh)
	b := MatchScore("A+", "A+", 10, true, model.UrgencyHigh)
	if a != b {
		t.Fatalf("same inputs gave different scores: %d vs %d", a, b)
	}
	if a < 0 || a > 100 {
		t.Fatalf("score out of range: %d", a)
	}
}

func TestMatchScoreIncompatibleIsZero(t *testing.T) {
	if got := MatchScore("A+", "B+", 0, true, model.UrgencyHigh); got != 0 {
		t.Errorf("incompatible pairing scored %d, want 0", got)
	}
}

func TestMatchScoreOrdering(t *testing.T) {
	// Exact match beats merely compatible, all else equal.
	exact := MatchScore("A+", "A+", 10, true, model.UrgencyMedium)
	compat := MatchScore("O-", "A+", 10, true, model.UrgencyMedium)
	if exact <= compat {
		t.Errorf("exact (%d) should outrank compatible (%d)", exact, compat)
	}

	// Closer donors score higher.
	near := MatchScore("A+", "A+", 2, true, model.UrgencyMedium)
	far := MatchScore("A+", "A+", 45, true, model.UrgencyMedium)
	if near <= far {
		t.Errorf("near (%d) should outrank far (%d)", near, far)
	}

	// Beyond the decay radius the distance component flattens to zero.
	at50 := MatchScore("A+", "A+", 50, true, model.UrgencyMedium)
	at80 := MatchScore("A+", "A+", 80, true, model.UrgencyMedium)
	if at50 != at80 {
		t.Errorf("distance beyond radius should not differentiate: %d vs %d", at50, at80)
	}

	// Higher urgency scores higher.
	high := MatchScore("A+", "A+", 10, true, model.UrgencyHigh)
	low := MatchScore("A+", "A+", 10, true, model.UrgencyLow)
	if high <= low {
		t.Errorf("high urgency (%d) should outrank low (%d)", high, low)
	}

	// Active donors score higher.
	active := MatchScore("A+", "A+", 10, true, model.UrgencyMedium)
	inactive := MatchScore("A+", "A+", 10, false, model.UrgencyMedium)
	if active <= inactive {
		t.Errorf("active (%d) should outrank inactive (%d)", active, inactive)
	}
}

func TestDistanceKm(t *testing.T) {
	// Karachi city center to Clifton, roughly 5-8km.
	d := DistanceKm(24.8607, 67.0011, 24.8138, 67.0300)
	if d < 3 || d > 12 {
		t.Errorf("implausible distance: %f", d)
	}
	if z := DistanceKm(24.8607, 67.0011, 24.8607, 67.0011); z != 0 {
		t.Errorf("zero distance expected, got %f", z)
	}
}
