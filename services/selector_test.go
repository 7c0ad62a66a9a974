package services

import (
	"math/rand"
	"strings"
	"testing"
	"time"
)

func eligiblePool(n int) []Candidate {
	pool := make([]Candidate, 0, n)
	for i := 1; i <= n; i++ {
		pool = append(pool, Candidate{
			UserID:  uint(i),
			Email:   string(rune('a'+i)) + "@example.com",
			Enabled: true,
			Score:   float64(i) / float64(n),
		})
	}
	return pool
}

func reasonsByUser(excluded []Exclusion) map[uint]string {
	out := make(map[uint]string, len(excluded))
	for _, e := range excluded {
		out[e.UserID] = e.Reason
	}
	return out
}

func TestSelectCandidatesExcludesOrigin(t *testing.T) {
	pool := eligiblePool(5)
	picked, excluded := SelectCandidates(pool, SelectionInput{
		OriginID: 3,
		Top:      5,
		Rand:     rand.New(rand.NewSource(1)),
	})

	for _, c := range picked {
		if c.UserID == 3 {
			t.Fatal("origin user was selected")
		}
	}
	if reasonsByUser(excluded)[3] != ReasonSelf {
		t.Fatalf("origin exclusion reason = %q, want %q", reasonsByUser(excluded)[3], ReasonSelf)
	}
}

func TestSelectCandidatesTopPlusRandomDistinct(t *testing.T) {
	pool := eligiblePool(10)
	picked, _ := SelectCandidates(pool, SelectionInput{
		OriginID: 99,
		Top:      2,
		Random:   2,
		Rand:     rand.New(rand.NewSource(42)),
	})

	if len(picked) != 4 {
		t.Fatalf("picked %d candidates, want 4", len(picked))
	}

	seen := map[uint]bool{}
	for _, c := range picked {
		if seen[c.UserID] {
			t.Fatalf("user %d picked twice", c.UserID)
		}
		seen[c.UserID] = true
	}

	// Scores rise with ID in the fixture, so the top slots hold the two
	// highest IDs.
	if picked[0].UserID != 10 || picked[1].UserID != 9 {
		t.Fatalf("top slots = %d,%d, want 10,9", picked[0].UserID, picked[1].UserID)
	}
	for _, c := range picked[2:] {
		if c.UserID == 10 || c.UserID == 9 {
			t.Fatalf("random slot reused a top candidate (%d)", c.UserID)
		}
	}
}

func TestSelectCandidatesFiveEligibleTopTwoRandomTwo(t *testing.T) {
	pool := eligiblePool(5)
	picked, _ := SelectCandidates(pool, SelectionInput{
		OriginID: 99,
		Top:      2,
		Random:   2,
		Rand:     rand.New(rand.NewSource(11)),
	})

	if len(picked) != 4 {
		t.Fatalf("picked %d candidates, want 4", len(picked))
	}
	seen := map[uint]bool{}
	for _, c := range picked {
		if seen[c.UserID] {
			t.Fatalf("user %d picked twice", c.UserID)
		}
		seen[c.UserID] = true
	}
}

func TestSelectCandidatesTieBreaksLowerID(t *testing.T) {
	pool := []Candidate{
		{UserID: 7, Email: "g@example.com", Enabled: true, Score: 0.5},
		{UserID: 2, Email: "b@example.com", Enabled: true, Score: 0.5},
		{UserID: 5, Email: "e@example.com", Enabled: true, Score: 0.9},
	}
	picked, _ := SelectCandidates(pool, SelectionInput{OriginID: 99, Top: 2})

	if picked[0].UserID != 5 {
		t.Fatalf("first pick = %d, want 5 (highest score)", picked[0].UserID)
	}
	if picked[1].UserID != 2 {
		t.Fatalf("second pick = %d, want 2 (tie resolved to lower ID)", picked[1].UserID)
	}
}

func TestSelectCandidatesExclusionPipeline(t *testing.T) {
	pool := []Candidate{
		{UserID: 1, Email: "origin@example.com", Enabled: true, Score: 1},
		{UserID: 2, Email: "notified@example.com", Enabled: true, Score: 1},
		{UserID: 3, Email: "disabled@example.com", Enabled: false, Score: 1},
		{UserID: 4, Email: "", Enabled: true, Score: 1},
		{UserID: 5, Email: "shared@example.com", Enabled: true, Score: 1},
		{UserID: 6, Email: "SHARED@example.com", Enabled: true, Score: 0.9},
		{UserID: 7, Email: "busy@example.com", Enabled: true, Score: 1},
		{UserID: 8, Email: "nomatch@example.com", Enabled: true, Score: 1},
		{UserID: 9, Email: "ok@example.com", Enabled: true, Score: 0.3},
	}

	picked, excluded := SelectCandidates(pool, SelectionInput{
		OriginID:           1,
		Top:                10,
		AlreadyNotified:    map[uint]bool{2: true},
		Conflicted:         map[uint]bool{7: true},
		PreferenceMatch:    map[uint]bool{5: true, 9: true},
		EnforcePreferences: true,
		Rand:               rand.New(rand.NewSource(7)),
	})

	reasons := reasonsByUser(excluded)
	want := map[uint]string{
		1: ReasonSelf,
		2: ReasonAlreadyNotified,
		3: ReasonDisabled,
		4: ReasonNoEmail,
		6: ReasonDuplicateEmail,
		7: ReasonScheduleConflict,
		8: ReasonPreferenceMismatch,
	}
	for id, reason := range want {
		if reasons[id] != reason {
			t.Errorf("user %d excluded for %q, want %q", id, reasons[id], reason)
		}
	}

	if len(picked) != 2 {
		t.Fatalf("picked %d candidates, want 2 (users 5 and 9)", len(picked))
	}
	if picked[0].UserID != 5 || picked[1].UserID != 9 {
		t.Fatalf("picked %d,%d, want 5,9", picked[0].UserID, picked[1].UserID)
	}
}

func TestSelectCandidatesDuplicateEmailKeepsFirst(t *testing.T) {
	pool := []Candidate{
		{UserID: 1, Email: "same@example.com", Enabled: true, Score: 0.9},
		{UserID: 2, Email: "Same@Example.com", Enabled: true, Score: 0.8},
	}
	picked, excluded := SelectCandidates(pool, SelectionInput{OriginID: 99, Top: 5})

	if len(picked) != 1 || picked[0].UserID != 1 {
		t.Fatalf("expected only user 1 to survive, got %v", picked)
	}
	if reasonsByUser(excluded)[2] != ReasonDuplicateEmail {
		t.Fatal("user 2 should be excluded as a duplicate email")
	}
}

func TestSelectCandidatesRandomIsUniformAcrossSeeds(t *testing.T) {
	pool := eligiblePool(8)
	counts := map[uint]int{}
	for seed := int64(0); seed < 200; seed++ {
		picked, _ := SelectCandidates(pool, SelectionInput{
			OriginID: 99,
			Top:      0,
			Random:   1,
			Rand:     rand.New(rand.NewSource(seed)),
		})
		if len(picked) != 1 {
			t.Fatalf("picked %d, want 1", len(picked))
		}
		counts[picked[0].UserID]++
	}

	// Every member of the pool should be drawn at least once over 200 seeds
	for i := 1; i <= 8; i++ {
		if counts[uint(i)] == 0 {
			t.Fatalf("user %d never drawn in 200 random selections", i)
		}
	}
}

func TestNotifyGateTriggerCounts(t *testing.T) {
	now := time.Now()
	triggers := []int{1, 3}

	if skip := notifyGate(1, time.Time{}, now, 3*time.Hour, triggers); skip != "" {
		t.Fatalf("count 1 should pass the gate, got %q", skip)
	}
	if skip := notifyGate(2, time.Time{}, now, 3*time.Hour, triggers); skip == "" {
		t.Fatal("count 2 is outside the trigger set and should be skipped")
	}
	if skip := notifyGate(4, time.Time{}, now, 3*time.Hour, triggers); skip == "" {
		t.Fatal("a full slot should not fan out")
	}
}

func TestNotifyGateCooldownSuppresses(t *testing.T) {
	now := time.Now()
	cooldown := 3 * time.Hour

	skip := notifyGate(1, now.Add(-time.Hour), now, cooldown, []int{1, 3})
	if skip == "" {
		t.Fatal("a burst one hour ago must suppress the next within a 3h cooldown")
	}
	if !strings.Contains(skip, "cooldown") {
		t.Fatalf("skip reason %q should name the cooldown", skip)
	}
}

func TestNotifyGateCooldownElapsed(t *testing.T) {
	now := time.Now()
	if skip := notifyGate(1, now.Add(-4*time.Hour), now, 3*time.Hour, []int{1, 3}); skip != "" {
		t.Fatalf("elapsed cooldown should open the gate, got %q", skip)
	}
}

func TestNotifyGateNoPriorBurst(t *testing.T) {
	// Zero lastSent means no successful burst yet: only the trigger set gates
	if skip := notifyGate(3, time.Time{}, time.Now(), 3*time.Hour, []int{1, 3}); skip != "" {
		t.Fatalf("first burst should pass, got %q", skip)
	}
}

func TestSelectCandidatesFewerEligibleThanRequested(t *testing.T) {
	pool := eligiblePool(2)
	picked, _ := SelectCandidates(pool, SelectionInput{
		OriginID: 99,
		Top:      5,
		Random:   5,
		Rand:     rand.New(rand.NewSource(3)),
	})
	if len(picked) != 2 {
		t.Fatalf("picked %d, want all 2 eligible", len(picked))
	}
}
