package services

import (
	"testing"
	"time"
)

func TestCooldownWindowDefault(t *testing.T) {
	t.Setenv("MATCH_COOLDOWN_MINUTES", "")
	if got := CooldownWindow(); got != 180*time.Minute {
		t.Fatalf("default cooldown = %v, want 180m", got)
	}
}

func TestCooldownWindowFromEnv(t *testing.T) {
	t.Setenv("MATCH_COOLDOWN_MINUTES", "45")
	if got := CooldownWindow(); got != 45*time.Minute {
		t.Fatalf("cooldown = %v, want 45m", got)
	}
}

func TestTriggerCountsDefault(t *testing.T) {
	t.Setenv("MATCH_TRIGGER_COUNTS", "")
	got := TriggerCounts()
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("default trigger counts = %v, want [1 3]", got)
	}
}

func TestTriggerCountsParsed(t *testing.T) {
	t.Setenv("MATCH_TRIGGER_COUNTS", "2, 4,6")
	got := TriggerCounts()
	if len(got) != 3 || got[0] != 2 || got[1] != 4 || got[2] != 6 {
		t.Fatalf("trigger counts = %v, want [2 4 6]", got)
	}
}

func TestTriggerCountsGarbageFallsBack(t *testing.T) {
	t.Setenv("MATCH_TRIGGER_COUNTS", "x,y")
	got := TriggerCounts()
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("trigger counts = %v, want default [1 3]", got)
	}
}

func TestEnforcePreferences(t *testing.T) {
	t.Setenv("MATCH_ENFORCE_PREFERENCES", "")
	if EnforcePreferences() {
		t.Fatal("preference enforcement should be off by default")
	}
	t.Setenv("MATCH_ENFORCE_PREFERENCES", "true")
	if !EnforcePreferences() {
		t.Fatal("preference enforcement should be on")
	}
}
