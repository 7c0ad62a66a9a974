package services

import (
	"encoding/json"
	"math"
	"testing"

	"courtside-server/models"

	"gorm.io/datatypes"
)

func mustJSON(t *testing.T, v interface{}) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return datatypes.JSON(raw)
}

func testPreference(t *testing.T, days []string, slots []uint, courts []uint) models.Preference {
	t.Helper()
	return models.Preference{
		Days:        mustJSON(t, days),
		ScheduleIDs: mustJSON(t, slots),
		CourtIDs:    mustJSON(t, courts),
	}
}

func TestVectorizerSize(t *testing.T) {
	v := NewVectorizer(WeekDays, []uint{1, 2, 3}, []uint{1, 2})
	if got, want := v.Size(), len(WeekDays)+3+2; got != want {
		t.Fatalf("size = %d, want %d", got, want)
	}
}

func TestVectorizerFoldsAllSets(t *testing.T) {
	v := NewVectorizer(WeekDays, []uint{1, 2}, []uint{1})
	prefs := []models.Preference{
		testPreference(t, []string{"Monday"}, []uint{1}, nil),
		testPreference(t, []string{"Wednesday"}, []uint{2}, []uint{1}),
	}

	vec := v.Vector(prefs)
	set := 0
	for _, x := range vec {
		if x > 0 {
			set++
		}
	}
	if set != 5 {
		t.Fatalf("expected 5 set bits, got %d (%v)", set, vec)
	}
}

func TestVectorizerIgnoresUnknownEntries(t *testing.T) {
	v := NewVectorizer(WeekDays, []uint{1}, []uint{1})
	prefs := []models.Preference{
		testPreference(t, []string{"Monday"}, []uint{99}, []uint{42}),
	}

	vec := v.Vector(prefs)
	set := 0
	for _, x := range vec {
		if x > 0 {
			set++
		}
	}
	if set != 1 {
		t.Fatalf("expected only the day bit, got %d set bits", set)
	}
}

func TestVectorizerEmptyPreferences(t *testing.T) {
	v := NewVectorizer(WeekDays, []uint{1, 2}, []uint{1})
	vec := v.Vector(nil)
	for i, x := range vec {
		if x != 0 {
			t.Fatalf("expected zero vector, bit %d is set", i)
		}
	}
}

func TestSimilarityIdenticalVectors(t *testing.T) {
	a := []float64{1, 0, 1, 1, 0}
	if got := Similarity(a, a); got != 1.0 {
		t.Fatalf("Similarity(a, a) = %v, want 1.0", got)
	}
}

func TestSimilarityZeroVectors(t *testing.T) {
	a := []float64{0, 0, 0}
	b := []float64{0, 0, 0}
	if got := Similarity(a, b); got != 0.0 {
		t.Fatalf("Similarity of zero vectors = %v, want 0.0", got)
	}
	if got := Similarity(a, []float64{1, 1, 0}); got != 0.0 {
		t.Fatalf("Similarity with one zero vector = %v, want 0.0", got)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	a := []float64{1, 1, 0, 1, 0, 0}
	b := []float64{0, 1, 1, 1, 0, 1}
	if Similarity(a, b) != Similarity(b, a) {
		t.Fatalf("similarity is not symmetric")
	}
}

func TestSimilarityPartialOverlap(t *testing.T) {
	v := NewVectorizer(WeekDays, []uint{1, 2, 3}, []uint{1})
	va := v.Vector([]models.Preference{
		testPreference(t, []string{"Monday", "Wednesday"}, []uint{1, 2}, []uint{1}),
	})
	vb := v.Vector([]models.Preference{
		testPreference(t, []string{"Monday"}, []uint{2, 3}, []uint{1}),
	})

	// intersection {Monday, slot 2, court 1}, union has 6 members
	if got := Similarity(va, vb); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("Similarity = %v, want 0.5", got)
	}
}

func TestHistoryScoreSaturates(t *testing.T) {
	cases := []struct {
		shared int
		want   float64
	}{
		{0, 0.0},
		{-1, 0.0},
		{1, 0.2},
		{3, 0.6},
		{5, 1.0},
		{9, 1.0},
	}
	for _, tc := range cases {
		if got := HistoryScore(tc.shared); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("HistoryScore(%d) = %v, want %v", tc.shared, got, tc.want)
		}
	}
}

func TestBlendScore(t *testing.T) {
	// alpha 0.6 over S=1.0, J=0.6
	if got := BlendScore(0.6, 0.4, 1.0, 0.6); math.Abs(got-0.84) > 1e-12 {
		t.Fatalf("BlendScore = %v, want 0.84", got)
	}
	// equal weights
	if got := BlendScore(0.5, 0.5, 0.8, 0.4); math.Abs(got-0.6) > 1e-12 {
		t.Fatalf("BlendScore = %v, want 0.6", got)
	}
}

func TestValidDay(t *testing.T) {
	if !ValidDay("Monday") {
		t.Fatal("Monday should be valid")
	}
	if ValidDay("Funday") {
		t.Fatal("Funday should not be valid")
	}
	if ValidDay("monday") {
		t.Fatal("day names are case sensitive")
	}
}

func TestNormalizePair(t *testing.T) {
	a, b := models.NormalizePair(9, 3)
	if a != 3 || b != 9 {
		t.Fatalf("NormalizePair(9,3) = (%d,%d), want (3,9)", a, b)
	}
	a, b = models.NormalizePair(3, 9)
	if a != 3 || b != 9 {
		t.Fatalf("NormalizePair(3,9) = (%d,%d), want (3,9)", a, b)
	}
}
