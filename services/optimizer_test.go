package services

import (
	"math"
	"testing"
)

func TestFitAlphaTooFewSamples(t *testing.T) {
	alpha, ok := FitAlpha([]PairSample{
		{S: 0.9, J: 0.1, Outcome: 1},
		{S: 0.2, J: 0.8, Outcome: 0},
	})
	if ok {
		t.Fatal("expected ok=false below the sample minimum")
	}
	if alpha != DefaultAlpha {
		t.Fatalf("alpha = %v, want default %v", alpha, DefaultAlpha)
	}
}

func TestFitAlphaRecoversKnownWeight(t *testing.T) {
	// Outcomes generated from alpha=0.7 exactly; the grid contains 0.7, so
	// the fit should land on it with zero error.
	const trueAlpha = 0.7
	samples := []PairSample{
		{S: 1.0, J: 0.0},
		{S: 0.0, J: 1.0},
		{S: 0.8, J: 0.2},
		{S: 0.3, J: 0.9},
		{S: 0.5, J: 0.5},
	}
	for i := range samples {
		samples[i].Outcome = trueAlpha*samples[i].S + (1-trueAlpha)*samples[i].J
	}

	alpha, ok := FitAlpha(samples)
	if !ok {
		t.Fatal("expected a successful fit")
	}
	if math.Abs(alpha-trueAlpha) > 1e-9 {
		t.Fatalf("alpha = %v, want %v", alpha, trueAlpha)
	}
}

func TestFitAlphaTieBreaksToLowerAlpha(t *testing.T) {
	// With S == J in every sample the prediction is independent of alpha,
	// so every grid point has equal error and the fit must settle on 0.
	samples := []PairSample{
		{S: 0.4, J: 0.4, Outcome: 0},
		{S: 0.6, J: 0.6, Outcome: 1},
		{S: 0.5, J: 0.5, Outcome: 1},
	}

	alpha, ok := FitAlpha(samples)
	if !ok {
		t.Fatal("expected a successful fit")
	}
	if alpha != 0 {
		t.Fatalf("alpha = %v, want 0 (lowest tied grid point)", alpha)
	}
}

func TestFitAlphaTieBreakSurvivesRounding(t *testing.T) {
	// Values without an exact binary representation accumulate slightly
	// different rounding error per grid point; near-equal errors must still
	// count as a tie and keep the lowest alpha.
	samples := []PairSample{
		{S: 0.1, J: 0.1, Outcome: 0},
		{S: 0.3, J: 0.3, Outcome: 1},
		{S: 0.7, J: 0.7, Outcome: 1},
		{S: 0.9, J: 0.9, Outcome: 0},
	}

	alpha, ok := FitAlpha(samples)
	if !ok {
		t.Fatal("expected a successful fit")
	}
	if alpha != 0 {
		t.Fatalf("alpha = %v, want 0 (lowest tied grid point)", alpha)
	}
}

func TestFitAlphaIdempotent(t *testing.T) {
	samples := []PairSample{
		{S: 0.9, J: 0.1, Outcome: 1},
		{S: 0.1, J: 0.9, Outcome: 0},
		{S: 0.7, J: 0.3, Outcome: 1},
		{S: 0.2, J: 0.6, Outcome: 0},
	}

	first, ok1 := FitAlpha(samples)
	second, ok2 := FitAlpha(samples)
	if !ok1 || !ok2 {
		t.Fatal("expected successful fits")
	}
	if first != second {
		t.Fatalf("refitting the same samples gave %v then %v", first, second)
	}
}

func TestFitAlphaStaysInRange(t *testing.T) {
	samples := []PairSample{
		{S: 1, J: 0, Outcome: 1},
		{S: 1, J: 0, Outcome: 1},
		{S: 1, J: 0, Outcome: 1},
	}
	alpha, _ := FitAlpha(samples)
	if alpha < 0 || alpha > 1 {
		t.Fatalf("alpha = %v out of [0,1]", alpha)
	}
	if alpha != 1 {
		t.Fatalf("alpha = %v, want 1 (similarity fully predicts the outcome)", alpha)
	}
}
