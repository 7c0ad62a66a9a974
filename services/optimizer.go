package services

import (
	"courtside-server/models"
	"courtside-server/storage"
	"log"
	"time"

	"gorm.io/gorm/clause"
)

// Weight optimizer defaults.
const (
	DefaultAlpha = 0.5
	DefaultBeta  = 0.5

	// alphaGridStep is the grid-search resolution for alpha in [0,1].
	alphaGridStep = 0.05

	// minFitSamples is the labeled-pair count below which a user keeps the
	// default weights.
	minFitSamples = 3

	// playedAgainThreshold: a pair that shares at least this many confirmed
	// games counts as a positive replay outcome.
	playedAgainThreshold = 2
)

// PairSample is one labeled pair for the fit: its S and J components plus the
// observed outcome (1 = the pair played together again, 0 = it did not).
type PairSample struct {
	S       float64
	J       float64
	Outcome float64
}

// FitAlpha grid-searches alpha in [0,1] (beta = 1-alpha) minimizing the
// squared error between A = alpha*S + beta*J and the outcome. Ties break
// toward the lower alpha, so re-running on the same samples always returns
// the same value. ok is false when there are too few samples to fit.
func FitAlpha(samples []PairSample) (alpha float64, ok bool) {
	if len(samples) < minFitSamples {
		return DefaultAlpha, false
	}

	best := DefaultAlpha
	bestErr := -1.0
	for step := 0; ; step++ {
		a := float64(step) * alphaGridStep
		if a > 1.0+1e-9 {
			break
		}
		if a > 1 {
			a = 1
		}
		var sumErr float64
		for _, s := range samples {
			pred := a*s.S + (1-a)*s.J
			diff := pred - s.Outcome
			sumErr += diff * diff
		}
		// Near-equal errors are ties; strict < would let float rounding
		// pick a higher alpha when the samples make A alpha-independent.
		if bestErr < 0 || sumErr < bestErr-1e-12 {
			bestErr = sumErr
			best = a
		}
	}
	return best, true
}

// OptimizeWeights refits (alpha, beta) for every enabled user from the stored
// pair relations and the replay signal, and upserts the results. Users with
// insufficient data fall back to the defaults. Re-running with unchanged
// inputs converges to identical weights. Returns the number of users fitted.
func OptimizeWeights() (int, error) {
	var userIDs []uint
	if err := storage.DB.Model(&models.User{}).Where("enabled = ?", true).Pluck("id", &userIDs).Error; err != nil {
		return 0, err
	}

	var pairs []models.PairWeight
	if err := storage.DB.Find(&pairs).Error; err != nil {
		return 0, err
	}

	// Group stored relations per user
	byUser := make(map[uint][]models.PairWeight)
	for _, p := range pairs {
		byUser[p.UserAID] = append(byUser[p.UserAID], p)
		byUser[p.UserBID] = append(byUser[p.UserBID], p)
	}

	fitted := 0
	now := time.Now()
	for _, id := range userIDs {
		samples := make([]PairSample, 0, len(byUser[id]))
		for _, p := range byUser[id] {
			other := p.UserAID
			if other == id {
				other = p.UserBID
			}
			shared, err := SharedConfirmedCount(id, other)
			if err != nil {
				log.Printf("optimizer: shared count for (%d,%d) failed: %v", id, other, err)
				continue
			}
			outcome := 0.0
			if shared >= playedAgainThreshold {
				outcome = 1.0
			}
			samples = append(samples, PairSample{S: p.Similarity, J: p.History, Outcome: outcome})
		}

		alpha, ok := FitAlpha(samples)
		beta := 1 - alpha
		if !ok {
			alpha, beta = DefaultAlpha, DefaultBeta
		}

		w := models.UserWeight{
			UserID:   id,
			Alpha:    alpha,
			Beta:     beta,
			Samples:  len(samples),
			FittedAt: now,
		}
		err := storage.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"alpha", "beta", "samples", "fitted_at", "updated_at"}),
		}).Create(&w).Error
		if err != nil {
			log.Printf("optimizer: upsert weights for user %d failed: %v", id, err)
			continue
		}
		fitted++
	}

	log.Printf("optimizer: fitted weights for %d users", fitted)
	return fitted, nil
}
