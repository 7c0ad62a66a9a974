package models

import (
	"time"

	"gorm.io/gorm"
)

// PairWeight stores the matchmaking relation between two users. Pairs are
// unordered and normalized so UserAID < UserBID always holds; the unique index
// on the normalized pair is what makes the materializer's upsert idempotent.
// Rows are batch-recomputed and may be stale between runs.
type PairWeight struct {
	gorm.Model
	UserAID    uint      `json:"userAID" gorm:"not null;uniqueIndex:idx_pair;index"`
	UserBID    uint      `json:"userBID" gorm:"not null;uniqueIndex:idx_pair;index"`
	Similarity float64   `json:"similarity"` // S: preference overlap in [0,1]
	History    float64   `json:"history"`    // J: shared-history score in [0,1]
	Alpha      float64   `json:"alpha"`
	Beta       float64   `json:"beta"`
	Score      float64   `json:"score"` // A = alpha*S + beta*J
	ComputedAt time.Time `json:"computedAt"`
}

// NormalizePair returns the pair in storage order.
func NormalizePair(i, j uint) (uint, uint) {
	if i < j {
		return i, j
	}
	return j, i
}

// UserWeight holds the per-user fitted blend coefficients. Users without
// enough labeled pairs keep the defaults.
type UserWeight struct {
	gorm.Model
	UserID   uint      `json:"userID" gorm:"not null;uniqueIndex"`
	Alpha    float64   `json:"alpha"`
	Beta     float64   `json:"beta"`
	Samples  int       `json:"samples"` // labeled pairs used for the fit
	FittedAt time.Time `json:"fittedAt"`
}
