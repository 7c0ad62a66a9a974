package services

import (
	"context"
	"courtside-server/models"
	"courtside-server/storage"
	"log"
	"sync"
	"time"

	"gorm.io/gorm/clause"
)

// materializeWorkers bounds the concurrent score computation so a recompute
// never starves request handling.
const materializeWorkers = 4

// RecomputeAllRelations recalculates A(i,j) for every pair of enabled users
// and upserts the rows keyed by the normalized pair. Safe to re-run at any
// time: the upsert makes it idempotent, concurrent runs settle on
// last-writer-wins. Returns the number of pairs written.
func RecomputeAllRelations() (int, error) {
	started := time.Now()

	var users []models.User
	if err := storage.DB.Where("enabled = ?", true).Order("id").Find(&users).Error; err != nil {
		return 0, err
	}
	if len(users) < 2 {
		return 0, nil
	}

	vectorizer, err := catalogVectorizer()
	if err != nil {
		return 0, err
	}

	// Load every preference set once and vectorize per user
	var prefs []models.Preference
	if err := storage.DB.Find(&prefs).Error; err != nil {
		return 0, err
	}
	prefsByUser := make(map[uint][]models.Preference)
	for _, p := range prefs {
		prefsByUser[p.UserID] = append(prefsByUser[p.UserID], p)
	}
	vectors := make(map[uint][]float64, len(users))
	for _, u := range users {
		vectors[u.ID] = vectorizer.Vector(prefsByUser[u.ID])
	}

	sharedCounts, err := loadSharedConfirmedCounts()
	if err != nil {
		return 0, err
	}

	alphas := loadFittedAlphas()

	// Build the pair universe i<j
	type pairKey struct{ a, b uint }
	pairsCh := make(chan pairKey)
	results := make(chan models.PairWeight)

	var wg sync.WaitGroup
	for w := 0; w < materializeWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pk := range pairsCh {
				alpha := (alphaOrDefault(alphas, pk.a) + alphaOrDefault(alphas, pk.b)) / 2
				beta := 1 - alpha
				s := Similarity(vectors[pk.a], vectors[pk.b])
				j := HistoryScore(sharedCounts[pk])
				results <- models.PairWeight{
					UserAID:    pk.a,
					UserBID:    pk.b,
					Similarity: s,
					History:    j,
					Alpha:      alpha,
					Beta:       beta,
					Score:      BlendScore(alpha, beta, s, j),
					ComputedAt: started,
				}
			}
		}()
	}

	go func() {
		for i := 0; i < len(users); i++ {
			for j := i + 1; j < len(users); j++ {
				pairsCh <- pairKey{a: users[i].ID, b: users[j].ID}
			}
		}
		close(pairsCh)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	written := 0
	for row := range results {
		err := storage.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"similarity", "history", "alpha", "beta", "score", "computed_at", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			log.Printf("materializer: upsert pair (%d,%d) failed: %v", row.UserAID, row.UserBID, err)
			continue
		}
		written++
	}

	invalidateRecommendationCache()

	log.Printf("materializer: recomputed %d pair relations in %s", written, time.Since(started).Round(time.Millisecond))
	return written, nil
}

// invalidateRecommendationCache drops every cached recommendation list so
// stale scores never outlive a recompute.
func invalidateRecommendationCache() {
	if storage.Redis == nil {
		return
	}
	c := context.Background()
	iter := storage.Redis.Scan(c, 0, "recommendations:*", 100).Iterator()
	for iter.Next(c) {
		storage.Redis.Del(c, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("materializer: recommendation cache flush failed: %v", err)
	}
}

// RecomputeAllRelationsAsync dispatches a recompute off the request path.
func RecomputeAllRelationsAsync() {
	go func() {
		if _, err := RecomputeAllRelations(); err != nil {
			log.Printf("materializer: recompute failed: %v", err)
		}
	}()
}

type sharedCountRow struct {
	UserA uint
	UserB uint
	N     int
}

// loadSharedConfirmedCounts fetches shared confirmed-game counts for all
// pairs in one aggregate query, keyed by normalized pair.
func loadSharedConfirmedCounts() (map[struct{ a, b uint }]int, error) {
	var rows []sharedCountRow
	err := storage.DB.Raw(`
		SELECT a.user_id AS user_a, b.user_id AS user_b, COUNT(*) AS n
		FROM reservation_players a
		JOIN reservation_players b
		  ON b.reservation_id = a.reservation_id
		 AND b.user_id > a.user_id
		 AND b.deleted_at IS NULL
		JOIN reservations r
		  ON r.id = a.reservation_id
		 AND r.status = ?
		 AND r.deleted_at IS NULL
		WHERE a.deleted_at IS NULL
		GROUP BY a.user_id, b.user_id`, models.ReservationConfirmed).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[struct{ a, b uint }]int, len(rows))
	for _, r := range rows {
		a, b := models.NormalizePair(r.UserA, r.UserB)
		out[struct{ a, b uint }{a, b}] = r.N
	}
	return out, nil
}

func loadFittedAlphas() map[uint]float64 {
	var weights []models.UserWeight
	if err := storage.DB.Find(&weights).Error; err != nil {
		log.Printf("materializer: loading user weights failed: %v", err)
		return nil
	}
	out := make(map[uint]float64, len(weights))
	for _, w := range weights {
		out[w.UserID] = w.Alpha
	}
	return out
}

func alphaOrDefault(alphas map[uint]float64, userID uint) float64 {
	if a, ok := alphas[userID]; ok {
		return a
	}
	return DefaultAlpha
}
