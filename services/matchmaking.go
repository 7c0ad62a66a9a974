package services

import (
	"courtside-server/models"
	"courtside-server/storage"
	"fmt"
	"strconv"

	"golang.org/x/exp/slices"
)

// HistorySaturation is the shared-game count at which the history score J
// reaches 1.0.
const HistorySaturation = 5

// WeekDays is the day dimension of the preference catalog.
var WeekDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Vectorizer turns preference sets into fixed-length binary vectors over the
// catalog domains (days ++ schedule slots ++ courts). Vector layout is stable
// for a given catalog, so vectors from the same Vectorizer are comparable.
type Vectorizer struct {
	index map[string]int
	size  int
}

func NewVectorizer(days []string, scheduleIDs []uint, courtIDs []uint) *Vectorizer {
	v := &Vectorizer{index: make(map[string]int)}
	for _, d := range days {
		v.index["day:"+d] = v.size
		v.size++
	}
	for _, id := range scheduleIDs {
		v.index["slot:"+strconv.FormatUint(uint64(id), 10)] = v.size
		v.size++
	}
	for _, id := range courtIDs {
		v.index["court:"+strconv.FormatUint(uint64(id), 10)] = v.size
		v.size++
	}
	return v
}

// Size returns the vector length.
func (v *Vectorizer) Size() int { return v.size }

// Vector folds all of a user's preference sets into one binary vector.
// Users without preference sets get the zero vector, never an error.
// Entries outside the catalog are ignored.
func (v *Vectorizer) Vector(prefs []models.Preference) []float64 {
	out := make([]float64, v.size)
	for i := range prefs {
		for _, d := range prefs[i].DayList() {
			if idx, ok := v.index["day:"+d]; ok {
				out[idx] = 1
			}
		}
		for _, id := range prefs[i].ScheduleIDList() {
			if idx, ok := v.index["slot:"+strconv.FormatUint(uint64(id), 10)]; ok {
				out[idx] = 1
			}
		}
		for _, id := range prefs[i].CourtIDList() {
			if idx, ok := v.index["court:"+strconv.FormatUint(uint64(id), 10)]; ok {
				out[idx] = 1
			}
		}
	}
	return out
}

// Similarity is the Jaccard overlap of two binary vectors: shared set bits
// over total set bits. Bounded in [0,1], symmetric, and 0.0 when either
// vector is all-zero.
func Similarity(a, b []float64) float64 {
	var inter, union float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] > 0 && b[i] > 0 {
			inter++
		}
		if a[i] > 0 || b[i] > 0 {
			union++
		}
	}
	for i := n; i < len(a); i++ {
		if a[i] > 0 {
			union++
		}
	}
	for i := n; i < len(b); i++ {
		if b[i] > 0 {
			union++
		}
	}
	if union == 0 {
		return 0.0
	}
	return inter / union
}

// HistoryScore scales a shared confirmed-game count into [0,1]:
// min(count/HistorySaturation, 1). Returns 0 with no history.
func HistoryScore(shared int) float64 {
	if shared <= 0 {
		return 0.0
	}
	score := float64(shared) / float64(HistorySaturation)
	if score > 1 {
		return 1.0
	}
	return score
}

// BlendScore computes A = alpha*S + beta*J.
func BlendScore(alpha, beta, s, j float64) float64 {
	return alpha*s + beta*j
}

// catalogVectorizer builds a Vectorizer over the live catalogs.
func catalogVectorizer() (*Vectorizer, error) {
	var scheduleIDs, courtIDs []uint
	if err := storage.DB.Model(&models.Schedule{}).Where("is_active = ?", true).Order("sort_order, id").Pluck("id", &scheduleIDs).Error; err != nil {
		return nil, err
	}
	if err := storage.DB.Model(&models.Court{}).Where("is_active = ?", true).Order("id").Pluck("id", &courtIDs).Error; err != nil {
		return nil, err
	}
	return NewVectorizer(WeekDays, scheduleIDs, courtIDs), nil
}

// UserVector loads a user's preference sets and vectorizes them. Unknown
// users yield the zero vector (permissive default).
func UserVector(userID uint) ([]float64, error) {
	v, err := catalogVectorizer()
	if err != nil {
		return nil, err
	}
	var prefs []models.Preference
	if err := storage.DB.Where("user_id = ?", userID).Find(&prefs).Error; err != nil {
		return nil, err
	}
	return v.Vector(prefs), nil
}

// SharedConfirmedCount counts confirmed reservations both users played in.
func SharedConfirmedCount(i, j uint) (int, error) {
	var count int64
	err := storage.DB.
		Table("reservation_players AS a").
		Joins("JOIN reservation_players b ON b.reservation_id = a.reservation_id AND b.user_id = ? AND b.deleted_at IS NULL", j).
		Joins("JOIN reservations r ON r.id = a.reservation_id AND r.status = ? AND r.deleted_at IS NULL", models.ReservationConfirmed).
		Where("a.user_id = ? AND a.deleted_at IS NULL", i).
		Count(&count).Error
	return int(count), err
}

// PairScore computes the full relation for one pair on demand, using each
// user's fitted weights (pair alpha is the mean of both). Self-pairs are
// rejected; the materializer never computes them either.
func PairScore(i, j uint) (*models.PairWeight, error) {
	if i == j {
		return nil, fmt.Errorf("self-pair %d is not scored", i)
	}

	vi, err := UserVector(i)
	if err != nil {
		return nil, err
	}
	vj, err := UserVector(j)
	if err != nil {
		return nil, err
	}

	shared, err := SharedConfirmedCount(i, j)
	if err != nil {
		return nil, err
	}

	alpha, beta := PairBlendWeights(i, j)

	a, b := models.NormalizePair(i, j)
	s := Similarity(vi, vj)
	h := HistoryScore(shared)
	return &models.PairWeight{
		UserAID:    a,
		UserBID:    b,
		Similarity: s,
		History:    h,
		Alpha:      alpha,
		Beta:       beta,
		Score:      BlendScore(alpha, beta, s, h),
	}, nil
}

// PairBlendWeights resolves (alpha, beta) for a pair as the mean of the two
// users' fitted alphas, defaulting each side to 0.5.
func PairBlendWeights(i, j uint) (float64, float64) {
	alpha := (fittedAlpha(i) + fittedAlpha(j)) / 2
	return alpha, 1 - alpha
}

func fittedAlpha(userID uint) float64 {
	var w models.UserWeight
	if err := storage.DB.Where("user_id = ?", userID).First(&w).Error; err != nil {
		return DefaultAlpha
	}
	return w.Alpha
}

// ValidDay reports whether a day name belongs to the catalog.
func ValidDay(day string) bool {
	return slices.Contains(WeekDays, day)
}
