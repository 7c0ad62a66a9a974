package services

import (
	"courtside-server/models"
	"courtside-server/storage"
	"courtside-server/utils"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
	"gorm.io/gorm/clause"
)

// Exclusion reasons, in pipeline order.
const (
	ReasonSelf               = "self"
	ReasonAlreadyNotified    = "already_notified"
	ReasonDisabled           = "disabled"
	ReasonNoEmail            = "missing_email"
	ReasonDuplicateEmail     = "duplicate_email"
	ReasonScheduleConflict   = "schedule_conflict"
	ReasonPreferenceMismatch = "preference_mismatch"
)

// Candidate is one user considered for a match invitation.
type Candidate struct {
	UserID    uint    `json:"userID"`
	FirstName string  `json:"firstName"`
	Email     string  `json:"email"`
	Enabled   bool    `json:"enabled"`
	Score     float64 `json:"score"`
}

// Exclusion records why a user was filtered out.
type Exclusion struct {
	UserID uint   `json:"userID"`
	Reason string `json:"reason"`
}

// SelectionInput parameterizes the pure candidate filter.
type SelectionInput struct {
	OriginID           uint
	Top                int
	Random             int
	AlreadyNotified    map[uint]bool
	Conflicted         map[uint]bool
	PreferenceMatch    map[uint]bool
	EnforcePreferences bool
	Rand               *rand.Rand
}

// SelectCandidates runs the exclusion pipeline over the pool and picks the
// top-N by score (ties broken by lower user ID) plus M uniformly random
// users from the remaining eligible set. Pure function: all data arrives in
// the arguments, which is also what makes its properties testable.
func SelectCandidates(pool []Candidate, in SelectionInput) ([]Candidate, []Exclusion) {
	var eligible []Candidate
	var excluded []Exclusion
	seenEmails := make(map[string]bool)

	for _, c := range pool {
		switch {
		case c.UserID == in.OriginID:
			excluded = append(excluded, Exclusion{c.UserID, ReasonSelf})
		case in.AlreadyNotified[c.UserID]:
			excluded = append(excluded, Exclusion{c.UserID, ReasonAlreadyNotified})
		case !c.Enabled:
			excluded = append(excluded, Exclusion{c.UserID, ReasonDisabled})
		case c.Email == "":
			excluded = append(excluded, Exclusion{c.UserID, ReasonNoEmail})
		case seenEmails[strings.ToLower(c.Email)]:
			excluded = append(excluded, Exclusion{c.UserID, ReasonDuplicateEmail})
		case in.Conflicted[c.UserID]:
			excluded = append(excluded, Exclusion{c.UserID, ReasonScheduleConflict})
		case in.EnforcePreferences && !in.PreferenceMatch[c.UserID]:
			excluded = append(excluded, Exclusion{c.UserID, ReasonPreferenceMismatch})
		default:
			seenEmails[strings.ToLower(c.Email)] = true
			eligible = append(eligible, c)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Score == eligible[j].Score {
			return eligible[i].UserID < eligible[j].UserID
		}
		return eligible[i].Score > eligible[j].Score
	})

	top := in.Top
	if top > len(eligible) {
		top = len(eligible)
	}
	picked := make([]Candidate, 0, top+in.Random)
	picked = append(picked, eligible[:top]...)

	rest := eligible[top:]
	rng := in.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	perm := rng.Perm(len(rest))
	for i := 0; i < in.Random && i < len(rest); i++ {
		picked = append(picked, rest[perm[i]])
	}

	return picked, excluded
}

// NotifyResult summarizes one selector run over a slot.
type NotifyResult struct {
	ReservationID uint        `json:"reservationID"`
	BatchID       string      `json:"batchID,omitempty"`
	Skipped       string      `json:"skipped,omitempty"` // cooldown / trigger reason
	Notified      []uint      `json:"notified"`
	Failed        []uint      `json:"failed"`
	Excluded      []Exclusion `json:"excluded"`
}

// SelectAndNotify picks match candidates for a slot that is missing players
// and emails them an invitation, writing one notification-log row per
// recipient. The (reservation, recipient) unique key deduplicates across
// runs; only rows with status "sent" count, so a failed delivery may be
// retried by a later run.
func SelectAndNotify(reservationID uint, top, random int) (*NotifyResult, error) {
	result := &NotifyResult{ReservationID: reservationID}

	var res models.Reservation
	if err := storage.DB.Preload("Players").Preload("Court").Preload("Schedule").First(&res, reservationID).Error; err != nil {
		return nil, fmt.Errorf("reservation %d not found: %w", reservationID, err)
	}
	if !res.Active() {
		result.Skipped = "slot is not active"
		return result, nil
	}

	var lastSent time.Time
	var last models.NotificationLog
	err := storage.DB.Where("reservation_id = ? AND status = ?", reservationID, models.NotificationSent).
		Order("sent_at DESC").First(&last).Error
	if err == nil {
		lastSent = last.SentAt
	}
	if skip := notifyGate(len(res.Players), lastSent, time.Now(), CooldownWindow(), TriggerCounts()); skip != "" {
		result.Skipped = skip
		return result, nil
	}

	in := SelectionInput{
		OriginID:           res.CreatedByID,
		Top:                top,
		Random:             random,
		EnforcePreferences: EnforcePreferences(),
	}

	pool, err := candidatePool(&res)
	if err != nil {
		return nil, err
	}
	in.AlreadyNotified, err = notifiedSet(reservationID)
	if err != nil {
		return nil, err
	}
	in.Conflicted, err = conflictedSet(&res)
	if err != nil {
		return nil, err
	}
	if in.EnforcePreferences {
		in.PreferenceMatch, err = preferenceMatchSet(&res)
		if err != nil {
			return nil, err
		}
	}

	// Players already in the roster never get invited to their own slot
	for _, p := range res.Players {
		if in.Conflicted == nil {
			in.Conflicted = make(map[uint]bool)
		}
		in.Conflicted[p.UserID] = true
	}

	picked, excluded := SelectCandidates(pool, in)
	result.Excluded = excluded
	result.BatchID = uuid.New().String()

	subject, body := invitationEmail(&res)
	for _, c := range picked {
		sent, sendErr := sendMailFunc(c.Email, subject, body)
		entry := models.NotificationLog{
			ReservationID: reservationID,
			UserID:        c.UserID,
			Email:         c.Email,
			BatchID:       result.BatchID,
			SentAt:        time.Now(),
		}
		if sent {
			entry.Status = models.NotificationSent
			result.Notified = append(result.Notified, c.UserID)
		} else {
			entry.Status = models.NotificationFailed
			if sendErr != nil {
				entry.Error = sendErr.Error()
			}
			result.Failed = append(result.Failed, c.UserID)
			log.Printf("selector: invitation to user %d (%s) failed: %v", c.UserID, c.Email, sendErr)
		}

		// Upsert on the (reservation, user) key: a previously failed row is
		// overwritten by the retry. The WHERE guard keeps a "sent" row
		// intact even when two runs race past the cooldown check, so a
		// recipient is recorded as notified at most once.
		upsertErr := storage.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reservation_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "email", "batch_id", "sent_at", "error", "updated_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Neq{Column: clause.Column{Table: "notification_logs", Name: "status"}, Value: models.NotificationSent},
			}},
		}).Create(&entry).Error
		if upsertErr != nil {
			log.Printf("selector: notification log write for user %d failed: %v", c.UserID, upsertErr)
		}
	}

	log.Printf("selector: slot %d notified=%d failed=%d excluded=%d", reservationID, len(result.Notified), len(result.Failed), len(result.Excluded))
	return result, nil
}

// notifyGate decides whether a slot may fan out notifications right now.
// The current player count must be in the trigger set and the cooldown since
// the last successful burst must have elapsed (lastSent is the zero time when
// no burst has happened yet). Returns an empty string to proceed, otherwise
// the skip reason.
func notifyGate(playerCount int, lastSent, now time.Time, cooldown time.Duration, triggers []int) string {
	if !slices.Contains(triggers, playerCount) {
		return fmt.Sprintf("player count %d not in trigger set", playerCount)
	}
	if !lastSent.IsZero() && now.Sub(lastSent) < cooldown {
		return fmt.Sprintf("cooldown active until %s", lastSent.Add(cooldown).Format(time.RFC3339))
	}
	return ""
}

// sendMailFunc is swappable in tests; it defaults to SMTP delivery.
var sendMailFunc = utils.SendMail

// candidatePool loads every user with their current score against the slot's
// origin user. Users without a stored relation score 0.
func candidatePool(res *models.Reservation) ([]Candidate, error) {
	var users []models.User
	if err := storage.DB.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}

	var weights []models.PairWeight
	if err := storage.DB.Where("user_a_id = ? OR user_b_id = ?", res.CreatedByID, res.CreatedByID).Find(&weights).Error; err != nil {
		return nil, err
	}
	scores := make(map[uint]float64, len(weights))
	for _, w := range weights {
		other := w.UserAID
		if other == res.CreatedByID {
			other = w.UserBID
		}
		scores[other] = w.Score
	}

	pool := make([]Candidate, 0, len(users))
	for _, u := range users {
		email := u.Email
		if u.AllowsNotifications != nil && !*u.AllowsNotifications {
			// Opted out: treated the same as a missing contact address
			email = ""
		}
		pool = append(pool, Candidate{
			UserID:    u.ID,
			FirstName: u.FirstName,
			Email:     email,
			Enabled:   u.IsEnabled(),
			Score:     scores[u.ID],
		})
	}
	return pool, nil
}

// notifiedSet returns users already successfully notified for this slot.
func notifiedSet(reservationID uint) (map[uint]bool, error) {
	var ids []uint
	err := storage.DB.Model(&models.NotificationLog{}).
		Where("reservation_id = ? AND status = ?", reservationID, models.NotificationSent).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// conflictedSet returns users already booked in an active reservation that
// overlaps this slot (same date and schedule slot).
func conflictedSet(res *models.Reservation) (map[uint]bool, error) {
	var ids []uint
	err := storage.DB.Model(&models.ReservationPlayer{}).
		Joins("JOIN reservations r ON r.id = reservation_players.reservation_id AND r.deleted_at IS NULL").
		Where("r.date = ? AND r.schedule_id = ? AND r.status IN ?", res.Date, res.ScheduleID,
			[]string{models.ReservationReserved, models.ReservationConfirmed}).
		Pluck("reservation_players.user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// preferenceMatchSet returns users with a preference set covering the slot's
// day, schedule and court.
func preferenceMatchSet(res *models.Reservation) (map[uint]bool, error) {
	var prefs []models.Preference
	if err := storage.DB.Find(&prefs).Error; err != nil {
		return nil, err
	}

	day := res.Date.Weekday().String()
	out := make(map[uint]bool)
	for i := range prefs {
		p := &prefs[i]
		if out[p.UserID] {
			continue
		}
		if slices.Contains(p.DayList(), day) &&
			slices.Contains(p.ScheduleIDList(), res.ScheduleID) &&
			slices.Contains(p.CourtIDList(), res.CourtID) {
			out[p.UserID] = true
		}
	}
	return out, nil
}

func invitationEmail(res *models.Reservation) (string, string) {
	court := "a court"
	if res.Court != nil {
		court = res.Court.Name
	}
	slot := ""
	if res.Schedule != nil {
		slot = res.Schedule.StartTime + "-" + res.Schedule.EndTime
	}
	date := res.Date.Format("Monday, Jan 2")

	subject := fmt.Sprintf("A match on %s needs players", date)
	body := fmt.Sprintf(`
	<p>A game at <b>%s</b> on <b>%s</b> (%s) is looking for players.
	Open the app to join before the slot fills up.</p>`, court, date, slot)
	return subject, body
}

// Selector configuration, environment driven like the rest of the app.

const (
	defaultCooldownMinutes = 180
	defaultTopN            = 3
	defaultRandomN         = 2
)

// CooldownWindow is the minimum gap between notification bursts for a slot.
func CooldownWindow() time.Duration {
	if v, err := strconv.Atoi(os.Getenv("MATCH_COOLDOWN_MINUTES")); err == nil && v >= 0 {
		return time.Duration(v) * time.Minute
	}
	return defaultCooldownMinutes * time.Minute
}

// TriggerCounts is the set of current-player counts at which a slot is
// allowed to fan out notifications.
func TriggerCounts() []int {
	raw := os.Getenv("MATCH_TRIGGER_COUNTS")
	if raw == "" {
		return []int{1, 3}
	}
	var out []int
	for _, part := range strings.Split(raw, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return []int{1, 3}
	}
	return out
}

// EnforcePreferences toggles the preference-mismatch exclusion.
func EnforcePreferences() bool {
	return os.Getenv("MATCH_ENFORCE_PREFERENCES") == "true"
}

// DefaultTopN and DefaultRandomN resolve the candidate split when the caller
// does not override it.
func DefaultTopN() int {
	if v, err := strconv.Atoi(os.Getenv("MATCH_TOP_N")); err == nil && v > 0 {
		return v
	}
	return defaultTopN
}

func DefaultRandomN() int {
	if v, err := strconv.Atoi(os.Getenv("MATCH_RANDOM_N")); err == nil && v >= 0 {
		return v
	}
	return defaultRandomN
}
