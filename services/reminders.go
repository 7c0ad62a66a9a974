package services

import (
	"courtside-server/models"
	"courtside-server/storage"
	"fmt"
	"log"
	"time"
)

const reminderLead = 2 * time.Hour

// ReminderJobID names the scheduler entry for one reservation's reminder.
func ReminderJobID(reservationID uint) string {
	return fmt.Sprintf("reminder-reservation-%d", reservationID)
}

// ScheduleReservationReminder registers a one-shot reminder email for every
// player on the roster, a fixed lead before the slot's start time. Replaces
// any reminder previously scheduled for the same reservation.
func ScheduleReservationReminder(reservationID uint) {
	var res models.Reservation
	if err := storage.DB.Preload("Schedule").First(&res, reservationID).Error; err != nil {
		log.Printf("reminders: reservation %d not found: %v", reservationID, err)
		return
	}

	at := res.Date
	if res.Schedule != nil {
		if t, err := time.Parse("15:04", res.Schedule.StartTime); err == nil {
			at = at.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
		}
	}
	at = at.Add(-reminderLead)
	if time.Until(at) <= 0 {
		return
	}

	Jobs.AddAt(ReminderJobID(reservationID), at, func() {
		sendReminder(reservationID)
	})
}

// CancelReservationReminder drops a pending reminder, if any.
func CancelReservationReminder(reservationID uint) {
	Jobs.Remove(ReminderJobID(reservationID))
}

func sendReminder(reservationID uint) {
	var res models.Reservation
	err := storage.DB.Preload("Players.User").Preload("Court").Preload("Schedule").First(&res, reservationID).Error
	if err != nil {
		log.Printf("reminders: reservation %d vanished: %v", reservationID, err)
		return
	}
	if !res.Active() {
		return
	}

	subject, body := reminderEmail(&res)
	for _, p := range res.Players {
		if p.User == nil || p.User.Email == "" {
			continue
		}
		if p.User.AllowsNotifications != nil && !*p.User.AllowsNotifications {
			continue
		}
		if ok, err := sendMailFunc(p.User.Email, subject, body); !ok {
			log.Printf("reminders: mail to %s failed: %v", p.User.Email, err)
		}
	}
}

func reminderEmail(res *models.Reservation) (string, string) {
	court := "your court"
	if res.Court != nil {
		court = res.Court.Name
	}
	slot := ""
	if res.Schedule != nil {
		slot = res.Schedule.StartTime
	}
	subject := fmt.Sprintf("Reminder: your game on %s", res.Date.Format("Monday, Jan 2"))
	body := fmt.Sprintf(`<p>Your game at <b>%s</b> starts at %s. See you there!</p>`, court, slot)
	return subject, body
}

// ExpirePendingReservations flips reserved slots past their confirmation
// window to expired, freeing the (court, date, slot) triple. Runs on an
// interval from the scheduler.
func ExpirePendingReservations() (int, error) {
	result := storage.DB.Model(&models.Reservation{}).
		Where("status = ? AND expires_at > ? AND expires_at < ?", models.ReservationReserved, time.Time{}, time.Now()).
		Update("status", models.ReservationExpired)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("reservations: expired %d unconfirmed slots", result.RowsAffected)
	}
	return int(result.RowsAffected), nil
}
