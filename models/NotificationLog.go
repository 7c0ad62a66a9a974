package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification log statuses. Only "sent" rows count toward dedupe and
// cooldown; a failed send may be retried by a later selector run.
const (
	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// NotificationLog records one match invitation per (reservation, recipient).
// The unique pair index is the dedupe mechanism: however many times the
// selector runs, a recipient is invited to a given slot at most once.
type NotificationLog struct {
	gorm.Model
	ReservationID uint      `json:"reservationID" gorm:"not null;uniqueIndex:idx_notif_res_user;index"`
	UserID        uint      `json:"userID" gorm:"not null;uniqueIndex:idx_notif_res_user;index"`
	Status        string    `json:"status" gorm:"type:varchar(10);index"`
	Email         string    `json:"email"`
	BatchID       string    `json:"batchID" gorm:"index"` // one selector run
	SentAt        time.Time `json:"sentAt"`
	Error         string    `json:"error"`
}
