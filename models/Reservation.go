package models

import (
	"time"

	"gorm.io/gorm"
)

// Reservation lifecycle states.
const (
	ReservationReserved  = "reserved" // pending confirmation, expires
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationExpired   = "expired"
	ReservationCompleted = "completed"
)

// Reservation is one (court, date, schedule slot) booking unit with a bounded
// roster of players. Uniqueness over the triple is enforced for every state
// except cancelled/expired so a freed slot can be rebooked.
type Reservation struct {
	gorm.Model
	CourtID     uint      `json:"courtID" gorm:"not null;index:idx_court_date_slot"`
	Date        time.Time `json:"date" gorm:"not null;index:idx_court_date_slot"` // midnight, date only
	ScheduleID  uint      `json:"scheduleID" gorm:"not null;index:idx_court_date_slot"`
	Status      string    `json:"status" gorm:"type:varchar(20);default:reserved;index"`
	CreatedByID uint      `json:"createdByID" gorm:"index"`
	Note        string    `json:"note"`
	ExpiresAt   time.Time `json:"expiresAt"` // window for unconfirmed reservations

	Court     *Court              `json:"court,omitempty" gorm:"foreignKey:CourtID"`
	Schedule  *Schedule           `json:"schedule,omitempty" gorm:"foreignKey:ScheduleID"`
	CreatedBy *User               `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID"`
	Players   []ReservationPlayer `json:"players,omitempty" gorm:"foreignKey:ReservationID"`
}

// Active reports whether the slot still blocks the court.
func (r *Reservation) Active() bool {
	return r.Status == ReservationReserved || r.Status == ReservationConfirmed
}

// ReservationPlayer joins one user into a reservation roster. The unique pair
// index makes joining idempotent.
type ReservationPlayer struct {
	gorm.Model
	ReservationID uint  `json:"reservationID" gorm:"not null;uniqueIndex:idx_reservation_user"`
	UserID        uint  `json:"userID" gorm:"not null;uniqueIndex:idx_reservation_user;index"`
	User          *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
