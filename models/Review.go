package models

import "gorm.io/gorm"

// Review rates another player after a shared game. The unique triple keeps a
// player from reviewing the same opponent twice for the same reservation.
type Review struct {
	gorm.Model
	AuthorID      uint         `json:"authorID" gorm:"not null;index;uniqueIndex:idx_review_triple"`
	SubjectID     uint         `json:"subjectID" gorm:"not null;index;uniqueIndex:idx_review_triple"`
	ReservationID uint         `json:"reservationID" gorm:"not null;uniqueIndex:idx_review_triple"`
	Author        *User        `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Subject       *User        `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Reservation   *Reservation `json:"reservation,omitempty" gorm:"foreignKey:ReservationID"`
	Stars         int          `json:"stars" gorm:"not null;check:stars >= 1 AND stars <= 5"`
	Body          string       `json:"body" gorm:"type:text"`
	IsVisible     bool         `json:"isVisible" gorm:"default:true"` // admin moderation
}
