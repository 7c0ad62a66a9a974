package models

import "gorm.io/gorm"

// Schedule is one row of the time-slot catalog ("18:00"–"19:30"). Reservations
// and preference sets reference slots by ID, never by raw time strings.
type Schedule struct {
	gorm.Model
	StartTime string `json:"startTime" gorm:"not null"` // HH:MM, 24h
	EndTime   string `json:"endTime" gorm:"not null"`
	SortOrder int    `json:"sortOrder"`
	IsActive  bool   `json:"isActive" gorm:"default:true;index"`
}
