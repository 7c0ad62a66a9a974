package models

import "gorm.io/gorm"

// Category is a skill/level bucket players are grouped into (e.g. "Quinta"
// through "Primera"). Level orders categories from beginner upwards.
type Category struct {
	gorm.Model
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Level       int    `json:"level" gorm:"index"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive" gorm:"default:true"`
	SortOrder   int    `json:"sortOrder"`
}
