package models

import "gorm.io/gorm"

type Court struct {
	gorm.Model
	Name     string `json:"name" gorm:"uniqueIndex;not null"`
	Surface  string `json:"surface"` // crystal, concrete, grass
	Indoor   bool   `json:"indoor"`
	Capacity int    `json:"capacity" gorm:"default:4"` // max players per slot
	PhotoURL string `json:"photoURL"`
	IsActive bool   `json:"isActive" gorm:"default:true;index"`
}
