package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaxPreferenceSetsPerUser caps how many independent preference sets one user
// may keep.
const MaxPreferenceSetsPerUser = 5

// Preference is one preference set: the days, schedule slots and courts a user
// is willing to play. A user can hold several sets, each validated against the
// catalogs on write.
type Preference struct {
	gorm.Model
	UserID      uint           `json:"userID" gorm:"not null;index"`
	User        *User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Days        datatypes.JSON `json:"days"`        // []string, e.g. ["Monday","Wednesday"]
	ScheduleIDs datatypes.JSON `json:"scheduleIDs"` // []uint
	CourtIDs    datatypes.JSON `json:"courtIDs"`    // []uint
}

func (p *Preference) DayList() []string {
	var days []string
	if p.Days != nil {
		json.Unmarshal(p.Days, &days)
	}
	return days
}

func (p *Preference) ScheduleIDList() []uint {
	var ids []uint
	if p.ScheduleIDs != nil {
		json.Unmarshal(p.ScheduleIDs, &ids)
	}
	return ids
}

func (p *Preference) CourtIDList() []uint {
	var ids []uint
	if p.CourtIDs != nil {
		json.Unmarshal(p.CourtIDs, &ids)
	}
	return ids
}
