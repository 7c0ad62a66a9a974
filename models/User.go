package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName           string    `json:"firstName"`
	LastName            string    `json:"lastName"`
	Email               string    `json:"email" gorm:"uniqueIndex"`
	PhoneNumber         string    `json:"phoneNumber"`
	Password            string    `json:"-"`
	SocialLogin         bool      `json:"socialLogin"`
	SocialProvider      string    `json:"socialProvider"`
	AvatarURL           string    `json:"avatarURL"`
	Bio                 string    `json:"bio"`
	CategoryID          *uint     `json:"categoryID" gorm:"index"` // skill category
	Category            *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Enabled             *bool     `json:"enabled" gorm:"default:true;index"`
	AllowsNotifications *bool     `json:"allowsNotifications" gorm:"default:true"`
	RatingAvg           float32   `json:"ratingAvg"`   // cached from reviews
	RatingCount         int       `json:"ratingCount"` // cached from reviews
	Role                string    `json:"role" gorm:"type:varchar(20);default:user;index"` // user, staff, admin, super_admin
}

// IsEnabled treats a missing flag as enabled; disabling is always explicit.
func (u *User) IsEnabled() bool {
	return u.Enabled == nil || *u.Enabled
}

// MarshalJSON hides the password hash even if a caller serializes the struct
// directly instead of going through a response helper.
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		Password string `json:"password,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(u),
	}
	return json.Marshal(aux)
}
