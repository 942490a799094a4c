package models

import (
	"time"
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	DeviceToken  *string   `gorm:"type:varchar(512)" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Relations
	OwnedTasks []Task `gorm:"foreignKey:OwnerID" json:"-"`
}

// HasDeviceToken reports whether the user registered a device for push delivery.
func (u *User) HasDeviceToken() bool {
	return u.DeviceToken != nil && *u.DeviceToken != ""
}
