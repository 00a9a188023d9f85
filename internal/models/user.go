package models

import "time"

// User is the identity record behind every bearer token. OAuth-created
// accounts have no password hash; password accounts have no provider.
type User struct {
	ID           uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     *string `gorm:"type:varchar(64);uniqueIndex" json:"username"`
	PasswordHash *string `gorm:"type:varchar(100)" json:"-"`
	Email        *string `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Provider     *string `gorm:"type:varchar(32)" json:"provider,omitempty"`
	DisplayName  *string `gorm:"type:varchar(128)" json:"name,omitempty"`
	AvatarURL    *string `gorm:"type:varchar(512)" json:"picture,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (User) TableName() string { return "users" }
