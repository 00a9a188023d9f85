package models

import "time"

// EmotionLog is one mood check-in. Everything except the mood itself is
// optional context the user may attach.
type EmotionLog struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64 `gorm:"index;not null" json:"-"`
	Mood      string `gorm:"type:varchar(32);not null" json:"mood"`
	Note      string `gorm:"type:text" json:"note"`
	Intensity *int   `json:"intensity"`
	Location  string `gorm:"type:varchar(128)" json:"location"`
	Company   string `gorm:"type:varchar(128)" json:"company"`
	Activity  string `gorm:"type:varchar(128)" json:"activity"`

	CreatedAt time.Time `gorm:"index" json:"timestamp"`
}

func (EmotionLog) TableName() string { return "emotion_logs" }

// UserOptions holds the per-user custom pick lists shown alongside a mood
// check-in. One row per user, lists grow add-to-set.
type UserOptions struct {
	ID         uint64   `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID     uint64   `gorm:"uniqueIndex;not null" json:"-"`
	Locations  []string `gorm:"serializer:json;type:text" json:"locations"`
	Companies  []string `gorm:"serializer:json;type:text" json:"companies"`
	Activities []string `gorm:"serializer:json;type:text" json:"activities"`

	UpdatedAt time.Time `json:"-"`
}

func (UserOptions) TableName() string { return "user_options" }
