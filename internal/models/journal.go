package models

import "time"

type JournalEntry struct {
	ID      uint64   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  uint64   `gorm:"index;not null" json:"-"`
	Title   string   `gorm:"type:varchar(255);not null" json:"title"`
	Content string   `gorm:"type:text;not null" json:"content"`
	Mood    string   `gorm:"type:varchar(32);index" json:"mood"`
	Tags    []string `gorm:"serializer:json;type:text" json:"tags"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (JournalEntry) TableName() string { return "journal_entries" }
