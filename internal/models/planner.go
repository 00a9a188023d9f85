package models

import "time"

type Todo struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint64     `gorm:"index;not null" json:"-"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Priority    string     `gorm:"type:varchar(8);not null" json:"priority"` // low, medium, high
	Completed   bool       `gorm:"not null" json:"completed"`
	DueDate     *time.Time `json:"due_date"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (Todo) TableName() string { return "todos" }

// TimetableEntry is one block in the weekly planner grid. A user gets at
// most one entry per (day, start, end); re-posting the same slot updates it.
type TimetableEntry struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64 `gorm:"index:idx_timetable_slot,unique,priority:1;not null" json:"-"`
	Day       string `gorm:"type:varchar(9);index:idx_timetable_slot,unique,priority:2;not null" json:"day"`
	StartTime string `gorm:"type:varchar(5);index:idx_timetable_slot,unique,priority:3;not null" json:"start_time"`
	EndTime   string `gorm:"type:varchar(5);index:idx_timetable_slot,unique,priority:4;not null" json:"end_time"`
	Activity  string `gorm:"type:varchar(255);not null" json:"activity"`
	Color     string `gorm:"type:varchar(16);not null" json:"color"`

	CreatedAt time.Time `json:"created_at"`
}

func (TimetableEntry) TableName() string { return "timetable_entries" }
