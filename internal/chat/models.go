package chat

import "time"

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Session is one conversation thread. At most one session per user is
// active; creating a new one deactivates the rest.
type Session struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID string    `gorm:"type:varchar(26);uniqueIndex;not null" json:"session_id"`
	UserID    uint64    `gorm:"index;not null" json:"-"`
	Active    bool      `gorm:"index;not null" json:"active"`
	CreatedAt time.Time `json:"timestamp"`
	UpdatedAt time.Time `json:"-"`

	Messages []Message `gorm:"foreignKey:SessionID;references:SessionID" json:"messages"`
}

func (Session) TableName() string { return "chat_sessions" }

// Message history is append-only: rows are never edited or removed, and
// insertion order (the auto-increment ID) is chronological order.
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID string    `gorm:"type:varchar(26);index;not null" json:"-"`
	Sender    string    `gorm:"type:varchar(8);not null" json:"sender"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"timestamp"`
}

func (Message) TableName() string { return "chat_messages" }
