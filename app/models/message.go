package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageThread is a conversation between two or more users.
type MessageThread struct {
	ID             string              `gorm:"type:char(36);primaryKey" json:"id"`
	Subject        string              `gorm:"type:varchar(200);default:''" json:"subject"`
	CreatedBy      string              `gorm:"type:varchar(128);not null" json:"createdBy"`
	LastMessage    string              `gorm:"type:varchar(100);default:''" json:"lastMessage"`
	LastMessageAt  *time.Time          `gorm:"type:timestamp;default:null;index" json:"lastMessageAt,omitempty"`
	LastMessageBy  string              `gorm:"type:varchar(128);default:''" json:"lastMessageBy"`
	Participants   []ThreadParticipant `gorm:"foreignKey:ThreadID" json:"-"`
	ParticipantIDs []string            `gorm:"-" json:"participantIds"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (t *MessageThread) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// AfterFind fills ParticipantIDs from the preloaded join rows.
func (t *MessageThread) AfterFind(tx *gorm.DB) error {
	if len(t.Participants) == 0 {
		return nil
	}
	t.ParticipantIDs = make([]string, 0, len(t.Participants))
	for _, p := range t.Participants {
		t.ParticipantIDs = append(t.ParticipantIDs, p.UserID)
	}
	return nil
}

// HasParticipant reports whether userID takes part in the thread.
func (t *MessageThread) HasParticipant(userID string) bool {
	for _, id := range t.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type ThreadParticipant struct {
	ThreadID   string     `gorm:"type:char(36);primaryKey" json:"threadId"`
	UserID     string     `gorm:"type:varchar(128);primaryKey;index" json:"userId"`
	LastReadAt *time.Time `gorm:"type:timestamp;default:null" json:"lastReadAt,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ThreadID  string    `gorm:"type:char(36);not null;index" json:"threadId"`
	SenderID  string    `gorm:"type:varchar(128);not null" json:"senderId"`
	Body      string    `gorm:"type:text;not null" json:"body" validate:"required,max=5000"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}
