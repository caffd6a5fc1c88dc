package archive

import (
	"time"

	"github.com/ethanbaker/essaychat/pkg/transcript"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ArchivedSession groups the archived turns of one conversation
type ArchivedSession struct {
	ID        uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	Turns []*TurnRecord `json:"turns,omitempty" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

// TurnRecord is the persisted form of a transcript turn
type TurnRecord struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	CreatedAt time.Time `json:"-"`

	SessionID uuid.UUID `json:"session_id" gorm:"type:char(36);not null;index:idx_session_position"`
	Position  int       `json:"position" gorm:"not null;index:idx_session_position"` // Insertion index within the session
	TurnID    string    `json:"turn_id" gorm:"size:64;not null;uniqueIndex"`
	Role      string    `json:"role" gorm:"size:20;not null"`
	Content   string    `json:"content" gorm:"type:text"`
	SentAt    time.Time `json:"sent_at" gorm:"not null"` // Turn creation time
}

// NewTurnRecord converts a turn at the given insertion index into its database row
func NewTurnRecord(sessionID uuid.UUID, position int, turn transcript.Turn) *TurnRecord {
	return &TurnRecord{
		SessionID: sessionID,
		Position:  position,
		TurnID:    turn.ID,
		Role:      string(turn.Role),
		Content:   turn.Content,
		SentAt:    turn.CreatedAt,
	}
}

// Turn converts the row back into a transcript turn
func (r *TurnRecord) Turn() transcript.Turn {
	return transcript.Turn{
		ID:        r.TurnID,
		Role:      transcript.Role(r.Role),
		Content:   r.Content,
		CreatedAt: r.SentAt,
	}
}
