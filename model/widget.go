package model

import (
	"errors"
	"fmt"
	"time"

	"amresponde/platform"

	"gorm.io/gorm"
)

const (
	TypeText  = "text"
	TypeImage = "image"
	TypeVideo = "video"
)

// WidgetMessage carries a display-hint type on top of the plain message
// shape. No binary media is ever produced for image/video, the hint only
// selects the stub rendering.
type WidgetMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

type WidgetMessageList []WidgetMessage

// WidgetConversation is the anonymous chat surface, keyed by a
// client-generated session token. No owner, no title; there is no uniqueness
// constraint on session_id, lookup is first-match-wins.
type WidgetConversation struct {
	ID        uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string            `gorm:"type:varchar(64);index:idx_widget_session" json:"session_id"`
	Messages  WidgetMessageList `gorm:"type:json;serializer:json" json:"messages"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func GetWidgetConversation(sessionID string) (*WidgetConversation, error) {
	var conv WidgetConversation
	err := platform.DB.Where("session_id = ?", sessionID).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return &conv, nil
}

// AppendWidgetMessage creates the session's conversation on first use,
// otherwise replaces the message column with history plus the new message.
func AppendWidgetMessage(sessionID string, msg WidgetMessage) error {
	conv, err := GetWidgetConversation(sessionID)
	if err != nil {
		return err
	}
	if conv == nil {
		conv = &WidgetConversation{
			SessionID: sessionID,
			Messages:  WidgetMessageList{msg},
		}
		if err := platform.DB.Create(conv).Error; err != nil {
			return fmt.Errorf("failed to create widget conversation: %w", err)
		}
		return nil
	}

	err = platform.DB.Model(conv).
		Select("messages").
		Updates(&WidgetConversation{Messages: append(conv.Messages, msg)}).Error
	if err != nil {
		return fmt.Errorf("failed to update widget conversation: %w", err)
	}
	return nil
}

// PurgeStaleWidgetConversations drops anonymous sessions idle beyond the
// retention window. Run daily from the cron job in main.
func PurgeStaleWidgetConversations(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result := platform.DB.Where("updated_at < ?", cutoff).Delete(&WidgetConversation{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge widget conversations: %w", result.Error)
	}
	return result.RowsAffected, nil
}
