package model

import (
	"errors"
	"fmt"
	"time"

	"amresponde/platform"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound covers both "does not exist" and "belongs to someone else".
// The two cases are never distinguished, so conversation ids cannot be
// enumerated by probing.
var ErrNotFound = errors.New("conversation not found")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// listLimit caps ListConversations; the sidebar never pages past this.
const listLimit = 20

// titleLimit is the rune cap for a derived conversation title.
const titleLimit = 50

type Message struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

type MessageList []Message

// Conversation is one authenticated chat thread. The message list lives in a
// single JSON column and is only ever replaced wholesale, never edited in
// place.
type Conversation struct {
	ID          string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      uint        `gorm:"index:idx_user_last_updated" json:"user_id"`
	Title       string      `gorm:"type:varchar(64)" json:"title"`
	Messages    MessageList `gorm:"type:json;serializer:json" json:"messages"`
	LastUpdated time.Time   `gorm:"index:idx_user_last_updated;index:idx_last_updated" json:"last_updated"`
}

// GetConversation returns the conversation only when it exists and belongs to
// userID; any other outcome reads as absent.
func GetConversation(id string, userID uint) (*Conversation, error) {
	var conv Conversation
	db := platform.DB
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return &conv, nil
}

// DeriveTitle builds a conversation title from its first user message.
func DeriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) > titleLimit {
		return string(runes[:titleLimit]) + "..."
	}
	return text
}

// SaveConversationTurn appends a user/assistant pair as one write and returns
// the conversation id. An empty conversationID creates a new conversation
// with a derived title; a non-empty id that cannot be resolved for userID
// fails with ErrNotFound instead of silently starting a fresh thread.
func SaveConversationTurn(conversationID string, userID uint, userText, aiText string) (string, error) {
	now := time.Now()
	ts := now.UnixMilli()
	pair := MessageList{
		{ID: fmt.Sprintf("user_%d", ts), Role: RoleUser, Content: userText, Timestamp: ts},
		{ID: fmt.Sprintf("ai_%d", ts+1), Role: RoleAssistant, Content: aiText, Timestamp: ts + 1},
	}

	if conversationID != "" {
		conv, err := GetConversation(conversationID, userID)
		if err != nil {
			return "", err
		}
		if conv == nil {
			return "", ErrNotFound
		}
		if err := replaceMessages(conv.ID, append(conv.Messages, pair...), now); err != nil {
			return "", err
		}
		return conv.ID, nil
	}

	conv := &Conversation{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       DeriveTitle(userText),
		Messages:    pair,
		LastUpdated: now,
	}
	if err := platform.DB.Create(conv).Error; err != nil {
		return "", fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv.ID, nil
}

// replaceMessages writes the full message array back in a single update.
// Two writers that loaded the same snapshot race here: the later update wins
// and the earlier one's appended messages are lost. Accepted behavior, the
// store gives atomicity per document and nothing more.
func replaceMessages(id string, messages MessageList, at time.Time) error {
	err := platform.DB.Model(&Conversation{}).
		Where("id = ?", id).
		Select("messages", "last_updated").
		Updates(&Conversation{Messages: messages, LastUpdated: at}).Error
	if err != nil {
		return fmt.Errorf("failed to update conversation messages: %w", err)
	}
	return nil
}

// ListConversations returns up to 20 of the owner's conversations, most
// recently updated first.
func ListConversations(userID uint) ([]Conversation, error) {
	var convs []Conversation
	err := platform.DB.Where("user_id = ?", userID).
		Order("last_updated DESC").
		Limit(listLimit).
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return convs, nil
}

// DeleteConversation removes the conversation only when userID owns it.
func DeleteConversation(id string, userID uint) error {
	result := platform.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&Conversation{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete conversation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
