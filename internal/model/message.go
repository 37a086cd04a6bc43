package model

import (
	"strings"
	"time"
)

// Message mirrors the `messages` table. Messages flow between two
// users (typically a matched donor and patient) and are never edited
// after creation; only the read flag flips.
type Message struct {
	ID          uint64    `json:"id"`
	SenderID    uint64    `json:"senderId"`
	RecipientID uint64    `json:"recipientId"`
	Content     string    `json:"content"`
	IsRead      bool      `json:"isRead"`
	CreatedAt   time.Time `json:"timestamp"`
}

// ValidateMessage checks an outgoing message.
func ValidateMessage(m *Message) map[string]string {
	errs := map[string]string{}
	if m.SenderID == 0 {
		errs["senderId"] = "required"
	}
	if m.RecipientID == 0 {
		errs["recipientId"] = "required"
	}
	if m.SenderID != 0 && m.SenderID == m.RecipientID {
		errs["recipientId"] = "cannot message yourself"
	}
	if strings.TrimSpace(m.Content) == "" {
		errs["content"] = "required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
