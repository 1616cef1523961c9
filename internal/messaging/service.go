// Package messaging implements direct messages between usernames. The
// message table is a flat append-only log; conversations and unread counts
// are recomputed from it on every read.
package messaging

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"shift-tracker/internal/models"

	"gorm.io/gorm"
)

const (
	// MaxBodyLength is the maximum message length in characters.
	MaxBodyLength = 1000
	previewLength = 50
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmptyMessage   = errors.New("message cannot be empty")
	ErrMessageTooLong = errors.New("message is too long (max 1000 characters)")
)

// Conversation is a derived summary of all messages between the caller and
// one counterparty. It is never stored.
type Conversation struct {
	Username      string     `json:"username"`
	LastMessage   string     `json:"lastMessage"`
	LastTimestamp *time.Time `json:"lastTimestamp"`
	UnreadCount   int64      `json:"unreadCount"`
}

// Service runs all message operations over the flat message log.
type Service struct {
	DB *gorm.DB
	// AdminUsername is the fixed counterparty shown to non-administrative
	// users, present even before any message exists.
	AdminUsername string
}

func NewService(db *gorm.DB, adminUsername string) *Service {
	return &Service{DB: db, AdminUsername: adminUsername}
}

// Send validates and appends one message. Both usernames are lowercased;
// the recipient must be an existing account.
func (s *Service) Send(from, to, body string) (*models.Message, error) {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return nil, ErrMessageTooLong
	}

	var count int64
	if err := s.DB.Model(&models.User{}).
		Where("username = ?", to).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("look up recipient: %w", err)
	}
	if count == 0 {
		return nil, ErrUserNotFound
	}

	msg := models.Message{
		FromUser: from,
		ToUser:   to,
		Body:     body,
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	return &msg, nil
}

// ListWith returns both directions between self and other, oldest first,
// and marks the incoming direction as read. The other username must exist.
func (s *Service) ListWith(self, other string) ([]models.Message, error) {
	self = strings.ToLower(self)
	other = strings.ToLower(other)

	var count int64
	if err := s.DB.Model(&models.User{}).
		Where("username = ?", other).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if count == 0 {
		return nil, ErrUserNotFound
	}

	var messages []models.Message
	if err := s.DB.
		Where("(from_user = ? AND to_user = ?) OR (from_user = ? AND to_user = ?)",
			self, other, other, self).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	// viewing a conversation counts as reading it
	if err := s.MarkRead(self, other); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flags every unread message from other to self as read. Calling
// it again is a no-op.
func (s *Service) MarkRead(self, other string) error {
	self = strings.ToLower(self)
	other = strings.ToLower(other)

	if err := s.DB.Model(&models.Message{}).
		Where("from_user = ? AND to_user = ? AND is_read = ?", other, self, false).
		Update("is_read", true).Error; err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	return nil
}

// UnreadCount returns the number of unread messages addressed to self
// across all counterparties.
func (s *Service) UnreadCount(self string) (int64, error) {
	var count int64
	if err := s.DB.Model(&models.Message{}).
		Where("to_user = ? AND is_read = ?", strings.ToLower(self), false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}

// Conversations derives the caller's conversation list. Administrative
// callers see every counterparty they have exchanged messages with, newest
// conversation first. Everyone else sees a single conversation with the
// admin contact, even when no messages exist yet.
func (s *Service) Conversations(self string, administrative bool) ([]Conversation, error) {
	self = strings.ToLower(self)

	if !administrative {
		conv, err := s.conversationWith(self, s.AdminUsername)
		if err != nil {
			return nil, err
		}
		return []Conversation{conv}, nil
	}

	// newest first, so the first message seen per counterparty is the
	// conversation preview
	var messages []models.Message
	if err := s.DB.
		Where("from_user = ? OR to_user = ?", self, self).
		Order("created_at DESC, id DESC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	conversations := make([]Conversation, 0)
	seen := make(map[string]bool)
	for i := range messages {
		msg := &messages[i]
		other := msg.FromUser
		if other == self {
			other = msg.ToUser
		}
		if seen[other] {
			continue
		}
		seen[other] = true

		unread, err := s.unreadFrom(other, self)
		if err != nil {
			return nil, err
		}
		ts := msg.CreatedAt
		conversations = append(conversations, Conversation{
			Username:      other,
			LastMessage:   preview(msg.Body),
			LastTimestamp: &ts,
			UnreadCount:   unread,
		})
	}
	return conversations, nil
}

// conversationWith builds a single conversation summary, empty if the pair
// has no messages.
func (s *Service) conversationWith(self, other string) (Conversation, error) {
	conv := Conversation{Username: other}

	var last models.Message
	err := s.DB.
		Where("(from_user = ? AND to_user = ?) OR (from_user = ? AND to_user = ?)",
			self, other, other, self).
		Order("created_at DESC, id DESC").
		First(&last).Error
	switch {
	case err == nil:
		ts := last.CreatedAt
		conv.LastMessage = preview(last.Body)
		conv.LastTimestamp = &ts
	case errors.Is(err, gorm.ErrRecordNotFound):
		// no messages yet; the conversation entry still exists
	default:
		return conv, fmt.Errorf("load last message: %w", err)
	}

	unread, err := s.unreadFrom(other, self)
	if err != nil {
		return conv, err
	}
	conv.UnreadCount = unread
	return conv, nil
}

func (s *Service) unreadFrom(other, self string) (int64, error) {
	var count int64
	if err := s.DB.Model(&models.Message{}).
		Where("from_user = ? AND to_user = ? AND is_read = ?", other, self, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}

func preview(body string) string {
	runes := []rune(body)
	if len(runes) <= previewLength {
		return body
	}
	return string(runes[:previewLength]) + "..."
}
