package session

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Role      string
	Content   string
	ToolsUsed []string
	Timestamp time.Time
}

// Session is the conversation history of one console process. It lives in
// memory only and has a single writer.
type Session struct {
	Key       string
	CreatedAt time.Time
	UpdatedAt time.Time
	Messages  []Message
}

// New starts an empty session. A blank key gets a generated "cli:<id>" key.
func New(key string) *Session {
	if key == "" {
		key = "cli:" + NewID()
	}
	now := time.Now()
	return &Session{
		Key:       key,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []Message{},
	}
}

func (s *Session) Add(role, content string) {
	s.AddWithTools(role, content, nil)
}

func (s *Session) AddWithTools(role, content string, toolsUsed []string) {
	now := time.Now()
	s.Messages = append(s.Messages, Message{
		Role:      role,
		Content:   content,
		ToolsUsed: toolsUsed,
		Timestamp: now,
	})
	s.UpdatedAt = now
}

func (s *Session) History(max int) []Message {
	msgs := s.Messages
	if max > 0 && len(msgs) > max {
		msgs = msgs[len(msgs)-max:]
	}
	out := make([]Message, 0, len(msgs))
	out = append(out, msgs...)
	return out
}

func (s *Session) Clear() {
	s.Messages = []Message{}
	s.UpdatedAt = time.Now()
}

func (s *Session) Len() int { return len(s.Messages) }

func NewID() string {
	return uuid.New().String()[:8]
}
