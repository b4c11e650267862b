package chat

import (
	"sync"

	"github.com/zhouzirui/z-tavern/chatwidget/internal/model/chat"
)

// Store holds one widget's conversation in insertion order. It only grows.
type Store struct {
	mu       sync.RWMutex
	messages []chat.Message
}

// NewStore bootstraps an empty in-memory conversation.
func NewStore() *Store {
	return &Store{
		messages: make([]chat.Message, 0, 16),
	}
}

// Append adds a message to the end of the conversation.
func (s *Store) Append(message chat.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, message)
	s.mu.Unlock()
}

// Messages returns a copy of the conversation.
func (s *Store) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// Len reports how many messages were appended so far.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// LastAssistant returns the most recent assistant message.
func (s *Store) LastAssistant() (chat.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].IsAI {
			return s.messages[i], true
		}
	}
	return chat.Message{}, false
}
