package chat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout 消息时间戳的展示格式
const TimestampLayout = "15:04"

// Message is one entry of the widget conversation. Messages are never
// mutated after creation.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	IsAI      bool      `json:"isAI"`
	CreatedAt time.Time `json:"-"`
}

// NewUserMessage builds a message typed by the user.
func NewUserMessage(text string) Message {
	return newMessage(text, false)
}

// NewAssistantMessage builds a reply from the backend.
func NewAssistantMessage(text string) Message {
	return newMessage(text, true)
}

func newMessage(text string, isAI bool) Message {
	return Message{
		ID:        newID(),
		Text:      text,
		IsAI:      isAI,
		CreatedAt: time.Now(),
	}
}

// newID 生成按时间有序的 UUIDv7，失败时退回随机 UUID
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Timestamp renders the creation time for display.
func (m Message) Timestamp() string {
	return m.CreatedAt.Format(TimestampLayout)
}

type messageJSON struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsAI      bool   `json:"isAI"`
	Timestamp string `json:"timestamp"`
}

// MarshalJSON emits the {id, text, isAI, timestamp} shape.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		ID:        m.ID,
		Text:      m.Text,
		IsAI:      m.IsAI,
		Timestamp: m.Timestamp(),
	})
}
