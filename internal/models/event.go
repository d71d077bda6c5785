package models

import "time"

// Типы событий жизненного цикла учетной записи.
const (
	EventUserRegistered = "user.registered"
	EventUserUpdated    = "user.updated"
)

// UserEvent сообщение, которое публикуется в брокер при изменении учетной записи.
type UserEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}
