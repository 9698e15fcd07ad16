package notification

import "time"

// Notification is one unread-counter entry produced by a domain event.
type Notification struct {
	Id        int64
	Type      string
	Message   string
	CreatedAt time.Time
	Read      bool
}
