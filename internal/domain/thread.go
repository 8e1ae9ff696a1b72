package domain

import (
	"time"

	id "meridian/pkg/domain"
)

// MessageThread is a conversation between the principal and their circle.
// Participation is the sole sharing mechanism for threads: there is no
// per-thread role grant.
type MessageThread struct {
	ID           id.ThreadID `json:"id"`
	Subject      string      `json:"subject"`
	Participants []id.UserID `json:"participants"`
	CreatedAt    time.Time   `json:"created_at"`
}

// HasParticipant reports whether the given user is part of the thread.
func (t MessageThread) HasParticipant(userID id.UserID) bool {
	for _, p := range t.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Message is a single entry in a thread. Messages inherit their thread's
// visibility.
type Message struct {
	ID       string      `json:"id"`
	ThreadID id.ThreadID `json:"thread_id"`
	AuthorID id.UserID   `json:"author_id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
}
