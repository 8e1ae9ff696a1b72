// Package audit implements the append-only compliance ledger. Events are
// created once via Ledger.Log and never removed; the single sanctioned
// mutation is GDPR anonymization, which rewrites the user reference on
// matching events and nothing else.
package audit

import (
	"fmt"
	"strings"
	"time"
)

// Event is one immutable ledger record.
//
// Event names follow the lowercase "{resourceType}.{action}" convention
// (journey.approved, vault.locked). Log-search and compliance-export tooling
// key on this format; do not deviate from it.
type Event struct {
	ID            string         `json:"id"`
	Timestamp     time.Time      `json:"timestamp"`
	Event         string         `json:"event"`
	UserID        string         `json:"user_id"`
	ResourceID    string         `json:"resource_id"`
	ResourceType  string         `json:"resource_type"`
	Context       string         `json:"context"`
	Action        string         `json:"action"`
	PreviousState string         `json:"previous_state,omitempty"`
	NewState      string         `json:"new_state,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Entry is the caller-supplied portion of an event. The ledger assigns the
// ID and timestamp on append.
type Entry struct {
	Event         string
	UserID        string
	ResourceID    string
	ResourceType  string
	Context       string
	Action        string
	PreviousState string
	NewState      string
	Metadata      map[string]any
}

// EventName builds the canonical "{resourceType}.{action}" event name.
func EventName(resourceType, action string) string {
	return strings.ToLower(resourceType) + "." + strings.ToLower(action)
}

// Filters narrows a search. Zero-valued fields are ignored; all supplied
// fields must match (AND).
type Filters struct {
	UserID       string
	ResourceID   string
	ResourceType string
	Context      string
	Event        string
	From         time.Time
	To           time.Time
}

// matches applies the AND semantics over the supplied filter fields.
func (f Filters) matches(e Event) bool {
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.ResourceID != "" && e.ResourceID != f.ResourceID {
		return false
	}
	if f.ResourceType != "" && e.ResourceType != f.ResourceType {
		return false
	}
	if f.Context != "" && e.Context != f.Context {
		return false
	}
	if f.Event != "" && e.Event != f.Event {
		return false
	}
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Timestamp.After(f.To) {
		return false
	}
	return true
}

// redactedUserID mints the replacement identifier stamped onto anonymized
// events. The prefix keeps redacted rows recognizable in exports.
func redactedUserID(token string) string {
	return fmt.Sprintf("redacted-%s", token)
}
