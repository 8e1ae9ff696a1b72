// Package domain holds the entity records the concierge core operates on:
// journeys, vault memories, message threads, and advisor grants. Entities
// carry their own sharing and visibility fields; those fields are mutated
// only by the owning service, never by the visibility filters.
package domain

import (
	"time"

	id "meridian/pkg/domain"

	"meridian/internal/workflow"
)

// Journey is the aggregate root for a client's wealth journey.
//
// Invariants:
//   - Status changes only through the workflow engine; no other code path
//     writes Status.
//   - IsInvisible hides the journey from every non-principal viewer,
//     regardless of status.
//   - Version increments on every persisted mutation and backs the
//     optimistic-concurrency check at the store boundary.
type Journey struct {
	ID            id.JourneyID     `json:"id"`
	InstitutionID id.InstitutionID `json:"institution_id"`
	OwnerID       id.UserID        `json:"owner_id"`
	Title         string           `json:"title"`
	Status        workflow.Status  `json:"status"`
	IsInvisible   bool             `json:"is_invisible"`
	Version       int64            `json:"version"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// approvedThreshold lists the statuses at or past compliance approval.
// Dependent-role visibility keys off this set.
var approvedThreshold = map[workflow.Status]struct{}{
	workflow.StatusApproved:  {},
	workflow.StatusPresented: {},
	workflow.StatusExecuted:  {},
	workflow.StatusArchived:  {},
}

// HasReachedApproval reports whether the journey's status is at or past the
// approval threshold in its lifecycle.
func (j Journey) HasReachedApproval() bool {
	_, ok := approvedThreshold[j.Status]
	return ok
}
