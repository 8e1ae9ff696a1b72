package domain

import (
	"time"

	id "meridian/pkg/domain"

	"meridian/internal/rbac"
)

// MemoryItem is a vault entry: a document, recording, or note the principal
// keeps in their legacy vault.
//
// Invariants:
//   - A locked item is never visible to anyone but the principal, even when
//     shared.
//   - SharingRoles is consulted only when IsShared is true.
type MemoryItem struct {
	ID           id.MemoryID `json:"id"`
	OwnerID      id.UserID   `json:"owner_id"`
	Title        string      `json:"title"`
	Category     string      `json:"category"`
	IsShared     bool        `json:"is_shared"`
	IsLocked     bool        `json:"is_locked"`
	SharingRoles []rbac.Role `json:"sharing_roles"`
	CreatedAt    time.Time   `json:"created_at"`
}

// SharedWith reports whether the item is explicitly shared with the given
// role. Locked items are never shared.
func (m MemoryItem) SharedWith(role rbac.Role) bool {
	if !m.IsShared || m.IsLocked {
		return false
	}
	for _, r := range m.SharingRoles {
		if r == role {
			return true
		}
	}
	return false
}
