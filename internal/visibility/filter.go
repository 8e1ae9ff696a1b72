// Package visibility narrows entity collections to what a viewer's role is
// entitled to see. Every function is pure: no storage access, no mutation of
// the input slices, and an unrecognized role always yields an empty result.
//
// These filters sit behind the service boundary next to the RBAC gate; data
// must pass through them before it ever reaches a presentation layer.
package visibility

import (
	id "meridian/pkg/domain"

	"meridian/internal/domain"
	"meridian/internal/rbac"
)

// FilterJourneys returns the journeys the given role may see.
//
// The principal sees everything. Family roles see journeys that have reached
// approval and are not invisible. An advisor sees only what their grant
// covers, never invisible journeys; a nil grant means no access.
func FilterJourneys(journeys []domain.Journey, role rbac.Role, grant *domain.AdvisorGrant) []domain.Journey {
	switch role {
	case rbac.RolePrincipal:
		return append([]domain.Journey(nil), journeys...)

	case rbac.RoleSpouse, rbac.RoleHeir:
		visible := []domain.Journey{}
		for _, j := range journeys {
			if j.HasReachedApproval() && !j.IsInvisible {
				visible = append(visible, j)
			}
		}
		return visible

	case rbac.RoleAdvisor:
		if grant == nil {
			return []domain.Journey{}
		}
		visible := []domain.Journey{}
		for _, j := range journeys {
			if j.IsInvisible {
				continue
			}
			if grant.AllowsJourney(j.ID) {
				visible = append(visible, j)
			}
		}
		return visible

	default:
		return []domain.Journey{}
	}
}

// FilterMemories returns the vault items the given role may see.
//
// The principal sees everything, locked or not. Family roles see items
// explicitly shared with their role and not locked. An advisor sees shared,
// unlocked items only when their grant carries vault access.
func FilterMemories(memories []domain.MemoryItem, role rbac.Role, grant *domain.AdvisorGrant) []domain.MemoryItem {
	switch role {
	case rbac.RolePrincipal:
		return append([]domain.MemoryItem(nil), memories...)

	case rbac.RoleSpouse, rbac.RoleHeir:
		visible := []domain.MemoryItem{}
		for _, m := range memories {
			if m.SharedWith(role) {
				visible = append(visible, m)
			}
		}
		return visible

	case rbac.RoleAdvisor:
		if grant == nil || !grant.VaultAccess {
			return []domain.MemoryItem{}
		}
		visible := []domain.MemoryItem{}
		for _, m := range memories {
			if m.IsShared && !m.IsLocked {
				visible = append(visible, m)
			}
		}
		return visible

	default:
		return []domain.MemoryItem{}
	}
}

// FilterThreads returns the message threads the given viewer may see. The
// principal sees every thread; everyone else sees only threads they
// participate in.
func FilterThreads(threads []domain.MessageThread, role rbac.Role, viewerID id.UserID) []domain.MessageThread {
	switch role {
	case rbac.RolePrincipal:
		return append([]domain.MessageThread(nil), threads...)

	case rbac.RoleSpouse, rbac.RoleHeir, rbac.RoleAdvisor:
		visible := []domain.MessageThread{}
		for _, t := range threads {
			if t.HasParticipant(viewerID) {
				visible = append(visible, t)
			}
		}
		return visible

	default:
		return []domain.MessageThread{}
	}
}

// FilterMessages returns the messages whose thread is visible to the viewer.
// Messages never outlive their thread's visibility: a message in a thread the
// viewer cannot see is dropped regardless of who authored it.
func FilterMessages(messages []domain.Message, role rbac.Role, viewerID id.UserID, threads []domain.MessageThread) []domain.Message {
	visibleThreads := FilterThreads(threads, role, viewerID)

	allowed := make(map[id.ThreadID]struct{}, len(visibleThreads))
	for _, t := range visibleThreads {
		allowed[t.ID] = struct{}{}
	}

	visible := []domain.Message{}
	for _, m := range messages {
		if _, ok := allowed[m.ThreadID]; ok {
			visible = append(visible, m)
		}
	}
	return visible
}
