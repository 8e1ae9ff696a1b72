package domain

import (
	id "meridian/pkg/domain"
)

// GrantScope is the breadth of an advisor's delegated journey access.
type GrantScope string

const (
	// GrantScopeAll grants every non-invisible journey.
	GrantScopeAll GrantScope = "all"
	// GrantScopeNone grants nothing; an explicit revocation that is kept on
	// record rather than deleted.
	GrantScopeNone GrantScope = "none"
	// GrantScopeList grants only the journeys enumerated in JourneyIDs.
	GrantScopeList GrantScope = "list"
)

// AdvisorGrant is the principal's delegation record for one advisor. The
// absence of a grant means no access: delegation is opt-in per advisor.
type AdvisorGrant struct {
	AdvisorID   id.UserID      `json:"advisor_id"`
	Scope       GrantScope     `json:"scope"`
	JourneyIDs  []id.JourneyID `json:"journey_ids,omitempty"`
	VaultAccess bool           `json:"vault_access"`
}

// AllowsJourney reports whether the grant covers the given journey id.
// Invisibility is the caller's concern; the grant only answers scope.
func (g AdvisorGrant) AllowsJourney(journeyID id.JourneyID) bool {
	switch g.Scope {
	case GrantScopeAll:
		return true
	case GrantScopeList:
		for _, jid := range g.JourneyIDs {
			if jid == journeyID {
				return true
			}
		}
		return false
	default:
		return false
	}
}
