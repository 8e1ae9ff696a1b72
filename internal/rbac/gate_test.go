package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// RBAC Gate Tests
// =============================================================================
// Justification for unit tests: the gate is the precondition for every state
// transition and every read path; its default-deny behavior is a security
// invariant that must hold for arbitrary unknown inputs.

func TestHasPermission_GrantedAndDenied(t *testing.T) {
	gate := NewGate(DefaultMatrix())

	t.Run("relationship manager can write journeys in b2b", func(t *testing.T) {
		assert.True(t, gate.HasPermission(ContextB2B, RoleRelationshipManager, PermissionWrite, ResourceJourney))
	})

	t.Run("relationship manager cannot delete journeys", func(t *testing.T) {
		assert.False(t, gate.HasPermission(ContextB2B, RoleRelationshipManager, PermissionDelete, ResourceJourney))
	})

	t.Run("compliance officer can approve but not write", func(t *testing.T) {
		assert.True(t, gate.HasPermission(ContextB2B, RoleComplianceOfficer, PermissionApprove, ResourceJourney))
		assert.False(t, gate.HasPermission(ContextB2B, RoleComplianceOfficer, PermissionWrite, ResourceJourney))
	})

	t.Run("role grants do not leak across contexts", func(t *testing.T) {
		// Principal is a b2c role; the same name means nothing in b2b.
		assert.True(t, gate.HasPermission(ContextB2C, RolePrincipal, PermissionWrite, ResourceJourney))
		assert.False(t, gate.HasPermission(ContextB2B, RolePrincipal, PermissionWrite, ResourceJourney))
	})
}

func TestHasPermission_DefaultDeny(t *testing.T) {
	gate := NewGate(DefaultMatrix())

	tests := []struct {
		name     string
		dc       DomainContext
		role     Role
		action   Permission
		resource Resource
	}{
		{"unknown context", "partner", RolePrincipal, PermissionRead, ResourceJourney},
		{"unknown role", ContextB2C, "butler", PermissionRead, ResourceJourney},
		{"unknown resource", ContextB2C, RolePrincipal, PermissionRead, "yacht"},
		{"unknown action", ContextB2C, RolePrincipal, "SAIL", ResourceJourney},
		{"empty everything", "", "", "", ""},
		{"heir cannot write", ContextB2C, RoleHeir, PermissionWrite, ResourceJourney},
		{"spouse cannot export audit", ContextB2C, RoleSpouse, PermissionExport, ResourceAudit},
		{"support agent cannot approve", ContextAdmin, RoleSupportAgent, PermissionApprove, ResourceJourney},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, gate.HasPermission(tt.dc, tt.role, tt.action, tt.resource))
		})
	}
}

// TestDefaultDeny_ExhaustiveMisses sweeps every declared enum combination not
// present in the matrix and asserts denial. Guards against a future edit
// accidentally introducing a permissive fallback.
func TestDefaultDeny_ExhaustiveMisses(t *testing.T) {
	matrix := DefaultMatrix()
	gate := NewGate(matrix)

	contexts := []DomainContext{ContextB2C, ContextB2B, ContextAdmin}
	roles := []Role{
		RolePrincipal, RoleSpouse, RoleHeir, RoleAdvisor,
		RoleRelationshipManager, RoleComplianceOfficer, RoleInstitutionAdmin,
		RolePlatformAdmin, RoleSupportAgent,
	}
	resources := []Resource{
		ResourceJourney, ResourceVault, ResourceClient, ResourceContract,
		ResourceThread, ResourceAudit, ResourceInstitution,
	}
	actions := []Permission{
		PermissionRead, PermissionWrite, PermissionDelete, PermissionApprove,
		PermissionExport, PermissionConfigure, PermissionAssign,
	}

	for _, dc := range contexts {
		for _, role := range roles {
			for _, resource := range resources {
				for _, action := range actions {
					granted := matrix.Permissions(dc, role, resource).Has(action)
					assert.Equal(t, granted, gate.HasPermission(dc, role, action, resource),
						"gate must agree with the matrix for (%s,%s,%s,%s)", dc, role, action, resource)
					if !granted {
						assert.False(t, gate.HasPermission(dc, role, action, resource))
					}
				}
			}
		}
	}
}

func TestNewMatrix_UnionsDuplicateRows(t *testing.T) {
	m := NewMatrix([]Grant{
		{ContextB2B, RoleRelationshipManager, ResourceJourney, []Permission{PermissionRead}},
		{ContextB2B, RoleRelationshipManager, ResourceJourney, []Permission{PermissionWrite}},
	})

	set := m.Permissions(ContextB2B, RoleRelationshipManager, ResourceJourney)
	assert.True(t, set.Has(PermissionRead))
	assert.True(t, set.Has(PermissionWrite))
	assert.False(t, set.Has(PermissionDelete))
}
