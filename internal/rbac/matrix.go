package rbac

// Matrix is the static (context, role) → (resource → permissions) mapping.
// Built once at process start and treated as read-only thereafter; absence of
// an entry means "no permission".
type Matrix map[DomainContext]map[Role]map[Resource]PermissionSet

// Grant is one declarative row of the matrix configuration.
type Grant struct {
	Context     DomainContext
	Role        Role
	Resource    Resource
	Permissions []Permission
}

// NewMatrix builds an immutable matrix from declarative grants. Duplicate
// (context, role, resource) rows union their permissions.
func NewMatrix(grants []Grant) Matrix {
	m := make(Matrix)
	for _, g := range grants {
		roles, ok := m[g.Context]
		if !ok {
			roles = make(map[Role]map[Resource]PermissionSet)
			m[g.Context] = roles
		}
		resources, ok := roles[g.Role]
		if !ok {
			resources = make(map[Resource]PermissionSet)
			roles[g.Role] = resources
		}
		set, ok := resources[g.Resource]
		if !ok {
			set = make(PermissionSet, len(g.Permissions))
			resources[g.Resource] = set
		}
		for _, p := range g.Permissions {
			set[p] = struct{}{}
		}
	}
	return m
}

// Permissions returns the allowed actions for (context, role, resource).
// Any lookup miss yields a nil set, which denies everything.
func (m Matrix) Permissions(dc DomainContext, role Role, resource Resource) PermissionSet {
	roles, ok := m[dc]
	if !ok {
		return nil
	}
	resources, ok := roles[role]
	if !ok {
		return nil
	}
	return resources[resource]
}

// DefaultMatrix is the platform's shipped permission configuration.
//
// B2C: the principal owns their journeys and vault outright; family roles
// are read-only; delegated advisors may read and propose but never approve.
// B2B: relationship managers drive journeys, compliance officers approve,
// institution admins configure. Admin context is platform operations.
func DefaultMatrix() Matrix {
	return NewMatrix([]Grant{
		// --- b2c ---
		{ContextB2C, RolePrincipal, ResourceJourney, []Permission{PermissionRead, PermissionWrite, PermissionDelete, PermissionApprove}},
		{ContextB2C, RolePrincipal, ResourceVault, []Permission{PermissionRead, PermissionWrite, PermissionDelete, PermissionAssign}},
		{ContextB2C, RolePrincipal, ResourceThread, []Permission{PermissionRead, PermissionWrite}},
		{ContextB2C, RolePrincipal, ResourceContract, []Permission{PermissionRead, PermissionApprove}},
		{ContextB2C, RoleSpouse, ResourceJourney, []Permission{PermissionRead}},
		{ContextB2C, RoleSpouse, ResourceVault, []Permission{PermissionRead}},
		{ContextB2C, RoleSpouse, ResourceThread, []Permission{PermissionRead, PermissionWrite}},
		{ContextB2C, RoleHeir, ResourceJourney, []Permission{PermissionRead}},
		{ContextB2C, RoleHeir, ResourceVault, []Permission{PermissionRead}},
		{ContextB2C, RoleAdvisor, ResourceJourney, []Permission{PermissionRead, PermissionWrite}},
		{ContextB2C, RoleAdvisor, ResourceThread, []Permission{PermissionRead, PermissionWrite}},

		// --- b2b ---
		{ContextB2B, RoleRelationshipManager, ResourceJourney, []Permission{PermissionRead, PermissionWrite, PermissionAssign}},
		{ContextB2B, RoleRelationshipManager, ResourceClient, []Permission{PermissionRead, PermissionWrite}},
		{ContextB2B, RoleRelationshipManager, ResourceThread, []Permission{PermissionRead, PermissionWrite}},
		{ContextB2B, RoleComplianceOfficer, ResourceJourney, []Permission{PermissionRead, PermissionApprove}},
		{ContextB2B, RoleComplianceOfficer, ResourceContract, []Permission{PermissionRead, PermissionApprove}},
		{ContextB2B, RoleComplianceOfficer, ResourceAudit, []Permission{PermissionRead, PermissionExport}},
		{ContextB2B, RoleInstitutionAdmin, ResourceInstitution, []Permission{PermissionRead, PermissionConfigure}},
		{ContextB2B, RoleInstitutionAdmin, ResourceClient, []Permission{PermissionRead, PermissionAssign}},
		{ContextB2B, RoleInstitutionAdmin, ResourceJourney, []Permission{PermissionRead}},

		// --- admin ---
		{ContextAdmin, RolePlatformAdmin, ResourceJourney, []Permission{PermissionRead, PermissionWrite, PermissionDelete, PermissionApprove, PermissionAssign}},
		{ContextAdmin, RolePlatformAdmin, ResourceInstitution, []Permission{PermissionRead, PermissionWrite, PermissionConfigure}},
		{ContextAdmin, RolePlatformAdmin, ResourceAudit, []Permission{PermissionRead, PermissionExport, PermissionConfigure}},
		{ContextAdmin, RolePlatformAdmin, ResourceClient, []Permission{PermissionRead, PermissionWrite, PermissionDelete}},
		{ContextAdmin, RoleSupportAgent, ResourceJourney, []Permission{PermissionRead}},
		{ContextAdmin, RoleSupportAgent, ResourceClient, []Permission{PermissionRead}},
		{ContextAdmin, RoleSupportAgent, ResourceThread, []Permission{PermissionRead}},
	})
}
