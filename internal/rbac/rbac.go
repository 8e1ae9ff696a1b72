// Package rbac implements the role-based access control core: the static
// permission matrix and the gate every other module checks before acting.
//
// The governing posture is default-deny: any lookup miss (unknown context,
// role, resource, or action) resolves to "no permission", never to an
// implicit allow.
package rbac

// DomainContext partitions roles and permissions. A user holds at most one
// role per context; roles are never combined within a context.
type DomainContext string

const (
	ContextB2C   DomainContext = "b2c"
	ContextB2B   DomainContext = "b2b"
	ContextAdmin DomainContext = "admin"
)

// Role is an enumerated identity category within a domain context.
type Role string

const (
	// B2C roles.
	RolePrincipal Role = "principal"
	RoleSpouse    Role = "spouse"
	RoleHeir      Role = "heir"
	RoleAdvisor   Role = "advisor"

	// B2B roles.
	RoleRelationshipManager Role = "relationship_manager"
	RoleComplianceOfficer   Role = "compliance_officer"
	RoleInstitutionAdmin    Role = "institution_admin"

	// Admin roles.
	RolePlatformAdmin Role = "platform_admin"
	RoleSupportAgent  Role = "support_agent"
)

// Resource is a domain noun permissions are defined against.
// Closed enumeration.
type Resource string

const (
	ResourceJourney     Resource = "journey"
	ResourceVault       Resource = "vault"
	ResourceClient      Resource = "client"
	ResourceContract    Resource = "contract"
	ResourceThread      Resource = "thread"
	ResourceAudit       Resource = "audit"
	ResourceInstitution Resource = "institution"
)

// Permission is an enumerated action. Closed enumeration.
type Permission string

const (
	PermissionRead      Permission = "READ"
	PermissionWrite     Permission = "WRITE"
	PermissionDelete    Permission = "DELETE"
	PermissionApprove   Permission = "APPROVE"
	PermissionExport    Permission = "EXPORT"
	PermissionConfigure Permission = "CONFIGURE"
	PermissionAssign    Permission = "ASSIGN"
)

// PermissionSet is a membership set of allowed actions on one resource.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from its members.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Has reports membership. Nil sets deny everything.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}
