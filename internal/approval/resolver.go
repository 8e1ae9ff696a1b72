package approval

import (
	dErrors "meridian/pkg/domain-errors"
	id "meridian/pkg/domain"

	"meridian/internal/rbac"
)

type chainKey struct {
	resourceType rbac.Resource
	institution  id.InstitutionID
}

// Resolver looks up the approval chain for a resource type, honoring
// per-institution overrides. Chains are registered once at startup and the
// resolver is read-only thereafter.
type Resolver struct {
	chains map[chainKey]*Chain
}

// NewResolver validates and registers the given chains. It refuses duplicate
// defaults for a resource type, duplicate overrides for a
// (resourceType, institution) pair, and any chain that fails Validate.
func NewResolver(chains []*Chain) (*Resolver, error) {
	r := &Resolver{chains: make(map[chainKey]*Chain, len(chains))}
	for _, c := range chains {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		key := chainKey{c.ResourceType, c.InstitutionID}
		if _, exists := r.chains[key]; exists {
			if c.InstitutionID.IsNil() {
				return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "duplicate default approval chain for %s", c.ResourceType)
			}
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "duplicate approval chain override for %s/%s", c.ResourceType, c.InstitutionID)
		}
		r.chains[key] = c
	}
	return r, nil
}

// ChainFor returns the chain governing resourceType for the given
// institution. A tenant override takes precedence over the resource type's
// default; nil when neither exists. Pass the zero InstitutionID for callers
// without a tenant.
func (r *Resolver) ChainFor(resourceType rbac.Resource, institution id.InstitutionID) *Chain {
	if !institution.IsNil() {
		if c, ok := r.chains[chainKey{resourceType, institution}]; ok {
			return c
		}
	}
	return r.chains[chainKey{resourceType: resourceType}]
}

// DefaultChains is the shipped approval configuration: journeys require the
// relationship manager then compliance sign-off, with an optional final
// acknowledgement by the institution admin.
func DefaultChains() []*Chain {
	return []*Chain{
		{
			ID:           "journey-default",
			ResourceType: rbac.ResourceJourney,
			Steps: []Step{
				{Order: 1, Role: rbac.RoleRelationshipManager, Label: "Relationship Manager Review", Required: true},
				{Order: 2, Role: rbac.RoleComplianceOfficer, Label: "Compliance Sign-off", Required: true},
				{Order: 3, Role: rbac.RoleInstitutionAdmin, Label: "Institution Acknowledgement", Required: false},
			},
		},
		{
			ID:           "contract-default",
			ResourceType: rbac.ResourceContract,
			Steps: []Step{
				{Order: 1, Role: rbac.RoleComplianceOfficer, Label: "Compliance Sign-off", Required: true},
				{Order: 2, Role: rbac.RolePrincipal, Label: "Client Signature", Required: true},
			},
		},
	}
}
