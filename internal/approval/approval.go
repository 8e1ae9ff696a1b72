// Package approval resolves the multi-role sign-off sequence attached to a
// resource type. The resolver is purely advisory: it computes which role must
// act next from a chain definition and the completed orders the caller
// persisted, and never stores progress itself.
package approval

import (
	"sort"

	dErrors "meridian/pkg/domain-errors"
	id "meridian/pkg/domain"

	"meridian/internal/rbac"
)

// Step is one ordered sign-off in a chain. Orders are unique within a chain
// and ≥1; Required steps gate completion, optional steps are advisory.
type Step struct {
	Order    int       `json:"order"`
	Role     rbac.Role `json:"role"`
	Label    string    `json:"label"`
	Required bool      `json:"required"`
}

// Chain is a named sign-off sequence for a resource type. A chain without an
// InstitutionID is the default for its resource type; one with an
// InstitutionID overrides the default for that tenant.
type Chain struct {
	ID            string           `json:"id"`
	ResourceType  rbac.Resource    `json:"resource_type"`
	InstitutionID id.InstitutionID `json:"institution_id,omitempty"`
	Steps         []Step           `json:"steps"`
}

// Validate enforces the construction invariants: at least one step, every
// order ≥1, and orders unique within the chain. Duplicate orders are a
// configuration bug, rejected here so NextStep never sees one.
func (c *Chain) Validate() error {
	if c.ID == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "approval chain id is required")
	}
	if c.ResourceType == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "approval chain resource type is required")
	}
	if len(c.Steps) == 0 {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "approval chain %s has no steps", c.ID)
	}
	seen := make(map[int]struct{}, len(c.Steps))
	for _, step := range c.Steps {
		if step.Order < 1 {
			return dErrors.Newf(dErrors.CodeInvariantViolation, "approval chain %s: step order %d must be >= 1", c.ID, step.Order)
		}
		if _, dup := seen[step.Order]; dup {
			return dErrors.Newf(dErrors.CodeInvariantViolation, "approval chain %s: duplicate step order %d", c.ID, step.Order)
		}
		seen[step.Order] = struct{}{}
	}
	return nil
}

// IsApprover reports whether any step of the chain names the role.
func (c *Chain) IsApprover(role rbac.Role) bool {
	for _, step := range c.Steps {
		if step.Role == role {
			return true
		}
	}
	return false
}

// NextStep returns the required step with the smallest order greater than
// currentOrder, or nil when the chain is satisfied past that point.
// Pass 0 to get the first required step.
func (c *Chain) NextStep(currentOrder int) *Step {
	var next *Step
	for i := range c.Steps {
		step := &c.Steps[i]
		if !step.Required || step.Order <= currentOrder {
			continue
		}
		if next == nil || step.Order < next.Order {
			next = step
		}
	}
	return next
}

// IsComplete reports whether every required step's order appears in
// completedOrders. Orders of optional steps never change the result.
func (c *Chain) IsComplete(completedOrders []int) bool {
	completed := make(map[int]struct{}, len(completedOrders))
	for _, o := range completedOrders {
		completed[o] = struct{}{}
	}
	for _, step := range c.Steps {
		if !step.Required {
			continue
		}
		if _, ok := completed[step.Order]; !ok {
			return false
		}
	}
	return true
}

// RequiredOrders returns the sorted orders of all required steps.
func (c *Chain) RequiredOrders() []int {
	var orders []int
	for _, step := range c.Steps {
		if step.Required {
			orders = append(orders, step.Order)
		}
	}
	sort.Ints(orders)
	return orders
}
