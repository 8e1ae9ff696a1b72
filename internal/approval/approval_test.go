package approval

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "meridian/pkg/domain-errors"
	id "meridian/pkg/domain"

	"meridian/internal/rbac"
)

func testChain() *Chain {
	return &Chain{
		ID:           "journey-test",
		ResourceType: rbac.ResourceJourney,
		Steps: []Step{
			{Order: 1, Role: rbac.RoleRelationshipManager, Required: true},
			{Order: 2, Role: rbac.RoleComplianceOfficer, Required: true},
			{Order: 3, Role: rbac.RoleInstitutionAdmin, Required: false},
		},
	}
}

// =============================================================================
// Chain Validation Tests
// =============================================================================

func TestChainValidate(t *testing.T) {
	t.Run("valid chain passes", func(t *testing.T) {
		assert.NoError(t, testChain().Validate())
	})

	t.Run("duplicate orders rejected", func(t *testing.T) {
		c := testChain()
		c.Steps[1].Order = 1
		err := c.Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("zero order rejected", func(t *testing.T) {
		c := testChain()
		c.Steps[0].Order = 0
		err := c.Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("empty steps rejected", func(t *testing.T) {
		c := &Chain{ID: "empty", ResourceType: rbac.ResourceJourney}
		err := c.Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

// =============================================================================
// Step Computation Tests
// =============================================================================

func TestIsApprover(t *testing.T) {
	c := testChain()
	assert.True(t, c.IsApprover(rbac.RoleRelationshipManager))
	assert.True(t, c.IsApprover(rbac.RoleInstitutionAdmin))
	assert.False(t, c.IsApprover(rbac.RoleSpouse))
	assert.False(t, c.IsApprover("intern"))
}

func TestNextStep(t *testing.T) {
	c := testChain()

	t.Run("zero current order yields first required step", func(t *testing.T) {
		step := c.NextStep(0)
		require.NotNil(t, step)
		assert.Equal(t, 1, step.Order)
	})

	t.Run("skips completed and optional steps", func(t *testing.T) {
		step := c.NextStep(1)
		require.NotNil(t, step)
		assert.Equal(t, 2, step.Order)

		// Order 3 is optional, so nothing remains after order 2.
		assert.Nil(t, c.NextStep(2))
	})

	t.Run("finds smallest order regardless of slice position", func(t *testing.T) {
		shuffled := &Chain{
			ID:           "shuffled",
			ResourceType: rbac.ResourceJourney,
			Steps: []Step{
				{Order: 5, Role: rbac.RoleComplianceOfficer, Required: true},
				{Order: 2, Role: rbac.RoleRelationshipManager, Required: true},
			},
		}
		step := shuffled.NextStep(0)
		require.NotNil(t, step)
		assert.Equal(t, 2, step.Order)
	})
}

func TestIsComplete(t *testing.T) {
	c := testChain()

	t.Run("all required orders present", func(t *testing.T) {
		assert.True(t, c.IsComplete([]int{1, 2}))
	})

	t.Run("missing required order", func(t *testing.T) {
		assert.False(t, c.IsComplete([]int{1}))
		assert.False(t, c.IsComplete(nil))
	})

	t.Run("optional order never changes the result", func(t *testing.T) {
		assert.True(t, c.IsComplete([]int{1, 2, 3}))
		assert.False(t, c.IsComplete([]int{1, 3}))
	})

	t.Run("unknown orders are ignored", func(t *testing.T) {
		assert.True(t, c.IsComplete([]int{1, 2, 99}))
	})
}

// =============================================================================
// Resolver Tests
// =============================================================================

func TestResolver(t *testing.T) {
	institution := id.InstitutionID(uuid.New())

	override := testChain()
	override.ID = "journey-override"
	override.InstitutionID = institution

	def := testChain()
	def.ID = "journey-default"

	resolver, err := NewResolver([]*Chain{def, override})
	require.NoError(t, err)

	t.Run("tenant override takes precedence", func(t *testing.T) {
		c := resolver.ChainFor(rbac.ResourceJourney, institution)
		require.NotNil(t, c)
		assert.Equal(t, "journey-override", c.ID)
	})

	t.Run("falls back to default for other tenants", func(t *testing.T) {
		c := resolver.ChainFor(rbac.ResourceJourney, id.InstitutionID(uuid.New()))
		require.NotNil(t, c)
		assert.Equal(t, "journey-default", c.ID)
	})

	t.Run("zero institution resolves the default", func(t *testing.T) {
		c := resolver.ChainFor(rbac.ResourceJourney, id.InstitutionID{})
		require.NotNil(t, c)
		assert.Equal(t, "journey-default", c.ID)
	})

	t.Run("nil when resource type has no chain", func(t *testing.T) {
		assert.Nil(t, resolver.ChainFor(rbac.ResourceVault, institution))
	})

	t.Run("duplicate default rejected", func(t *testing.T) {
		_, err := NewResolver([]*Chain{def, testChain()})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("invalid chain rejected at construction", func(t *testing.T) {
		bad := testChain()
		bad.Steps[1].Order = 1
		_, err := NewResolver([]*Chain{bad})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestDefaultChains(t *testing.T) {
	resolver, err := NewResolver(DefaultChains())
	require.NoError(t, err)

	c := resolver.ChainFor(rbac.ResourceJourney, id.InstitutionID{})
	require.NotNil(t, c)
	assert.Equal(t, []int{1, 2}, c.RequiredOrders())
}
