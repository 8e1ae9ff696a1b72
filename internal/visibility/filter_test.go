package visibility_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "meridian/pkg/domain"

	"meridian/internal/domain"
	"meridian/internal/rbac"
	"meridian/internal/visibility"
	"meridian/internal/workflow"
)

func newJourneyID(t *testing.T) id.JourneyID {
	t.Helper()
	jid, err := id.ParseJourneyID(uuid.NewString())
	assert.NoError(t, err)
	return jid
}

func newUserID(t *testing.T) id.UserID {
	t.Helper()
	uid, err := id.ParseUserID(uuid.NewString())
	assert.NoError(t, err)
	return uid
}

func newThreadID(t *testing.T) id.ThreadID {
	t.Helper()
	tid, err := id.ParseThreadID(uuid.NewString())
	assert.NoError(t, err)
	return tid
}

func journey(t *testing.T, status workflow.Status, invisible bool) domain.Journey {
	t.Helper()
	return domain.Journey{
		ID:          newJourneyID(t),
		Title:       "journey",
		Status:      status,
		IsInvisible: invisible,
	}
}

// ============================================================================
// Journeys
// ============================================================================

func TestFilterJourneysPrincipalSeesEverything(t *testing.T) {
	journeys := []domain.Journey{
		journey(t, workflow.StatusDraft, false),
		journey(t, workflow.StatusApproved, true),
		journey(t, workflow.StatusExecuted, false),
	}

	visible := visibility.FilterJourneys(journeys, rbac.RolePrincipal, nil)

	assert.Equal(t, journeys, visible)
}

func TestFilterJourneysFamilyRolesSeeApprovedVisibleOnly(t *testing.T) {
	approved := journey(t, workflow.StatusApproved, false)
	executed := journey(t, workflow.StatusExecuted, false)
	draft := journey(t, workflow.StatusDraft, false)
	inReview := journey(t, workflow.StatusComplianceReview, false)
	hidden := journey(t, workflow.StatusApproved, true)

	journeys := []domain.Journey{approved, executed, draft, inReview, hidden}

	for _, role := range []rbac.Role{rbac.RoleSpouse, rbac.RoleHeir} {
		visible := visibility.FilterJourneys(journeys, role, nil)
		assert.Equal(t, []domain.Journey{approved, executed}, visible, "role %s", role)
	}
}

func TestFilterJourneysInvisibleExcludedEvenWhenApproved(t *testing.T) {
	hidden := journey(t, workflow.StatusApproved, true)

	visible := visibility.FilterJourneys([]domain.Journey{hidden}, rbac.RoleSpouse, nil)

	assert.Empty(t, visible)
}

func TestFilterJourneysAdvisorScopes(t *testing.T) {
	first := journey(t, workflow.StatusApproved, false)
	second := journey(t, workflow.StatusDraft, false)
	hidden := journey(t, workflow.StatusApproved, true)
	journeys := []domain.Journey{first, second, hidden}

	t.Run("no grant record yields empty", func(t *testing.T) {
		visible := visibility.FilterJourneys(journeys, rbac.RoleAdvisor, nil)
		assert.Empty(t, visible)
	})

	t.Run("scope none yields empty", func(t *testing.T) {
		grant := &domain.AdvisorGrant{Scope: domain.GrantScopeNone}
		visible := visibility.FilterJourneys(journeys, rbac.RoleAdvisor, grant)
		assert.Empty(t, visible)
	})

	t.Run("scope all excludes invisible", func(t *testing.T) {
		grant := &domain.AdvisorGrant{Scope: domain.GrantScopeAll}
		visible := visibility.FilterJourneys(journeys, rbac.RoleAdvisor, grant)
		assert.Equal(t, []domain.Journey{first, second}, visible)
	})

	t.Run("scope list honors the allow-list and invisibility", func(t *testing.T) {
		grant := &domain.AdvisorGrant{
			Scope:      domain.GrantScopeList,
			JourneyIDs: []id.JourneyID{first.ID, hidden.ID},
		}
		visible := visibility.FilterJourneys(journeys, rbac.RoleAdvisor, grant)
		assert.Equal(t, []domain.Journey{first}, visible)
	})
}

func TestFilterJourneysUnknownRoleYieldsEmpty(t *testing.T) {
	journeys := []domain.Journey{journey(t, workflow.StatusApproved, false)}

	visible := visibility.FilterJourneys(journeys, rbac.Role("Intruder"), nil)

	assert.Empty(t, visible)
}

func TestFilterJourneysDoesNotMutateInput(t *testing.T) {
	journeys := []domain.Journey{
		journey(t, workflow.StatusApproved, false),
		journey(t, workflow.StatusDraft, false),
	}
	snapshot := append([]domain.Journey(nil), journeys...)

	_ = visibility.FilterJourneys(journeys, rbac.RoleSpouse, nil)
	_ = visibility.FilterJourneys(journeys, rbac.RolePrincipal, nil)

	assert.Equal(t, snapshot, journeys)
}

// ============================================================================
// Memories
// ============================================================================

func TestFilterMemories(t *testing.T) {
	sharedWithSpouse := domain.MemoryItem{
		Title:        "letters",
		IsShared:     true,
		SharingRoles: []rbac.Role{rbac.RoleSpouse},
	}
	sharedWithHeir := domain.MemoryItem{
		Title:        "deeds",
		IsShared:     true,
		SharingRoles: []rbac.Role{rbac.RoleHeir},
	}
	lockedButShared := domain.MemoryItem{
		Title:        "will",
		IsShared:     true,
		IsLocked:     true,
		SharingRoles: []rbac.Role{rbac.RoleSpouse, rbac.RoleHeir},
	}
	private := domain.MemoryItem{Title: "diary"}

	memories := []domain.MemoryItem{sharedWithSpouse, sharedWithHeir, lockedButShared, private}

	t.Run("principal sees everything including locked", func(t *testing.T) {
		visible := visibility.FilterMemories(memories, rbac.RolePrincipal, nil)
		assert.Equal(t, memories, visible)
	})

	t.Run("spouse sees only items shared with their role and unlocked", func(t *testing.T) {
		visible := visibility.FilterMemories(memories, rbac.RoleSpouse, nil)
		assert.Equal(t, []domain.MemoryItem{sharedWithSpouse}, visible)
	})

	t.Run("heir sees only items shared with their role and unlocked", func(t *testing.T) {
		visible := visibility.FilterMemories(memories, rbac.RoleHeir, nil)
		assert.Equal(t, []domain.MemoryItem{sharedWithHeir}, visible)
	})

	t.Run("advisor without vault access sees nothing", func(t *testing.T) {
		grant := &domain.AdvisorGrant{Scope: domain.GrantScopeAll}
		visible := visibility.FilterMemories(memories, rbac.RoleAdvisor, grant)
		assert.Empty(t, visible)
	})

	t.Run("advisor with vault access sees shared unlocked items", func(t *testing.T) {
		grant := &domain.AdvisorGrant{Scope: domain.GrantScopeAll, VaultAccess: true}
		visible := visibility.FilterMemories(memories, rbac.RoleAdvisor, grant)
		assert.Equal(t, []domain.MemoryItem{sharedWithSpouse, sharedWithHeir}, visible)
	})

	t.Run("unknown role sees nothing", func(t *testing.T) {
		visible := visibility.FilterMemories(memories, rbac.Role("Intruder"), nil)
		assert.Empty(t, visible)
	})
}

// ============================================================================
// Threads and messages
// ============================================================================

func TestFilterThreadsAndMessages(t *testing.T) {
	spouse := newUserID(t)
	outsider := newUserID(t)

	family := domain.MessageThread{
		ID:           newThreadID(t),
		Subject:      "estate planning",
		Participants: []id.UserID{spouse},
	}
	private := domain.MessageThread{
		ID:      newThreadID(t),
		Subject: "between principal and rm",
	}
	threads := []domain.MessageThread{family, private}

	messages := []domain.Message{
		{ID: "m1", ThreadID: family.ID, Body: "hello"},
		{ID: "m2", ThreadID: private.ID, Body: "confidential"},
	}

	t.Run("principal sees all threads and messages", func(t *testing.T) {
		assert.Equal(t, threads, visibility.FilterThreads(threads, rbac.RolePrincipal, outsider))
		assert.Equal(t, messages, visibility.FilterMessages(messages, rbac.RolePrincipal, outsider, threads))
	})

	t.Run("participants see only their threads", func(t *testing.T) {
		visible := visibility.FilterThreads(threads, rbac.RoleSpouse, spouse)
		assert.Equal(t, []domain.MessageThread{family}, visible)
	})

	t.Run("non-participants see nothing", func(t *testing.T) {
		assert.Empty(t, visibility.FilterThreads(threads, rbac.RoleSpouse, outsider))
		assert.Empty(t, visibility.FilterThreads(threads, rbac.RoleAdvisor, outsider))
	})

	t.Run("messages follow thread visibility", func(t *testing.T) {
		visible := visibility.FilterMessages(messages, rbac.RoleSpouse, spouse, threads)
		assert.Equal(t, []domain.Message{messages[0]}, visible)
	})

	t.Run("unknown role sees no threads or messages", func(t *testing.T) {
		assert.Empty(t, visibility.FilterThreads(threads, rbac.Role("Intruder"), spouse))
		assert.Empty(t, visibility.FilterMessages(messages, rbac.Role("Intruder"), spouse, threads))
	})
}
