// Package workflow implements the configuration-driven state machine that
// governs resource lifecycles. Transition tables are configuration data
// validated at startup; the engine itself is stateless and performs no
// persistence.
package workflow

import (
	dErrors "meridian/pkg/domain-errors"

	"meridian/internal/rbac"
)

// Status is an enumerated lifecycle stage of a governed resource.
type Status string

// Event names a transition trigger. Events follow UPPER_SNAKE_CASE.
type Event string

// RequiredPermission is the (action, resource) pair the RBAC gate must
// grant before a transition may execute.
type RequiredPermission struct {
	Action   rbac.Permission
	Resource rbac.Resource
}

// Transition is one edge of a resource's lifecycle graph.
type Transition struct {
	From     Status
	Event    Event
	Next     Status
	Required RequiredPermission
	Label    string
}

type transitionKey struct {
	from  Status
	event Event
}

// Table holds the full transition graph for one resource type. Build it once
// at startup via NewTable and treat it as read-only.
type Table struct {
	ResourceType rbac.Resource
	Initial      Status
	Terminal     Status

	statuses    map[Status]struct{}
	transitions []Transition
	index       map[transitionKey]int
}

// NewTable assembles a table preserving transition insertion order. Statuses
// must enumerate every lifecycle stage including Initial and Terminal.
func NewTable(resourceType rbac.Resource, initial, terminal Status, statuses []Status, transitions []Transition) *Table {
	t := &Table{
		ResourceType: resourceType,
		Initial:      initial,
		Terminal:     terminal,
		statuses:     make(map[Status]struct{}, len(statuses)),
		transitions:  transitions,
		index:        make(map[transitionKey]int, len(transitions)),
	}
	for _, s := range statuses {
		t.statuses[s] = struct{}{}
	}
	for i, tr := range transitions {
		t.index[transitionKey{tr.From, tr.Event}] = i
	}
	return t
}

// Lookup returns the transition for (status, event), if defined.
func (t *Table) Lookup(status Status, event Event) (Transition, bool) {
	i, ok := t.index[transitionKey{status, event}]
	if !ok {
		return Transition{}, false
	}
	return t.transitions[i], true
}

// From returns the outgoing transitions of a status in insertion order.
func (t *Table) From(status Status) []Transition {
	var out []Transition
	for _, tr := range t.transitions {
		if tr.From == status {
			out = append(out, tr)
		}
	}
	return out
}

// HasStatus reports whether s is a declared status of this table.
func (t *Table) HasStatus(s Status) bool {
	_, ok := t.statuses[s]
	return ok
}

// Validate enforces the configuration-time invariants: initial and terminal
// states are declared, every transition connects declared states, and every
// non-terminal status has at least one outgoing edge. Call at startup (or
// from a dedicated test); the engine does not re-validate per call.
func (t *Table) Validate() error {
	if !t.HasStatus(t.Initial) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "%s table: initial status %q is not declared", t.ResourceType, t.Initial)
	}
	if !t.HasStatus(t.Terminal) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "%s table: terminal status %q is not declared", t.ResourceType, t.Terminal)
	}
	outgoing := make(map[Status]int)
	for _, tr := range t.transitions {
		if !t.HasStatus(tr.From) {
			return dErrors.Newf(dErrors.CodeInvariantViolation, "%s table: transition %s leaves undeclared status %q", t.ResourceType, tr.Event, tr.From)
		}
		if !t.HasStatus(tr.Next) {
			return dErrors.Newf(dErrors.CodeInvariantViolation, "%s table: transition %s targets undeclared status %q", t.ResourceType, tr.Event, tr.Next)
		}
		outgoing[tr.From]++
	}
	for s := range t.statuses {
		if s == t.Terminal {
			continue
		}
		if outgoing[s] == 0 {
			return dErrors.Newf(dErrors.CodeInvariantViolation, "%s table: non-terminal status %q has no outgoing transitions", t.ResourceType, s)
		}
	}
	return nil
}
