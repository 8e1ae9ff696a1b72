package workflow

import (
	"strings"

	dErrors "meridian/pkg/domain-errors"

	"meridian/internal/rbac"
)

// Engine evaluates transitions for one resource type. It is read-only over
// its table and the permission gate, so it needs no synchronization.
//
// ExecuteTransition is the only sanctioned path to change a governed
// resource's status. Callers persist the returned status and record the
// audit event; the engine does neither.
type Engine struct {
	table *Table
	gate  *rbac.Gate
}

// NewEngine validates the table and binds it to the gate.
func NewEngine(table *Table, gate *rbac.Gate) (*Engine, error) {
	if table == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "workflow table is required")
	}
	if gate == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "permission gate is required")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &Engine{table: table, gate: gate}, nil
}

// ResourceType returns the resource type this engine governs.
func (e *Engine) ResourceType() rbac.Resource { return e.table.ResourceType }

// InitialStatus returns the table's declared starting status.
func (e *Engine) InitialStatus() Status { return e.table.Initial }

// AvailableTransitions lists the events the caller may execute from the
// given status, in table insertion order. Events whose required permission
// the gate denies are filtered out.
func (e *Engine) AvailableTransitions(status Status, dc rbac.DomainContext, role rbac.Role) []Event {
	var events []Event
	for _, tr := range e.table.From(status) {
		if e.gate.HasPermission(dc, role, tr.Required.Action, tr.Required.Resource) {
			events = append(events, tr.Event)
		}
	}
	return events
}

// ExecuteTransition resolves (status, event) and authorizes the caller.
// Returns CodeInvalidTransition when the event is not defined at this status
// (a stale or buggy client) and CodePermissionDenied when the RBAC gate
// rejects the caller. On success it returns the configured next status.
func (e *Engine) ExecuteTransition(status Status, event Event, dc rbac.DomainContext, role rbac.Role) (Status, error) {
	tr, ok := e.table.Lookup(status, event)
	if !ok {
		return "", dErrors.Newf(dErrors.CodeInvalidTransition, "event %s is not valid at status %s", event, status)
	}
	if !e.gate.HasPermission(dc, role, tr.Required.Action, tr.Required.Resource) {
		return "", dErrors.Newf(dErrors.CodePermissionDenied, "role %s may not %s %s", role, tr.Required.Action, tr.Required.Resource)
	}
	return tr.Next, nil
}

// TransitionLabel returns the configured human label for an event, scanning
// the table in insertion order, or derives one by title-casing the event's
// underscore-separated words.
func (e *Engine) TransitionLabel(event Event) string {
	for _, tr := range e.table.transitions {
		if tr.Event == event && tr.Label != "" {
			return tr.Label
		}
	}
	return titleCaseEvent(event)
}

func titleCaseEvent(event Event) string {
	words := strings.Split(strings.ToLower(string(event)), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
