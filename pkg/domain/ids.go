// Package domain holds typed identifiers shared across modules. Wrapping
// uuid.UUID in distinct types prevents cross-type assignment at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "meridian/pkg/domain-errors"
)

type (
	// UserID identifies a platform user (client, staff, or admin).
	UserID uuid.UUID
	// JourneyID identifies a governed client journey.
	JourneyID uuid.UUID
	// MemoryID identifies a vault memory item.
	MemoryID uuid.UUID
	// ThreadID identifies a message thread.
	ThreadID uuid.UUID
	// InstitutionID identifies a B2B tenant institution.
	InstitutionID uuid.UUID
	// EventID identifies an audit ledger entry.
	EventID uuid.UUID
)

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id JourneyID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id MemoryID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ThreadID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id InstitutionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id JourneyID) String() string     { return uuid.UUID(id).String() }
func (id MemoryID) String() string      { return uuid.UUID(id).String() }
func (id ThreadID) String() string      { return uuid.UUID(id).String() }
func (id InstitutionID) String() string { return uuid.UUID(id).String() }
func (id EventID) String() string       { return uuid.UUID(id).String() }

// The wrappers marshal as canonical UUID strings in JSON and URLs.
func (id UserID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id JourneyID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id MemoryID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id ThreadID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id InstitutionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id EventID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *JourneyID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *MemoryID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ThreadID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *InstitutionID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *EventID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }

// parseUUID enforces the shared invariant: IDs must be valid, non-nil UUIDs.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be the nil UUID")
	}
	return parsed, nil
}

func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user")
	return UserID(parsed), err
}

func ParseJourneyID(raw string) (JourneyID, error) {
	parsed, err := parseUUID(raw, "journey")
	return JourneyID(parsed), err
}

func ParseThreadID(raw string) (ThreadID, error) {
	parsed, err := parseUUID(raw, "thread")
	return ThreadID(parsed), err
}

func ParseInstitutionID(raw string) (InstitutionID, error) {
	parsed, err := parseUUID(raw, "institution")
	return InstitutionID(parsed), err
}
