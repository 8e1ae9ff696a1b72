// Package postgres provides the PostgreSQL-backed ledger store for
// multi-instance deployments.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"meridian/internal/audit"
)

// Store implements audit.Store over database/sql. Appends are single
// INSERTs; anonymization is a single UPDATE statement, so readers get the
// all-or-nothing view from PostgreSQL's statement-level atomicity.
type Store struct {
	db *sql.DB
}

// New wraps an externally managed connection pool.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Schema is the DDL the store expects. Applied by migrations in production
// and by the integration-test harness.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id             UUID PRIMARY KEY,
	timestamp      TIMESTAMPTZ NOT NULL,
	event          TEXT NOT NULL,
	user_id        TEXT NOT NULL DEFAULT '',
	resource_id    TEXT NOT NULL DEFAULT '',
	resource_type  TEXT NOT NULL DEFAULT '',
	context        TEXT NOT NULL DEFAULT '',
	action         TEXT NOT NULL DEFAULT '',
	previous_state TEXT NOT NULL DEFAULT '',
	new_state      TEXT NOT NULL DEFAULT '',
	metadata       JSONB
);
CREATE INDEX IF NOT EXISTS idx_audit_events_user_id ON audit_events (user_id);
CREATE INDEX IF NOT EXISTS idx_audit_events_resource_id ON audit_events (resource_id);
CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events (timestamp DESC);
`

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var metadata []byte
	if event.Metadata != nil {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
	}

	query := `
		INSERT INTO audit_events (
			id, timestamp, event, user_id, resource_id, resource_type,
			context, action, previous_state, new_state, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp,
		event.Event,
		event.UserID,
		event.ResourceID,
		event.ResourceType,
		event.Context,
		event.Action,
		event.PreviousState,
		event.NewState,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) All(ctx context.Context) ([]audit.Event, error) {
	query := `
		SELECT id, timestamp, event, user_id, resource_id, resource_type,
			   context, action, previous_state, new_state, metadata
		FROM audit_events
		ORDER BY timestamp DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *Store) AnonymizeUser(ctx context.Context, userID, redacted string, now time.Time) (int, error) {
	stamp, err := json.Marshal(map[string]any{
		"anonymized":   true,
		"anonymizedAt": now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return 0, fmt.Errorf("marshal anonymization stamp: %w", err)
	}

	// Single statement keeps the rewrite atomic for concurrent readers.
	query := `
		UPDATE audit_events
		SET user_id = $1,
			metadata = COALESCE(metadata, '{}'::jsonb) || $2::jsonb
		WHERE user_id = $3
	`
	result, err := s.db.ExecContext(ctx, query, redacted, stamp, userID)
	if err != nil {
		return 0, fmt.Errorf("anonymize audit events: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("anonymize audit events: %w", err)
	}
	return int(affected), nil
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			event    audit.Event
			metadata []byte
		)
		err := rows.Scan(
			&event.ID,
			&event.Timestamp,
			&event.Event,
			&event.UserID,
			&event.ResourceID,
			&event.ResourceType,
			&event.Context,
			&event.Action,
			&event.PreviousState,
			&event.NewState,
			&metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
