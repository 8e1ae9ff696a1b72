//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"meridian/internal/audit"
	"meridian/internal/audit/store/postgres"
	"meridian/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())

	_, err := s.postgres.DB.ExecContext(context.Background(), postgres.Schema)
	s.Require().NoError(err)

	s.store = postgres.New(s.postgres.DB)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(context.Background())
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "audit_events")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newEvent(userID string, at time.Time) audit.Event {
	return audit.Event{
		ID:           uuid.NewString(),
		Timestamp:    at,
		Event:        "journey.status_changed",
		UserID:       userID,
		ResourceID:   uuid.NewString(),
		ResourceType: "journey",
		Context:      "b2b",
		Action:       "WRITE",
		Metadata:     map[string]any{"channel": "web"},
	}
}

// TestAppendAndReadBack verifies a round trip including JSONB metadata.
func (s *PostgresStoreSuite) TestAppendAndReadBack() {
	ctx := context.Background()
	event := s.newEvent("user-1", time.Now().UTC().Truncate(time.Microsecond))

	s.Require().NoError(s.store.Append(ctx, event))

	events, err := s.store.All(ctx)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(event.ID, events[0].ID)
	s.Equal(event.UserID, events[0].UserID)
	s.Equal("journey.status_changed", events[0].Event)
	s.Equal("web", events[0].Metadata["channel"])
	s.WithinDuration(event.Timestamp, events[0].Timestamp, time.Millisecond)
}

// TestAllReturnsNewestFirst verifies the read ordering contract.
func (s *PostgresStoreSuite) TestAllReturnsNewestFirst() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	for i := 0; i < 5; i++ {
		s.Require().NoError(s.store.Append(ctx, s.newEvent("user-1", base.Add(time.Duration(i)*time.Second))))
	}

	events, err := s.store.All(ctx)
	s.Require().NoError(err)
	s.Require().Len(events, 5)
	for i := 1; i < len(events); i++ {
		s.False(events[i].Timestamp.After(events[i-1].Timestamp), "events must be ordered newest-first")
	}
}

// TestConcurrentAppends verifies that parallel writers never lose events.
func (s *PostgresStoreSuite) TestConcurrentAppends() {
	ctx := context.Background()
	const goroutines = 20
	const perGoroutine = 10

	var wg sync.WaitGroup
	var appendErrors atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				event := s.newEvent(fmt.Sprintf("user-%d", idx), time.Now())
				if err := s.store.Append(ctx, event); err != nil {
					appendErrors.Add(1)
				}
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int32(0), appendErrors.Load(), "no append errors expected")

	events, err := s.store.All(ctx)
	s.Require().NoError(err)
	s.Len(events, goroutines*perGoroutine)
}

// TestAnonymizeUserRewritesOnlyMatchingRows verifies the single-statement
// rewrite touches exactly the target user's events.
func (s *PostgresStoreSuite) TestAnonymizeUserRewritesOnlyMatchingRows() {
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.Append(ctx, s.newEvent("target", now.Add(time.Duration(i)*time.Second))))
	}
	s.Require().NoError(s.store.Append(ctx, s.newEvent("bystander", now)))

	affected, err := s.store.AnonymizeUser(ctx, "target", "redacted-abc", now)
	s.Require().NoError(err)
	s.Equal(3, affected)

	events, err := s.store.All(ctx)
	s.Require().NoError(err)
	s.Require().Len(events, 4)

	var redacted, untouched int
	for _, e := range events {
		switch e.UserID {
		case "redacted-abc":
			redacted++
			s.Equal(true, e.Metadata["anonymized"])
			s.Equal("web", e.Metadata["channel"], "anonymization must preserve existing metadata")
			s.NotEmpty(e.Metadata["anonymizedAt"])
		case "bystander":
			untouched++
			s.Nil(e.Metadata["anonymized"])
		default:
			s.Failf("unexpected user id", "got %q", e.UserID)
		}
	}
	s.Equal(3, redacted)
	s.Equal(1, untouched)
}

// TestAnonymizeUnknownUserIsNoOp verifies a zero-row rewrite is not an error.
func (s *PostgresStoreSuite) TestAnonymizeUnknownUserIsNoOp() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, s.newEvent("user-1", time.Now())))

	affected, err := s.store.AnonymizeUser(ctx, "nobody", "redacted-x", time.Now())
	s.Require().NoError(err)
	s.Zero(affected)
}
