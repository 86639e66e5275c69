package service

import (
	"context"
	"testing"
	"time"

	"github.com/Elmamis69/ticket-master-api/internal/domain"
	"github.com/Elmamis69/ticket-master-api/internal/events"
	"github.com/Elmamis69/ticket-master-api/internal/metrics"
	"github.com/Elmamis69/ticket-master-api/internal/repository/memory"
	apperrors "github.com/Elmamis69/ticket-master-api/pkg/util"
)

// manualClock is advanced explicitly by tests.
type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	store     *memory.Store
	clock     *manualClock
	recorder  *metrics.Recorder
	tickets   *TicketService
	comments  *CommentService
	analytics *AnalyticsService

	admin  domain.Actor
	agentA domain.Actor
	agentB domain.Actor
	userA  domain.Actor
	userB  domain.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &manualClock{now: time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)}
	store := memory.NewStoreWithClock(clock.Now)
	dispatcher := events.NewInMemoryDispatcher(nil)
	recorder := metrics.NewRecorder()
	NewMetricsService(dispatcher, recorder, nil).RegisterHandlers()

	f := &fixture{
		store:    store,
		clock:    clock,
		recorder: recorder,
		tickets: NewTicketService(TicketDependencies{
			TicketRepo: store.Tickets(),
			UserRepo:   store.Users(),
			Dispatcher: dispatcher,
			Clock:      clock.Now,
		}),
		comments: NewCommentService(CommentDependencies{
			TicketRepo:  store.Tickets(),
			CommentRepo: store.Comments(),
			Dispatcher:  dispatcher,
		}),
		analytics: NewAnalyticsService(AnalyticsDependencies{
			TicketRepo: store.Tickets(),
			UserRepo:   store.Users(),
			Clock:      clock.Now,
		}),
	}
	f.admin = f.user(t, "admin@example.com", "Admin", domain.RoleAdmin)
	f.agentA = f.user(t, "agent.a@example.com", "Agent A", domain.RoleAgent)
	f.agentB = f.user(t, "agent.b@example.com", "Agent B", domain.RoleAgent)
	f.userA = f.user(t, "user.a@example.com", "User A", domain.RoleUser)
	f.userB = f.user(t, "user.b@example.com", "User B", domain.RoleUser)
	return f
}

func (f *fixture) user(t *testing.T, email, name string, role domain.Role) domain.Actor {
	t.Helper()
	u := &domain.User{Email: email, FullName: name, Role: role, IsActive: true, PasswordHash: "x"}
	if err := f.store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u.Actor()
}

func (f *fixture) ticket(t *testing.T, creator domain.Actor) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.Create(context.Background(), creator, TicketCreateInput{
		Title:       "Printer on fire",
		Description: "The third floor printer is on fire again.",
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func strPtr(s string) *string { return &s }

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	if got := apperrors.CodeOf(err); got != code {
		t.Fatalf("expected %s, got %s (%v)", code, got, err)
	}
}
