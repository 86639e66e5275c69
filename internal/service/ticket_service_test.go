package service

import (
	"context"
	"testing"
	"time"

	"github.com/Elmamis69/ticket-master-api/internal/domain"
	"github.com/Elmamis69/ticket-master-api/internal/events"
	apperrors "github.com/Elmamis69/ticket-master-api/pkg/util"
)

func TestCreateTicketDefaults(t *testing.T) {
	f := newFixture(t)
	ticket := f.ticket(t, f.userA)

	if ticket.Status != domain.TicketStatusOpen || ticket.Priority != domain.TicketPriorityMedium {
		t.Fatalf("unexpected defaults %+v", ticket)
	}
	if ticket.CreatorID != f.userA.ID || ticket.ResolvedAt != nil || ticket.IsAssigned() {
		t.Fatalf("unexpected ownership %+v", ticket)
	}
	points := f.recorder.Measurements(string(events.EventTicketCreated))
	if len(points) != 1 || points[0].Tags["priority"] != "medium" || points[0].Tags["creator_id"] != f.userA.ID {
		t.Fatalf("unexpected ticket_created points %+v", points)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := []TicketCreateInput{
		{Title: "abcd", Description: "long enough description"},
		{Title: "     valid?    ", Description: "short"},
		{Title: "Valid title", Description: "long enough description", Priority: strPtr("urgent")},
	}
	for i, input := range cases {
		if _, err := f.tickets.Create(ctx, f.userA, input); apperrors.CodeOf(err) != apperrors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}

	ticket, err := f.tickets.Create(ctx, f.userA, TicketCreateInput{
		Title:       "  VPN down  ",
		Description: "Cannot reach the VPN since this morning.",
		Priority:    strPtr("HIGH"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.Title != "VPN down" || ticket.Priority != domain.TicketPriorityHigh {
		t.Fatalf("expected trimmed title and parsed priority, got %+v", ticket)
	}
}

func TestCreateDeleteRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.ticket(t, f.userA)
	if _, err := f.comments.Create(ctx, f.userA, ticket.ID, "first!"); err != nil {
		t.Fatalf("comment: %v", err)
	}

	expectCode(t, f.tickets.Delete(ctx, f.agentA, ticket.ID), apperrors.CodeForbidden)
	expectCode(t, f.tickets.Delete(ctx, f.userA, ticket.ID), apperrors.CodeForbidden)
	if err := f.tickets.Delete(ctx, f.admin, ticket.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := f.tickets.Get(ctx, f.admin, ticket.ID)
	expectCode(t, err, apperrors.CodeNotFound)
	_, err = f.comments.List(ctx, f.admin, ticket.ID)
	expectCode(t, err, apperrors.CodeNotFound)
	expectCode(t, f.tickets.Delete(ctx, f.admin, ticket.ID), apperrors.CodeNotFound)
}

func TestVisibilityAfterReassignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.ticket(t, f.userA)

	for _, actor := range []domain.Actor{f.admin, f.agentA, f.agentB, f.userA} {
		if _, err := f.tickets.Get(ctx, actor, ticket.ID); err != nil {
			t.Fatalf("%s should read unassigned ticket: %v", actor.Role, err)
		}
	}
	_, err := f.tickets.Get(ctx, f.userB, ticket.ID)
	expectCode(t, err, apperrors.CodeForbidden)

	if _, err := f.tickets.Assign(ctx, f.admin, ticket.ID, f.agentA.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	_, err = f.tickets.Get(ctx, f.agentB, ticket.ID)
	expectCode(t, err, apperrors.CodeForbidden)
	if _, err := f.tickets.Get(ctx, f.agentA, ticket.ID); err != nil {
		t.Fatalf("assignee should read ticket: %v", err)
	}

	if _, err := f.tickets.Assign(ctx, f.admin, ticket.ID, f.agentB.ID); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	_, err = f.tickets.Get(ctx, f.agentA, ticket.ID)
	expectCode(t, err, apperrors.CodeForbidden)

	listA, _ := f.tickets.List(ctx, f.agentA, TicketQuery{})
	listB, _ := f.tickets.List(ctx, f.agentB, TicketQuery{})
	if len(listA) != 0 || len(listB) != 1 {
		t.Fatalf("unexpected agent lists: a=%d b=%d", len(listA), len(listB))
	}
}

func TestListScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.ticket(t, f.userA)
	f.clock.Advance(time.Minute)
	theirs := f.ticket(t, f.userB)

	all, _ := f.tickets.List(ctx, f.admin, TicketQuery{})
	if len(all) != 2 || all[0].ID != mine.ID || all[1].ID != theirs.ID {
		t.Fatalf("admin should see both tickets oldest first, got %+v", all)
	}
	own, _ := f.tickets.List(ctx, f.userA, TicketQuery{})
	if len(own) != 1 || own[0].ID != mine.ID {
		t.Fatalf("user should see only own ticket, got %+v", own)
	}
}

func TestListFiltersNarrowScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.ticket(t, f.userA)
	f.clock.Advance(time.Hour)
	second := f.ticket(t, f.userB)
	if _, err := f.tickets.Update(ctx, f.admin, second.ID, TicketPatch{Priority: strPtr("critical")}); err != nil {
		t.Fatalf("update priority: %v", err)
	}
	if _, err := f.tickets.Assign(ctx, f.admin, first.ID, f.agentA.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	ids := func(tickets []domain.Ticket) []string {
		out := []string{}
		for _, ticket := range tickets {
			out = append(out, ticket.ID)
		}
		return out
	}
	cases := []struct {
		name  string
		actor domain.Actor
		query TicketQuery
		want  []string
	}{
		{"admin by priority", f.admin, TicketQuery{Priorities: []domain.TicketPriority{domain.TicketPriorityCritical}}, []string{second.ID}},
		{"admin by status", f.admin, TicketQuery{Statuses: []domain.TicketStatus{domain.TicketStatusInProgress}}, []string{first.ID}},
		{"admin by assignee", f.admin, TicketQuery{AssignedAgentID: &f.agentA.ID}, []string{first.ID}},
		{"admin created window", f.admin, TicketQuery{CreatedFrom: &second.CreatedAt}, []string{second.ID}},
		{"user cannot widen scope", f.userA, TicketQuery{Priorities: []domain.TicketPriority{domain.TicketPriorityCritical}}, []string{}},
		{"agent cannot see other assignee", f.agentB, TicketQuery{AssignedAgentID: &f.agentA.ID}, []string{}},
		{"agent sees own assignment", f.agentA, TicketQuery{AssignedAgentID: &f.agentA.ID}, []string{first.ID}},
	}
	for _, tc := range cases {
		got, err := f.tickets.List(ctx, tc.actor, tc.query)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if gotIDs := ids(got); len(gotIDs) != len(tc.want) || (len(gotIDs) > 0 && gotIDs[0] != tc.want[0]) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, gotIDs)
		}
	}

	from := second.CreatedAt
	to := first.CreatedAt
	_, err := f.tickets.List(ctx, f.admin, TicketQuery{CreatedFrom: &from, CreatedTo: &to})
	expectCode(t, err, apperrors.CodeValidation)
}

func TestAssignAutoAdvance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.ticket(t, f.userA)

	assigned, err := f.tickets.Assign(ctx, f.agentA, ticket.ID, f.agentA.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.Status != domain.TicketStatusInProgress || !assigned.AssignedTo(f.agentA.ID) {
		t.Fatalf("expected in_progress assigned to agent A, got %+v", assigned)
	}

	pending := "pending"
	if _, err := f.tickets.Update(ctx, f.agentA, ticket.ID, TicketPatch{Status: &pending, StatusSet: true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	reassigned, err := f.tickets.Assign(ctx, f.admin, ticket.ID, f.admin.ID)
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if reassigned.Status != domain.TicketStatusPending {
		t.Fatalf("assignment must only advance open tickets, got %s", reassigned.Status)
	}

	points := f.recorder.Measurements(string(events.EventTicketAssigned))
	if len(points) != 2 || points[1].Tags["assigned_agent_id"] != f.admin.ID || points[1].Tags["assigned_by_id"] != f.admin.ID {
		t.Fatalf("unexpected ticket_assigned points %+v", points)
	}
}

func TestAssignErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.ticket(t, f.userA)

	_, err := f.tickets.Assign(ctx, f.userA, ticket.ID, f.agentA.ID)
	expectCode(t, err, apperrors.CodeForbidden)
	_, err = f.tickets.Assign(ctx, f.admin, "missing", f.agentA.ID)
	expectCode(t, err, apperrors.CodeNotFound)
	_, err = f.tickets.Assign(ctx, f.admin, ticket.ID, "missing")
	expectCode(t, err, apperrors.CodeNotFound)
	_, err = f.tickets.Assign(ctx, f.admin, ticket.ID, f.userB.ID)
	expectCode(t, err, apperrors.CodeBadRequest)
}

func TestUserPatchRejectedOnFieldPresence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.ticket(t, f.userA)

	open := "open"
	patches := []TicketPatch{
		{Status: &open, StatusSet: true},
		{StatusSet: true},
		{AssignedAgentID: &f.agentA.ID, AssigneeSet: true},
		{AssigneeSet: true},
	}
	for i, patch := range patches {
		_, err := f.tickets.Update(ctx, f.userA, ticket.ID, patch)
		expectCode(t, err, apperrors.CodeForbidden)
		if i == 0 && len(f.recorder.Measurements(string(events.EventTicketStatusChanged))) != 0 {
			t.Fatalf("rejected patch must not emit events")
		}
	}

	title := "Printer still on fire"
	updated, err := f.tickets.Update(ctx, f.userA, ticket.ID, TicketPatch{Title: &title})
	if err != nil {
		t.Fatalf("content update: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("title not applied: %+v", updated)
	}
	_, err = f.tickets.Update(ctx, f.userB, ticket.ID, TicketPatch{Title: &title})
	expectCode(t, err, apperrors.CodeForbidden)
}

func TestResolvedAtStampedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.ticket(t, f.userA)
	if _, err := f.tickets.Assign(ctx, f.admin, ticket.ID, f.agentA.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	set := func(status string) *domain.Ticket {
		t.Helper()
		updated, err := f.tickets.Update(ctx, f.agentA, ticket.ID, TicketPatch{Status: &status, StatusSet: true})
		if err != nil {
			t.Fatalf("set %s: %v", status, err)
		}
		return updated
	}

	f.clock.Advance(2 * time.Hour)
	first := set("RESOLVED")
	if first.ResolvedAt == nil || !first.ResolvedAt.Equal(f.clock.Now()) {
		t.Fatalf("expected resolved_at to be stamped, got %+v", first.ResolvedAt)
	}
	stamp := *first.ResolvedAt

	f.clock.Advance(time.Hour)
	set("open")
	again := set("resolved")
	if again.ResolvedAt == nil || !again.ResolvedAt.Equal(stamp) {
		t.Fatalf("resolved_at must not move, got %v want %v", again.ResolvedAt, stamp)
	}

	resolved := f.recorder.Measurements(string(events.EventTicketResolved))
	if len(resolved) != 1 {
		t.Fatalf("expected a single ticket_resolved point, got %d", len(resolved))
	}
	if resolved[0].Fields["resolution_time_seconds"] != int64(7200) || resolved[0].Tags["agent_id"] != f.agentA.ID {
		t.Fatalf("unexpected ticket_resolved point %+v", resolved[0])
	}
	if n := len(f.recorder.Measurements(string(events.EventTicketStatusChanged))); n != 3 {
		t.Fatalf("expected one status change per update, got %d", n)
	}
}

func TestStatusChangeEmittedForSameStatus(t *testing.T) {
	f := newFixture(t)
	ticket := f.ticket(t, f.userA)
	open := "open"
	if _, err := f.tickets.Update(context.Background(), f.agentB, ticket.ID, TicketPatch{Status: &open, StatusSet: true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	points := f.recorder.Measurements(string(events.EventTicketStatusChanged))
	if len(points) != 1 || points[0].Tags["old_status"] != "open" || points[0].Tags["new_status"] != "open" {
		t.Fatalf("unexpected status change points %+v", points)
	}
}

func TestAgentUpdateAssignmentField(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.ticket(t, f.userA)

	updated, err := f.tickets.Update(ctx, f.agentA, ticket.ID, TicketPatch{AssignedAgentID: &f.agentB.ID, AssigneeSet: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.AssignedTo(f.agentB.ID) || updated.Status != domain.TicketStatusOpen {
		t.Fatalf("generic update assigns without advancing, got %+v", updated)
	}

	_, err = f.tickets.Update(ctx, f.admin, ticket.ID, TicketPatch{AssignedAgentID: &f.userB.ID, AssigneeSet: true})
	expectCode(t, err, apperrors.CodeBadRequest)

	cleared, err := f.tickets.Update(ctx, f.admin, ticket.ID, TicketPatch{AssigneeSet: true})
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if cleared.IsAssigned() {
		t.Fatalf("explicit null assignee should unassign")
	}

	_, err = f.tickets.Update(ctx, f.admin, ticket.ID, TicketPatch{StatusSet: true})
	expectCode(t, err, apperrors.CodeValidation)
	bogus := "archived"
	_, err = f.tickets.Update(ctx, f.admin, ticket.ID, TicketPatch{Status: &bogus, StatusSet: true})
	expectCode(t, err, apperrors.CodeValidation)
}

func TestGetMissingTicket(t *testing.T) {
	f := newFixture(t)
	_, err := f.tickets.Get(context.Background(), f.admin, "nope")
	expectCode(t, err, apperrors.CodeNotFound)
	_, err = f.tickets.Update(context.Background(), f.userA, "nope", TicketPatch{})
	expectCode(t, err, apperrors.CodeNotFound)
}
