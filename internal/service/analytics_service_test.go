package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/Elmamis69/ticket-master-api/internal/domain"
	apperrors "github.com/Elmamis69/ticket-master-api/pkg/util"
)

func resolve(t *testing.T, f *fixture, actor domain.Actor, ticketID string) {
	t.Helper()
	resolved := "resolved"
	if _, err := f.tickets.Update(context.Background(), actor, ticketID, TicketPatch{Status: &resolved, StatusSet: true}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
}

func TestDashboardAverageResolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.ticket(t, f.userA)
	if _, err := f.tickets.Assign(ctx, f.admin, ticket.ID, f.agentA.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	f.clock.Advance(7200 * time.Second)
	resolve(t, f, f.agentA, ticket.ID)

	dash, err := f.analytics.Dashboard(ctx, f.agentB, DefaultDashboardDays)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.AvgResolutionHours == nil || *dash.AvgResolutionHours != 2.0 {
		t.Fatalf("expected 2.0 hours, got %v", dash.AvgResolutionHours)
	}
	if dash.Tickets.Total != 1 || dash.Tickets.Resolved != 1 || dash.Priorities.Medium != 1 {
		t.Fatalf("unexpected counts %+v %+v", dash.Tickets, dash.Priorities)
	}
	top := dash.TopAgents[0]
	if top.AgentID != f.agentA.ID || top.Resolved != 1 || top.Assigned != 1 || top.AgentName != "Agent A" {
		t.Fatalf("unexpected leader %+v", top)
	}
	if top.AvgResolutionHours == nil || *top.AvgResolutionHours != 2.0 {
		t.Fatalf("unexpected agent average %v", top.AvgResolutionHours)
	}
	if len(dash.TopAgents) != 3 {
		t.Fatalf("expected admin and two agents, got %d", len(dash.TopAgents))
	}
	for _, agent := range dash.TopAgents[1:] {
		if agent.AvgResolutionHours != nil {
			t.Fatalf("agent without resolutions must have no average: %+v", agent)
		}
	}
}

func TestDashboardNoResolvedTickets(t *testing.T) {
	f := newFixture(t)
	f.ticket(t, f.userA)
	dash, err := f.analytics.Dashboard(context.Background(), f.admin, 7)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.AvgResolutionHours != nil {
		t.Fatalf("expected no average, got %v", *dash.AvgResolutionHours)
	}
}

func TestDashboardDailySeries(t *testing.T) {
	f := newFixture(t)
	f.clock.Advance(-48 * time.Hour)
	f.ticket(t, f.userA)
	f.ticket(t, f.userA)
	f.clock.Advance(48 * time.Hour)
	f.ticket(t, f.userB)

	dash, err := f.analytics.Dashboard(context.Background(), f.admin, 3)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	want := []DailyCount{{"2026-04-08", 2}, {"2026-04-09", 0}, {"2026-04-10", 1}}
	if len(dash.TicketsOverTime) != len(want) {
		t.Fatalf("expected %d buckets, got %+v", len(want), dash.TicketsOverTime)
	}
	for i := range want {
		if dash.TicketsOverTime[i] != want[i] {
			t.Fatalf("bucket %d: want %+v got %+v", i, want[i], dash.TicketsOverTime[i])
		}
	}
}

func TestDashboardLeaderboardOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, agent := range []domain.Actor{f.agentB, f.agentB, f.agentA} {
		ticket := f.ticket(t, f.userA)
		if _, err := f.tickets.Assign(ctx, f.admin, ticket.ID, agent.ID); err != nil {
			t.Fatalf("assign: %v", err)
		}
		resolve(t, f, agent, ticket.ID)
	}

	dash, err := f.analytics.Dashboard(ctx, f.admin, 1)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.TopAgents[0].AgentID != f.agentB.ID || dash.TopAgents[0].Resolved != 2 {
		t.Fatalf("agent B should lead, got %+v", dash.TopAgents[0])
	}
	if dash.TopAgents[1].AgentID != f.agentA.ID {
		t.Fatalf("agent A should be second, got %+v", dash.TopAgents[1])
	}
}

func TestDashboardLeaderboardTieBreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, agent := range []domain.Actor{f.agentA, f.agentB} {
		ticket := f.ticket(t, f.userA)
		if _, err := f.tickets.Assign(ctx, f.admin, ticket.ID, agent.ID); err != nil {
			t.Fatalf("assign: %v", err)
		}
		resolve(t, f, agent, ticket.ID)
	}

	dash, err := f.analytics.Dashboard(ctx, f.admin, 1)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	first, second := f.agentA.ID, f.agentB.ID
	if second < first {
		first, second = second, first
	}
	if dash.TopAgents[0].AgentID != first || dash.TopAgents[1].AgentID != second {
		t.Fatalf("tied agents should be ordered by id, got %s then %s", dash.TopAgents[0].AgentID, dash.TopAgents[1].AgentID)
	}
	if dash.TopAgents[2].AgentID != f.admin.ID || dash.TopAgents[2].Resolved != 0 {
		t.Fatalf("admin without resolutions should trail, got %+v", dash.TopAgents[2])
	}
}

func TestDashboardLeaderboardCappedAtTen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	idle := []string{f.admin.ID, f.agentA.ID, f.agentB.ID}
	var leader domain.Actor
	for i := 0; i < 12; i++ {
		agent := f.user(t, fmt.Sprintf("agent%02d@example.com", i), fmt.Sprintf("Agent %02d", i), domain.RoleAgent)
		if i == 0 {
			leader = agent
			continue
		}
		idle = append(idle, agent.ID)
	}
	ticket := f.ticket(t, f.userA)
	if _, err := f.tickets.Assign(ctx, f.admin, ticket.ID, leader.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	resolve(t, f, leader, ticket.ID)

	dash, err := f.analytics.Dashboard(ctx, f.admin, 1)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dash.TopAgents) != 10 {
		t.Fatalf("expected 10 agents, got %d", len(dash.TopAgents))
	}
	if dash.TopAgents[0].AgentID != leader.ID {
		t.Fatalf("agent with a resolution should lead, got %+v", dash.TopAgents[0])
	}
	sort.Strings(idle)
	for i, stats := range dash.TopAgents[1:] {
		if stats.AgentID != idle[i] {
			t.Fatalf("position %d: expected %s, got %s", i+1, idle[i], stats.AgentID)
		}
	}
}

func TestDashboardAccessAndBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.analytics.Dashboard(ctx, f.userA, 30)
	expectCode(t, err, apperrors.CodeForbidden)
	_, err = f.analytics.Dashboard(ctx, f.admin, 0)
	expectCode(t, err, apperrors.CodeValidation)
	_, err = f.analytics.Dashboard(ctx, f.admin, 366)
	expectCode(t, err, apperrors.CodeValidation)
}

func TestAgentStatsAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.analytics.AgentStats(ctx, f.agentA, f.agentB.ID)
	expectCode(t, err, apperrors.CodeForbidden)
	_, err = f.analytics.AgentStats(ctx, f.userA, f.userA.ID)
	expectCode(t, err, apperrors.CodeForbidden)
	_, err = f.analytics.AgentStats(ctx, f.admin, "missing")
	expectCode(t, err, apperrors.CodeNotFound)

	stats, err := f.analytics.AgentStats(ctx, f.agentA, f.agentA.ID)
	if err != nil {
		t.Fatalf("self stats: %v", err)
	}
	if stats.Assigned != 0 || stats.Resolved != 0 || stats.AvgResolutionHours != nil {
		t.Fatalf("unexpected empty stats %+v", stats)
	}
}

func TestAgentStatsFigures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.ticket(t, f.userA)
	second := f.ticket(t, f.userA)
	third := f.ticket(t, f.userA)
	for _, ticket := range []*domain.Ticket{first, second, third} {
		if _, err := f.tickets.Assign(ctx, f.admin, ticket.ID, f.agentA.ID); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}
	f.clock.Advance(time.Hour)
	resolve(t, f, f.agentA, first.ID)
	f.clock.Advance(2 * time.Hour)
	resolve(t, f, f.agentA, second.ID)

	stats, err := f.analytics.AgentStats(ctx, f.admin, f.agentA.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Assigned != 3 || stats.Resolved != 2 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if stats.AvgResolutionHours == nil || *stats.AvgResolutionHours != 2.0 {
		t.Fatalf("expected mean of 1h and 3h, got %v", stats.AvgResolutionHours)
	}
}
