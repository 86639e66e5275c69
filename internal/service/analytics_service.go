package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/Elmamis69/ticket-master-api/internal/domain"
	"github.com/Elmamis69/ticket-master-api/internal/policy"
	"github.com/Elmamis69/ticket-master-api/internal/repository"
	apperrors "github.com/Elmamis69/ticket-master-api/pkg/util"
)

const (
	// DefaultDashboardDays is the daily series window when none is given.
	DefaultDashboardDays = 30
	maxDashboardDays     = 365
	topAgentsLimit       = 10
)

// TicketStats counts tickets per status.
type TicketStats struct {
	Total      int
	Open       int
	InProgress int
	Pending    int
	Resolved   int
	Closed     int
}

// PriorityStats counts tickets per priority.
type PriorityStats struct {
	Low      int
	Medium   int
	High     int
	Critical int
}

// AgentStats summarizes the workload of one agent or admin.
type AgentStats struct {
	AgentID   string
	AgentName string
	Assigned  int
	Resolved  int
	// AvgResolutionHours is nil when the agent has no resolved tickets.
	AvgResolutionHours *float64
}

// DailyCount is one bucket of the creation series.
type DailyCount struct {
	Day   string
	Count int
}

// Dashboard is the aggregated analytics view.
type Dashboard struct {
	Tickets            TicketStats
	Priorities         PriorityStats
	TopAgents          []AgentStats
	TicketsOverTime    []DailyCount
	AvgResolutionHours *float64
}

// AnalyticsService computes dashboard and per-agent figures.
type AnalyticsService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
	now     Clock
}

// AnalyticsDependencies bundles collaborators for the analytics service.
type AnalyticsDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Clock      Clock
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	return &AnalyticsService{
		tickets: deps.TicketRepo,
		users:   deps.UserRepo,
		now:     clockOrDefault(deps.Clock),
	}
}

// Dashboard aggregates ticket counts, the agent leaderboard and a daily
// creation series covering the last days UTC calendar days, today included.
func (s *AnalyticsService) Dashboard(ctx context.Context, actor domain.Actor, days int) (*Dashboard, error) {
	if err := forbidden(policy.CanViewDashboard(actor)); err != nil {
		return nil, err
	}
	if days < 1 || days > maxDashboardDays {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{"days": "must be between 1 and 365"})
	}

	byStatus, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.tickets.CountByPriority(ctx)
	if err != nil {
		return nil, err
	}
	series, err := s.dailySeries(ctx, days)
	if err != nil {
		return nil, err
	}

	agents, err := s.users.ListByRoles(ctx, domain.RoleAgent, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	workloads, err := s.tickets.AgentWorkloads(ctx)
	if err != nil {
		return nil, err
	}
	spans, err := s.tickets.ResolvedSpans(ctx, nil)
	if err != nil {
		return nil, err
	}

	spansByAgent := make(map[string][]repository.ResolvedSpan)
	for _, span := range spans {
		if span.AgentID != nil {
			spansByAgent[*span.AgentID] = append(spansByAgent[*span.AgentID], span)
		}
	}

	leaderboard := make([]AgentStats, 0, len(agents))
	for i := range agents {
		leaderboard = append(leaderboard, agentStats(&agents[i], workloads[agents[i].ID], spansByAgent[agents[i].ID]))
	}
	sort.SliceStable(leaderboard, func(i, j int) bool {
		if leaderboard[i].Resolved != leaderboard[j].Resolved {
			return leaderboard[i].Resolved > leaderboard[j].Resolved
		}
		return leaderboard[i].AgentID < leaderboard[j].AgentID
	})
	if len(leaderboard) > topAgentsLimit {
		leaderboard = leaderboard[:topAgentsLimit]
	}

	return &Dashboard{
		Tickets:            ticketStats(byStatus),
		Priorities:         priorityStats(byPriority),
		TopAgents:          leaderboard,
		TicketsOverTime:    series,
		AvgResolutionHours: averageHours(spans),
	}, nil
}

// AgentStats returns the figures of a single agent. Agents may only ask for themselves.
func (s *AnalyticsService) AgentStats(ctx context.Context, actor domain.Actor, agentID string) (*AgentStats, error) {
	if err := forbidden(policy.CanViewAgentStats(actor, agentID)); err != nil {
		return nil, err
	}
	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		return nil, notFoundOr(err, "agent", agentID)
	}

	workloads, err := s.tickets.AgentWorkloads(ctx)
	if err != nil {
		return nil, err
	}
	spans, err := s.tickets.ResolvedSpans(ctx, &agent.ID)
	if err != nil {
		return nil, err
	}
	stats := agentStats(agent, workloads[agent.ID], spans)
	return &stats, nil
}

func (s *AnalyticsService) dailySeries(ctx context.Context, days int) ([]DailyCount, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, -(days - 1))
	to := today.AddDate(0, 0, 1)

	counts, err := s.tickets.CountCreatedByDay(ctx, from, to)
	if err != nil {
		return nil, err
	}

	series := make([]DailyCount, 0, days)
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		label := day.Format(repository.DayLayout)
		series = append(series, DailyCount{Day: label, Count: counts[label]})
	}
	return series, nil
}

func agentStats(agent *domain.User, workload repository.AgentWorkload, spans []repository.ResolvedSpan) AgentStats {
	return AgentStats{
		AgentID:            agent.ID,
		AgentName:          agent.FullName,
		Assigned:           workload.Assigned,
		Resolved:           workload.Resolved,
		AvgResolutionHours: averageHours(spans),
	}
}

// averageHours is the mean resolution time in hours rounded to two decimals.
func averageHours(spans []repository.ResolvedSpan) *float64 {
	if len(spans) == 0 {
		return nil
	}
	var totalSeconds float64
	for _, span := range spans {
		totalSeconds += span.ResolvedAt.UTC().Sub(span.CreatedAt.UTC()).Seconds()
	}
	hours := math.Round(totalSeconds/float64(len(spans))/3600*100) / 100
	return &hours
}

func ticketStats(counts map[domain.TicketStatus]int) TicketStats {
	stats := TicketStats{
		Open:       counts[domain.TicketStatusOpen],
		InProgress: counts[domain.TicketStatusInProgress],
		Pending:    counts[domain.TicketStatusPending],
		Resolved:   counts[domain.TicketStatusResolved],
		Closed:     counts[domain.TicketStatusClosed],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats
}

func priorityStats(counts map[domain.TicketPriority]int) PriorityStats {
	return PriorityStats{
		Low:      counts[domain.TicketPriorityLow],
		Medium:   counts[domain.TicketPriorityMedium],
		High:     counts[domain.TicketPriorityHigh],
		Critical: counts[domain.TicketPriorityCritical],
	}
}
