package dto

import "github.com/Elmamis69/ticket-master-api/internal/service"

// TicketStatsResponse counts per status.
type TicketStatsResponse struct {
	TotalTickets      int `json:"total_tickets"`
	OpenTickets       int `json:"open_tickets"`
	InProgressTickets int `json:"in_progress_tickets"`
	PendingTickets    int `json:"pending_tickets"`
	ResolvedTickets   int `json:"resolved_tickets"`
	ClosedTickets     int `json:"closed_tickets"`
}

// PriorityStatsResponse counts per priority.
type PriorityStatsResponse struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// AgentStatsResponse per-agent figures.
type AgentStatsResponse struct {
	AgentID                string   `json:"agent_id"`
	AgentName              string   `json:"agent_name"`
	AssignedTickets        int      `json:"assigned_tickets"`
	ResolvedTickets        int      `json:"resolved_tickets"`
	AvgResolutionTimeHours *float64 `json:"avg_resolution_time_hours"`
}

// TimeSeriesPoint is one day of the creation series.
type TimeSeriesPoint struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// DashboardResponse aggregates everything.
type DashboardResponse struct {
	TicketStats            TicketStatsResponse   `json:"ticket_stats"`
	PriorityStats          PriorityStatsResponse `json:"priority_stats"`
	TopAgents              []AgentStatsResponse  `json:"top_agents"`
	TicketsOverTime        []TimeSeriesPoint     `json:"tickets_over_time"`
	AvgResolutionTimeHours *float64              `json:"avg_resolution_time_hours"`
}

// NewAgentStatsResponse maps agent figures.
func NewAgentStatsResponse(s *service.AgentStats) AgentStatsResponse {
	return AgentStatsResponse{
		AgentID:                s.AgentID,
		AgentName:              s.AgentName,
		AssignedTickets:        s.Assigned,
		ResolvedTickets:        s.Resolved,
		AvgResolutionTimeHours: s.AvgResolutionHours,
	}
}

// NewDashboardResponse maps the dashboard.
func NewDashboardResponse(d *service.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		TicketStats: TicketStatsResponse{
			TotalTickets:      d.Tickets.Total,
			OpenTickets:       d.Tickets.Open,
			InProgressTickets: d.Tickets.InProgress,
			PendingTickets:    d.Tickets.Pending,
			ResolvedTickets:   d.Tickets.Resolved,
			ClosedTickets:     d.Tickets.Closed,
		},
		PriorityStats: PriorityStatsResponse{
			Low:      d.Priorities.Low,
			Medium:   d.Priorities.Medium,
			High:     d.Priorities.High,
			Critical: d.Priorities.Critical,
		},
		TopAgents:              make([]AgentStatsResponse, 0, len(d.TopAgents)),
		TicketsOverTime:        make([]TimeSeriesPoint, 0, len(d.TicketsOverTime)),
		AvgResolutionTimeHours: d.AvgResolutionHours,
	}
	for i := range d.TopAgents {
		resp.TopAgents = append(resp.TopAgents, NewAgentStatsResponse(&d.TopAgents[i]))
	}
	for _, day := range d.TicketsOverTime {
		resp.TicketsOverTime = append(resp.TicketsOverTime, TimeSeriesPoint{Timestamp: day.Day, Value: float64(day.Count)})
	}
	return resp
}
