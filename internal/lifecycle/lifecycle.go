// Package lifecycle applies ticket status transitions and their derived effects.
package lifecycle

import (
	"time"

	"github.com/Elmamis69/ticket-master-api/internal/domain"
)

// StatusChange records a status write made through a generic update.
type StatusChange struct {
	OldStatus domain.TicketStatus
	NewStatus domain.TicketStatus
}

// Resolution is produced the first time a ticket reaches RESOLVED.
type Resolution struct {
	ResolvedAt            time.Time
	ResolutionTimeSeconds int64
	AgentID               *string
}

// CanTransition reports whether next may follow current. Every status may
// currently follow every other one; only membership is enforced.
func CanTransition(current, next domain.TicketStatus) bool {
	_, okCurrent := domain.ParseTicketStatus(string(current))
	_, okNext := domain.ParseTicketStatus(string(next))
	return okCurrent && okNext
}

// ApplyStatus sets the ticket status and stamps resolved_at on the first
// transition to RESOLVED. The returned resolution is nil unless that happened.
func ApplyStatus(ticket *domain.Ticket, next domain.TicketStatus, now time.Time) (StatusChange, *Resolution) {
	change := StatusChange{OldStatus: ticket.Status, NewStatus: next}
	ticket.Status = next

	if next != domain.TicketStatusResolved || ticket.ResolvedAt != nil {
		return change, nil
	}

	resolvedAt := domain.UTC(now)
	ticket.ResolvedAt = &resolvedAt
	return change, &Resolution{
		ResolvedAt:            resolvedAt,
		ResolutionTimeSeconds: ResolutionSeconds(ticket.CreatedAt, resolvedAt),
		AgentID:               ticket.AssignedAgentID,
	}
}

// ApplyAssignment sets the assignee and moves an OPEN ticket to IN_PROGRESS.
// It reports whether the status advanced.
func ApplyAssignment(ticket *domain.Ticket, agentID string) bool {
	id := agentID
	ticket.AssignedAgentID = &id
	if ticket.Status == domain.TicketStatusOpen {
		ticket.Status = domain.TicketStatusInProgress
		return true
	}
	return false
}

// ResolutionSeconds returns whole elapsed seconds between creation and
// resolution, both normalized to UTC first.
func ResolutionSeconds(createdAt, resolvedAt time.Time) int64 {
	elapsed := domain.UTC(resolvedAt).Sub(domain.UTC(createdAt))
	return int64(elapsed / time.Second)
}
