package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketStatuses lists every status in workflow order.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusPending,
	TicketStatusResolved,
	TicketStatusClosed,
}

// ParseTicketStatus accepts any casing of a known status.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	candidate := TicketStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, status := range TicketStatuses {
		if status == candidate {
			return status, true
		}
	}
	return "", false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// TicketPriorities lists every priority from lowest to highest.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityCritical,
}

// ParseTicketPriority accepts any casing of a known priority.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	candidate := TicketPriority(strings.ToLower(strings.TrimSpace(raw)))
	for _, priority := range TicketPriorities {
		if priority == candidate {
			return priority, true
		}
	}
	return "", false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID              string
	Title           string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	CreatorID       string
	AssignedAgentID *string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	ResolvedAt      *time.Time
}

// IsAssigned reports whether an agent currently owns the ticket.
func (t *Ticket) IsAssigned() bool {
	return t.AssignedAgentID != nil && *t.AssignedAgentID != ""
}

// AssignedTo reports whether the ticket is assigned to the given user.
func (t *Ticket) AssignedTo(userID string) bool {
	return t.IsAssigned() && *t.AssignedAgentID == userID
}
