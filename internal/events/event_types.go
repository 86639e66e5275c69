package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Elmamis69/ticket-master-api/internal/domain"
)

// EventType enumerates supported event identifiers. The values double as
// metrics measurement names.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_change"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketResolved      EventType = "ticket_resolved"
	EventCommentCreated      EventType = "comment_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current UTC time.
func New(eventType EventType, ticketID, actorID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CreatorID string                `json:"creator_id"`
	Priority  domain.TicketPriority `json:"priority"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AgentID    string `json:"agent_id"`
	AssignedBy string `json:"assigned_by"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	AgentID               *string `json:"agent_id,omitempty"`
	ResolutionTimeSeconds int64   `json:"resolution_time_seconds"`
}

// CommentCreatedPayload payload.
type CommentCreatedPayload struct {
	CommentID string `json:"comment_id"`
	AuthorID  string `json:"author_id"`
}
