package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Elmamis69/ticket-master-api/internal/domain"
	"github.com/Elmamis69/ticket-master-api/internal/service"
	apperrors "github.com/Elmamis69/ticket-master-api/pkg/util"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    *string `json:"priority"`
}

// Input converts the payload for the service.
func (r CreateTicketRequest) Input() service.TicketCreateInput {
	return service.TicketCreateInput{Title: r.Title, Description: r.Description, Priority: r.Priority}
}

// UpdateTicketRequest is a partial update. Decoding records which of status
// and assigned_agent_id were sent, including explicit nulls.
type UpdateTicketRequest struct {
	patch service.TicketPatch
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *UpdateTicketRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var patch service.TicketPatch
	fields := []struct {
		key string
		dst **string
		set *bool
	}{
		{"title", &patch.Title, nil},
		{"description", &patch.Description, nil},
		{"priority", &patch.Priority, nil},
		{"status", &patch.Status, &patch.StatusSet},
		{"assigned_agent_id", &patch.AssignedAgentID, &patch.AssigneeSet},
	}
	for _, f := range fields {
		value, ok := raw[f.key]
		if !ok {
			continue
		}
		if f.set != nil {
			*f.set = true
		}
		if err := json.Unmarshal(value, f.dst); err != nil {
			return err
		}
	}
	r.patch = patch
	return nil
}

// Patch returns the decoded update.
func (r UpdateTicketRequest) Patch() service.TicketPatch {
	return r.patch
}

// ListTicketsRequest carries the GET /tickets query string. status and
// priority take comma-separated values; created_from and created_to take
// RFC 3339 timestamps or YYYY-MM-DD dates (UTC midnight).
type ListTicketsRequest struct {
	Status          string `query:"status"`
	Priority        string `query:"priority"`
	AssignedAgentID string `query:"assigned_agent_id"`
	CreatedFrom     string `query:"created_from"`
	CreatedTo       string `query:"created_to"`
}

// Query validates the parameters and converts them to a service query.
func (r ListTicketsRequest) Query() (service.TicketQuery, error) {
	var query service.TicketQuery
	problems := map[string]any{}

	for _, raw := range splitList(r.Status) {
		status, ok := domain.ParseTicketStatus(raw)
		if !ok {
			problems["status"] = "must be one of open, in_progress, pending, resolved, closed"
			break
		}
		query.Statuses = append(query.Statuses, status)
	}
	for _, raw := range splitList(r.Priority) {
		priority, ok := domain.ParseTicketPriority(raw)
		if !ok {
			problems["priority"] = "must be one of low, medium, high, critical"
			break
		}
		query.Priorities = append(query.Priorities, priority)
	}
	if agentID := strings.TrimSpace(r.AssignedAgentID); agentID != "" {
		query.AssignedAgentID = &agentID
	}
	if from, ok := parseQueryTime(r.CreatedFrom); !ok {
		problems["created_from"] = "must be RFC 3339 or YYYY-MM-DD"
	} else {
		query.CreatedFrom = from
	}
	if to, ok := parseQueryTime(r.CreatedTo); !ok {
		problems["created_to"] = "must be RFC 3339 or YYYY-MM-DD"
	} else {
		query.CreatedTo = to
	}

	if len(problems) > 0 {
		return service.TicketQuery{}, apperrors.NewValidationError("validation failed", problems)
	}
	return query, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseQueryTime(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	return nil, false
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssignedAgentID string `json:"assigned_agent_id"`
}

// TicketResponse is the full ticket view.
type TicketResponse struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	CreatorID       string                `json:"creator_id"`
	AssignedAgentID *string               `json:"assigned_agent_id"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       *time.Time            `json:"updated_at"`
	ResolvedAt      *time.Time            `json:"resolved_at"`
}

// TicketSummary is the list view.
type TicketSummary struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	CreatorID       string                `json:"creator_id"`
	AssignedAgentID *string               `json:"assigned_agent_id"`
	CreatedAt       time.Time             `json:"created_at"`
}

// NewTicketResponse maps a ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Status:          t.Status,
		Priority:        t.Priority,
		CreatorID:       t.CreatorID,
		AssignedAgentID: t.AssignedAgentID,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		ResolvedAt:      t.ResolvedAt,
	}
}

// NewTicketSummaries maps a listing.
func NewTicketSummaries(tickets []domain.Ticket) []TicketSummary {
	out := make([]TicketSummary, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, TicketSummary{
			ID:              t.ID,
			Title:           t.Title,
			Status:          t.Status,
			Priority:        t.Priority,
			CreatorID:       t.CreatorID,
			AssignedAgentID: t.AssignedAgentID,
			CreatedAt:       t.CreatedAt,
		})
	}
	return out
}
