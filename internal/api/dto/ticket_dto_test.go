package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Elmamis69/ticket-master-api/internal/domain"
	apperrors "github.com/Elmamis69/ticket-master-api/pkg/util"
)

func TestUpdateTicketRequestPresence(t *testing.T) {
	var req UpdateTicketRequest
	if err := json.Unmarshal([]byte(`{"title":"New title","status":null,"assigned_agent_id":"a1"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	patch := req.Patch()
	if patch.Title == nil || *patch.Title != "New title" {
		t.Fatalf("title not decoded: %+v", patch)
	}
	if !patch.StatusSet || patch.Status != nil {
		t.Fatalf("explicit null status must be present and nil: %+v", patch)
	}
	if !patch.AssigneeSet || patch.AssignedAgentID == nil || *patch.AssignedAgentID != "a1" {
		t.Fatalf("assignee not decoded: %+v", patch)
	}
	if patch.Description != nil || patch.Priority != nil {
		t.Fatalf("absent fields must stay nil: %+v", patch)
	}
}

func TestUpdateTicketRequestAbsentWorkflowKeys(t *testing.T) {
	var req UpdateTicketRequest
	if err := json.Unmarshal([]byte(`{"priority":"HIGH"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Patch().TouchesWorkflow() {
		t.Fatalf("patch without status or assignee keys must not touch workflow")
	}
}

func TestUpdateTicketRequestRejectsWrongTypes(t *testing.T) {
	var req UpdateTicketRequest
	if err := json.Unmarshal([]byte(`{"status":3}`), &req); err == nil {
		t.Fatalf("expected type error")
	}
	if err := json.Unmarshal([]byte(`[]`), &req); err == nil {
		t.Fatalf("expected object error")
	}
}

func TestListTicketsRequestQuery(t *testing.T) {
	query, err := ListTicketsRequest{
		Status:          "Open, in_progress",
		Priority:        "HIGH",
		AssignedAgentID: "agent-1",
		CreatedFrom:     "2026-04-01",
		CreatedTo:       "2026-04-10T12:00:00+02:00",
	}.Query()
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(query.Statuses) != 2 || query.Statuses[0] != domain.TicketStatusOpen || query.Statuses[1] != domain.TicketStatusInProgress {
		t.Fatalf("unexpected statuses %v", query.Statuses)
	}
	if len(query.Priorities) != 1 || query.Priorities[0] != domain.TicketPriorityHigh {
		t.Fatalf("unexpected priorities %v", query.Priorities)
	}
	if query.AssignedAgentID == nil || *query.AssignedAgentID != "agent-1" {
		t.Fatalf("unexpected assignee %v", query.AssignedAgentID)
	}
	if !query.CreatedFrom.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created_from %v", query.CreatedFrom)
	}
	if !query.CreatedTo.Equal(time.Date(2026, 4, 10, 10, 0, 0, 0, time.UTC)) || query.CreatedTo.Location() != time.UTC {
		t.Fatalf("unexpected created_to %v", query.CreatedTo)
	}

	empty, err := ListTicketsRequest{}.Query()
	if err != nil || empty.Statuses != nil || empty.CreatedFrom != nil || empty.AssignedAgentID != nil {
		t.Fatalf("empty query should carry no filters: %+v %v", empty, err)
	}
}

func TestListTicketsRequestRejectsBadValues(t *testing.T) {
	for _, req := range []ListTicketsRequest{
		{Status: "open,archived"},
		{Priority: "urgent"},
		{CreatedFrom: "yesterday"},
		{CreatedTo: "2026-13-01"},
	} {
		if _, err := req.Query(); apperrors.CodeOf(err) != apperrors.CodeValidation {
			t.Fatalf("%+v: expected validation error, got %v", req, err)
		}
	}
}
