package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Elmamis69/ticket-master-api/internal/domain"
	"github.com/Elmamis69/ticket-master-api/internal/events"
	"github.com/Elmamis69/ticket-master-api/internal/lifecycle"
	"github.com/Elmamis69/ticket-master-api/internal/policy"
	"github.com/Elmamis69/ticket-master-api/internal/repository"
	apperrors "github.com/Elmamis69/ticket-master-api/pkg/util"
)

const (
	minTitleLength       = 5
	maxTitleLength       = 200
	minDescriptionLength = 10
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// TicketCreateInput describes ticket creation payload. A nil priority means medium.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    *string
}

// TicketPatch carries a partial update. Status and assignee track key
// presence separately from their value so an explicit null is visible.
type TicketPatch struct {
	Title           *string
	Description     *string
	Priority        *string
	Status          *string
	StatusSet       bool
	AssignedAgentID *string
	AssigneeSet     bool
}

// TouchesWorkflow reports whether the patch names a status or assignment key.
func (p TicketPatch) TouchesWorkflow() bool {
	return p.StatusSet || p.AssigneeSet
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clockOrDefault(deps.Clock),
	}
}

// Create opens a ticket on behalf of the actor.
func (s *TicketService) Create(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if err := forbidden(policy.CanCreateTicket(actor)); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityMedium,
		CreatorID:   actor.ID,
	}

	problems := fieldErrors{}
	problems.checkLength("title", ticket.Title, minTitleLength, maxTitleLength)
	problems.checkLength("description", ticket.Description, minDescriptionLength, 0)
	if input.Priority != nil {
		priority, ok := domain.ParseTicketPriority(*input.Priority)
		if !ok {
			problems["priority"] = "must be one of low, medium, high, critical"
		}
		ticket.Priority = priority
	}
	if err := problems.err(); err != nil {
		return nil, err
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.New(events.EventTicketCreated, ticket.ID, actor.ID, events.TicketCreatedPayload{
		CreatorID: ticket.CreatorID,
		Priority:  ticket.Priority,
	}))
	return ticket, nil
}

// TicketQuery holds optional listing filters. Empty fields are ignored.
type TicketQuery struct {
	Statuses        []domain.TicketStatus
	Priorities      []domain.TicketPriority
	AssignedAgentID *string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// List returns the tickets visible to the actor that match query, oldest
// first. The filters only narrow the actor's list scope.
func (s *TicketService) List(ctx context.Context, actor domain.Actor, query TicketQuery) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		AssignedAgentID: query.AssignedAgentID,
		Statuses:        query.Statuses,
		Priorities:      query.Priorities,
		CreatedFrom:     query.CreatedFrom,
		CreatedTo:       query.CreatedTo,
	}
	switch policy.TicketListScope(actor) {
	case policy.ScopeAll:
	case policy.ScopeAssignedOrUnassigned:
		filter.VisibleToAgentID = &actor.ID
	case policy.ScopeCreatedBy:
		filter.CreatorID = &actor.ID
	default:
		return nil, apperrors.NewForbidden("unknown role")
	}
	if query.CreatedFrom != nil && query.CreatedTo != nil && !query.CreatedFrom.Before(*query.CreatedTo) {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{"created_to": "must be after created_from"})
	}
	return s.tickets.List(ctx, filter)
}

// Get returns a single ticket the actor may read.
func (s *TicketService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error) {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := forbidden(policy.CanReadTicket(actor, ticket)); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Update applies the fields present in patch.
func (s *TicketService) Update(ctx context.Context, actor domain.Actor, id string, patch TicketPatch) (*domain.Ticket, error) {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := forbidden(policy.CanUpdateTicketContent(actor, ticket)); err != nil {
		return nil, err
	}
	if patch.TouchesWorkflow() {
		if err := forbidden(policy.CanUpdateTicketWorkflow(actor)); err != nil {
			return nil, err
		}
	}

	problems := fieldErrors{}
	if patch.Title != nil {
		ticket.Title = strings.TrimSpace(*patch.Title)
		problems.checkLength("title", ticket.Title, minTitleLength, maxTitleLength)
	}
	if patch.Description != nil {
		ticket.Description = strings.TrimSpace(*patch.Description)
		problems.checkLength("description", ticket.Description, minDescriptionLength, 0)
	}
	if patch.Priority != nil {
		priority, ok := domain.ParseTicketPriority(*patch.Priority)
		if !ok {
			problems["priority"] = "must be one of low, medium, high, critical"
		}
		ticket.Priority = priority
	}
	var nextStatus domain.TicketStatus
	if patch.StatusSet {
		status, ok := domain.TicketStatus(""), false
		if patch.Status != nil {
			status, ok = domain.ParseTicketStatus(*patch.Status)
		}
		if !ok || !lifecycle.CanTransition(ticket.Status, status) {
			problems["status"] = "must be one of open, in_progress, pending, resolved, closed"
		}
		nextStatus = status
	}
	if err := problems.err(); err != nil {
		return nil, err
	}

	if patch.AssigneeSet {
		if patch.AssignedAgentID == nil {
			ticket.AssignedAgentID = nil
		} else {
			agent, err := s.resolveAgent(ctx, *patch.AssignedAgentID)
			if err != nil {
				return nil, err
			}
			ticket.AssignedAgentID = &agent.ID
		}
	}

	var (
		change     lifecycle.StatusChange
		resolution *lifecycle.Resolution
	)
	if patch.StatusSet {
		change, resolution = lifecycle.ApplyStatus(ticket, nextStatus, s.now())
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, notFoundOr(err, "ticket", id)
	}

	if patch.StatusSet {
		s.publishEvent(ctx, events.New(events.EventTicketStatusChanged, ticket.ID, actor.ID, events.TicketStatusChangedPayload{
			OldStatus: change.OldStatus,
			NewStatus: change.NewStatus,
		}))
	}
	if resolution != nil {
		s.publishEvent(ctx, events.New(events.EventTicketResolved, ticket.ID, actor.ID, events.TicketResolvedPayload{
			AgentID:               resolution.AgentID,
			ResolutionTimeSeconds: resolution.ResolutionTimeSeconds,
		}))
	}
	return ticket, nil
}

// Assign hands the ticket to an agent or admin, moving an open ticket to in progress.
func (s *TicketService) Assign(ctx context.Context, actor domain.Actor, id, agentID string) (*domain.Ticket, error) {
	if err := forbidden(policy.CanAssignTicket(actor)); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	agent, err := s.resolveAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	lifecycle.ApplyAssignment(ticket, agent.ID)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, notFoundOr(err, "ticket", id)
	}

	s.publishEvent(ctx, events.New(events.EventTicketAssigned, ticket.ID, actor.ID, events.TicketAssignedPayload{
		AgentID:    agent.ID,
		AssignedBy: actor.ID,
	}))
	return ticket, nil
}

// Delete removes a ticket and its comments. Admin only.
func (s *TicketService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := forbidden(policy.CanDeleteTicket(actor)); err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return notFoundOr(err, "ticket", id)
	}
	s.logger.Info("ticket deleted", zap.String("ticket_id", id), zap.String("actor_id", actor.ID))
	return nil
}

func (s *TicketService) load(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "ticket", id)
	}
	return ticket, nil
}

func (s *TicketService) resolveAgent(ctx context.Context, agentID string) (*domain.User, error) {
	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("agent", map[string]any{"id": agentID})
		}
		return nil, err
	}
	if !agent.Role.CanWorkTickets() {
		return nil, apperrors.NewBadRequest("user is not an agent or admin", map[string]any{"id": agentID})
	}
	return agent, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
