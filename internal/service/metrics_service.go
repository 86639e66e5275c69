package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Elmamis69/ticket-master-api/internal/events"
	"github.com/Elmamis69/ticket-master-api/internal/metrics"
)

// MetricsService turns domain events into time-series points.
type MetricsService struct {
	dispatcher events.Dispatcher
	sink       metrics.Sink
	logger     *zap.Logger
}

// NewMetricsService creates the service.
func NewMetricsService(dispatcher events.Dispatcher, sink metrics.Sink, logger *zap.Logger) *MetricsService {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsService{dispatcher: dispatcher, sink: sink, logger: logger}
}

// RegisterHandlers subscribes to events.
func (m *MetricsService) RegisterHandlers() {
	if m.dispatcher == nil {
		return
	}
	m.dispatcher.Subscribe(events.EventTicketCreated, m.handleTicketCreated)
	m.dispatcher.Subscribe(events.EventTicketStatusChanged, m.handleTicketStatusChanged)
	m.dispatcher.Subscribe(events.EventTicketAssigned, m.handleTicketAssigned)
	m.dispatcher.Subscribe(events.EventTicketResolved, m.handleTicketResolved)
	m.dispatcher.Subscribe(events.EventCommentCreated, m.handleCommentCreated)
}

func (m *MetricsService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return payloadError(event)
	}
	return m.write(ctx, event,
		map[string]string{"priority": string(payload.Priority), "creator_id": payload.CreatorID},
		map[string]any{"ticket_id": event.TicketID, "count": 1},
	)
}

func (m *MetricsService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return payloadError(event)
	}
	return m.write(ctx, event,
		map[string]string{
			"old_status": string(payload.OldStatus),
			"new_status": string(payload.NewStatus),
			"user_id":    event.ActorID,
		},
		map[string]any{"ticket_id": event.TicketID, "count": 1},
	)
}

func (m *MetricsService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return payloadError(event)
	}
	return m.write(ctx, event,
		map[string]string{"assigned_agent_id": payload.AgentID, "assigned_by_id": payload.AssignedBy},
		map[string]any{"ticket_id": event.TicketID, "count": 1},
	)
}

func (m *MetricsService) handleTicketResolved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketResolvedPayload)
	if !ok {
		return payloadError(event)
	}
	tags := map[string]string{"ticket_id": event.TicketID}
	if payload.AgentID != nil {
		tags["agent_id"] = *payload.AgentID
	}
	return m.write(ctx, event, tags,
		map[string]any{"resolution_time_seconds": payload.ResolutionTimeSeconds, "count": 1},
	)
}

func (m *MetricsService) handleCommentCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentCreatedPayload)
	if !ok {
		return payloadError(event)
	}
	return m.write(ctx, event,
		map[string]string{"ticket_id": event.TicketID, "author_id": payload.AuthorID},
		map[string]any{"count": 1},
	)
}

// write records the point. Sink failures are logged and dropped.
func (m *MetricsService) write(ctx context.Context, event events.Event, tags map[string]string, fields map[string]any) error {
	if err := m.sink.Write(ctx, string(event.Type), tags, fields); err != nil {
		m.logger.Warn("metric write failed",
			zap.String("measurement", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err),
		)
		return nil
	}
	m.logger.Debug("metric recorded", zap.String("measurement", string(event.Type)), zap.String("ticket_id", event.TicketID))
	return nil
}

func payloadError(event events.Event) error {
	return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
}
