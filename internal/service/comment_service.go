package service

import (
	"context"
	"strings"

	"github.com/Elmamis69/ticket-master-api/internal/domain"
	"github.com/Elmamis69/ticket-master-api/internal/events"
	"github.com/Elmamis69/ticket-master-api/internal/policy"
	"github.com/Elmamis69/ticket-master-api/internal/repository"
	apperrors "github.com/Elmamis69/ticket-master-api/pkg/util"
)

const maxCommentLength = 2000

// CommentService manages the discussion thread of a ticket.
type CommentService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	dispatcher events.Dispatcher
}

// CommentDependencies bundles collaborators for the comment service.
type CommentDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	Dispatcher  events.Dispatcher
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create adds a comment to a ticket the actor may read.
func (s *CommentService) Create(ctx context.Context, actor domain.Actor, ticketID, content string) (*domain.Comment, error) {
	ticket, err := s.ticket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := forbidden(policy.CanCreateComment(actor, ticket)); err != nil {
		return nil, err
	}
	content, err = validateContent(content)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{Content: content, TicketID: ticket.ID, AuthorID: actor.ID}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.New(events.EventCommentCreated, ticket.ID, actor.ID, events.CommentCreatedPayload{
			CommentID: comment.ID,
			AuthorID:  actor.ID,
		}))
	}
	return comment, nil
}

// List returns the thread oldest first.
func (s *CommentService) List(ctx context.Context, actor domain.Actor, ticketID string) ([]domain.Comment, error) {
	ticket, err := s.ticket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := forbidden(policy.CanReadComments(actor, ticket)); err != nil {
		return nil, err
	}
	return s.comments.ListByTicket(ctx, ticket.ID)
}

// Update rewrites the content of a comment. Authors and admins only.
func (s *CommentService) Update(ctx context.Context, actor domain.Actor, ticketID, commentID, content string) (*domain.Comment, error) {
	comment, err := s.comment(ctx, ticketID, commentID)
	if err != nil {
		return nil, err
	}
	if err := forbidden(policy.CanModifyComment(actor, comment)); err != nil {
		return nil, err
	}
	content, err = validateContent(content)
	if err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, notFoundOr(err, "comment", commentID)
	}
	return comment, nil
}

// Delete removes a comment. Authors and admins only.
func (s *CommentService) Delete(ctx context.Context, actor domain.Actor, ticketID, commentID string) error {
	comment, err := s.comment(ctx, ticketID, commentID)
	if err != nil {
		return err
	}
	if err := forbidden(policy.CanModifyComment(actor, comment)); err != nil {
		return err
	}
	return notFoundOr(s.comments.Delete(ctx, comment.ID), "comment", commentID)
}

func (s *CommentService) ticket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}
	return ticket, nil
}

// comment treats a comment filed under another ticket as missing.
func (s *CommentService) comment(ctx context.Context, ticketID, commentID string) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, "comment", commentID)
	}
	if comment.TicketID != ticketID {
		return nil, apperrors.NewNotFound("comment", map[string]any{"id": commentID, "ticket_id": ticketID})
	}
	return comment, nil
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	problems := fieldErrors{}
	problems.checkLength("content", content, 1, maxCommentLength)
	return content, problems.err()
}
