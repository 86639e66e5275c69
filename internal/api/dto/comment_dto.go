package dto

import (
	"time"

	"github.com/Elmamis69/ticket-master-api/internal/domain"
)

// CommentRequest is used for both create and update.
type CommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse view.
type CommentResponse struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	TicketID  string     `json:"ticket_id"`
	AuthorID  string     `json:"author_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// NewCommentResponse maps a comment.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		TicketID:  c.TicketID,
		AuthorID:  c.AuthorID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewCommentResponses maps a thread.
func NewCommentResponses(comments []domain.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, NewCommentResponse(&comments[i]))
	}
	return out
}
