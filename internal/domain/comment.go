package domain

import "time"

// Comment is a message attached to a ticket thread.
type Comment struct {
	ID        string
	Content   string
	TicketID  string
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
