// Package memory provides process-local repositories used when no database
// DSN is configured and by tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Elmamis69/ticket-master-api/internal/domain"
	"github.com/Elmamis69/ticket-master-api/internal/repository"
)

// Store keeps users, tickets and comments behind one lock so ticket deletion
// can cascade to comments atomically.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[string]domain.User
	tickets  map[string]domain.Ticket
	comments map[string]domain.Comment
}

// NewStore returns an empty store stamping records with the wall clock.
func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock lets tests control creation timestamps.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{
		now:      now,
		users:    make(map[string]domain.User),
		tickets:  make(map[string]domain.Ticket),
		comments: make(map[string]domain.Comment),
	}
}

// Users exposes the account repository.
func (s *Store) Users() repository.UserRepository { return &userRepo{s: s} }

// Tickets exposes the ticket repository.
func (s *Store) Tickets() repository.TicketRepository { return &ticketRepo{s: s} }

// Comments exposes the comment repository.
func (s *Store) Comments() repository.CommentRepository { return &commentRepo{s: s} }

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, existing := range r.s.users {
		if existing.Email == email {
			return repository.ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	user.Email = email
	user.CreatedAt = r.s.stamp()
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range r.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) ListByRoles(_ context.Context, roles ...domain.Role) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.User{}
	for _, user := range r.s.users {
		for _, role := range roles {
			if user.Role == role {
				result = append(result, user)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type ticketRepo struct{ s *Store }

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[ticket.CreatorID]; !ok {
		return repository.ErrNotFound
	}
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = r.s.stamp()
	r.s.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[ticket.ID]; !ok {
		return repository.ErrNotFound
	}
	updatedAt := r.s.stamp()
	ticket.UpdatedAt = &updatedAt
	r.s.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *ticketRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.tickets, id)
	for commentID, comment := range r.s.comments {
		if comment.TicketID == id {
			delete(r.s.comments, commentID)
		}
	}
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := cloneTicket(ticket)
	return &clone, nil
}

func (r *ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.Ticket{}
	for _, ticket := range r.s.tickets {
		if matches(ticket, filter) {
			result = append(result, cloneTicket(ticket))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func matches(ticket domain.Ticket, filter repository.TicketFilter) bool {
	if filter.CreatorID != nil && ticket.CreatorID != *filter.CreatorID {
		return false
	}
	if filter.VisibleToAgentID != nil && ticket.IsAssigned() && !ticket.AssignedTo(*filter.VisibleToAgentID) {
		return false
	}
	if filter.AssignedAgentID != nil && !ticket.AssignedTo(*filter.AssignedAgentID) {
		return false
	}
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, ticket.Priority) {
		return false
	}
	if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && !ticket.CreatedAt.Before(*filter.CreatedTo) {
		return false
	}
	return true
}

func (r *ticketRepo) CountByStatus(_ context.Context) (map[domain.TicketStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[domain.TicketStatus]int)
	for _, ticket := range r.s.tickets {
		counts[ticket.Status]++
	}
	return counts, nil
}

func (r *ticketRepo) CountByPriority(_ context.Context) (map[domain.TicketPriority]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[domain.TicketPriority]int)
	for _, ticket := range r.s.tickets {
		counts[ticket.Priority]++
	}
	return counts, nil
}

func (r *ticketRepo) CountCreatedByDay(_ context.Context, from, to time.Time) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[string]int)
	for _, ticket := range r.s.tickets {
		created := ticket.CreatedAt.UTC()
		if created.Before(from) || !created.Before(to) {
			continue
		}
		counts[created.Format(repository.DayLayout)]++
	}
	return counts, nil
}

func (r *ticketRepo) AgentWorkloads(_ context.Context) (map[string]repository.AgentWorkload, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make(map[string]repository.AgentWorkload)
	for _, ticket := range r.s.tickets {
		if !ticket.IsAssigned() {
			continue
		}
		w := result[*ticket.AssignedAgentID]
		w.AgentID = *ticket.AssignedAgentID
		w.Assigned++
		if ticket.Status == domain.TicketStatusResolved {
			w.Resolved++
		}
		result[w.AgentID] = w
	}
	return result, nil
}

func (r *ticketRepo) ResolvedSpans(_ context.Context, agentID *string) ([]repository.ResolvedSpan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []repository.ResolvedSpan{}
	for _, ticket := range r.s.tickets {
		if ticket.Status != domain.TicketStatusResolved || ticket.ResolvedAt == nil {
			continue
		}
		if agentID != nil && !ticket.AssignedTo(*agentID) {
			continue
		}
		clone := cloneTicket(ticket)
		result = append(result, repository.ResolvedSpan{
			TicketID:   clone.ID,
			AgentID:    clone.AssignedAgentID,
			CreatedAt:  clone.CreatedAt,
			ResolvedAt: *clone.ResolvedAt,
		})
	}
	return result, nil
}

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[comment.TicketID]; !ok {
		return repository.ErrNotFound
	}
	comment.ID = uuid.NewString()
	comment.CreatedAt = r.s.stamp()
	r.s.comments[comment.ID] = cloneComment(*comment)
	return nil
}

func (r *commentRepo) Update(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.comments[comment.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updatedAt := r.s.stamp()
	existing.Content = comment.Content
	existing.UpdatedAt = &updatedAt
	r.s.comments[comment.ID] = existing
	comment.UpdatedAt = &updatedAt
	return nil
}

func (r *commentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r *commentRepo) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	comment, ok := r.s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := cloneComment(comment)
	return &clone, nil
}

func (r *commentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.Comment{}
	for _, comment := range r.s.comments {
		if comment.TicketID == ticketID {
			result = append(result, cloneComment(comment))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func containsPriority(priorities []domain.TicketPriority, priority domain.TicketPriority) bool {
	for _, p := range priorities {
		if p == priority {
			return true
		}
	}
	return false
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.AssignedAgentID != nil {
		id := *t.AssignedAgentID
		t.AssignedAgentID = &id
	}
	t.UpdatedAt = domain.UTCPtr(t.UpdatedAt)
	t.ResolvedAt = domain.UTCPtr(t.ResolvedAt)
	t.CreatedAt = domain.UTC(t.CreatedAt)
	return t
}

func cloneComment(c domain.Comment) domain.Comment {
	c.UpdatedAt = domain.UTCPtr(c.UpdatedAt)
	c.CreatedAt = domain.UTC(c.CreatedAt)
	return c
}
