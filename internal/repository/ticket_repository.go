package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Elmamis69/ticket-master-api/internal/domain"
)

// TicketFilter narrows ticket listings. Nil fields are ignored.
type TicketFilter struct {
	CreatorID *string
	// VisibleToAgentID matches tickets assigned to the agent plus unassigned ones.
	VisibleToAgentID *string
	AssignedAgentID  *string
	Statuses         []domain.TicketStatus
	Priorities       []domain.TicketPriority
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
}

// AgentWorkload counts the tickets currently assigned to one agent.
type AgentWorkload struct {
	AgentID  string
	Assigned int
	Resolved int
}

// ResolvedSpan is the creation/resolution pair of a resolved ticket.
type ResolvedSpan struct {
	TicketID   string
	AgentID    *string
	CreatedAt  time.Time
	ResolvedAt time.Time
}

// TicketRepository encapsulates ticket persistence and the aggregate queries
// behind analytics.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)

	CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error)
	CountByPriority(ctx context.Context) (map[domain.TicketPriority]int, error)
	// CountCreatedByDay buckets tickets created in [from, to) by UTC day, keyed YYYY-MM-DD.
	CountCreatedByDay(ctx context.Context, from, to time.Time) (map[string]int, error)
	AgentWorkloads(ctx context.Context) (map[string]AgentWorkload, error)
	// ResolvedSpans returns RESOLVED tickets with a resolution timestamp,
	// optionally restricted to one assignee.
	ResolvedSpans(ctx context.Context, agentID *string) ([]ResolvedSpan, error)
}

// DayLayout formats analytics day buckets.
const DayLayout = "2006-01-02"

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, status, priority, creator_id, assigned_agent_id,
               created_at, updated_at, resolved_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, priority, creator_id, assigned_agent_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.CreatorID,
		ticket.AssignedAgentID,
	).Scan(&ticket.ID, &ticket.CreatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	ticket.CreatedAt = domain.UTC(ticket.CreatedAt)
	return nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4,
            assigned_agent_id=$5, resolved_at=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	var updatedAt time.Time
	err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedAgentID,
		ticket.ResolvedAt,
		ticket.ID,
	).Scan(&updatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	updatedAt = domain.UTC(updatedAt)
	ticket.UpdatedAt = &updatedAt
	return nil
}

// Delete removes the ticket; comments go with it through ON DELETE CASCADE.
func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return mapReadError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	row, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapReadError(err)
	}
	return row, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query, args := buildTicketListQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func buildTicketListQuery(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		clauses = append(clauses, fmt.Sprintf("creator_id=$%d", len(args)))
	}
	if filter.VisibleToAgentID != nil {
		args = append(args, *filter.VisibleToAgentID)
		clauses = append(clauses, fmt.Sprintf("(assigned_agent_id=$%d OR assigned_agent_id IS NULL)", len(args)))
	}
	if filter.AssignedAgentID != nil {
		args = append(args, *filter.AssignedAgentID)
		clauses = append(clauses, fmt.Sprintf("assigned_agent_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at < $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at ASC, id ASC`,
		ticketColumns, strings.Join(clauses, " AND "))
	return query, args
}

func (r *ticketRepository) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int)
	for rows.Next() {
		var status domain.TicketStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *ticketRepository) CountByPriority(ctx context.Context) (map[domain.TicketPriority]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT priority, COUNT(*) FROM tickets GROUP BY priority`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketPriority]int)
	for rows.Next() {
		var priority domain.TicketPriority
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		counts[priority] = count
	}
	return counts, rows.Err()
}

func (r *ticketRepository) CountCreatedByDay(ctx context.Context, from, to time.Time) (map[string]int, error) {
	const query = `
        SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
        FROM tickets
        WHERE created_at >= $1 AND created_at < $2
        GROUP BY day`
	rows, err := r.pool.Query(ctx, query, domain.UTC(from), domain.UTC(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		counts[day] = count
	}
	return counts, rows.Err()
}

func (r *ticketRepository) AgentWorkloads(ctx context.Context) (map[string]AgentWorkload, error) {
	const query = `
        SELECT assigned_agent_id,
               COUNT(*) AS assigned,
               COUNT(*) FILTER (WHERE status = $1) AS resolved
        FROM tickets
        WHERE assigned_agent_id IS NOT NULL
        GROUP BY assigned_agent_id`
	rows, err := r.pool.Query(ctx, query, domain.TicketStatusResolved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]AgentWorkload)
	for rows.Next() {
		var w AgentWorkload
		if err := rows.Scan(&w.AgentID, &w.Assigned, &w.Resolved); err != nil {
			return nil, err
		}
		result[w.AgentID] = w
	}
	return result, rows.Err()
}

func (r *ticketRepository) ResolvedSpans(ctx context.Context, agentID *string) ([]ResolvedSpan, error) {
	query := `
        SELECT id, assigned_agent_id, created_at, resolved_at
        FROM tickets
        WHERE status = $1 AND resolved_at IS NOT NULL`
	args := []any{domain.TicketStatusResolved}
	if agentID != nil {
		args = append(args, *agentID)
		query += ` AND assigned_agent_id = $2`
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []ResolvedSpan{}
	for rows.Next() {
		var span ResolvedSpan
		if err := rows.Scan(&span.TicketID, &span.AgentID, &span.CreatedAt, &span.ResolvedAt); err != nil {
			return nil, err
		}
		span.CreatedAt = domain.UTC(span.CreatedAt)
		span.ResolvedAt = domain.UTC(span.ResolvedAt)
		result = append(result, span)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatorID,
		&ticket.AssignedAgentID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
	); err != nil {
		return nil, err
	}
	ticket.CreatedAt = domain.UTC(ticket.CreatedAt)
	ticket.UpdatedAt = domain.UTCPtr(ticket.UpdatedAt)
	ticket.ResolvedAt = domain.UTCPtr(ticket.ResolvedAt)
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
