// Package policy holds the role-based access decisions for tickets, comments
// and analytics. Every function is pure and total: an unknown role is denied.
package policy

import "github.com/Elmamis69/ticket-master-api/internal/domain"

// Decision is the outcome of a single access check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// ListScope narrows ticket listings to what an actor may see.
type ListScope int

const (
	// ScopeNone yields no tickets.
	ScopeNone ListScope = iota
	// ScopeAll yields every ticket.
	ScopeAll
	// ScopeAssignedOrUnassigned yields tickets assigned to the actor plus unassigned ones.
	ScopeAssignedOrUnassigned
	// ScopeCreatedBy yields tickets created by the actor.
	ScopeCreatedBy
)

// CanCreateTicket allows every known role.
func CanCreateTicket(actor domain.Actor) Decision {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleAgent, domain.RoleUser:
		return allow()
	default:
		return deny("unknown role")
	}
}

// CanReadTicket applies the ticket visibility rule.
func CanReadTicket(actor domain.Actor, ticket *domain.Ticket) Decision {
	switch actor.Role {
	case domain.RoleAdmin:
		return allow()
	case domain.RoleAgent:
		if !ticket.IsAssigned() || ticket.AssignedTo(actor.ID) {
			return allow()
		}
		return deny("ticket is assigned to another agent")
	case domain.RoleUser:
		if ticket.CreatorID == actor.ID {
			return allow()
		}
		return deny("ticket belongs to another user")
	default:
		return deny("unknown role")
	}
}

// TicketListScope returns the listing rule for the actor.
func TicketListScope(actor domain.Actor) ListScope {
	switch actor.Role {
	case domain.RoleAdmin:
		return ScopeAll
	case domain.RoleAgent:
		return ScopeAssignedOrUnassigned
	case domain.RoleUser:
		return ScopeCreatedBy
	default:
		return ScopeNone
	}
}

// CanUpdateTicketContent covers title, description and priority changes.
func CanUpdateTicketContent(actor domain.Actor, ticket *domain.Ticket) Decision {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleAgent:
		return allow()
	case domain.RoleUser:
		if ticket.CreatorID == actor.ID {
			return allow()
		}
		return deny("you can only update your own tickets")
	default:
		return deny("unknown role")
	}
}

// CanUpdateTicketWorkflow covers status and assignment fields. Users are
// rejected on field presence, regardless of the value they send.
func CanUpdateTicketWorkflow(actor domain.Actor) Decision {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleAgent:
		return allow()
	case domain.RoleUser:
		return deny("users cannot change status or assignment")
	default:
		return deny("unknown role")
	}
}

// CanAssignTicket allows agents and admins.
func CanAssignTicket(actor domain.Actor) Decision {
	if actor.Role.CanWorkTickets() {
		return allow()
	}
	return deny("only admins and agents can assign tickets")
}

// CanDeleteTicket allows admins only.
func CanDeleteTicket(actor domain.Actor) Decision {
	if actor.Role == domain.RoleAdmin {
		return allow()
	}
	return deny("only admins can delete tickets")
}

// CanCreateComment reuses the ticket visibility rule.
func CanCreateComment(actor domain.Actor, ticket *domain.Ticket) Decision {
	return CanReadTicket(actor, ticket)
}

// CanReadComments reuses the ticket visibility rule.
func CanReadComments(actor domain.Actor, ticket *domain.Ticket) Decision {
	return CanReadTicket(actor, ticket)
}

// CanModifyComment covers comment update and delete.
func CanModifyComment(actor domain.Actor, comment *domain.Comment) Decision {
	switch actor.Role {
	case domain.RoleAdmin:
		return allow()
	case domain.RoleAgent, domain.RoleUser:
		if comment.AuthorID == actor.ID {
			return allow()
		}
		return deny("you can only modify your own comments")
	default:
		return deny("unknown role")
	}
}

// CanViewDashboard allows agents and admins.
func CanViewDashboard(actor domain.Actor) Decision {
	if actor.Role.CanWorkTickets() {
		return allow()
	}
	return deny("only admins and agents can access analytics")
}

// CanViewAgentStats lets agents see only their own figures.
func CanViewAgentStats(actor domain.Actor, agentID string) Decision {
	switch actor.Role {
	case domain.RoleAdmin:
		return allow()
	case domain.RoleAgent:
		if actor.ID == agentID {
			return allow()
		}
		return deny("agents can only view their own statistics")
	default:
		return deny("users cannot access agent statistics")
	}
}
