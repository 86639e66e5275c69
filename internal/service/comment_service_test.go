package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Elmamis69/ticket-master-api/internal/events"
	apperrors "github.com/Elmamis69/ticket-master-api/pkg/util"
)

func TestCommentThread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.ticket(t, f.userA)

	var ids []string
	for _, author := range []struct {
		content string
		actor   string
	}{{"hello", "user"}, {"looking into it", "agent"}, {"thanks", "user"}} {
		actor := f.userA
		if author.actor == "agent" {
			actor = f.agentA
		}
		comment, err := f.comments.Create(ctx, actor, ticket.ID, "  "+author.content+"  ")
		if err != nil {
			t.Fatalf("create comment: %v", err)
		}
		if comment.Content != author.content {
			t.Fatalf("content should be trimmed, got %q", comment.Content)
		}
		ids = append(ids, comment.ID)
		f.clock.Advance(time.Second)
	}

	first, err := f.comments.List(ctx, f.userA, ticket.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	second, _ := f.comments.List(ctx, f.userA, ticket.ID)
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("expected 3 comments, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != ids[i] || second[i].ID != ids[i] {
			t.Fatalf("comments out of order at %d", i)
		}
	}

	points := f.recorder.Measurements(string(events.EventCommentCreated))
	if len(points) != 3 || points[1].Tags["author_id"] != f.agentA.ID || points[1].Tags["ticket_id"] != ticket.ID {
		t.Fatalf("unexpected comment_created points %+v", points)
	}
}

func TestCommentAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.ticket(t, f.userA)

	_, err := f.comments.Create(ctx, f.userB, ticket.ID, "let me in")
	expectCode(t, err, apperrors.CodeForbidden)
	_, err = f.comments.List(ctx, f.userB, ticket.ID)
	expectCode(t, err, apperrors.CodeForbidden)
	_, err = f.comments.Create(ctx, f.userA, "missing", "hi")
	expectCode(t, err, apperrors.CodeNotFound)

	if _, err := f.tickets.Assign(ctx, f.admin, ticket.ID, f.agentA.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	_, err = f.comments.Create(ctx, f.agentB, ticket.ID, "not mine")
	expectCode(t, err, apperrors.CodeForbidden)
}

func TestCommentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.ticket(t, f.userA)

	_, err := f.comments.Create(ctx, f.userA, ticket.ID, "   ")
	expectCode(t, err, apperrors.CodeValidation)
	_, err = f.comments.Create(ctx, f.userA, ticket.ID, strings.Repeat("é", 2001))
	expectCode(t, err, apperrors.CodeValidation)
	if _, err := f.comments.Create(ctx, f.userA, ticket.ID, strings.Repeat("é", 2000)); err != nil {
		t.Fatalf("2000 runes should be accepted: %v", err)
	}
}

func TestCommentModify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.ticket(t, f.userA)
	other := f.ticket(t, f.userA)
	comment, err := f.comments.Create(ctx, f.userA, ticket.ID, "original")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.comments.Update(ctx, f.agentA, ticket.ID, comment.ID, "hijack")
	expectCode(t, err, apperrors.CodeForbidden)
	_, err = f.comments.Update(ctx, f.userA, other.ID, comment.ID, "wrong ticket")
	expectCode(t, err, apperrors.CodeNotFound)
	_, err = f.comments.Update(ctx, f.userA, ticket.ID, comment.ID, "")
	expectCode(t, err, apperrors.CodeValidation)

	f.clock.Advance(time.Minute)
	updated, err := f.comments.Update(ctx, f.userA, ticket.ID, comment.ID, "edited")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Content != "edited" || updated.UpdatedAt == nil {
		t.Fatalf("unexpected update result %+v", updated)
	}

	expectCode(t, f.comments.Delete(ctx, f.userB, ticket.ID, comment.ID), apperrors.CodeForbidden)
	if err := f.comments.Delete(ctx, f.admin, ticket.ID, comment.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	expectCode(t, f.comments.Delete(ctx, f.admin, ticket.ID, comment.ID), apperrors.CodeNotFound)
}
