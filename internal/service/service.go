package service

import (
	"errors"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/Elmamis69/ticket-master-api/internal/policy"
	"github.com/Elmamis69/ticket-master-api/internal/repository"
	apperrors "github.com/Elmamis69/ticket-master-api/pkg/util"
)

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

func forbidden(d policy.Decision) error {
	if d.Allowed {
		return nil
	}
	return apperrors.NewForbidden(d.Reason)
}

// notFoundOr converts repository misses into a NotFound for resource.
func notFoundOr(err error, resource, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}

type fieldErrors map[string]any

func (f fieldErrors) checkLength(field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n < min && min == 1:
		f[field] = "must not be empty"
	case n < min:
		f[field] = "must be at least " + strconv.Itoa(min) + " characters"
	case max > 0 && n > max:
		f[field] = "must be at most " + strconv.Itoa(max) + " characters"
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewValidationError("validation failed", map[string]any(f))
}
