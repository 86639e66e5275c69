package domain

import "time"

// UTC normalizes a timestamp read from any source to UTC.
func UTC(t time.Time) time.Time {
	return t.UTC()
}

// UTCPtr normalizes an optional timestamp.
func UTCPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
