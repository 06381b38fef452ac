package shortener

import "time"

// Code is the short public identifier of a shortlink.
type Code string

// Shortlink is a stored code -> target URL mapping.
type Shortlink struct {
	ID        int64 // assigned by the store
	Code      Code
	TargetURL string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the shortlink no longer resolves at now.
func (s *Shortlink) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
