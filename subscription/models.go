// Package subscription tracks per-account subscription expiry and the
// globally configured subscription terms.
package subscription

import (
	"time"

	"github.com/xraph/tranche/types"
)

// Subscription is the per-account record. The zero ExpiresAt means the
// account never subscribed or was cancelled.
type Subscription struct {
	types.Entity
	Account   types.Address `json:"account"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// Active reports whether the subscription covers the instant now.
// A nil record is never active.
func (s *Subscription) Active(now time.Time) bool {
	return s != nil && s.ExpiresAt.After(now)
}

// ExtendFrom returns the expiry a renewal at now produces: an active
// subscription is extended from its current expiry, an expired or new
// one from now. Stacking renewals never loses paid-for time.
func (s *Subscription) ExtendFrom(now time.Time, duration time.Duration) time.Time {
	base := now
	if s != nil && s.ExpiresAt.After(now) {
		base = s.ExpiresAt
	}
	return base.Add(duration)
}

// Clone returns a deep copy.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// Terms are the admin-configured subscription parameters. Both fields
// must be positive before subscribing is possible.
type Terms struct {
	Fee      types.Amount  `json:"fee"`
	Duration time.Duration `json:"duration"`
}

// Configured reports whether the terms allow subscribing.
func (t Terms) Configured() bool {
	return t.Fee.IsPositive() && t.Duration > 0
}
