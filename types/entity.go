package types

import "time"

// Entity is the base type for all Tranche records with timestamps.
// Embed this in domain types to get automatic timestamp handling.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntity creates a new Entity stamped at t.
func NewEntity(t time.Time) Entity {
	t = t.UTC()
	return Entity{
		CreatedAt: t,
		UpdatedAt: t,
	}
}

// Touch updates the UpdatedAt timestamp to t.
func (e *Entity) Touch(t time.Time) {
	e.UpdatedAt = t.UTC()
}

// Age returns how long the entity has existed as of now.
func (e Entity) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}
