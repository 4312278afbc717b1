package models

import "time"

// AuditLog is an append-only record of privileged mutations. Entries are
// never updated or deleted.
type AuditLog struct {
	ID          int64     `json:"id"`
	ActorID     int       `json:"actor_id"`
	Role        string    `json:"role"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	EntityID    int64     `json:"entity_id"`
	Description string    `json:"description"`
	Metadata    *string   `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
