package defaultviews

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the default_views row. Project scoped pointers keep a NULL
// user_id, surfaced in Go as uuid.Nil.
type Record struct {
	bun.BaseModel `bun:"table:default_views"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	ProjectID uuid.UUID `bun:"project_id,type:uuid,notnull" json:"project_id"`
	UserID    uuid.UUID `bun:"user_id,type:uuid,nullzero" json:"user_id,omitempty"`
	ViewName  string    `bun:"view_name,notnull" json:"view_name"`
	ViewID    string    `bun:"view_id,notnull" json:"view_id"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}
