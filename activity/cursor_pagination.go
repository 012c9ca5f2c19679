package activity

import (
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CursorFromRecord builds the cursor that continues after entry.
func CursorFromRecord(entry *LogEntry) *types.ActivityCursor {
	if entry == nil {
		return nil
	}
	return &types.ActivityCursor{OccurredAt: entry.CreatedAt, ID: entry.ID}
}

// ApplyCursorPagination orders by created_at DESC, id DESC and keeps only
// entries strictly older than the cursor.
func ApplyCursorPagination(q *bun.SelectQuery, cursor *types.ActivityCursor, limit int) *bun.SelectQuery {
	if q == nil {
		return nil
	}
	q = q.OrderExpr("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if cursor == nil || cursor.OccurredAt.IsZero() {
		return q
	}
	if cursor.ID == uuid.Nil {
		return q.Where("created_at < ?", cursor.OccurredAt)
	}
	return q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.OccurredAt, cursor.OccurredAt, cursor.ID)
}
