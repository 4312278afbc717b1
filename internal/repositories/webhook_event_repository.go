package repositories

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

// WebhookEventRepository records provider events that were fully handled, so
// redelivered webhooks become no-ops. MySQL is the source of truth (unique
// event id); Redis is a best-effort fast path that short-circuits obvious
// replays. Markers are written only after the handler's own transaction
// commits: a crash mid-handler leaves no marker and the provider's retry is
// processed normally.
type WebhookEventRepository struct {
	DB       *sql.DB
	RDB      *redis.Client
	ErrorLog *log.Logger
}

const eventMarkerTTL = 72 * time.Hour

// IsProcessed reports whether the event was already handled to completion.
func (r *WebhookEventRepository) IsProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	if r.RDB != nil {
		n, err := r.RDB.Exists(ctx, "webhook:"+provider+":"+eventID).Result()
		if err != nil {
			// Redis being down must not block webhook processing.
			r.ErrorLog.Printf("webhook dedup cache unavailable: %v", err)
		} else if n > 0 {
			return true, nil
		}
	}

	var seen bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM webhook_events WHERE provider = ? AND event_id = ?)`,
		provider, eventID).Scan(&seen)
	if err != nil {
		return false, err
	}
	return seen, nil
}

// MarkProcessed records the event after its handler succeeded. Returns true
// the first time an event id is recorded for a provider and false on replays.
func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO webhook_events (provider, event_id) VALUES (?, ?)`, provider, eventID)
	if err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1062 {
			return false, nil
		}
		return false, err
	}

	if r.RDB != nil {
		if err := r.RDB.Set(ctx, "webhook:"+provider+":"+eventID, 1, eventMarkerTTL).Err(); err != nil {
			r.ErrorLog.Printf("webhook dedup cache write failed: %v", err)
		}
	}
	return true, nil
}
