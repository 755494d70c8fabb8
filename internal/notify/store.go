package notify

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	dbgen "github.com/codr1/Padelicious/internal/db/generated"
)

const storeTimeout = 3 * time.Second

// Store appends notifications to the admin notification table.
type Store struct {
	queries *dbgen.Queries
}

func NewStore(queries *dbgen.Queries) *Store {
	return &Store{queries: queries}
}

func (s *Store) Notify(ctx context.Context, n Notification) {
	if s == nil || s.queries == nil {
		return
	}
	writeCtx, cancel := detached(ctx, storeTimeout)
	defer cancel()

	createdAt := n.OccurredAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.queries.CreateAdminNotification(writeCtx, dbgen.CreateAdminNotificationParams{
		BookingID: sql.NullInt64{Int64: n.BookingID, Valid: n.BookingID > 0},
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		CreatedAt: createdAt.UTC(),
	})
	if err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Int64("booking_id", n.BookingID).
			Str("notification_type", string(n.Type)).
			Msg("Failed to store admin notification")
	}
}

// List returns the most recent notifications, newest first.
func (s *Store) List(ctx context.Context, unreadOnly bool, limit int64) ([]dbgen.AdminNotification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.queries.ListAdminNotifications(ctx, dbgen.ListAdminNotificationsParams{
		UnreadOnly: unreadOnly,
		Limit:      limit,
	})
}

// MarkRead stamps a notification as read. Marking it again keeps the
// original read time.
func (s *Store) MarkRead(ctx context.Context, id int64) (dbgen.AdminNotification, error) {
	return s.queries.MarkAdminNotificationRead(ctx, dbgen.MarkAdminNotificationReadParams{
		ReadAt: sql.NullTime{Time: time.Now().UTC(), Valid: true},
		ID:     id,
	})
}
