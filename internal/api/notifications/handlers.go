// internal/api/notifications/handlers.go
package notifications

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Padelicious/internal/api/apiutil"
	"github.com/codr1/Padelicious/internal/api/authz"
	dbgen "github.com/codr1/Padelicious/internal/db/generated"
)

// Store is the admin notification feed.
type Store interface {
	List(ctx context.Context, unreadOnly bool, limit int64) ([]dbgen.AdminNotification, error)
	MarkRead(ctx context.Context, id int64) (dbgen.AdminNotification, error)
}

var (
	store     Store
	storeOnce sync.Once
)

const (
	notificationsQueryTimeout = 5 * time.Second
	notificationsListLimit    = 25
)

func InitHandlers(s Store) {
	if s == nil {
		return
	}
	storeOnce.Do(func() {
		store = s
	})
}

func loadStore() Store {
	return store
}

type listResponse struct {
	Notifications []apiutil.NotificationView `json:"notifications"`
}

// GET /api/v1/admin/notifications
func HandleNotificationsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := loadStore()
	if s == nil {
		logger.Error().Msg("Notification store not initialized")
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "notifications unavailable"})
		return
	}

	if !authz.IsStaff(authz.UserFromContext(r.Context())) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit, err := apiutil.QueryInt64(r, "limit", notificationsListLimit)
	if err != nil {
		apiutil.WriteBadRequest(w, err.Error())
		return
	}
	unreadOnly := strings.EqualFold(r.URL.Query().Get("unread"), "true")

	ctx, cancel := context.WithTimeout(r.Context(), notificationsQueryTimeout)
	defer cancel()

	rows, err := s.List(ctx, unreadOnly, limit)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to load notifications", Err: err})
		return
	}

	resp := listResponse{Notifications: make([]apiutil.NotificationView, 0, len(rows))}
	for _, n := range rows {
		resp.Notifications = append(resp.Notifications, apiutil.NewNotificationView(n))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Msg("Failed to write notifications response")
	}
}

// POST /api/v1/admin/notifications/{id}/read
func HandleNotificationRead(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := loadStore()
	if s == nil {
		logger.Error().Msg("Notification store not initialized")
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "notifications unavailable"})
		return
	}

	if !authz.IsStaff(authz.UserFromContext(r.Context())) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteBadRequest(w, "invalid notification id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), notificationsQueryTimeout)
	defer cancel()

	notification, err := s.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusNotFound, Message: "notification not found"})
			return
		}
		logger.Error().Err(err).Int64("id", id).Msg("Failed to mark notification as read")
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to update notification", Err: err})
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, apiutil.NewNotificationView(notification)); err != nil {
		logger.Error().Err(err).Msg("Failed to write notification response")
	}
}
