package notifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/codr1/Padelicious/internal/api/authz"
	"github.com/codr1/Padelicious/internal/notify"
	"github.com/codr1/Padelicious/internal/testutil"
)

func setupNotificationsTest(t *testing.T) *notify.Store {
	t.Helper()

	database := testutil.NewTestDB(t)
	s := notify.NewStore(database.Queries)

	store = nil
	storeOnce = sync.Once{}
	InitHandlers(s)
	return s
}

func staffContext(req *http.Request) *http.Request {
	ctx := authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: "staff-1", Role: authz.RoleStaff})
	return req.WithContext(ctx)
}

func TestHandleNotificationsList(t *testing.T) {
	s := setupNotificationsTest(t)
	ctx := context.Background()
	s.Notify(ctx, notify.Notification{Type: notify.TypeBookingCreated, Title: "New booking", Message: "first"})
	s.Notify(ctx, notify.Notification{Type: notify.TypePaymentReceived, Title: "Payment received", Message: "second"})

	req := staffContext(httptest.NewRequest(http.MethodGet, "/api/v1/admin/notifications", nil))
	recorder := httptest.NewRecorder()
	HandleNotificationsList(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var resp listResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(resp.Notifications))
	}
	if resp.Notifications[0].Message != "second" {
		t.Fatalf("expected newest first, got %q", resp.Notifications[0].Message)
	}
}

func TestHandleNotificationsListUnauthorized(t *testing.T) {
	setupNotificationsTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/notifications", nil)
	recorder := httptest.NewRecorder()
	HandleNotificationsList(recorder, req)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", recorder.Code)
	}
}

func TestHandleNotificationRead(t *testing.T) {
	s := setupNotificationsTest(t)
	ctx := context.Background()
	s.Notify(ctx, notify.Notification{Type: notify.TypeBookingCreated, Title: "New booking", Message: "only"})

	rows, err := s.List(ctx, true, 10)
	if err != nil || len(rows) != 1 {
		t.Fatalf("list unread: %v (%d rows)", err, len(rows))
	}
	id := rows[0].ID

	rawID := strconv.FormatInt(id, 10)
	req := staffContext(httptest.NewRequest(http.MethodPost, "/api/v1/admin/notifications/"+rawID+"/read", nil))
	req.SetPathValue("id", rawID)
	recorder := httptest.NewRecorder()
	HandleNotificationRead(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	unread, err := s.List(ctx, true, 10)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 0 {
		t.Fatalf("expected notification %d to be read", id)
	}

	req = staffContext(httptest.NewRequest(http.MethodPost, "/api/v1/admin/notifications/42/read", nil))
	req.SetPathValue("id", "42")
	recorder = httptest.NewRecorder()
	HandleNotificationRead(recorder, req)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", recorder.Code)
	}
}

func TestMarkReadMissingIsNoRows(t *testing.T) {
	s := setupNotificationsTest(t)
	if _, err := s.MarkRead(context.Background(), 7); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}
