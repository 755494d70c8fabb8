// internal/api/admin/handlers.go
package admin

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Padelicious/internal/api/apiutil"
	"github.com/codr1/Padelicious/internal/api/authz"
	"github.com/codr1/Padelicious/internal/booking"
	dbgen "github.com/codr1/Padelicious/internal/db/generated"
)

var (
	service     *booking.Service
	serviceOnce sync.Once
)

const defaultListLimit = 50

func InitHandlers(svc *booking.Service) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
	})
}

func loadService(w http.ResponseWriter, r *http.Request) *booking.Service {
	if service == nil {
		log.Ctx(r.Context()).Error().Msg("Admin handlers not initialized")
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "admin unavailable"})
		return nil
	}
	return service
}

// staffActor returns the acting staff member, writing 401 when absent.
func staffActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	user := authz.UserFromContext(r.Context())
	if !authz.IsStaff(user) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return user.Actor(), true
}

type listBookingsResponse struct {
	Bookings []apiutil.AdminBookingView `json:"bookings"`
	Limit    int64                      `json:"limit"`
	Offset   int64                      `json:"offset"`
}

// GET /api/v1/admin/bookings?payment_status=&limit=&offset=
func HandleListBookings(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	if _, ok := staffActor(w, r); !ok {
		return
	}

	limit, err := apiutil.QueryInt64(r, "limit", defaultListLimit)
	if err != nil {
		apiutil.WriteBadRequest(w, err.Error())
		return
	}
	offset, err := apiutil.QueryInt64(r, "offset", 0)
	if err != nil {
		apiutil.WriteBadRequest(w, err.Error())
		return
	}
	status := booking.PaymentStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("payment_status"))))

	rows, err := svc.ListBookings(r.Context(), status, limit, offset)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	resp := listBookingsResponse{Bookings: make([]apiutil.AdminBookingView, 0, len(rows)), Limit: limit, Offset: offset}
	for _, b := range rows {
		resp.Bookings = append(resp.Bookings, apiutil.NewAdminBookingView(b))
	}
	writeJSON(w, r, resp)
}

// POST /api/v1/admin/bookings/{id}/check-in
func HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	handleSessionAction(w, r, func(svc *booking.Service, ctx context.Context, id int64, actor string) (dbgen.Booking, error) {
		return svc.CheckIn(ctx, id, actor)
	})
}

// POST /api/v1/admin/bookings/{id}/check-out
func HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	handleSessionAction(w, r, func(svc *booking.Service, ctx context.Context, id int64, actor string) (dbgen.Booking, error) {
		return svc.CheckOut(ctx, id, actor)
	})
}

func handleSessionAction(w http.ResponseWriter, r *http.Request, action func(*booking.Service, context.Context, int64, string) (dbgen.Booking, error)) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	actor, ok := staffActor(w, r)
	if !ok {
		return
	}
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteBadRequest(w, "invalid booking id")
		return
	}

	b, err := action(svc, r.Context(), id, actor)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, apiutil.NewAdminBookingView(b))
}

type cancelRequest struct {
	Reason       string `json:"reason"`
	RefundAmount int64  `json:"refundAmount"`
	RefundMethod string `json:"refundMethod"`
}

// POST /api/v1/admin/bookings/{id}/cancel
func HandleCancel(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	actor, ok := staffActor(w, r)
	if !ok {
		return
	}
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteBadRequest(w, "invalid booking id")
		return
	}

	var req cancelRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteBadRequest(w, "invalid JSON body")
		return
	}

	b, err := svc.AdminCancel(r.Context(), id, booking.AdminCancelInput{
		Reason:       req.Reason,
		RefundAmount: req.RefundAmount,
		RefundMethod: req.RefundMethod,
		Actor:        actor,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, apiutil.NewAdminBookingView(b))
}

type refundRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
	Method string `json:"method"`
}

// POST /api/v1/admin/bookings/{id}/refund
func HandleRefund(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	actor, ok := staffActor(w, r)
	if !ok {
		return
	}
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteBadRequest(w, "invalid booking id")
		return
	}

	var req refundRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteBadRequest(w, "invalid JSON body")
		return
	}

	b, err := svc.Refund(r.Context(), id, booking.RefundInput{
		Amount: req.Amount,
		Reason: req.Reason,
		Method: req.Method,
		Actor:  actor,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, apiutil.NewAdminBookingView(b))
}

type venuePaymentRequest struct {
	Amount int64  `json:"amount"`
	Method string `json:"method"`
}

// POST /api/v1/admin/bookings/{id}/venue-payment
func HandleVenuePayment(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	actor, ok := staffActor(w, r)
	if !ok {
		return
	}
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteBadRequest(w, "invalid booking id")
		return
	}

	var req venuePaymentRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteBadRequest(w, "invalid JSON body")
		return
	}

	b, err := svc.RecordVenuePayment(r.Context(), id, booking.VenuePaymentInput{
		Amount:     req.Amount,
		Method:     req.Method,
		RecordedBy: actor,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, apiutil.NewAdminBookingView(b))
}

type sweepResponse struct {
	Scanned   int            `json:"scanned"`
	Updated   int            `json:"updated"`
	Unchanged int            `json:"unchanged"`
	Failed    int            `json:"failed"`
	Rules     map[string]int `json:"rules"`
}

// POST /api/v1/admin/sessions/sweep runs the session sweep immediately.
func HandleSweep(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	actor, ok := staffActor(w, r)
	if !ok {
		return
	}

	res, err := svc.SweepSessions(r.Context(), svc.Now())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	log.Ctx(r.Context()).Info().Str("actor", actor).Int("updated", res.Updated).Msg("Manual session sweep")

	resp := sweepResponse{
		Scanned:   res.Scanned,
		Updated:   res.Updated,
		Unchanged: res.Unchanged,
		Failed:    res.Failed,
		Rules:     make(map[string]int, len(res.Rules)),
	}
	for rule, n := range res.Rules {
		resp.Rules[string(rule)] = n
	}
	writeJSON(w, r, resp)
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	if err := apiutil.WriteJSON(w, http.StatusOK, payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write admin response")
	}
}
