// internal/api/bookings/handlers.go
package bookings

import (
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Padelicious/internal/api/apiutil"
	"github.com/codr1/Padelicious/internal/booking"
	"github.com/codr1/Padelicious/internal/ratelimit"
)

type handlerDeps struct {
	service    *booking.Service
	limiter    ratelimit.Checker
	trustProxy bool
}

var (
	deps     *handlerDeps
	depsOnce sync.Once
)

// InitHandlers wires the customer booking handlers. limiter may be nil to
// disable throttling.
func InitHandlers(svc *booking.Service, limiter ratelimit.Checker, trustProxy bool) {
	if svc == nil {
		return
	}
	depsOnce.Do(func() {
		deps = &handlerDeps{service: svc, limiter: limiter, trustProxy: trustProxy}
	})
}

func loadDeps(w http.ResponseWriter, r *http.Request) *handlerDeps {
	if deps == nil {
		log.Ctx(r.Context()).Error().Msg("Booking handlers not initialized")
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "bookings unavailable"})
		return nil
	}
	return deps
}

type slotsResponse struct {
	Date  string             `json:"date"`
	Slots []apiutil.SlotView `json:"slots"`
}

// GET /api/v1/slots?date=YYYY-MM-DD
func HandleListSlots(w http.ResponseWriter, r *http.Request) {
	d := loadDeps(w, r)
	if d == nil {
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	slots, err := d.service.ListSlots(r.Context(), date)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	resp := slotsResponse{Date: date, Slots: make([]apiutil.SlotView, 0, len(slots))}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, apiutil.NewSlotView(s))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write slots response")
	}
}

type createBookingRequest struct {
	SlotID        int64  `json:"slotId"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	PaymentChoice string `json:"paymentChoice"`
	Notes         string `json:"notes"`
}

// POST /api/v1/bookings
func HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
	d := loadDeps(w, r)
	if d == nil {
		return
	}
	logger := log.Ctx(r.Context())

	var req createBookingRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteBadRequest(w, "invalid JSON body")
		return
	}

	if d.limiter != nil {
		ip := ratelimit.GetClientIP(r, d.trustProxy)
		identifier := ratelimit.SanitizeIdentifier(req.CustomerEmail)
		if result := d.limiter.Allow(r.Context(), ip, identifier); !result.Allowed {
			ratelimit.LogRateLimitExceeded(r.Context(), identifier, ip, result.Reason)
			apiutil.WriteTooManyRequests(w, result.RetryAfter)
			return
		}
	}

	created, err := d.service.CreateBooking(r.Context(), booking.CreateBookingInput{
		SlotID:        req.SlotID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		PaymentChoice: req.PaymentChoice,
		Notes:         req.Notes,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	withCheckout, err := d.service.StartCheckout(r.Context(), created)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, apiutil.NewBookingView(withCheckout)); err != nil {
		logger.Error().Err(err).Msg("Failed to write booking response")
	}
}

// GET /api/v1/bookings/{code}?email=
//
// The customer email is required so a booking code alone does not expose
// contact details.
func HandleGetBooking(w http.ResponseWriter, r *http.Request) {
	d := loadDeps(w, r)
	if d == nil {
		return
	}

	b, err := d.service.GetBookingByCode(r.Context(), strings.TrimSpace(r.PathValue("code")))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if !strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("email")), b.CustomerEmail) {
		apiutil.WriteError(w, r, booking.ErrBookingNotFound)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, apiutil.NewBookingView(b)); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write booking response")
	}
}

type cancelBookingRequest struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

type cancelBookingResponse struct {
	Booking        apiutil.BookingView `json:"booking"`
	RefundEligible bool                `json:"refundEligible"`
	RefundAmount   int64               `json:"refundAmount"`
	HoursUntil     float64             `json:"hoursUntilSession"`
}

// POST /api/v1/bookings/{code}/cancel
func HandleCancelBooking(w http.ResponseWriter, r *http.Request) {
	d := loadDeps(w, r)
	if d == nil {
		return
	}

	var req cancelBookingRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteBadRequest(w, "invalid JSON body")
		return
	}

	result, err := d.service.CustomerCancel(r.Context(), strings.TrimSpace(r.PathValue("code")), req.Email, req.Reason)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	resp := cancelBookingResponse{
		Booking:        apiutil.NewBookingView(result.Booking),
		RefundEligible: result.Refund.Eligible,
		RefundAmount:   result.Refund.Amount,
		HoursUntil:     result.Refund.HoursUntilStart,
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write cancellation response")
	}
}
