// internal/api/payments/handlers.go
package payments

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Padelicious/internal/api/apiutil"
	"github.com/codr1/Padelicious/internal/booking"
	"github.com/codr1/Padelicious/internal/payment"
)

const maxNotificationBytes = 64 << 10

var (
	service     *booking.Service
	serverKey   string
	serviceOnce sync.Once
)

func InitHandlers(svc *booking.Service, key string) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
		serverKey = key
	})
}

type statusResponse struct {
	OrderID       string `json:"orderId"`
	PaymentStatus string `json:"paymentStatus"`
}

// POST /api/v1/payments/notifications
//
// The gateway posts more fields than we read, so unknown fields are allowed.
func HandleNotification(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if service == nil {
		logger.Error().Msg("Payment handlers not initialized")
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "payments unavailable"})
		return
	}

	var n payment.Notification
	if err := json.NewDecoder(io.LimitReader(r.Body, maxNotificationBytes)).Decode(&n); err != nil {
		apiutil.WriteBadRequest(w, "invalid notification body")
		return
	}
	if !payment.VerifySignature(serverKey, n) {
		logger.Warn().Str("order_ref", n.OrderID).Msg("Payment notification signature mismatch")
		apiutil.WriteJSON(w, http.StatusUnauthorized, apiutil.ErrorBody{Error: "invalid_signature", Message: "signature verification failed"})
		return
	}

	status, err := service.Reconcile(r.Context(), payment.SignalFromStatus(payment.SourceWebhook, n.Status()))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, statusResponse{OrderID: n.OrderID, PaymentStatus: string(status)}); err != nil {
		logger.Error().Err(err).Msg("Failed to write notification response")
	}
}

// GET /api/v1/payments/finish?order_id=
//
// The customer lands here after the hosted checkout. The booking is resolved
// before responding, so the page never shows an ambiguous PENDING after a
// gateway failure.
func HandleFinish(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if service == nil {
		logger.Error().Msg("Payment handlers not initialized")
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "payments unavailable"})
		return
	}

	orderID := strings.TrimSpace(r.URL.Query().Get("order_id"))
	if orderID == "" {
		apiutil.WriteBadRequest(w, "order_id is required")
		return
	}

	status, err := service.Poll(r.Context(), orderID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, statusResponse{OrderID: orderID, PaymentStatus: string(status)}); err != nil {
		logger.Error().Err(err).Msg("Failed to write finish response")
	}
}
