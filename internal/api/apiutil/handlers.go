package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Padelicious/internal/booking"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteBadRequest reports a malformed request that never reached the
// booking service.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: "bad_request", Message: message})
}

// WriteError maps err to a status code and writes it. Booking errors carry
// their own code; persistence and internal failures are logged and reported
// without detail.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.Ctx(r.Context())

	var handlerErr HandlerError
	if errors.As(err, &handlerErr) {
		if handlerErr.Status >= http.StatusInternalServerError {
			logger.Error().Err(err).Msg(handlerErr.Message)
		}
		WriteJSON(w, handlerErr.Status, ErrorBody{Error: http.StatusText(handlerErr.Status), Message: handlerErr.Message})
		return
	}

	var fieldErr FieldError
	if errors.As(err, &fieldErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: "validation_failed", Message: fieldErr.Error(), Field: fieldErr.Field})
		return
	}

	var bookingErr *booking.Error
	if !errors.As(err, &bookingErr) {
		logger.Error().Err(err).Msg("Unhandled request error")
		WriteJSON(w, http.StatusInternalServerError, ErrorBody{Error: "internal", Message: "internal server error"})
		return
	}

	status := StatusForKind(bookingErr.Kind)
	body := ErrorBody{Error: bookingErr.Code, Message: bookingErr.Message, Field: bookingErr.Field}
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error().Err(err).Str("error_code", bookingErr.Code).Msg("Booking operation failed")
		if bookingErr.Kind != booking.KindGateway {
			body.Message = "internal server error"
		}
	case status == http.StatusConflict || status == http.StatusGone || status == http.StatusPreconditionFailed:
		logger.Info().Str("error_code", bookingErr.Code).Msg("Booking operation rejected")
	}
	WriteJSON(w, status, body)
}

func StatusForKind(kind booking.Kind) int {
	switch kind {
	case booking.KindValidation:
		return http.StatusBadRequest
	case booking.KindNotFound:
		return http.StatusNotFound
	case booking.KindConflict:
		return http.StatusConflict
	case booking.KindGone:
		return http.StatusGone
	case booking.KindPrecondition:
		return http.StatusPreconditionFailed
	case booking.KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteTooManyRequests writes a 429 with a Retry-After header in whole seconds.
func WriteTooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", fmt.Sprint(seconds))
	WriteJSON(w, http.StatusTooManyRequests, ErrorBody{
		Error:   "rate_limited",
		Message: "too many requests, try again later",
	})
}
