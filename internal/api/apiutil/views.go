package apiutil

import (
	"database/sql"
	"time"

	dbgen "github.com/codr1/Padelicious/internal/db/generated"
)

// BookingView is the customer-facing JSON shape of a booking.
type BookingView struct {
	ID                 int64      `json:"id"`
	BookingCode        string     `json:"bookingCode"`
	SlotID             int64      `json:"slotId"`
	CustomerName       string     `json:"customerName"`
	CustomerEmail      string     `json:"customerEmail"`
	CustomerPhone      string     `json:"customerPhone"`
	Subtotal           int64      `json:"subtotal"`
	PaymentFee         int64      `json:"paymentFee"`
	TotalAmount        int64      `json:"totalAmount"`
	DepositAmount      int64      `json:"depositAmount"`
	RemainingBalance   int64      `json:"remainingBalance"`
	FullAmount         int64      `json:"fullAmount"`
	PaymentChoice      string     `json:"paymentChoice,omitempty"`
	PaymentStatus      string     `json:"paymentStatus"`
	SessionStatus      string     `json:"sessionStatus"`
	RedirectURL        string     `json:"redirectUrl,omitempty"`
	PaidAt             *time.Time `json:"paidAt,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CancellationReason string     `json:"cancellationReason,omitempty"`
	RefundStatus       string     `json:"refundStatus,omitempty"`
	RefundAmount       int64      `json:"refundAmount,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// AdminBookingView adds operational fields for staff.
type AdminBookingView struct {
	BookingView
	VenuePaymentReceived bool       `json:"venuePaymentReceived"`
	VenuePaymentAmount   int64      `json:"venuePaymentAmount,omitempty"`
	VenuePaymentMethod   string     `json:"venuePaymentMethod,omitempty"`
	VenuePaymentExpired  bool       `json:"venuePaymentExpired"`
	CheckedInAt          *time.Time `json:"checkedInAt,omitempty"`
	CheckedOutAt         *time.Time `json:"checkedOutAt,omitempty"`
	RefundReason         string     `json:"refundReason,omitempty"`
	RefundMethod         string     `json:"refundMethod,omitempty"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

type SlotView struct {
	ID              int64  `json:"id"`
	CourtID         int64  `json:"courtId"`
	CourtName       string `json:"courtName"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	Price           int64  `json:"price"`
	PriceTier       string `json:"priceTier"`
	DepositEligible bool   `json:"depositEligible"`
	Available       bool   `json:"available"`
}

type NotificationView struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	BookingID *int64    `json:"bookingId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewBookingView(b dbgen.Booking) BookingView {
	return BookingView{
		ID:                 b.ID,
		BookingCode:        b.BookingCode,
		SlotID:             b.SlotID,
		CustomerName:       b.CustomerName,
		CustomerEmail:      b.CustomerEmail,
		CustomerPhone:      b.CustomerPhone,
		Subtotal:           b.Subtotal,
		PaymentFee:         b.PaymentFee,
		TotalAmount:        b.TotalAmount,
		DepositAmount:      b.DepositAmount,
		RemainingBalance:   b.RemainingBalance,
		FullAmount:         b.FullAmount,
		PaymentChoice:      b.PaymentChoice.String,
		PaymentStatus:      b.PaymentStatus,
		SessionStatus:      b.SessionStatus,
		RedirectURL:        b.PaymentRedirectUrl.String,
		PaidAt:             timePtr(b.PaidAt),
		CancelledAt:        timePtr(b.CancelledAt),
		CancellationReason: b.CancellationReason.String,
		RefundStatus:       b.RefundStatus.String,
		RefundAmount:       b.RefundAmount,
		Notes:              b.Notes.String,
		CreatedAt:          b.CreatedAt,
	}
}

func NewAdminBookingView(b dbgen.Booking) AdminBookingView {
	return AdminBookingView{
		BookingView:          NewBookingView(b),
		VenuePaymentReceived: b.VenuePaymentReceived,
		VenuePaymentAmount:   b.VenuePaymentAmount,
		VenuePaymentMethod:   b.VenuePaymentMethod.String,
		VenuePaymentExpired:  b.VenuePaymentExpired,
		CheckedInAt:          timePtr(b.CheckedInAt),
		CheckedOutAt:         timePtr(b.CheckedOutAt),
		RefundReason:         b.RefundReason.String,
		RefundMethod:         b.RefundMethod.String,
		UpdatedAt:            b.UpdatedAt,
	}
}

func NewSlotView(s dbgen.ListSlotsByDateRow) SlotView {
	return SlotView{
		ID:              s.ID,
		CourtID:         s.CourtID,
		CourtName:       s.CourtName,
		Date:            s.Date,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		Price:           s.Price,
		PriceTier:       s.PriceTier,
		DepositEligible: s.DepositEligible,
		Available:       s.Available,
	}
}

func NewNotificationView(n dbgen.AdminNotification) NotificationView {
	view := NotificationView{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if n.BookingID.Valid {
		id := n.BookingID.Int64
		view.BookingID = &id
	}
	return view
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
