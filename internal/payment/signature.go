package payment

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
)

// Notification is the webhook payload posted by the gateway.
type Notification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionID     string `json:"transaction_id"`
}

// Status converts the notification into a TransactionStatus.
func (n Notification) Status() TransactionStatus {
	return TransactionStatus{
		OrderRef:          n.OrderID,
		TransactionStatus: n.TransactionStatus,
		FraudStatus:       n.FraudStatus,
		PaymentType:       n.PaymentType,
		TransactionID:     n.TransactionID,
		StatusCode:        n.StatusCode,
		GrossAmount:       n.GrossAmount,
	}
}

// Sign computes the gateway signature: hex SHA-512 over
// order_id + status_code + gross_amount + server_key.
func Sign(serverKey, orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifySignature reports whether n carries a valid signature for serverKey.
func VerifySignature(serverKey string, n Notification) bool {
	if serverKey == "" || n.SignatureKey == "" {
		return false
	}
	expected := Sign(serverKey, n.OrderID, n.StatusCode, n.GrossAmount)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) == 1
}
