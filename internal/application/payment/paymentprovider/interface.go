// Package paymentprovider defines the contract of the external recurring-payment provider.
package paymentprovider

import (
	"context"
	"errors"

	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment/valueobjects"
)

// ErrUnavailable wraps every failure to reach the provider or get a usable answer from it.
var ErrUnavailable = errors.New("payment provider unavailable")

type PaymentProvider interface {
	// CreatePaymentRequest opens a recurring plan. The returned ID is the plan correlation key.
	CreatePaymentRequest(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error)
	// CreateInvoice opens a one-time invoice.
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*CreateInvoiceResponse, error)
}

type CreatePaymentRequest struct {
	ReferenceID string
	UserID      uint
	Amount      vo.Money
	// Interval and IntervalCount describe the billing schedule, e.g. MONTH x1.
	Interval      string
	IntervalCount int
	Description   string
}

type CreatePaymentResponse struct {
	ID          string
	PaymentLink string
}

type CreateInvoiceRequest struct {
	ReferenceID string
	UserID      uint
	Amount      vo.Money
	Description string
}

type CreateInvoiceResponse struct {
	ID         string
	InvoiceURL string
}
