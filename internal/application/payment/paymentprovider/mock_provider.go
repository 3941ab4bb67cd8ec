package paymentprovider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider answers locally without calling any provider. It backs the "mock" driver
// and doubles as a test fake.
type MockProvider struct {
	shouldSucceed bool

	mu       sync.Mutex
	requests []CreatePaymentRequest
	invoices []CreateInvoiceRequest
}

func NewMockProvider(shouldSucceed bool) *MockProvider {
	return &MockProvider{
		shouldSucceed: shouldSucceed,
	}
}

func (m *MockProvider) CreatePaymentRequest(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if !m.shouldSucceed {
		return nil, fmt.Errorf("%w: mock provider configured to fail", ErrUnavailable)
	}

	planID := fmt.Sprintf("repl_mock_%s", req.ReferenceID)
	return &CreatePaymentResponse{
		ID:          planID,
		PaymentLink: fmt.Sprintf("https://mock-payment.example.com/recurring/%s", planID),
	}, nil
}

func (m *MockProvider) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*CreateInvoiceResponse, error) {
	m.mu.Lock()
	m.invoices = append(m.invoices, req)
	m.mu.Unlock()

	if !m.shouldSucceed {
		return nil, fmt.Errorf("%w: mock provider configured to fail", ErrUnavailable)
	}

	invoiceID := fmt.Sprintf("inv_mock_%s", req.ReferenceID)
	return &CreateInvoiceResponse{
		ID:         invoiceID,
		InvoiceURL: fmt.Sprintf("https://mock-payment.example.com/invoices/%s", invoiceID),
	}, nil
}

// Requests returns the payment requests received so far.
func (m *MockProvider) Requests() []CreatePaymentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CreatePaymentRequest(nil), m.requests...)
}

// Invoices returns the invoice requests received so far.
func (m *MockProvider) Invoices() []CreateInvoiceRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CreateInvoiceRequest(nil), m.invoices...)
}
