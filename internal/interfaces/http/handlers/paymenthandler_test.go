package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paymentdto "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/payment/dto"
	paymentUsecases "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/payment/usecases"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/subscription/usecases"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/subscription/webhook"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/interfaces/http/handlers/testutil"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/errors"
)

type mockCreateInvoiceUC struct {
	result  *paymentdto.PaymentDTO
	err     error
	lastCmd paymentUsecases.CreateInvoiceCommand
}

func (m *mockCreateInvoiceUC) Execute(ctx context.Context, cmd paymentUsecases.CreateInvoiceCommand) (*paymentdto.PaymentDTO, error) {
	m.lastCmd = cmd
	return m.result, m.err
}

type mockProcessWebhookUC struct {
	result *usecases.ProcessWebhookResult
	err    error
	calls  int
	last   webhook.Event
}

func (m *mockProcessWebhookUC) Execute(ctx context.Context, cmd usecases.ProcessWebhookCommand) (*usecases.ProcessWebhookResult, error) {
	m.calls++
	m.last = cmd.Event
	return m.result, m.err
}

func newTestPaymentHandler(invoiceUC createInvoiceUseCase, webhookUC processWebhookUseCase) *PaymentHandler {
	return NewPaymentHandler(invoiceUC, webhookUC, testutil.NewMockLogger())
}

// =====================================================================
// TestPaymentHandler_HandleWebhook
// =====================================================================

func TestPaymentHandler_HandleWebhook_Processed(t *testing.T) {
	mockUC := &mockProcessWebhookUC{result: &usecases.ProcessWebhookResult{
		Outcome:        webhook.OutcomeProcessed,
		SubscriptionID: 3,
		PaymentID:      8,
	}}
	handler := newTestPaymentHandler(nil, mockUC)

	body := []byte(`{"event":"recurring.cycle.succeeded","data":{"id":"cycle-1","plan_id":"plan-1","amount":9.99,"currency":"USD"}}`)
	c, w := testutil.NewRawTestContext(http.MethodPost, "/webhooks/payments", body)

	handler.HandleWebhook(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, mockUC.calls)
	assert.Equal(t, webhook.EventCycleSucceeded, mockUC.last.Kind)
	assert.Equal(t, "plan-1", mockUC.last.Data.PlanID)

	var ack WebhookResponse
	require.NoError(t, testutil.DecodeData(w, &ack))
	assert.Equal(t, webhook.OutcomeProcessed, ack.Outcome)
	assert.Equal(t, uint(3), ack.SubscriptionID)
	assert.Equal(t, uint(8), ack.PaymentID)
}

func TestPaymentHandler_HandleWebhook_AcknowledgesDecidedOutcomes(t *testing.T) {
	outcomes := []webhook.Outcome{
		webhook.OutcomeNotFound,
		webhook.OutcomeUnhandled,
		webhook.OutcomeDuplicate,
		webhook.OutcomeIgnored,
	}

	for _, outcome := range outcomes {
		t.Run(string(outcome), func(t *testing.T) {
			mockUC := &mockProcessWebhookUC{result: &usecases.ProcessWebhookResult{Outcome: outcome}}
			handler := newTestPaymentHandler(nil, mockUC)

			c, w := testutil.NewRawTestContext(http.MethodPost, "/webhooks/payments", []byte(`{"event":"recurring.plan.updated","data":{}}`))

			handler.HandleWebhook(c)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), fmt.Sprintf(`"outcome":"%s"`, outcome))
		})
	}
}

func TestPaymentHandler_HandleWebhook_MalformedBody(t *testing.T) {
	mockUC := &mockProcessWebhookUC{}
	handler := newTestPaymentHandler(nil, mockUC)

	c, w := testutil.NewRawTestContext(http.MethodPost, "/webhooks/payments", []byte(`{"event":`))

	handler.HandleWebhook(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, mockUC.calls)
}

func TestPaymentHandler_HandleWebhook_TransientFailure(t *testing.T) {
	mockUC := &mockProcessWebhookUC{err: fmt.Errorf("database is locked")}
	handler := newTestPaymentHandler(nil, mockUC)

	c, w := testutil.NewRawTestContext(http.MethodPost, "/webhooks/payments", []byte(`{"event":"recurring.cycle.failed","data":{"id":"c-1","plan_id":"p-1"}}`))

	handler.HandleWebhook(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "database is locked")
}

// =====================================================================
// TestPaymentHandler_CreateInvoice
// =====================================================================

func TestPaymentHandler_CreateInvoice_Success(t *testing.T) {
	link := "https://pay.example.com/invoice/1"
	mockUC := &mockCreateInvoiceUC{result: &paymentdto.PaymentDTO{
		ID:          1,
		UserID:      10,
		Source:      "invoice",
		ExternalID:  "inv-1",
		Status:      "pending",
		Amount:      5000,
		Currency:    "USD",
		PaymentLink: &link,
	}}
	handler := newTestPaymentHandler(mockUC, nil)

	reqBody := CreateInvoiceRequest{Amount: 5000, Currency: "USD", Description: "setup fee"}
	c, w := testutil.NewTestContext(http.MethodPost, "/invoices", reqBody)
	testutil.SetAuthContext(c, 10)

	handler.CreateInvoice(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, uint(10), mockUC.lastCmd.UserID)
	assert.Equal(t, int64(5000), mockUC.lastCmd.Amount)
	assert.Equal(t, "setup fee", mockUC.lastCmd.Description)
}

func TestPaymentHandler_CreateInvoice_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		auth       bool
		err        error
		wantStatus int
	}{
		{name: "unauthenticated", body: CreateInvoiceRequest{Amount: 100, Currency: "USD"}, wantStatus: http.StatusUnauthorized},
		{name: "negative amount", body: CreateInvoiceRequest{Amount: -1, Currency: "USD"}, auth: true, wantStatus: http.StatusBadRequest},
		{name: "missing currency", body: CreateInvoiceRequest{Amount: 100}, auth: true, wantStatus: http.StatusBadRequest},
		{
			name:       "provider down",
			body:       CreateInvoiceRequest{Amount: 100, Currency: "USD"},
			auth:       true,
			err:        errors.NewProviderUnavailableError("payment provider unavailable"),
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestPaymentHandler(&mockCreateInvoiceUC{err: tt.err}, nil)

			c, w := testutil.NewTestContext(http.MethodPost, "/invoices", tt.body)
			if tt.auth {
				testutil.SetAuthContext(c, 10)
			}

			handler.CreateInvoice(c)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
