package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/payment/paymentprovider"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment"
	apperrors "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/errors"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

var invoiceNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newInvoiceUseCase(repo *mockPaymentRepository, provider paymentprovider.PaymentProvider) *CreateInvoiceUseCase {
	uc := NewCreateInvoiceUseCase(repo, provider, logger.NewNopLogger())
	uc.SetClock(func() time.Time { return invoiceNow })
	return uc
}

func TestCreateInvoiceUseCase_Execute_Success(t *testing.T) {
	repo := new(mockPaymentRepository)
	provider := paymentprovider.NewMockProvider(true)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*payment.Payment")).Return(nil)

	result, err := newInvoiceUseCase(repo, provider).Execute(context.Background(), CreateInvoiceCommand{
		UserID:      9,
		Amount:      15000000,
		Currency:    "idr",
		Description: "listing fee",
	})

	require.NoError(t, err)
	assert.Equal(t, "invoice", result.Source)
	assert.Equal(t, "PENDING", result.Status)
	assert.Nil(t, result.SubscriptionID)
	assert.Equal(t, int64(15000000), result.Amount)
	assert.Equal(t, "150000.00", result.AmountDecimal)
	assert.Equal(t, "IDR", result.Currency)
	require.NotNil(t, result.PaymentLink)
	assert.Contains(t, *result.PaymentLink, result.ExternalID)
	assert.Equal(t, invoiceNow, result.CreatedAt)

	invoices := provider.Invoices()
	require.Len(t, invoices, 1)
	assert.Equal(t, "inv_mock_"+invoices[0].ReferenceID, result.ExternalID)
	entry, ok := payment.Latest(result.Metadata, "invoice.requested")
	require.True(t, ok)
	assert.Equal(t, invoices[0].ReferenceID, entry.Data["reference_id"])

	repo.AssertExpectations(t)
}

func TestCreateInvoiceUseCase_Execute_Errors(t *testing.T) {
	t.Run("invalid amount", func(t *testing.T) {
		repo := new(mockPaymentRepository)
		provider := paymentprovider.NewMockProvider(true)

		_, err := newInvoiceUseCase(repo, provider).Execute(context.Background(), CreateInvoiceCommand{
			UserID: 9, Amount: 0, Currency: "USD",
		})

		assert.True(t, apperrors.IsValidationError(err))
		assert.Empty(t, provider.Invoices())
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("provider unavailable", func(t *testing.T) {
		repo := new(mockPaymentRepository)

		_, err := newInvoiceUseCase(repo, paymentprovider.NewMockProvider(false)).Execute(context.Background(), CreateInvoiceCommand{
			UserID: 9, Amount: 500, Currency: "USD",
		})

		assert.True(t, apperrors.IsProviderUnavailableError(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate invoice id", func(t *testing.T) {
		repo := new(mockPaymentRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(payment.ErrDuplicateExternalID)

		_, err := newInvoiceUseCase(repo, paymentprovider.NewMockProvider(true)).Execute(context.Background(), CreateInvoiceCommand{
			UserID: 9, Amount: 500, Currency: "USD",
		})

		assert.True(t, apperrors.IsConflictError(err))
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(mockPaymentRepository)
		storeErr := errors.New("connection reset")
		repo.On("Create", mock.Anything, mock.Anything).Return(storeErr)

		_, err := newInvoiceUseCase(repo, paymentprovider.NewMockProvider(true)).Execute(context.Background(), CreateInvoiceCommand{
			UserID: 9, Amount: 500, Currency: "USD",
		})

		assert.ErrorIs(t, err, storeErr)
		assert.False(t, apperrors.IsAppError(err))
	})
}
