package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/payment/dto"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/payment/paymentprovider"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/biztime"
	apperrors "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/errors"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

type CreateInvoiceCommand struct {
	UserID      uint
	Amount      int64 // minor units
	Currency    string
	Description string
}

// CreateInvoiceUseCase issues a one-time invoice and records it in the payment ledger.
// Invoices belong to no subscription and are not reconciled by the subscription webhooks.
type CreateInvoiceUseCase struct {
	paymentRepo payment.PaymentRepository
	provider    paymentprovider.PaymentProvider
	now         func() time.Time
	logger      logger.Interface
}

func NewCreateInvoiceUseCase(
	paymentRepo payment.PaymentRepository,
	provider paymentprovider.PaymentProvider,
	logger logger.Interface,
) *CreateInvoiceUseCase {
	return &CreateInvoiceUseCase{
		paymentRepo: paymentRepo,
		provider:    provider,
		now:         biztime.NowUTC,
		logger:      logger,
	}
}

// SetClock overrides the time source.
func (uc *CreateInvoiceUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

func (uc *CreateInvoiceUseCase) Execute(ctx context.Context, cmd CreateInvoiceCommand) (*dto.PaymentDTO, error) {
	amount, err := vo.NewMoney(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid amount", err.Error())
	}

	referenceID := uuid.NewString()
	resp, err := uc.provider.CreateInvoice(ctx, paymentprovider.CreateInvoiceRequest{
		ReferenceID: referenceID,
		UserID:      cmd.UserID,
		Amount:      amount,
		Description: cmd.Description,
	})
	if err != nil {
		uc.logger.Errorw("failed to create invoice",
			"user_id", cmd.UserID,
			"reference_id", referenceID,
			"error", err,
		)
		return nil, apperrors.NewProviderUnavailableError("payment provider unavailable", err.Error())
	}

	now := uc.now()
	invoice, err := payment.NewInvoicePayment(cmd.UserID, resp.ID, amount, resp.InvoiceURL, cmd.Description, now)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid invoice", err.Error())
	}
	invoice.AppendMetadata("invoice.requested", map[string]any{
		"reference_id": referenceID,
		"invoice_url":  resp.InvoiceURL,
	}, now)

	if err := uc.paymentRepo.Create(ctx, invoice); err != nil {
		uc.logger.Errorw("failed to record invoice",
			"user_id", cmd.UserID,
			"invoice_id", resp.ID,
			"error", err,
		)
		if errors.Is(err, payment.ErrDuplicateExternalID) {
			return nil, apperrors.NewConflictError("invoice already recorded", resp.ID)
		}
		return nil, fmt.Errorf("failed to record invoice: %w", err)
	}

	uc.logger.Infow("invoice created",
		"payment_id", invoice.ID(),
		"user_id", cmd.UserID,
		"invoice_id", resp.ID,
		"amount", amount.String(),
	)

	return dto.ToPaymentDTO(invoice), nil
}
