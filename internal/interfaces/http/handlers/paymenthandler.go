package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	paymentdto "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/payment/dto"
	paymentUsecases "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/payment/usecases"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/subscription/usecases"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/subscription/webhook"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/utils"
)

const maxWebhookBodySize = 1 << 20

type createInvoiceUseCase interface {
	Execute(ctx context.Context, cmd paymentUsecases.CreateInvoiceCommand) (*paymentdto.PaymentDTO, error)
}

type processWebhookUseCase interface {
	Execute(ctx context.Context, cmd usecases.ProcessWebhookCommand) (*usecases.ProcessWebhookResult, error)
}

// PaymentHandler issues one-time invoices and receives provider webhooks.
type PaymentHandler struct {
	createInvoiceUC  createInvoiceUseCase
	processWebhookUC processWebhookUseCase
	logger           logger.Interface
}

func NewPaymentHandler(
	createInvoiceUC createInvoiceUseCase,
	processWebhookUC processWebhookUseCase,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		createInvoiceUC:  createInvoiceUC,
		processWebhookUC: processWebhookUC,
		logger:           logger,
	}
}

type CreateInvoiceRequest struct {
	Amount      int64  `json:"amount" validate:"gt=0"`
	Currency    string `json:"currency" validate:"required,iso4217"`
	Description string `json:"description" validate:"max=500"`
}

// WebhookResponse acknowledges one delivery.
type WebhookResponse struct {
	Outcome        webhook.Outcome `json:"outcome"`
	SubscriptionID uint            `json:"subscription_id,omitempty"`
	PaymentID      uint            `json:"payment_id,omitempty"`
}

func (h *PaymentHandler) CreateInvoice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create invoice", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.createInvoiceUC.Execute(c.Request.Context(), paymentUsecases.CreateInvoiceCommand{
		UserID:      userID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if err != nil {
		h.logger.Errorw("failed to create invoice", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Invoice created")
}

// HandleWebhook applies one provider delivery. Every decided outcome is acknowledged with 200;
// only transient failures answer 500 so that the provider redelivers.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodySize))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	event, err := webhook.Decode(body)
	if err != nil {
		h.logger.Warnw("malformed webhook body", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "malformed webhook body")
		return
	}

	result, err := h.processWebhookUC.Execute(c.Request.Context(), usecases.ProcessWebhookCommand{Event: event})
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "webhook processing failed, retry later")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", WebhookResponse{
		Outcome:        result.Outcome,
		SubscriptionID: result.SubscriptionID,
		PaymentID:      result.PaymentID,
	})
}
