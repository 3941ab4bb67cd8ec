package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/subscription/usecases"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/utils"
)

// SubscriptionHandler serves the subscription management API of the signed-in user.
type SubscriptionHandler struct {
	startUseCase  startSubscriptionUseCase
	getUseCase    getSubscriptionUseCase
	cancelUseCase cancelSubscriptionUseCase
	resumeUseCase resumeSubscriptionUseCase
	logger        logger.Interface
}

func NewSubscriptionHandler(
	startUC startSubscriptionUseCase,
	getUC getSubscriptionUseCase,
	cancelUC cancelSubscriptionUseCase,
	resumeUC resumeSubscriptionUseCase,
	logger logger.Interface,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		startUseCase:  startUC,
		getUseCase:    getUC,
		cancelUseCase: cancelUC,
		resumeUseCase: resumeUC,
		logger:        logger,
	}
}

// StartSubscriptionRequest opens a subscription. Amount is in minor units of Currency.
type StartSubscriptionRequest struct {
	Plan     string `json:"plan" validate:"notblank,max=32"`
	Amount   int64  `json:"amount" validate:"gt=0"`
	Currency string `json:"currency" validate:"required,iso4217"`
}

type CancelSubscriptionRequest struct {
	Reason string `json:"reason" validate:"notblank,max=500"`
}

func (h *SubscriptionHandler) StartSubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req StartSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for start subscription", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.startUseCase.Execute(c.Request.Context(), usecases.StartSubscriptionCommand{
		UserID:   userID,
		Plan:     req.Plan,
		Amount:   req.Amount,
		Currency: req.Currency,
	})
	if err != nil {
		h.logger.Errorw("failed to start subscription", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Subscription created, awaiting payment")
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	subscriptionID, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), usecases.GetSubscriptionQuery{
		SubscriptionID: subscriptionID,
		UserID:         userID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *SubscriptionHandler) ListPayments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	subscriptionID, ok := parseIDParam(c)
	if !ok {
		return
	}

	pagination := utils.ParsePagination(c)
	items, total, err := h.getUseCase.ListPayments(c.Request.Context(), usecases.ListSubscriptionPaymentsQuery{
		SubscriptionID: subscriptionID,
		UserID:         userID,
		Limit:          pagination.PageSize,
		Offset:         pagination.Offset(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, items, total, pagination.Page, pagination.PageSize)
}

func (h *SubscriptionHandler) ListHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	subscriptionID, ok := parseIDParam(c)
	if !ok {
		return
	}

	items, err := h.getUseCase.ListHistory(c.Request.Context(), usecases.GetSubscriptionQuery{
		SubscriptionID: subscriptionID,
		UserID:         userID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", items)
}

func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	subscriptionID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.cancelUseCase.Execute(c.Request.Context(), usecases.CancelSubscriptionCommand{
		SubscriptionID: subscriptionID,
		UserID:         userID,
		Reason:         req.Reason,
	})
	if err != nil {
		h.logger.Warnw("failed to cancel subscription", "error", err, "subscription_id", subscriptionID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscription cancelled", result)
}

func (h *SubscriptionHandler) ResumeSubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	subscriptionID, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.resumeUseCase.Execute(c.Request.Context(), usecases.ResumeSubscriptionCommand{
		SubscriptionID: subscriptionID,
		UserID:         userID,
	})
	if err != nil {
		h.logger.Warnw("failed to resume subscription", "error", err, "subscription_id", subscriptionID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscription resumed, awaiting payment", result)
}

// currentUserID reads the identity set by the user middleware and writes a 401 when absent.
func currentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	userID, ok := value.(uint)
	if !exists || !ok || userID == 0 {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return 0, false
	}
	return userID, true
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid subscription id")
		return 0, false
	}
	return uint(id), true
}
