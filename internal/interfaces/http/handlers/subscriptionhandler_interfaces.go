package handlers

import (
	"context"

	paymentdto "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/payment/dto"
	subdto "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/subscription/dto"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/subscription/usecases"
)

// Use case interfaces for SubscriptionHandler

type startSubscriptionUseCase interface {
	Execute(ctx context.Context, cmd usecases.StartSubscriptionCommand) (*subdto.CheckoutDTO, error)
}

type getSubscriptionUseCase interface {
	Execute(ctx context.Context, query usecases.GetSubscriptionQuery) (*subdto.SubscriptionDTO, error)
	ListPayments(ctx context.Context, query usecases.ListSubscriptionPaymentsQuery) ([]*paymentdto.PaymentDTO, int64, error)
	ListHistory(ctx context.Context, query usecases.GetSubscriptionQuery) ([]*subdto.HistoryDTO, error)
}

type cancelSubscriptionUseCase interface {
	Execute(ctx context.Context, cmd usecases.CancelSubscriptionCommand) (*subdto.SubscriptionDTO, error)
}

type resumeSubscriptionUseCase interface {
	Execute(ctx context.Context, cmd usecases.ResumeSubscriptionCommand) (*subdto.CheckoutDTO, error)
}
