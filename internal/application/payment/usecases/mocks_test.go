package usecases

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment/valueobjects"
)

type mockPaymentRepository struct {
	mock.Mock
}

func (m *mockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		_ = p.SetID(1)
	}
	return args.Error(0)
}

func (m *mockPaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPaymentRepository) GetByID(ctx context.Context, id uint) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *mockPaymentRepository) GetByExternalID(ctx context.Context, source vo.Source, externalID string) (*payment.Payment, error) {
	args := m.Called(ctx, source, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *mockPaymentRepository) GetLatestPlanPayment(ctx context.Context, subscriptionID uint) (*payment.Payment, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *mockPaymentRepository) ListBySubscriptionID(ctx context.Context, subscriptionID uint, limit, offset int) ([]*payment.Payment, int64, error) {
	args := m.Called(ctx, subscriptionID, limit, offset)
	return args.Get(0).([]*payment.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *mockPaymentRepository) CountByPlanAndStatusSince(ctx context.Context, subscriptionID uint, planExternalID string, status vo.PaymentStatus, since time.Time) (int64, error) {
	args := m.Called(ctx, subscriptionID, planExternalID, status, since)
	return args.Get(0).(int64), args.Error(1)
}
