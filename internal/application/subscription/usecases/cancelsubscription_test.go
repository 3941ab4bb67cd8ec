package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription/valueobjects"
	apperrors "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/errors"
)

func TestCancelSubscription(t *testing.T) {
	t.Run("active subscription", func(t *testing.T) {
		f := newFixture(true)
		sub := f.seedSubscription(2, vo.StatusActive, "repl_1", nil)

		result, err := f.cancel.Execute(context.Background(), CancelSubscriptionCommand{
			SubscriptionID: sub.ID(),
			UserID:         2,
			Reason:         "too expensive",
		})
		require.NoError(t, err)

		assert.Equal(t, "CANCELLED", result.Status)
		assert.False(t, result.AutoRenew)
		require.NotNil(t, result.CancelReason)
		assert.Equal(t, "too expensive", *result.CancelReason)
		require.NotNil(t, result.CancelledAt)
		assert.Equal(t, fixtureStart, *result.CancelledAt)

		history := f.historyOf(sub.ID())
		require.Len(t, history, 1)
		assert.Equal(t, subscription.ActionCancelled, history[0].Action())
		assert.Equal(t, "too expensive", history[0].Reason())
	})

	t.Run("cancelling twice is a no-op", func(t *testing.T) {
		f := newFixture(true)
		sub := f.seedSubscription(2, vo.StatusCancelled, "", nil)

		result, err := f.cancel.Execute(context.Background(), CancelSubscriptionCommand{
			SubscriptionID: sub.ID(),
			UserID:         2,
			Reason:         "again",
		})

		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", result.Status)
		assert.Equal(t, sub.Version(), f.subscription(sub.ID()).Version())
		assert.Empty(t, f.historyOf(sub.ID()))
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name    string
			status  vo.SubscriptionStatus
			userID  uint
			reason  string
			isError func(error) bool
		}{
			{name: "missing reason", status: vo.StatusTrial, userID: 2, isError: apperrors.IsValidationError},
			{name: "expired", status: vo.StatusExpired, userID: 2, reason: "x", isError: apperrors.IsInvalidStateError},
			{name: "other owner", status: vo.StatusActive, userID: 3, reason: "x", isError: apperrors.IsForbiddenError},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(true)
				sub := f.seedSubscription(2, tt.status, "", nil)

				_, err := f.cancel.Execute(context.Background(), CancelSubscriptionCommand{
					SubscriptionID: sub.ID(),
					UserID:         tt.userID,
					Reason:         tt.reason,
				})

				require.Error(t, err)
				assert.True(t, tt.isError(err), "unexpected error: %v", err)
				assert.Equal(t, tt.status, f.subscription(sub.ID()).Status())
			})
		}
	})
}
