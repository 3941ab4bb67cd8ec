package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription/valueobjects"
	apperrors "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/errors"
)

func TestGetSubscription(t *testing.T) {
	f := newFixture(true)
	sub := f.seedSubscription(4, vo.StatusActive, "repl_1", nil)
	for _, id := range []string{"cycle_1", "cycle_2", "cycle_3"} {
		deliver(t, f, evCycleCreated, cycleData(id, "repl_1"))
	}
	ctx := context.Background()

	got, err := f.get.Execute(ctx, GetSubscriptionQuery{SubscriptionID: sub.ID(), UserID: 4})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", got.Status)

	page, total, err := f.get.ListPayments(ctx, ListSubscriptionPaymentsQuery{
		SubscriptionID: sub.ID(),
		UserID:         4,
		Limit:          2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, page, 2)
	assert.Equal(t, "cycle_3", page[0].ExternalID)
	assert.Equal(t, "cycle_created", page[0].Source)

	history, err := f.get.ListHistory(ctx, GetSubscriptionQuery{SubscriptionID: sub.ID(), UserID: 4})
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = f.get.Execute(ctx, GetSubscriptionQuery{SubscriptionID: sub.ID(), UserID: 5})
	assert.True(t, apperrors.IsForbiddenError(err))

	_, _, err = f.get.ListPayments(ctx, ListSubscriptionPaymentsQuery{SubscriptionID: 999, UserID: 4})
	assert.True(t, apperrors.IsNotFoundError(err))
}
