package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment"
	paymentvo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/persistence/models"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/db"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

var testNow = time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(
		&models.SubscriptionModel{},
		&models.PaymentModel{},
		&models.SubscriptionHistoryModel{},
	))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

func createSubscription(t *testing.T, repo subscription.Repository, userID uint) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.NewSubscription(userID, vo.PlanMonthly, testNow)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), sub))
	return sub
}

func TestSubscriptionRepository(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewSubscriptionRepository(gdb, logger.NewNopLogger())
	ctx := context.Background()

	sub := createSubscription(t, repo, 11)
	require.NotZero(t, sub.ID())

	loaded, err := repo.GetByID(ctx, sub.ID())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, vo.StatusTrial, loaded.Status())
	assert.Equal(t, *sub.TrialEndsAt(), *loaded.TrialEndsAt())
	assert.Equal(t, 1, loaded.Version())

	live, err := repo.GetLiveByUserID(ctx, 11)
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, sub.ID(), live.ID())

	stale, err := repo.GetByIDForUpdate(ctx, sub.ID())
	require.NoError(t, err)

	require.NoError(t, loaded.Activate(testNow.Add(time.Hour)))
	require.NoError(t, repo.Update(ctx, loaded))

	require.NoError(t, stale.Cancel("changed my mind", testNow.Add(2*time.Hour)))
	assert.ErrorIs(t, repo.Update(ctx, stale), subscription.ErrVersionConflict)

	stored, err := repo.GetByID(ctx, sub.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.StatusActive, stored.Status())
	assert.Equal(t, 2, stored.Version())
	assert.Equal(t, testNow.Add(time.Hour).AddDate(0, 1, 0), *stored.CurrentPeriodEnd())

	missing, err := repo.GetByID(ctx, 999)
	assert.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, stored.Expire(testNow.Add(3*time.Hour)))
	require.NoError(t, repo.Update(ctx, stored))
	live, err = repo.GetLiveByUserID(ctx, 11)
	require.NoError(t, err)
	assert.Nil(t, live)
}

func TestPaymentRepository(t *testing.T) {
	gdb := setupTestDB(t)
	subs := NewSubscriptionRepository(gdb, logger.NewNopLogger())
	repo := NewPaymentRepository(gdb, logger.NewNopLogger())
	ctx := context.Background()

	sub := createSubscription(t, subs, 21)
	amount, err := paymentvo.NewMoney(9900, "USD")
	require.NoError(t, err)

	plan, err := payment.NewPlanPayment(21, sub.ID(), "repl_1", amount, "https://pay.example/repl_1", testNow)
	require.NoError(t, err)
	plan.AppendMetadata("plan.requested", map[string]any{"reference_id": "ref-1"}, testNow)
	require.NoError(t, repo.Create(ctx, plan))

	t.Run("duplicate external id per source", func(t *testing.T) {
		again, err := payment.NewPlanPayment(21, sub.ID(), "repl_1", amount, "", testNow)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, again), payment.ErrDuplicateExternalID)

		cycle, err := payment.NewCyclePayment(21, sub.ID(), "repl_1", "repl_1", amount, paymentvo.PaymentStatusPending, "", testNow)
		require.NoError(t, err)
		assert.NoError(t, repo.Create(ctx, cycle))
	})

	t.Run("round trip", func(t *testing.T) {
		loaded, err := repo.GetByExternalID(ctx, paymentvo.SourcePlan, "repl_1")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, plan.ID(), loaded.ID())
		assert.Equal(t, "repl_1", loaded.PlanExternalID())
		assert.True(t, amount.Equals(loaded.Amount()))
		entry, ok := payment.Latest(loaded.Metadata(), "plan.requested")
		require.True(t, ok)
		assert.Equal(t, "ref-1", entry.Data["reference_id"])
		assert.Equal(t, testNow, entry.RecordedAt.UTC())

		missing, err := repo.GetByExternalID(ctx, paymentvo.SourceInvoice, "repl_1")
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("update and stale write", func(t *testing.T) {
		first, err := repo.GetByID(ctx, plan.ID())
		require.NoError(t, err)
		stale, err := repo.GetByID(ctx, plan.ID())
		require.NoError(t, err)

		require.NoError(t, first.MarkAsPaid(testNow.Add(time.Hour)))
		first.AppendMetadata("recurring.plan.activated", map[string]any{"id": "repl_1"}, testNow.Add(time.Hour))
		require.NoError(t, repo.Update(ctx, first))

		stale.AppendMetadata("recurring.plan.stopped", nil, testNow.Add(2*time.Hour))
		stale.AppendMetadata("recurring.plan.stopped", nil, testNow.Add(2*time.Hour))
		assert.ErrorIs(t, repo.Update(ctx, stale), payment.ErrVersionConflict)

		stored, err := repo.GetByID(ctx, plan.ID())
		require.NoError(t, err)
		assert.Equal(t, paymentvo.PaymentStatusPaid, stored.Status())
		assert.Len(t, stored.Metadata(), 2)
	})

	t.Run("latest plan and listing", func(t *testing.T) {
		newer, err := payment.NewPlanPayment(21, sub.ID(), "repl_2", amount, "", testNow.Add(time.Hour))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, newer))

		latest, err := repo.GetLatestPlanPayment(ctx, sub.ID())
		require.NoError(t, err)
		assert.Equal(t, newer.ID(), latest.ID())

		page, total, err := repo.ListBySubscriptionID(ctx, sub.ID(), 2, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, page, 2)
		assert.Equal(t, newer.ID(), page[0].ID())

		rest, _, err := repo.ListBySubscriptionID(ctx, sub.ID(), 2, 2)
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, plan.ID(), rest[0].ID())
	})

	t.Run("count failures in window", func(t *testing.T) {
		for i, at := range []time.Time{testNow.AddDate(0, 0, -40), testNow.AddDate(0, 0, -5), testNow} {
			cycle, err := payment.NewCyclePayment(21, sub.ID(), "fail_"+string(rune('a'+i)), "repl_2", amount,
				paymentvo.PaymentStatusFailed, "card declined", at)
			require.NoError(t, err)
			require.NoError(t, repo.Create(ctx, cycle))
		}

		count, err := repo.CountByPlanAndStatusSince(ctx, sub.ID(), "repl_2", paymentvo.PaymentStatusFailed, testNow.AddDate(0, 0, -30))
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		other, err := repo.CountByPlanAndStatusSince(ctx, sub.ID(), "repl_9", paymentvo.PaymentStatusFailed, testNow.AddDate(0, 0, -30))
		require.NoError(t, err)
		assert.Zero(t, other)
	})
}

func TestSubscriptionHistoryRepository(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewSubscriptionHistoryRepository(gdb)
	ctx := context.Background()

	created, err := subscription.NewSubscriptionHistory(5, subscription.ActionCreated, "", vo.StatusTrial, "", testNow)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, created))
	expired, err := subscription.NewSubscriptionHistory(5, subscription.ActionExpired, vo.StatusTrial, vo.StatusExpired,
		subscription.ReasonMultiplePaymentFailures, testNow.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, expired))

	entries, err := repo.ListBySubscriptionID(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, subscription.ActionCreated, entries[0].Action())
	assert.Equal(t, vo.SubscriptionStatus(""), entries[0].OldStatus())
	assert.Equal(t, vo.StatusTrial, entries[1].OldStatus())
	assert.Equal(t, subscription.ReasonMultiplePaymentFailures, entries[1].Reason())
}

func TestRepositories_JoinTransaction(t *testing.T) {
	gdb := setupTestDB(t)
	tm := db.NewTransactionManager(gdb)
	subs := NewSubscriptionRepository(gdb, logger.NewNopLogger())
	ctx := context.Background()
	boom := errors.New("boom")

	var id uint
	err := tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		sub, err := subscription.NewSubscription(31, vo.PlanYearly, testNow)
		if err != nil {
			return err
		}
		if err := subs.Create(txCtx, sub); err != nil {
			return err
		}
		id = sub.ID()
		return boom
	})
	require.ErrorIs(t, err, boom)

	rolledBack, err := subs.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, rolledBack)
}

func TestSubscriptionRepository_ListLapsedIDs(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewSubscriptionRepository(gdb, logger.NewNopLogger())
	ctx := context.Background()

	activate := func(userID uint) *subscription.Subscription {
		sub := createSubscription(t, repo, userID)
		require.NoError(t, sub.Activate(testNow))
		require.NoError(t, repo.Update(ctx, sub))
		return sub
	}

	firstPeriodOnly := activate(1)
	renewed := activate(2)
	require.NoError(t, renewed.ExtendByCycle(testNow.AddDate(0, 1, 0)))
	require.NoError(t, repo.Update(ctx, renewed))
	createSubscription(t, repo, 3)

	// Period ends on 2026-03-01, the renewal runs to 2026-04-01.
	ids, err := repo.ListLapsedIDs(ctx, testNow.AddDate(0, 1, 1), 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{firstPeriodOnly.ID()}, ids)

	ids, err = repo.ListLapsedIDs(ctx, testNow.AddDate(0, 2, 1), 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{firstPeriodOnly.ID(), renewed.ID()}, ids)

	ids, err = repo.ListLapsedIDs(ctx, testNow.AddDate(0, 2, 1), 1)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}
