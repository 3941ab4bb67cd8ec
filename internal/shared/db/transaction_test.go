package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type row struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(&row{}))
	return gdb
}

func TestRunInTransaction_CommitAndRollback(t *testing.T) {
	gdb := setupDB(t)
	tm := NewTransactionManager(gdb)
	ctx := context.Background()

	err := tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		assert.True(t, InTransaction(txCtx))
		return GetTxFromContext(txCtx, gdb).Create(&row{Name: "kept"}).Error
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		require.NoError(t, GetTxFromContext(txCtx, gdb).Create(&row{Name: "dropped"}).Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var names []string
	require.NoError(t, gdb.Model(&row{}).Pluck("name", &names).Error)
	assert.Equal(t, []string{"kept"}, names)
	assert.False(t, InTransaction(ctx))
}

func TestRunInTransaction_NestedSavepoint(t *testing.T) {
	gdb := setupDB(t)
	tm := NewTransactionManager(gdb)

	err := tm.RunInTransaction(context.Background(), func(txCtx context.Context) error {
		require.NoError(t, GetTxFromContext(txCtx, gdb).Create(&row{Name: "outer"}).Error)

		inner := tm.RunInTransaction(txCtx, func(innerCtx context.Context) error {
			require.NoError(t, GetTxFromContext(innerCtx, gdb).Create(&row{Name: "inner"}).Error)
			return errors.New("inner failed")
		})
		assert.Error(t, inner)
		return nil
	})
	require.NoError(t, err)

	var names []string
	require.NoError(t, gdb.Model(&row{}).Pluck("name", &names).Error)
	assert.Equal(t, []string{"outer"}, names)
}
