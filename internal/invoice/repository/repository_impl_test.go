package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/lodgia/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:invoice_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Invoice{}))
	return db
}

func TestInsertPaidGuardsNonPositiveAmounts(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := Provide()
	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	bookingID := node.Generate()
	now := time.Now().UTC()

	inserted, err := repo.InsertPaid(ctx, db, &domain.Invoice{
		ID: node.Generate(), BookingID: bookingID, IssuedAt: now, Amount: 0,
	})
	require.NoError(t, err)
	assert.False(t, inserted)

	inserted, err = repo.InsertPaid(ctx, db, &domain.Invoice{
		ID: node.Generate(), BookingID: bookingID, IssuedAt: now, Amount: -500,
	})
	require.NoError(t, err)
	assert.False(t, inserted)

	inserted, err = repo.InsertPaid(ctx, db, &domain.Invoice{
		ID: node.Generate(), BookingID: bookingID, IssuedAt: now, Amount: 60000,
	})
	require.NoError(t, err)
	assert.True(t, inserted)

	var count int64
	require.NoError(t, db.Model(&domain.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSumPaidSkipsUnpaidAndDeleted(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := Provide()
	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	bookingID := node.Generate()
	now := time.Now().UTC()
	deleted := now

	rows := []domain.Invoice{
		{ID: node.Generate(), BookingID: bookingID, IssuedAt: now, Amount: 100000, Paid: true},
		{ID: node.Generate(), BookingID: bookingID, IssuedAt: now, Amount: 50000, Paid: true},
		{ID: node.Generate(), BookingID: bookingID, IssuedAt: now, Amount: 70000, Paid: false},
		{ID: node.Generate(), BookingID: bookingID, IssuedAt: now, Amount: 30000, Paid: true, DeletedAt: &deleted},
		{ID: node.Generate(), BookingID: node.Generate(), IssuedAt: now, Amount: 99999, Paid: true},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	total, err := repo.SumPaid(ctx, db, bookingID)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), total)

	listed, err := repo.ListByBooking(ctx, db, bookingID)
	require.NoError(t, err)
	assert.Len(t, listed, 3)
}
