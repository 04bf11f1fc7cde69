package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/gomarket/internal/domain"
	"github.com/talkincode/gomarket/pkg/common"
)

func TestOrderDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)

	order := domain.Order{ID: common.UUIDint64(), Quantity: 1, Price: 5}
	require.NoError(t, db.Create(&order).Error)

	require.NoError(t, repo.Delete(testCtx, order.ID))
	assert.ErrorIs(t, repo.Delete(testCtx, order.ID), ErrNotFound)
}

func TestOrderListByVendor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	vendorID := common.UUIDint64()

	for i := 0; i < 3; i++ {
		order := domain.Order{ID: common.UUIDint64(), VendorID: vendorID, Quantity: 1, Price: 5}
		require.NoError(t, db.Create(&order).Error)
	}
	other := domain.Order{ID: common.UUIDint64(), VendorID: common.UUIDint64(), Quantity: 1, Price: 5}
	require.NoError(t, db.Create(&other).Error)

	orders, total, err := repo.ListByVendor(testCtx, vendorID, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, orders, 2)
}

func TestItemWalkAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormItemRepository(db)
	vendor := seedVendor(t, db)

	for i := 0; i < 5; i++ {
		seedItem(t, db, vendor.ID, 1, 1)
	}

	var seen int
	var batches int
	err := repo.WalkAll(testCtx, 2, func(items []domain.Item) error {
		batches++
		seen += len(items)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, seen)
	assert.Equal(t, 3, batches)
}

func TestCartGetByCustomer(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCartRepository(db)
	customer, cart := seedCustomer(t, db)

	got, err := repo.GetByCustomer(testCtx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, got.ID)

	_, err = repo.GetByCustomer(testCtx, 123456)
	assert.ErrorIs(t, err, ErrNotFound)
}
