package market

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/gomarket/internal/domain"
)

func TestCreateItemValidation(t *testing.T) {
	db := setupTestDB(t)
	vendor := seedVendor(t, db)
	svc := NewCatalogService(db, NewGormItemRepository(db))

	err := svc.CreateItem(testCtx, &domain.Item{Title: "free", Price: 0, Stock: 1, VendorID: vendor.ID})
	assert.Error(t, err)

	err = svc.CreateItem(testCtx, &domain.Item{Title: "debt", Price: 5, Stock: -1, VendorID: vendor.ID})
	assert.Error(t, err)

	item := domain.Item{Title: "  widget  ", Price: 5, Stock: 0, VendorID: vendor.ID}
	require.NoError(t, svc.CreateItem(testCtx, &item))
	assert.Equal(t, "widget", item.Title)
	assert.NotZero(t, item.ID)
}

func TestToggleFeature(t *testing.T) {
	db := setupTestDB(t)
	vendor := seedVendor(t, db)
	item := seedItem(t, db, vendor.ID, 5, 5)
	svc := NewCatalogService(db, NewGormItemRepository(db))

	featured, err := svc.ToggleFeature(testCtx, item.ID)
	require.NoError(t, err)
	assert.True(t, featured)

	featured, err = svc.ToggleFeature(testCtx, item.ID)
	require.NoError(t, err)
	assert.False(t, featured)

	_, err = svc.ToggleFeature(testCtx, 777777)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateItemRepricesCarts(t *testing.T) {
	db := setupTestDB(t)
	vendor := seedVendor(t, db)
	_, cartA := seedCustomer(t, db)
	_, cartB := seedCustomer(t, db)
	item := seedItem(t, db, vendor.ID, 10, 20)
	other := seedItem(t, db, vendor.ID, 3, 20)

	carts := NewCartService(db)
	_, err := carts.AddItem(testCtx, cartA.ID, item.ID)
	require.NoError(t, err)
	_, err = carts.AddItem(testCtx, cartA.ID, other.ID)
	require.NoError(t, err)
	_, err = carts.AddItem(testCtx, cartB.ID, item.ID)
	require.NoError(t, err)
	_, err = carts.SetQuantity(testCtx, cartB.ID, item.ID, 2)
	require.NoError(t, err)

	svc := NewCatalogService(db, NewGormItemRepository(db))
	item.Price = 25
	require.NoError(t, svc.UpdateItem(testCtx, item))

	// Every cart holding the item is repriced in the same transaction.
	assert.InDelta(t, 25+3, cartTotal(t, db, cartA.ID), 0.001)
	assert.InDelta(t, 2*25, cartTotal(t, db, cartB.ID), 0.001)
}

func TestUpdateItemValidation(t *testing.T) {
	db := setupTestDB(t)
	vendor := seedVendor(t, db)
	item := seedItem(t, db, vendor.ID, 10, 20)
	svc := NewCatalogService(db, NewGormItemRepository(db))

	item.Price = 0
	assert.Error(t, svc.UpdateItem(testCtx, item))
	item.Price = 10
	item.Stock = -1
	assert.Error(t, svc.UpdateItem(testCtx, item))
}

func TestDeleteItemCascadesIntoCarts(t *testing.T) {
	db := setupTestDB(t)
	vendor := seedVendor(t, db)
	_, cartA := seedCustomer(t, db)
	_, cartB := seedCustomer(t, db)
	doomed := seedItem(t, db, vendor.ID, 10, 20)
	kept := seedItem(t, db, vendor.ID, 3, 20)

	carts := NewCartService(db)
	_, err := carts.AddItem(testCtx, cartA.ID, doomed.ID)
	require.NoError(t, err)
	_, err = carts.AddItem(testCtx, cartA.ID, kept.ID)
	require.NoError(t, err)
	_, err = carts.AddItem(testCtx, cartB.ID, doomed.ID)
	require.NoError(t, err)

	rec := &recordingNotifier{}
	svc := NewCatalogService(db, NewGormItemRepository(db)).WithNotifier(rec)
	require.NoError(t, svc.DeleteItem(testCtx, doomed.ID))

	// Lines referencing the item are gone everywhere.
	linesA := cartLines(t, db, cartA.ID)
	require.Len(t, linesA, 1)
	assert.Equal(t, kept.ID, linesA[0].ItemID)
	assert.Empty(t, cartLines(t, db, cartB.ID))

	// Affected totals are repaired in the same transaction.
	assert.InDelta(t, 3, cartTotal(t, db, cartA.ID), 0.001)
	assert.InDelta(t, 0, cartTotal(t, db, cartB.ID), 0.001)

	var count int64
	require.NoError(t, db.Model(&domain.Item{}).Where("id = ?", doomed.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	require.Len(t, rec.topics, 1)
	assert.Equal(t, TopicItemDeleted, rec.topics[0])
}

func TestDeleteItemKeepsOrders(t *testing.T) {
	db := setupTestDB(t)
	vendor := seedVendor(t, db)
	_, cart := seedCustomer(t, db)
	item := seedItem(t, db, vendor.ID, 10, 20)

	carts := NewCartService(db)
	_, err := carts.AddItem(testCtx, cart.ID, item.ID)
	require.NoError(t, err)
	orders, err := NewCheckoutService(db).Checkout(testCtx, cart.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	svc := NewCatalogService(db, NewGormItemRepository(db))
	require.NoError(t, svc.DeleteItem(testCtx, item.ID))

	// Orders are append-only snapshots and survive catalog deletion.
	var order domain.Order
	require.NoError(t, db.First(&order, orders[0].ID).Error)
	assert.InDelta(t, 10, order.Price, 0.001)
}

// fakeEngine returns a canned ranked ID list, standing in for the external
// keyword index.
type fakeEngine struct {
	ids   []int64
	total int64
	err   error

	gotIndex string
	gotText  string
}

func (f *fakeEngine) Query(ctx context.Context, index, text string, page, pageSize int) ([]int64, int64, error) {
	f.gotIndex = index
	f.gotText = text
	return f.ids, f.total, f.err
}

func TestSearchItemsPreservesRankOrder(t *testing.T) {
	db := setupTestDB(t)
	vendor := seedVendor(t, db)
	first := seedItem(t, db, vendor.ID, 1, 5)
	second := seedItem(t, db, vendor.ID, 2, 5)
	third := seedItem(t, db, vendor.ID, 3, 5)

	// The engine ranks them opposite to their natural key order.
	engine := &fakeEngine{ids: []int64{third.ID, first.ID, second.ID}, total: 3}
	svc := NewCatalogService(db, NewGormItemRepository(db)).WithEngine(engine)

	rows, total, err := svc.SearchItems(testCtx, "gadget", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, rows, 3)
	assert.Equal(t, third.ID, rows[0].ID)
	assert.Equal(t, first.ID, rows[1].ID)
	assert.Equal(t, second.ID, rows[2].ID)
	assert.Equal(t, "mkt_item", engine.gotIndex)
	assert.Equal(t, "gadget", engine.gotText)
}

func TestSearchItemsStaleHits(t *testing.T) {
	db := setupTestDB(t)
	vendor := seedVendor(t, db)
	live := seedItem(t, db, vendor.ID, 1, 5)

	// The index may still reference a deleted item; the join drops it.
	engine := &fakeEngine{ids: []int64{987654, live.ID}, total: 2}
	svc := NewCatalogService(db, NewGormItemRepository(db)).WithEngine(engine)

	rows, total, err := svc.SearchItems(testCtx, "gadget", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 1)
	assert.Equal(t, live.ID, rows[0].ID)
}

func TestSearchItemsNoHits(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db, NewGormItemRepository(db)).WithEngine(&fakeEngine{})

	rows, total, err := svc.SearchItems(testCtx, "nothing", 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)
}

func TestSearchItemsWithoutEngine(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db, NewGormItemRepository(db))

	_, _, err := svc.SearchItems(testCtx, "anything", 1, 20)
	assert.Error(t, err)
}
