package market

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/talkincode/gomarket/internal/domain"
	"github.com/talkincode/gomarket/pkg/common"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "market_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB) (*domain.User, *domain.Cart) {
	t.Helper()
	user := domain.User{
		ID:        common.UUIDint64(),
		Username:  "cust-" + common.RandomHex(4),
		Email:     common.RandomHex(6) + "@example.com",
		Firstname: "Ada",
		Lastname:  "Lovelace",
		Address:   "12 Analytical Engine Rd",
		Usertype:  domain.UserTypeCustomer,
		Status:    common.ENABLED,
	}
	require.NoError(t, db.Create(&user).Error)
	cart := domain.Cart{ID: common.UUIDint64(), CustomerID: user.ID}
	require.NoError(t, db.Create(&cart).Error)
	return &user, &cart
}

func seedVendor(t *testing.T, db *gorm.DB) *domain.User {
	t.Helper()
	user := domain.User{
		ID:       common.UUIDint64(),
		Username: "vend-" + common.RandomHex(4),
		Email:    common.RandomHex(6) + "@example.com",
		Usertype: domain.UserTypeVendor,
		Status:   common.ENABLED,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedItem(t *testing.T, db *gorm.DB, vendorID int64, price float64, stock int) *domain.Item {
	t.Helper()
	item := domain.Item{
		ID:       common.UUIDint64(),
		Title:    "item-" + common.RandomHex(4),
		Price:    price,
		Stock:    stock,
		VendorID: vendorID,
	}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

func cartTotal(t *testing.T, db *gorm.DB, cartID int64) float64 {
	t.Helper()
	var cart domain.Cart
	require.NoError(t, db.First(&cart, cartID).Error)
	return cart.CartPrice
}

func cartLines(t *testing.T, db *gorm.DB, cartID int64) []domain.CartItem {
	t.Helper()
	var lines []domain.CartItem
	require.NoError(t, db.Where("cart_id = ?", cartID).Order("id ASC").Find(&lines).Error)
	return lines
}

func itemStock(t *testing.T, db *gorm.DB, itemID int64) int {
	t.Helper()
	var item domain.Item
	require.NoError(t, db.First(&item, itemID).Error)
	return item.Stock
}

// recordingNotifier captures published topics for assertions.
type recordingNotifier struct {
	topics []string
	args   [][]interface{}
}

func (r *recordingNotifier) Publish(topic string, args ...interface{}) {
	r.topics = append(r.topics, topic)
	r.args = append(r.args, args)
}

var testCtx = context.Background()
