package market

import (
	"context"

	"github.com/talkincode/gomarket/internal/domain"
	"github.com/talkincode/gomarket/pkg/common"
	"gorm.io/gorm"
)

// ItemRepository interface for catalog item data access
type ItemRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Item, error)
	ListByVendor(ctx context.Context, vendorID int64, page, pageSize int) ([]domain.Item, int64, error)
	ListFeatured(ctx context.Context) ([]domain.Item, error)
	WalkAll(ctx context.Context, batch int, fn func(items []domain.Item) error) error
}

// CartRepository interface for cart data access
type CartRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Cart, error)
	GetByCustomer(ctx context.Context, customerID int64) (*domain.Cart, error)
	CreateForCustomer(ctx context.Context, customerID int64) (*domain.Cart, error)
	Lines(ctx context.Context, cartID int64) ([]domain.CartItem, error)
}

// OrderRepository interface for the order ledger
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByVendor(ctx context.Context, vendorID int64, page, pageSize int) ([]domain.Order, int64, error)
	ListByCustomer(ctx context.Context, customerID int64, page, pageSize int) ([]domain.Order, int64, error)
	Delete(ctx context.Context, id int64) error
}

// GormItemRepository is the GORM implementation of ItemRepository
type GormItemRepository struct {
	db *gorm.DB
}

func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	var item domain.Item
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &item, nil
}

func (r *GormItemRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.Item
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, translateDBError(err)
}

func (r *GormItemRepository) ListByVendor(ctx context.Context, vendorID int64, page, pageSize int) ([]domain.Item, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Item{}).Where("vendor_id = ?", vendorID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateDBError(err)
	}

	var items []domain.Item
	err := query.
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, translateDBError(err)
}

func (r *GormItemRepository) ListFeatured(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	err := r.db.WithContext(ctx).
		Where("featured = ?", true).
		Order("updated_at DESC").
		Find(&items).Error
	return items, translateDBError(err)
}

// WalkAll streams the catalog in primary key batches, used by full reindex.
func (r *GormItemRepository) WalkAll(ctx context.Context, batch int, fn func(items []domain.Item) error) error {
	if batch <= 0 {
		batch = 200
	}
	var lastID int64
	for {
		var items []domain.Item
		err := r.db.WithContext(ctx).
			Where("id > ?", lastID).
			Order("id ASC").
			Limit(batch).
			Find(&items).Error
		if err != nil {
			return translateDBError(err)
		}
		if len(items) == 0 {
			return nil
		}
		if err := fn(items); err != nil {
			return err
		}
		lastID = items[len(items)-1].ID
	}
}

// GormCartRepository is the GORM implementation of CartRepository
type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) GetByID(ctx context.Context, id int64) (*domain.Cart, error) {
	var cart domain.Cart
	if err := r.db.WithContext(ctx).First(&cart, id).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &cart, nil
}

func (r *GormCartRepository) GetByCustomer(ctx context.Context, customerID int64) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&cart).Error
	if err != nil {
		return nil, translateDBError(err)
	}
	return &cart, nil
}

// CreateForCustomer creates the customer's single cart at registration time.
func (r *GormCartRepository) CreateForCustomer(ctx context.Context, customerID int64) (*domain.Cart, error) {
	cart := domain.Cart{
		ID:         common.UUIDint64(),
		CustomerID: customerID,
		CartPrice:  0,
	}
	if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &cart, nil
}

func (r *GormCartRepository) Lines(ctx context.Context, cartID int64) ([]domain.CartItem, error) {
	var lines []domain.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&lines).Error
	return lines, translateDBError(err)
}

// GormOrderRepository is the GORM implementation of OrderRepository
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &order, nil
}

func (r *GormOrderRepository) ListByVendor(ctx context.Context, vendorID int64, page, pageSize int) ([]domain.Order, int64, error) {
	return r.list(ctx, "vendor_id = ?", vendorID, page, pageSize)
}

func (r *GormOrderRepository) ListByCustomer(ctx context.Context, customerID int64, page, pageSize int) ([]domain.Order, int64, error) {
	return r.list(ctx, "customer_id = ?", customerID, page, pageSize)
}

func (r *GormOrderRepository) list(ctx context.Context, cond string, arg int64, page, pageSize int) ([]domain.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Order{}).Where(cond, arg)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateDBError(err)
	}

	var orders []domain.Order
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	return orders, total, translateDBError(err)
}

// Delete removes a completed order, the vendor mark-complete action.
func (r *GormOrderRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&domain.Order{}, id)
	if result.Error != nil {
		return translateDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
