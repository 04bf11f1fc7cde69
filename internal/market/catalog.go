package market

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/talkincode/gomarket/internal/domain"
	"github.com/talkincode/gomarket/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SearchEngine is the external search collaborator: it scores free text
// against an index and returns ranked entity IDs plus a total hit count.
// An empty result set is a valid, non-error outcome.
type SearchEngine interface {
	Query(ctx context.Context, index, text string, page, pageSize int) ([]int64, int64, error)
}

var (
	errInvalidPrice = errors.New("item price must be positive")
	errInvalidStock = errors.New("item stock must not be negative")
)

// CatalogService handles vendor catalog actions and item search.
type CatalogService struct {
	db     *gorm.DB
	items  ItemRepository
	engine SearchEngine
	bus    Notifier
}

func NewCatalogService(db *gorm.DB, items ItemRepository) *CatalogService {
	return &CatalogService{db: db, items: items, bus: NopNotifier}
}

func (s *CatalogService) WithEngine(engine SearchEngine) *CatalogService {
	s.engine = engine
	return s
}

func (s *CatalogService) WithNotifier(bus Notifier) *CatalogService {
	s.bus = bus
	return s
}

// CreateItem lists a new item for the vendor.
func (s *CatalogService) CreateItem(ctx context.Context, item *domain.Item) error {
	item.Title = strings.TrimSpace(item.Title)
	if item.Price <= 0 {
		return errInvalidPrice
	}
	if item.Stock < 0 {
		return errInvalidStock
	}
	if item.ID == 0 {
		item.ID = common.UUIDint64()
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return translateDBError(err)
	}
	s.bus.Publish(TopicItemUpdated, *item)
	return nil
}

// UpdateItem saves vendor edits to title, description, price, stock, image.
// Carts holding the item are locked and their totals recomputed in the same
// transaction, a price edit must never leave a stale cart_price behind.
func (s *CatalogService) UpdateItem(ctx context.Context, item *domain.Item) error {
	if item.Price <= 0 {
		return errInvalidPrice
	}
	if item.Stock < 0 {
		return errInvalidStock
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts, err := lockCartsHolding(tx, item.ID)
		if err != nil {
			return err
		}
		if err := tx.Save(item).Error; err != nil {
			return translateDBError(err)
		}
		for _, cart := range carts {
			if err := recomputeTotal(tx, cart); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return translateDBError(err)
	}
	s.bus.Publish(TopicItemUpdated, *item)
	return nil
}

// lockCartsHolding locks every cart with a line for the item, in ascending
// cart ID order so concurrent catalog mutations cannot deadlock.
func lockCartsHolding(tx *gorm.DB, itemID int64) ([]*domain.Cart, error) {
	var cartIDs []int64
	err := tx.Model(&domain.CartItem{}).
		Distinct("cart_id").
		Where("item_id = ?", itemID).
		Order("cart_id ASC").
		Pluck("cart_id", &cartIDs).Error
	if err != nil {
		return nil, translateDBError(err)
	}
	sort.Slice(cartIDs, func(i, j int) bool { return cartIDs[i] < cartIDs[j] })

	carts := make([]*domain.Cart, 0, len(cartIDs))
	for _, cartID := range cartIDs {
		cart, err := lockCart(tx, cartID)
		if err != nil {
			return nil, err
		}
		carts = append(carts, cart)
	}
	return carts, nil
}

// ToggleFeature flips the homepage promotion flag and returns the new state.
func (s *CatalogService) ToggleFeature(ctx context.Context, itemID int64) (bool, error) {
	var featured bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item domain.Item
		if err := lockForUpdate(tx).First(&item, itemID).Error; err != nil {
			return translateDBError(err)
		}
		featured = !item.Featured
		err := tx.Model(&domain.Item{}).
			Where("id = ?", itemID).
			Update("featured", featured).Error
		return translateDBError(err)
	})
	if err != nil {
		return false, translateDBError(err)
	}
	return featured, nil
}

// DeleteItem removes an item from the catalog. Dependent cart lines are
// cascade-deleted and every affected cart total is recomputed in the same
// transaction; already-created orders keep their snapshots and are not
// touched.
func (s *CatalogService) DeleteItem(ctx context.Context, itemID int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item domain.Item
		if err := tx.First(&item, itemID).Error; err != nil {
			return translateDBError(err)
		}

		// Lock affected carts first, then drop the lines and repair totals.
		carts, err := lockCartsHolding(tx, itemID)
		if err != nil {
			return err
		}

		err = tx.Where("item_id = ?", itemID).Delete(&domain.CartItem{}).Error
		if err != nil {
			return translateDBError(err)
		}

		for _, cart := range carts {
			if err := recomputeTotal(tx, cart); err != nil {
				return err
			}
		}

		err = tx.Delete(&domain.Item{}, itemID).Error
		return translateDBError(err)
	})
	if err != nil {
		return translateDBError(err)
	}

	s.bus.Publish(TopicItemDeleted, itemID)
	zap.L().Info("catalog item deleted", zap.Int64("item_id", itemID))
	return nil
}

// SearchItems resolves a free text query through the search collaborator and
// rehydrates the catalog rows back into the engine's rank order.
func (s *CatalogService) SearchItems(ctx context.Context, text string, page, pageSize int) ([]domain.Item, int64, error) {
	if s.engine == nil {
		return nil, 0, errors.New("search engine not configured")
	}

	ids, total, err := s.engine.Query(ctx, domain.Item{}.SearchIndex(), text, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 || len(ids) == 0 {
		return nil, 0, nil
	}

	rows, err := s.items.ListByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	// Rank-preserving join: the database returns rows in natural key order,
	// re-sort them into the ID order the engine scored.
	rank := make(map[int64]int, len(ids))
	for pos, id := range ids {
		rank[id] = pos
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rank[rows[i].ID] < rank[rows[j].ID]
	})
	return rows, total, nil
}
