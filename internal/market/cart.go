package market

import (
	"context"
	"errors"

	"github.com/talkincode/gomarket/internal/domain"
	"github.com/talkincode/gomarket/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartService owns every cart mutation. Each operation runs in a single
// database transaction that locks the cart row first, so concurrent
// mutations against the same cart are serialized and the denormalized
// cart_price column is never observable in a stale state.
type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// CartLineView is a cart line hydrated with its catalog item.
type CartLineView struct {
	Line domain.CartItem `json:"line"`
	Item domain.Item     `json:"item"`
}

// CartView is a cart with all lines, returned to the web layer.
type CartView struct {
	Cart  domain.Cart    `json:"cart"`
	Lines []CartLineView `json:"lines"`
}

// lockForUpdate applies a FOR UPDATE row lock on databases that support it.
// SQLite serializes writers on its own and rejects the clause.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// lockCart loads and locks the cart row, establishing the per-cart
// mutual exclusion scope for the rest of the transaction.
func lockCart(tx *gorm.DB, cartID int64) (*domain.Cart, error) {
	var cart domain.Cart
	if err := lockForUpdate(tx).First(&cart, cartID).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &cart, nil
}

// recomputeTotal recalculates cart_price from the current lines and writes
// it back. Must be called inside the same transaction as the mutation.
func recomputeTotal(tx *gorm.DB, cart *domain.Cart) error {
	var total float64
	err := tx.Model(&domain.CartItem{}).
		Select("COALESCE(SUM(mkt_cart_item.quantity * mkt_item.price), 0)").
		Joins("JOIN mkt_item ON mkt_item.id = mkt_cart_item.item_id").
		Where("mkt_cart_item.cart_id = ?", cart.ID).
		Scan(&total).Error
	if err != nil {
		return translateDBError(err)
	}
	cart.CartPrice = total
	err = tx.Model(&domain.Cart{}).
		Where("id = ?", cart.ID).
		Update("cart_price", total).Error
	return translateDBError(err)
}

// AddItem merges the item into the cart: an existing line gains quantity 1,
// otherwise a new line with quantity 1 is created. Stock is deliberately not
// checked here; stock is enforced only at checkout.
func (s *CartService) AddItem(ctx context.Context, cartID, itemID int64) (*domain.Cart, error) {
	var out *domain.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := lockCart(tx, cartID)
		if err != nil {
			return err
		}

		var item domain.Item
		if err := tx.First(&item, itemID).Error; err != nil {
			return translateDBError(err)
		}

		var line domain.CartItem
		err = tx.Where("cart_id = ? AND item_id = ?", cartID, itemID).First(&line).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			line = domain.CartItem{
				ID:       common.UUIDint64(),
				CartID:   cartID,
				ItemID:   itemID,
				Quantity: 1,
			}
			if err := tx.Create(&line).Error; err != nil {
				return translateDBError(err)
			}
		case err != nil:
			return translateDBError(err)
		default:
			err = tx.Model(&domain.CartItem{}).
				Where("id = ?", line.ID).
				Update("quantity", gorm.Expr("quantity + 1")).Error
			if err != nil {
				return translateDBError(err)
			}
		}

		if err := recomputeTotal(tx, cart); err != nil {
			return err
		}
		out = cart
		return nil
	})
	if err != nil {
		return nil, translateDBError(err)
	}
	zap.L().Debug("cart item added",
		zap.Int64("cart_id", cartID),
		zap.Int64("item_id", itemID),
		zap.Float64("cart_price", out.CartPrice))
	return out, nil
}

// SetQuantity sets the line quantity directly. A quantity of zero or less is
// equivalent to RemoveItem. A missing line reports ErrLineNotFound and
// leaves the cart untouched.
func (s *CartService) SetQuantity(ctx context.Context, cartID, itemID int64, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, cartID, itemID)
	}

	var out *domain.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := lockCart(tx, cartID)
		if err != nil {
			return err
		}

		var line domain.CartItem
		err = tx.Where("cart_id = ? AND item_id = ?", cartID, itemID).First(&line).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLineNotFound
		}
		if err != nil {
			return translateDBError(err)
		}

		err = tx.Model(&domain.CartItem{}).
			Where("id = ?", line.ID).
			Update("quantity", quantity).Error
		if err != nil {
			return translateDBError(err)
		}

		if err := recomputeTotal(tx, cart); err != nil {
			return err
		}
		out = cart
		return nil
	})
	if err != nil {
		return nil, translateDBError(err)
	}
	return out, nil
}

// RemoveItem deletes the line for the item if present. Removing an item not
// in the cart is a success, the operation is idempotent.
func (s *CartService) RemoveItem(ctx context.Context, cartID, itemID int64) (*domain.Cart, error) {
	var out *domain.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := lockCart(tx, cartID)
		if err != nil {
			return err
		}

		err = tx.Where("cart_id = ? AND item_id = ?", cartID, itemID).
			Delete(&domain.CartItem{}).Error
		if err != nil {
			return translateDBError(err)
		}

		if err := recomputeTotal(tx, cart); err != nil {
			return err
		}
		out = cart
		return nil
	})
	if err != nil {
		return nil, translateDBError(err)
	}
	return out, nil
}

// View returns the cart with all lines hydrated from the catalog.
func (s *CartService) View(ctx context.Context, cartID int64) (*CartView, error) {
	var cart domain.Cart
	if err := s.db.WithContext(ctx).First(&cart, cartID).Error; err != nil {
		return nil, translateDBError(err)
	}

	var lines []domain.CartItem
	err := s.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, translateDBError(err)
	}

	view := &CartView{Cart: cart, Lines: make([]CartLineView, 0, len(lines))}
	for _, line := range lines {
		var item domain.Item
		if err := s.db.WithContext(ctx).First(&item, line.ItemID).Error; err != nil {
			return nil, translateDBError(err)
		}
		view.Lines = append(view.Lines, CartLineView{Line: line, Item: item})
	}
	return view, nil
}
