package market

import (
	"context"
	"sort"
	"time"

	"github.com/talkincode/gomarket/internal/domain"
	"github.com/talkincode/gomarket/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Mailer sends the order confirmation after a successful checkout.
// Failures are logged and never fail the checkout.
type Mailer interface {
	SendOrderConfirmation(to string, orders []domain.Order) error
}

// CheckoutService converts a customer's cart lines into immutable orders and
// decrements item stock under a single all-or-nothing transaction.
type CheckoutService struct {
	db     *gorm.DB
	guard  IdempotencyGuard
	mailer Mailer
	bus    Notifier
}

func NewCheckoutService(db *gorm.DB) *CheckoutService {
	return &CheckoutService{db: db, bus: NopNotifier}
}

// WithGuard installs an optional double-submit guard.
func (s *CheckoutService) WithGuard(guard IdempotencyGuard) *CheckoutService {
	s.guard = guard
	return s
}

// WithMailer installs an optional confirmation mailer.
func (s *CheckoutService) WithMailer(mailer Mailer) *CheckoutService {
	s.mailer = mailer
	return s
}

// WithNotifier installs the post-commit event publisher.
func (s *CheckoutService) WithNotifier(bus Notifier) *CheckoutService {
	s.bus = bus
	return s
}

// Checkout validates every cart line against current stock and, if all pass,
// atomically creates one order per line, decrements stock and empties the
// cart. On any failure the durable state is unchanged from before the call.
//
// A line fails validation when its quantity is greater than or equal to the
// item's stock; a purchase that would exactly exhaust stock is rejected.
// That boundary is kept bug-compatible with the historical behavior, see
// the open question in DESIGN.md before changing it.
func (s *CheckoutService) Checkout(ctx context.Context, cartID int64) ([]domain.Order, error) {
	if s.guard != nil {
		ok, err := s.guard.Acquire(ctx, cartID)
		if err != nil {
			zap.L().Warn("checkout idempotency guard unavailable",
				zap.Int64("cart_id", cartID), zap.Error(err))
		} else if !ok {
			return nil, ErrDuplicateCheckout
		}
	}

	var orders []domain.Order
	var touched []domain.Item

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := lockCart(tx, cartID)
		if err != nil {
			return err
		}

		var customer domain.User
		if err := tx.First(&customer, cart.CustomerID).Error; err != nil {
			return translateDBError(err)
		}

		var lines []domain.CartItem
		err = tx.Where("cart_id = ?", cartID).Order("item_id ASC").Find(&lines).Error
		if err != nil {
			return translateDBError(err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		// Lock the touched items in ascending ID order so two concurrent
		// checkouts over overlapping carts cannot deadlock, and re-read
		// stock inside the lock scope.
		itemIDs := make([]int64, 0, len(lines))
		for _, line := range lines {
			itemIDs = append(itemIDs, line.ItemID)
		}
		sort.Slice(itemIDs, func(i, j int) bool { return itemIDs[i] < itemIDs[j] })

		var items []domain.Item
		err = lockForUpdate(tx).
			Where("id IN ?", itemIDs).
			Order("id ASC").
			Find(&items).Error
		if err != nil {
			return translateDBError(err)
		}

		byID := make(map[int64]*domain.Item, len(items))
		for i := range items {
			byID[items[i].ID] = &items[i]
		}

		var offending []int64
		for _, line := range lines {
			item, okItem := byID[line.ItemID]
			if !okItem {
				return ErrNotFound
			}
			if line.Quantity >= item.Stock {
				offending = append(offending, item.ID)
			}
		}
		if len(offending) > 0 {
			return &InsufficientStockError{ItemIDs: offending}
		}

		now := time.Now()
		for _, line := range lines {
			item := byID[line.ItemID]
			order := domain.Order{
				ID:         common.UUIDint64(),
				Name:       customer.Fullname(),
				Address:    customer.Address,
				Quantity:   line.Quantity,
				Price:      float64(line.Quantity) * item.Price,
				ItemID:     item.ID,
				CustomerID: customer.ID,
				VendorID:   item.VendorID,
				CreatedAt:  now,
			}
			if err := tx.Create(&order).Error; err != nil {
				return translateDBError(err)
			}

			err = tx.Model(&domain.Item{}).
				Where("id = ?", item.ID).
				Update("stock", gorm.Expr("stock - ?", line.Quantity)).Error
			if err != nil {
				return translateDBError(err)
			}
			item.Stock -= line.Quantity

			if err := tx.Delete(&domain.CartItem{}, line.ID).Error; err != nil {
				return translateDBError(err)
			}

			orders = append(orders, order)
		}

		for _, item := range items {
			touched = append(touched, item)
		}

		// All lines are gone; the recompute settles cart_price to zero.
		return recomputeTotal(tx, cart)
	})
	if err != nil {
		if s.guard != nil {
			s.guard.Release(ctx, cartID)
		}
		return nil, translateDBError(err)
	}

	for _, item := range touched {
		s.bus.Publish(TopicItemUpdated, item)
	}
	s.bus.Publish(TopicCheckout, orders)

	zap.L().Info("checkout completed",
		zap.Int64("cart_id", cartID),
		zap.Int("orders", len(orders)))

	if s.mailer != nil {
		go s.sendConfirmation(cartID, orders)
	}
	return orders, nil
}

func (s *CheckoutService) sendConfirmation(cartID int64, orders []domain.Order) {
	var cart domain.Cart
	if err := s.db.First(&cart, cartID).Error; err != nil {
		return
	}
	var customer domain.User
	if err := s.db.First(&customer, cart.CustomerID).Error; err != nil {
		return
	}
	if err := s.mailer.SendOrderConfirmation(customer.Email, orders); err != nil {
		zap.L().Warn("order confirmation mail failed",
			zap.String("email", customer.Email),
			zap.Error(err))
	}
}
