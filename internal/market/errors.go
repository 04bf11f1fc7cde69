package market

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound a referenced Item, Cart or Order does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrLineNotFound SetQuantity was called for an item with no cart line.
	// The cart is left untouched.
	ErrLineNotFound = errors.New("cart line not found")

	// ErrEmptyCart checkout was attempted on a cart with zero lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrConflict the transaction was aborted by a concurrent conflicting
	// write; the caller should retry the whole operation.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrDuplicateCheckout the same checkout request was already accepted.
	ErrDuplicateCheckout = errors.New("duplicate checkout request")
)

// InsufficientStockError reports the set of items whose cart quantity failed
// the stock check. The checkout was aborted with no side effects.
type InsufficientStockError struct {
	ItemIDs []int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for items %v", e.ItemIDs)
}

// translateDBError maps storage errors onto the package sentinels.
func translateDBError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isConflictError(err):
		return ErrConflict
	default:
		return err
	}
}

// isConflictError detects transaction aborts caused by concurrent writes.
// Postgres reports serialization failures and deadlocks with SQLSTATE
// 40001/40P01; SQLite surfaces lock contention as "database is locked".
func isConflictError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "40001") ||
		strings.Contains(msg, "40P01") ||
		strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "database is locked")
}
