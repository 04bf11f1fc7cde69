package market

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateDBError(t *testing.T) {
	assert.NoError(t, translateDBError(nil))
	assert.ErrorIs(t, translateDBError(gorm.ErrRecordNotFound), ErrNotFound)

	// Representative serialization failures from both supported dialects.
	conflicts := []string{
		"ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)",
		"ERROR: deadlock detected (SQLSTATE 40P01)",
		"database is locked",
	}
	for _, msg := range conflicts {
		assert.ErrorIs(t, translateDBError(errors.New(msg)), ErrConflict, msg)
	}

	// Anything else passes through untouched.
	plain := errors.New("syntax error near SELECT")
	assert.Equal(t, plain, translateDBError(plain))

	sentinel := &InsufficientStockError{ItemIDs: []int64{1}}
	assert.Equal(t, error(sentinel), translateDBError(sentinel))
}
