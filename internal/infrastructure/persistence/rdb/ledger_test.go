package rdb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/librarydesk/internal/domain/book"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/rdb/rdbtest"
)

func seedBook(t *testing.T, db *gorm.DB, isbn string, quantity int) *book.Book {
	t.Helper()
	b := book.NewBook(isbn, "深入理解计算机系统", "Bryant", "计算机", quantity, "机械工业出版社", "", 1)
	require.NoError(t, rdb.NewBookRepository(db).Create(context.Background(), b))
	return b
}

func TestLedger_DecrementStopsAtZero(t *testing.T) {
	db := rdbtest.New(t)
	ctx := context.Background()
	ledger := rdb.NewInventoryLedger(db)
	b := seedBook(t, db, "9787111544937", 2)

	require.NoError(t, ledger.Decrement(ctx, b.ID))
	require.NoError(t, ledger.Decrement(ctx, b.ID))
	assert.ErrorIs(t, ledger.Decrement(ctx, b.ID), book.ErrOutOfStock)

	n, err := ledger.Available(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLedger_MissingBook(t *testing.T) {
	db := rdbtest.New(t)
	ctx := context.Background()
	ledger := rdb.NewInventoryLedger(db)

	assert.ErrorIs(t, ledger.Decrement(ctx, 404), book.ErrBookNotFound)
	assert.ErrorIs(t, ledger.Increment(ctx, 404), book.ErrBookNotFound)
	_, err := ledger.Available(ctx, 404)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestLedger_IncrementUnbounded(t *testing.T) {
	db := rdbtest.New(t)
	ctx := context.Background()
	ledger := rdb.NewInventoryLedger(db)
	b := seedBook(t, db, "9787111544937", 1)

	for i := 0; i < 3; i++ {
		require.NoError(t, ledger.Increment(ctx, b.ID))
	}
	n, err := ledger.Available(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestLedger_Adjust(t *testing.T) {
	db := rdbtest.New(t)
	ctx := context.Background()
	ledger := rdb.NewInventoryLedger(db)
	b := seedBook(t, db, "9787111544937", 3)

	assert.ErrorIs(t, ledger.Adjust(ctx, b.ID, 0), book.ErrInvalidDelta)
	assert.ErrorIs(t, ledger.Adjust(ctx, b.ID, -4), book.ErrOutOfStock)

	require.NoError(t, ledger.Adjust(ctx, b.ID, 5))
	require.NoError(t, ledger.Adjust(ctx, b.ID, -8))

	n, err := ledger.Available(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLedger_RollbackWithTransaction(t *testing.T) {
	db := rdbtest.New(t)
	ctx := context.Background()
	ledger := rdb.NewInventoryLedger(db)
	txm := rdb.NewTxManager(db)
	b := seedBook(t, db, "9787111544937", 1)

	err := txm.Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, ledger.Decrement(ctx, b.ID))
		return book.ErrBookOnLoan
	})
	assert.ErrorIs(t, err, book.ErrBookOnLoan)

	n, err := ledger.Available(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
