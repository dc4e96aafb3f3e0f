package book_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookapp "github.com/xiebiao/librarydesk/internal/application/book"
	"github.com/xiebiao/librarydesk/internal/domain/book"
	"github.com/xiebiao/librarydesk/internal/domain/transaction"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/rdb/rdbtest"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

type suite struct {
	books   book.Repository
	txns    transaction.Repository
	stats   *countingInvalidator
	add     *bookapp.AddBookUseCase
	get     *bookapp.GetBookUseCase
	list    *bookapp.ListBooksUseCase
	update  *bookapp.UpdateBookUseCase
	del     *bookapp.DeleteBookUseCase
	restock *bookapp.RestockBookUseCase
}

func newSuite(t *testing.T) *suite {
	t.Helper()
	db := rdbtest.New(t)
	s := &suite{
		books: rdb.NewBookRepository(db),
		txns:  rdb.NewTransactionRepository(db),
		stats: &countingInvalidator{},
	}
	svc := book.NewService(s.books, s.txns, rdb.NewTxManager(db))
	log := zap.NewNop()
	s.add = bookapp.NewAddBookUseCase(svc, s.stats, log)
	s.get = bookapp.NewGetBookUseCase(svc)
	s.list = bookapp.NewListBooksUseCase(svc)
	s.update = bookapp.NewUpdateBookUseCase(svc)
	s.del = bookapp.NewDeleteBookUseCase(svc, s.stats, log)
	s.restock = bookapp.NewRestockBookUseCase(rdb.NewTxManager(db), s.books, rdb.NewInventoryLedger(db), s.stats, log)
	return s
}

func (s *suite) addBook(t *testing.T, isbn, title, category string, quantity int) *bookapp.BookResponse {
	t.Helper()
	resp, err := s.add.Execute(context.Background(), bookapp.AddBookRequest{
		ISBN: isbn, Title: title, Author: "佚名", Category: category, Quantity: quantity, AddedBy: 1,
	})
	require.NoError(t, err)
	return resp
}

func TestAddBook(t *testing.T) {
	s := newSuite(t)
	resp := s.addBook(t, "9787544253994", "百年孤独", "小说", 3)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, 3, resp.Quantity)
	assert.True(t, resp.Available)
	assert.Equal(t, 1, s.stats.calls)

	_, err := s.add.Execute(context.Background(), bookapp.AddBookRequest{
		ISBN: "9787544253994", Title: "重复", Author: "A", Category: "小说", Quantity: 1,
	})
	assert.ErrorIs(t, err, book.ErrISBNDuplicate)
	assert.Equal(t, 1, s.stats.calls)
}

func TestListBooks_PaginationAndFilter(t *testing.T) {
	s := newSuite(t)
	s.addBook(t, "9787544253994", "百年孤独", "小说", 3)
	s.addBook(t, "9787020008728", "红楼梦", "小说", 1)
	s.addBook(t, "9787020024759", "唐诗三百首", "诗歌", 0)

	resp, err := s.list.Execute(context.Background(), bookapp.ListBooksRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Len(t, resp.List, 2)
	assert.Equal(t, 2, resp.TotalPages)

	novels, err := s.list.Execute(context.Background(), bookapp.ListBooksRequest{Category: "小说"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), novels.Total)
	assert.Equal(t, 20, novels.PageSize)

	poems, err := s.list.Execute(context.Background(), bookapp.ListBooksRequest{Keyword: "唐诗"})
	require.NoError(t, err)
	require.Len(t, poems.List, 1)
	assert.False(t, poems.List[0].Available)
}

func TestUpdateBook(t *testing.T) {
	s := newSuite(t)
	created := s.addBook(t, "9787544253994", "百年孤独", "小说", 3)

	resp, err := s.update.Execute(context.Background(), bookapp.UpdateBookRequest{ID: created.ID, Title: "百年孤独(精装)"})
	require.NoError(t, err)
	assert.Equal(t, "百年孤独(精装)", resp.Title)
	assert.Equal(t, "小说", resp.Category)
	assert.Equal(t, 3, resp.Quantity)

	_, err = s.update.Execute(context.Background(), bookapp.UpdateBookRequest{ID: 999, Title: "X"})
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestDeleteBook_RefusedWhileOnLoan(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	created := s.addBook(t, "9787544253994", "百年孤独", "小说", 3)

	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	txn, err := transaction.NewTransaction("T1", created.ID, 2, 1, now, now.AddDate(0, 0, 14))
	require.NoError(t, err)
	require.NoError(t, s.txns.Create(ctx, txn))

	assert.ErrorIs(t, s.del.Execute(ctx, created.ID, 1), book.ErrBookOnLoan)

	require.NoError(t, txn.MarkReturned(now.AddDate(0, 0, 3), 0, 1))
	require.NoError(t, s.txns.MarkReturned(ctx, txn))
	require.NoError(t, s.del.Execute(ctx, created.ID, 1))

	_, err = s.get.Execute(ctx, created.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestRestockBook(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	created := s.addBook(t, "9787544253994", "百年孤独", "小说", 2)

	resp, err := s.restock.Execute(ctx, bookapp.RestockBookRequest{BookID: created.ID, Delta: 3, OperatorID: 1, Reason: "新购"})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Quantity)

	resp, err = s.restock.Execute(ctx, bookapp.RestockBookRequest{BookID: created.ID, Delta: -5, OperatorID: 1, Reason: "报损"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Quantity)
	assert.False(t, resp.Available)

	_, err = s.restock.Execute(ctx, bookapp.RestockBookRequest{BookID: created.ID, Delta: -1})
	assert.ErrorIs(t, err, book.ErrOutOfStock)

	_, err = s.restock.Execute(ctx, bookapp.RestockBookRequest{BookID: created.ID, Delta: 0})
	assert.ErrorIs(t, err, book.ErrInvalidDelta)

	_, err = s.restock.Execute(ctx, bookapp.RestockBookRequest{BookID: 999, Delta: 1})
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	got, err := s.get.Execute(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}
