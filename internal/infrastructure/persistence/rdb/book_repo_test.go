package rdb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/librarydesk/internal/domain/book"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/rdb/rdbtest"
)

func TestBookRepository_CreateDuplicateISBN(t *testing.T) {
	db := rdbtest.New(t)
	repo := rdb.NewBookRepository(db)
	ctx := context.Background()

	b := book.NewBook("9787115428028", "Go程序设计语言", "Donovan", "编程", 2, "", "", 1)
	require.NoError(t, repo.Create(ctx, b))
	assert.NotZero(t, b.ID)

	dup := book.NewBook("9787115428028", "另一本", "X", "编程", 1, "", "", 1)
	assert.ErrorIs(t, repo.Create(ctx, dup), book.ErrISBNDuplicate)
}

func TestBookRepository_UpdateKeepsQuantity(t *testing.T) {
	db := rdbtest.New(t)
	repo := rdb.NewBookRepository(db)
	ctx := context.Background()

	b := book.NewBook("9787115428028", "旧书名", "Donovan", "编程", 5, "", "", 1)
	require.NoError(t, repo.Create(ctx, b))

	b.Title = "新书名"
	b.Quantity = 99
	require.NoError(t, repo.Update(ctx, b))

	got, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "新书名", got.Title)
	assert.Equal(t, 5, got.Quantity)
}

func TestBookRepository_ListFilters(t *testing.T) {
	db := rdbtest.New(t)
	repo := rdb.NewBookRepository(db)
	ctx := context.Background()

	for _, b := range []*book.Book{
		book.NewBook("9780000000001", "Go语言实战", "Kennedy", "编程", 1, "", "", 1),
		book.NewBook("9780000000002", "Rust权威指南", "Klabnik", "编程", 3, "", "", 1),
		book.NewBook("9780000000003", "三体", "刘慈欣", "小说", 2, "", "", 1),
	} {
		require.NoError(t, repo.Create(ctx, b))
	}

	books, total, err := repo.List(ctx, book.ListParams{Page: 1, PageSize: 10, Category: "编程", SortBy: "quantity_desc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, books, 2)
	assert.Equal(t, "Rust权威指南", books[0].Title)

	books, total, err = repo.List(ctx, book.ListParams{Keyword: "刘慈欣"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "三体", books[0].Title)

	books, _, err = repo.List(ctx, book.ListParams{Page: 2, PageSize: 2, SortBy: "title_asc"})
	require.NoError(t, err)
	assert.Len(t, books, 1)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestBookRepository_SoftDelete(t *testing.T) {
	db := rdbtest.New(t)
	repo := rdb.NewBookRepository(db)
	ctx := context.Background()

	b := book.NewBook("9787115428028", "Go程序设计语言", "Donovan", "编程", 1, "", "", 1)
	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, repo.Delete(ctx, b.ID))

	_, err := repo.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), book.ErrBookNotFound)

	var raw int64
	require.NoError(t, db.Unscoped().Model(&rdb.BookModel{}).Where("id = ?", b.ID).Count(&raw).Error)
	assert.Equal(t, int64(1), raw)
}
