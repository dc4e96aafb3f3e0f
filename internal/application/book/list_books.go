package book

import (
	"context"

	"github.com/xiebiao/librarydesk/internal/domain/book"
)

// ListBooksUseCase 图书列表查询,支持分页、关键词、分类和排序
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService}
}

// ListBooksRequest 列表查询请求DTO
type ListBooksRequest struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 搜索书名、作者、ISBN
	Category string
	SortBy   string // title_asc | created_at_desc | quantity_desc
}

// BookListItem 列表项DTO(不含description)
type BookListItem struct {
	ID        uint   `json:"id"`
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Category  string `json:"category"`
	Quantity  int    `json:"quantity"`
	Available bool   `json:"available"`
	Publisher string `json:"publisher"`
	CreatedAt string `json:"created_at"`
}

// ListBooksResponse 列表查询响应DTO
type ListBooksResponse struct {
	List       []BookListItem `json:"list"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Execute 执行列表查询
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	page := max(req.Page, 1)
	size := req.PageSize
	switch {
	case size < 1:
		size = defaultPageSize
	case size > maxPageSize:
		size = maxPageSize
	}

	books, total, err := uc.bookService.ListBooks(ctx, book.ListParams{
		Page:     page,
		PageSize: size,
		Keyword:  req.Keyword,
		Category: req.Category,
		SortBy:   req.SortBy,
	})
	if err != nil {
		return nil, err
	}

	list := make([]BookListItem, 0, len(books))
	for _, b := range books {
		list = append(list, newBookListItem(b))
	}
	return &ListBooksResponse{
		List:       list,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

func newBookListItem(b *book.Book) BookListItem {
	return BookListItem{
		ID:        b.ID,
		ISBN:      b.ISBN,
		Title:     b.Title,
		Author:    b.Author,
		Category:  b.Category,
		Quantity:  b.Quantity,
		Available: b.IsAvailable(),
		Publisher: b.Publisher,
		CreatedAt: b.CreatedAt.Format(timeLayout),
	}
}
