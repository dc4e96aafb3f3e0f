package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/librarydesk/internal/domain/book"
)

// GetBookUseCase 图书详情
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建详情用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookResponse, error) {
	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	return newBookResponse(b), nil
}

// UpdateBookUseCase 修改图书信息,库存只能通过借还和盘点变化
type UpdateBookUseCase struct {
	bookService book.Service
}

// NewUpdateBookUseCase 创建修改用例
func NewUpdateBookUseCase(bookService book.Service) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService}
}

// UpdateBookRequest 空字段表示不修改
type UpdateBookRequest struct {
	ID          uint
	Title       string
	Author      string
	Category    string
	Publisher   string
	Description string
}

func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookResponse, error) {
	b, err := uc.bookService.UpdateBookInfo(ctx, req.ID, book.Info{
		Title:       req.Title,
		Author:      req.Author,
		Category:    req.Category,
		Publisher:   req.Publisher,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}
	return newBookResponse(b), nil
}

// DeleteBookUseCase 删除图书,有未归还借阅时拒绝
type DeleteBookUseCase struct {
	bookService book.Service
	stats       StatsInvalidator
	log         *zap.Logger
}

// NewDeleteBookUseCase 创建删除用例
func NewDeleteBookUseCase(bookService book.Service, stats StatsInvalidator, log *zap.Logger) *DeleteBookUseCase {
	return &DeleteBookUseCase{bookService: bookService, stats: stats, log: log}
}

func (uc *DeleteBookUseCase) Execute(ctx context.Context, id, operatorID uint) error {
	if err := uc.bookService.DeleteBook(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, uc.stats, uc.log)
	uc.log.Info("图书已删除", zap.Uint("book_id", id), zap.Uint("operator_id", operatorID))
	return nil
}
