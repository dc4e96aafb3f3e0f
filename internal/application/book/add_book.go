package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/librarydesk/internal/domain/book"
)

// AddBookUseCase 馆员录入图书
type AddBookUseCase struct {
	bookService book.Service
	stats       StatsInvalidator
	log         *zap.Logger
}

// NewAddBookUseCase 创建录入用例
func NewAddBookUseCase(bookService book.Service, stats StatsInvalidator, log *zap.Logger) *AddBookUseCase {
	return &AddBookUseCase{bookService: bookService, stats: stats, log: log}
}

// AddBookRequest 录入请求DTO
type AddBookRequest struct {
	ISBN        string
	Title       string
	Author      string
	Category    string
	Quantity    int
	Publisher   string
	Description string
	AddedBy     uint // 从认证中间件获取
}

// Execute 执行录入
// ISBN格式、必填字段、库存非负和ISBN查重由领域服务校验
func (uc *AddBookUseCase) Execute(ctx context.Context, req AddBookRequest) (*BookResponse, error) {
	// 1. 创建实体
	b := book.NewBook(req.ISBN, req.Title, req.Author, req.Category, req.Quantity, req.Publisher, req.Description, req.AddedBy)

	// 2. 领域服务校验并持久化
	created, err := uc.bookService.AddBook(ctx, b)
	if err != nil {
		return nil, err
	}

	// 3. 图书种数变化
	invalidate(ctx, uc.stats, uc.log)

	uc.log.Info("图书录入成功",
		zap.Uint("book_id", created.ID),
		zap.String("isbn", created.ISBN),
		zap.Int("quantity", created.Quantity),
		zap.Uint("added_by", created.AddedBy))
	return newBookResponse(created), nil
}
