// Package book 图书管理用例(录入、查询、修改、删除、盘点)
package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/librarydesk/internal/domain/book"
)

const timeLayout = "2006-01-02 15:04:05"

// StatsInvalidator 图书种数变化后清理仪表盘统计缓存
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// BookResponse 图书响应DTO
type BookResponse struct {
	ID          uint   `json:"id"`
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Category    string `json:"category"`
	Quantity    int    `json:"quantity"` // 当前可借副本数
	Available   bool   `json:"available"`
	Publisher   string `json:"publisher"`
	Description string `json:"description,omitempty"`
	AddedBy     uint   `json:"added_by"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func newBookResponse(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Category:    b.Category,
		Quantity:    b.Quantity,
		Available:   b.IsAvailable(),
		Publisher:   b.Publisher,
		Description: b.Description,
		AddedBy:     b.AddedBy,
		CreatedAt:   b.CreatedAt.Format(timeLayout),
		UpdatedAt:   b.UpdatedAt.Format(timeLayout),
	}
}

// invalidate 清理缓存失败只记日志
func invalidate(ctx context.Context, stats StatsInvalidator, log *zap.Logger) {
	if stats == nil {
		return
	}
	if err := stats.Invalidate(ctx); err != nil {
		log.Warn("清理统计缓存失败", zap.Error(err))
	}
}
