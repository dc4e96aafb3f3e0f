package rdb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/librarydesk/internal/domain/book"
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
)

// inventoryLedger 库存台账
// 所有增减都是一条条件UPDATE: UPDATE books SET quantity = quantity + ? WHERE id = ? AND quantity + ? >= 0
// 条件不满足时影响0行,再查一次区分"图书不存在"和"库存不足"
type inventoryLedger struct {
	db *gorm.DB
}

// NewInventoryLedger 创建库存台账
func NewInventoryLedger(db *gorm.DB) book.Ledger {
	return &inventoryLedger{db: db}
}

func (l *inventoryLedger) Decrement(ctx context.Context, bookID uint) error {
	return l.apply(ctx, bookID, -1)
}

func (l *inventoryLedger) Increment(ctx context.Context, bookID uint) error {
	return l.apply(ctx, bookID, 1)
}

func (l *inventoryLedger) Adjust(ctx context.Context, bookID uint, delta int) error {
	if delta == 0 {
		return book.ErrInvalidDelta
	}
	return l.apply(ctx, bookID, delta)
}

func (l *inventoryLedger) Available(ctx context.Context, bookID uint) (int, error) {
	var model BookModel
	err := dbFrom(ctx, l.db).Select("id", "quantity").First(&model, bookID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, book.ErrBookNotFound
		}
		return 0, apperrors.WrapDB(err, "查询库存失败")
	}
	return model.Quantity, nil
}

func (l *inventoryLedger) apply(ctx context.Context, bookID uint, delta int) error {
	db := dbFrom(ctx, l.db)
	result := db.Model(&BookModel{}).
		Where("id = ?", bookID).
		Where("quantity + ? >= 0", delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "更新库存失败")
	}

	if result.RowsAffected == 0 {
		var model BookModel
		if err := db.Select("id").First(&model, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return book.ErrBookNotFound
			}
			return apperrors.WrapDB(err, "查询图书失败")
		}
		return book.ErrOutOfStock
	}
	return nil
}
