package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/librarydesk/internal/domain/book"
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
)

// Transactor 事务执行器(rdb.TxManager)
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// RestockBookUseCase 盘点调整库存(新购入、报损)
// 与借还共用同一个台账,调整后库存为负时拒绝
type RestockBookUseCase struct {
	tx     Transactor
	books  book.Repository
	ledger book.Ledger
	stats  StatsInvalidator
	log    *zap.Logger
}

// NewRestockBookUseCase 创建盘点用例
func NewRestockBookUseCase(tx Transactor, books book.Repository, ledger book.Ledger, stats StatsInvalidator, log *zap.Logger) *RestockBookUseCase {
	return &RestockBookUseCase{tx: tx, books: books, ledger: ledger, stats: stats, log: log}
}

// RestockBookRequest Delta为正表示入库,为负表示报损
type RestockBookRequest struct {
	BookID     uint
	Delta      int
	OperatorID uint
	Reason     string
}

func (uc *RestockBookUseCase) Execute(ctx context.Context, req RestockBookRequest) (*BookResponse, error) {
	var updated *book.Book
	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		// 1. 条件UPDATE调整库存
		if err := uc.ledger.Adjust(ctx, req.BookID, req.Delta); err != nil {
			return err
		}
		// 2. 读回调整后的数据
		b, err := uc.books.FindByID(ctx, req.BookID)
		if err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			err = apperrors.WrapDB(err, "库存调整失败")
		}
		return nil, err
	}

	invalidate(ctx, uc.stats, uc.log)
	uc.log.Info("库存已调整",
		zap.Uint("book_id", req.BookID),
		zap.Int("delta", req.Delta),
		zap.Int("quantity", updated.Quantity),
		zap.Uint("operator_id", req.OperatorID),
		zap.String("reason", req.Reason))
	return newBookResponse(updated), nil
}
