package circulation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xiebiao/librarydesk/internal/domain/book"
	"github.com/xiebiao/librarydesk/internal/domain/transaction"
	"github.com/xiebiao/librarydesk/pkg/clock"
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
	"github.com/xiebiao/librarydesk/pkg/metrics"
	"github.com/xiebiao/librarydesk/pkg/tracing"
)

// ReturnBookUseCase 归还图书
type ReturnBookUseCase struct {
	tx        Transactor
	ledger    book.Ledger
	txns      transaction.Repository
	clock     clock.Clock
	policy    transaction.FinePolicy
	publisher EventPublisher
	stats     StatsInvalidator
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// NewReturnBookUseCase 创建归还用例
func NewReturnBookUseCase(
	tx Transactor,
	ledger book.Ledger,
	txns transaction.Repository,
	clk clock.Clock,
	policy transaction.FinePolicy,
	publisher EventPublisher,
	stats StatsInvalidator,
	m *metrics.Metrics,
	log *zap.Logger,
) *ReturnBookUseCase {
	return &ReturnBookUseCase{
		tx:        tx,
		ledger:    ledger,
		txns:      txns,
		clock:     clk,
		policy:    policy,
		publisher: publisher,
		stats:     stats,
		metrics:   m,
		log:       log,
	}
}

// ReturnBookRequest 归还请求
type ReturnBookRequest struct {
	TransactionID uint
	ReturnedBy    uint // 办理归还的馆员(从JWT中提取)
}

// Execute 归还
//  1. 事务内: 锁定借阅记录 → 已归还则拒绝 → 按归还时刻计算罚金 → 条件更新状态 → 库存加1
//  2. 提交后: 指标、book.returned事件、清理统计缓存
//
// 同一记录并发归还时,后到的请求拿到锁后看到status=returned,返回ErrAlreadyReturned,库存只加一次
func (uc *ReturnBookUseCase) Execute(ctx context.Context, req ReturnBookRequest) (resp *TransactionResponse, err error) {
	started := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "circulation.ReturnBook", trace.WithAttributes(
		attribute.Int64("transaction.id", int64(req.TransactionID)),
	))

	var txn *transaction.Transaction
	defer func() {
		tracing.End(span, err)
		var fine int64
		if err == nil && txn != nil {
			fine = txn.Fine
		}
		uc.metrics.ObserveReturn(resultOf(err), fine, time.Since(started))
	}()

	if req.TransactionID == 0 {
		return nil, apperrors.ErrInvalidParams
	}

	now := uc.clock.Now()
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		txn, err = uc.txns.LockByID(ctx, req.TransactionID)
		if err != nil {
			return err
		}

		fine := uc.policy.Calculate(txn.DueDate, now)
		if err := txn.MarkReturned(now, fine, req.ReturnedBy); err != nil {
			return err
		}
		if err := uc.txns.MarkReturned(ctx, txn); err != nil {
			return err
		}
		return uc.ledger.Increment(ctx, txn.BookID)
	})
	if err = normalizeTxError(err); err != nil {
		uc.log.Info("归还被拒绝", zap.Uint("transaction_id", req.TransactionID), zap.Error(err))
		return nil, err
	}

	uc.log.Info("图书已归还",
		zap.String("txn_no", txn.TxnNo),
		zap.Uint("book_id", txn.BookID),
		zap.Uint("member_id", txn.MemberID),
		zap.Int64("fine", txn.Fine))
	afterCommit(ctx, uc.publisher, uc.stats, uc.log, transaction.RoutingKeyReturned, transaction.NewReturnedEvent(txn, now))

	// 响应附带书名和借阅人,查询失败时返回不带名称的记录
	detail, derr := uc.txns.FindDetailByID(ctx, txn.ID)
	if derr != nil {
		uc.log.Warn("查询借阅详情失败", zap.Uint("transaction_id", txn.ID), zap.Error(derr))
		detail = &transaction.Detail{Transaction: *txn}
	}
	return NewTransactionResponse(detail, uc.policy, now), nil
}
