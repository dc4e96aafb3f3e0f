package circulation

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xiebiao/librarydesk/internal/domain/book"
	"github.com/xiebiao/librarydesk/internal/domain/transaction"
	"github.com/xiebiao/librarydesk/internal/domain/user"
	"github.com/xiebiao/librarydesk/pkg/clock"
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
	"github.com/xiebiao/librarydesk/pkg/metrics"
	"github.com/xiebiao/librarydesk/pkg/tracing"
)

// IssueBookUseCase 借出图书
type IssueBookUseCase struct {
	tx        Transactor
	books     book.Repository
	ledger    book.Ledger
	txns      transaction.Repository
	members   MemberResolver
	numbers   transaction.NumberGenerator
	clock     clock.Clock
	policy    transaction.FinePolicy
	publisher EventPublisher
	stats     StatsInvalidator
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// NewIssueBookUseCase 创建借出用例
func NewIssueBookUseCase(
	tx Transactor,
	books book.Repository,
	ledger book.Ledger,
	txns transaction.Repository,
	members MemberResolver,
	numbers transaction.NumberGenerator,
	clk clock.Clock,
	policy transaction.FinePolicy,
	publisher EventPublisher,
	stats StatsInvalidator,
	m *metrics.Metrics,
	log *zap.Logger,
) *IssueBookUseCase {
	return &IssueBookUseCase{
		tx:        tx,
		books:     books,
		ledger:    ledger,
		txns:      txns,
		members:   members,
		numbers:   numbers,
		clock:     clk,
		policy:    policy,
		publisher: publisher,
		stats:     stats,
		metrics:   m,
		log:       log,
	}
}

// IssueBookRequest 借出请求
type IssueBookRequest struct {
	BookID   uint
	MemberID uint
	DueDate  time.Time
	IssuedBy uint // 办理借出的馆员(从JWT中提取)
}

// Execute 借出
//  1. 事务内: 锁定借阅人行 → 锁定图书行 → 检查可借副本 → 创建借阅记录 → 库存减1
//  2. 提交后: 指标、book.issued事件、清理统计缓存
//
// 两个请求同时借最后一本时,第二个请求在FOR UPDATE上等待,
// 拿到锁时quantity已为0,返回ErrOutOfStock。
// 删除图书/会员持有同一把行锁,借出等到删除提交后会得到NotFound。
// 加锁顺序固定为先借阅人后图书,删除只锁单行,不会形成死锁
func (uc *IssueBookUseCase) Execute(ctx context.Context, req IssueBookRequest) (resp *TransactionResponse, err error) {
	started := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "circulation.IssueBook", trace.WithAttributes(
		attribute.Int64("book.id", int64(req.BookID)),
		attribute.Int64("member.id", int64(req.MemberID)),
	))
	defer func() {
		tracing.End(span, err)
		uc.metrics.ObserveIssue(resultOf(err), time.Since(started))
	}()

	// 1. 参数校验
	if req.BookID == 0 || req.MemberID == 0 {
		return nil, apperrors.ErrInvalidParams
	}
	if req.DueDate.IsZero() {
		return nil, transaction.ErrInvalidDueDate
	}

	now := uc.clock.Now()
	txnNo, err := uc.numbers.Next(now)
	if err != nil {
		return nil, transaction.ErrTxnNoGenerate.WithErr(err)
	}

	// 2. 事务: 锁定 → 校验 → 记录 → 扣减
	var (
		txn    *transaction.Transaction
		b      *book.Book
		member *user.User
	)
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		member, err = uc.members.LockByID(ctx, req.MemberID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		b, err = uc.books.LockByID(ctx, req.BookID)
		if err != nil {
			return err
		}
		if !b.IsAvailable() {
			return book.ErrOutOfStock
		}

		txn, err = transaction.NewTransaction(txnNo, b.ID, member.ID, req.IssuedBy, now, req.DueDate)
		if err != nil {
			return err
		}
		if err := uc.txns.Create(ctx, txn); err != nil {
			return err
		}

		// 条件UPDATE兜底,不会把quantity减成负数
		return uc.ledger.Decrement(ctx, b.ID)
	})
	if err = normalizeTxError(err); err != nil {
		uc.log.Info("借出被拒绝",
			zap.Uint("book_id", req.BookID),
			zap.Uint("member_id", req.MemberID),
			zap.Error(err))
		return nil, err
	}

	// 3. 提交后的副作用
	uc.log.Info("图书已借出",
		zap.String("txn_no", txn.TxnNo),
		zap.Uint("book_id", b.ID),
		zap.Uint("member_id", member.ID),
		zap.Time("due_date", txn.DueDate))
	afterCommit(ctx, uc.publisher, uc.stats, uc.log, transaction.RoutingKeyIssued, transaction.NewIssuedEvent(txn, now))

	detail := &transaction.Detail{
		Transaction: *txn,
		BookTitle:   b.Title,
		BookISBN:    b.ISBN,
		MemberName:  member.Name,
		MemberEmail: member.Email,
	}
	return NewTransactionResponse(detail, uc.policy, now), nil
}

// afterCommit 发布事件并清理统计缓存,失败只记日志
func afterCommit(ctx context.Context, p EventPublisher, s StatsInvalidator, log *zap.Logger, routingKey string, event transaction.Event) {
	if err := p.Publish(ctx, routingKey, event); err != nil {
		log.Warn("借还事件发布失败",
			zap.String("routing_key", routingKey),
			zap.String("txn_no", event.TxnNo),
			zap.Error(err))
	}
	if err := s.Invalidate(ctx); err != nil {
		log.Warn("统计缓存清理失败", zap.Error(err))
	}
}
