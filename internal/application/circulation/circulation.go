// Package circulation 借还用例
//
// 借出和归还各自在一个数据库事务内完成:
//  1. SELECT ... FOR UPDATE锁定借阅人行和图书行(借出)或借阅记录行(归还)
//  2. 校验业务规则
//  3. 写借阅记录 + 条件UPDATE库存
//  4. COMMIT
//
// 任何一步失败整体回滚。提交后再记录指标、发布事件、清理统计缓存,
// 这些步骤失败只记日志,不改变借还结果。
package circulation

import (
	"context"
	"time"

	"github.com/xiebiao/librarydesk/internal/domain/transaction"
	"github.com/xiebiao/librarydesk/internal/domain/user"
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
	"github.com/xiebiao/librarydesk/pkg/metrics"
)

const tracerName = "librarydesk/circulation"

// ErrMemberNotFound 借阅人不存在
var ErrMemberNotFound = apperrors.New(apperrors.ErrCodeUserNotFound, "借阅人不存在")

// Transactor 事务执行器(rdb.TxManager)
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MemberResolver 在事务内锁定借阅人(user.Repository)
// 与删除会员共用行锁,借出不会落在已删除的会员上
type MemberResolver interface {
	LockByID(ctx context.Context, id uint) (*user.User, error)
}

// EventPublisher 事件发布(messaging.Publisher)
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// StatsInvalidator 借还后清理仪表盘统计缓存
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// TransactionResponse 借阅记录响应
type TransactionResponse struct {
	ID          uint       `json:"id"`
	TxnNo       string     `json:"txn_no"`
	BookID      uint       `json:"book_id"`
	BookTitle   string     `json:"book_title,omitempty"`
	BookISBN    string     `json:"book_isbn,omitempty"`
	MemberID    uint       `json:"member_id"`
	MemberName  string     `json:"member_name,omitempty"`
	MemberEmail string     `json:"member_email,omitempty"`
	IssueDate   time.Time  `json:"issue_date"`
	DueDate     time.Time  `json:"due_date"`
	ReturnDate  *time.Time `json:"return_date,omitempty"`
	Status      string     `json:"status"`
	Fine        int64      `json:"fine"`
	Overdue     bool       `json:"overdue"`
	DaysOverdue int64      `json:"days_overdue"`
	AccruedFine int64      `json:"accrued_fine"` // 未归还记录按当前时间预估的罚金,不落库
	IssuedBy    uint       `json:"issued_by"`
	ReturnedBy  uint       `json:"returned_by,omitempty"`
}

// NewTransactionResponse 读模型 → 响应
func NewTransactionResponse(d *transaction.Detail, policy transaction.FinePolicy, now time.Time) *TransactionResponse {
	t := &d.Transaction
	return &TransactionResponse{
		ID:          t.ID,
		TxnNo:       t.TxnNo,
		BookID:      t.BookID,
		BookTitle:   d.BookTitle,
		BookISBN:    d.BookISBN,
		MemberID:    t.MemberID,
		MemberName:  d.MemberName,
		MemberEmail: d.MemberEmail,
		IssueDate:   t.IssueDate,
		DueDate:     t.DueDate,
		ReturnDate:  t.ReturnDate,
		Status:      string(t.Status),
		Fine:        t.Fine,
		Overdue:     t.IsOverdue(policy, now),
		DaysOverdue: t.DaysOverdue(policy, now),
		AccruedFine: t.AccruedFine(policy, now),
		IssuedBy:    t.IssuedBy,
		ReturnedBy:  t.ReturnedBy,
	}
}

// resultOf 指标结果标签
func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case apperrors.IsInfrastructure(err):
		return metrics.ResultError
	default:
		return metrics.ResultRejected
	}
}

// normalizeTxError 事务执行器本身的错误(BEGIN/COMMIT失败)统一包装为数据库错误
func normalizeTxError(err error) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}
	return apperrors.WrapDB(err, "借还事务执行失败")
}
