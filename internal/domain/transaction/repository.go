package transaction

import (
	"context"
	"time"
)

// Repository 借阅记录仓储接口
// 写操作必须在事务内调用(通过context传递事务DB)
type Repository interface {
	// Create 创建借阅记录,回填ID
	Create(ctx context.Context, txn *Transaction) error

	// FindByID 不存在返回ErrTransactionNotFound
	FindByID(ctx context.Context, id uint) (*Transaction, error)

	// LockByID SELECT ... FOR UPDATE锁定记录,用于归还
	LockByID(ctx context.Context, id uint) (*Transaction, error)

	// MarkReturned 条件更新: WHERE id = ? AND status = 'issued'
	// 0行受影响时,记录不存在返回ErrTransactionNotFound,否则返回ErrAlreadyReturned
	MarkReturned(ctx context.Context, txn *Transaction) error

	// List 分页查询,带图书和会员信息
	List(ctx context.Context, params ListParams) ([]*Detail, int64, error)

	// FindDetailByID 单条记录详情
	FindDetailByID(ctx context.Context, id uint) (*Detail, error)

	// CountByStatus 按状态计数
	CountByStatus(ctx context.Context, status Status) (int64, error)

	// CountReturnedSince 统计since之后归还的记录数
	CountReturnedSince(ctx context.Context, since time.Time) (int64, error)

	// CountOverdue 借出中且应还日早于before的记录数
	CountOverdue(ctx context.Context, before time.Time) (int64, error)

	// CountIssuedByBook 某本书借出未还的副本数
	CountIssuedByBook(ctx context.Context, bookID uint) (int64, error)

	// CountIssuedByMember 某会员借出未还的记录数
	CountIssuedByMember(ctx context.Context, memberID uint) (int64, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	MemberID uint   // 0表示不过滤
	BookID   uint   // 0表示不过滤
	Status   Status // 空表示不过滤
}

// Detail 借阅记录读模型,附带图书书名与会员信息(用于列表展示)
type Detail struct {
	Transaction
	BookTitle   string
	BookISBN    string
	MemberName  string
	MemberEmail string
}
