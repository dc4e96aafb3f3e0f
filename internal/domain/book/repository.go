package book

import (
	"context"
)

// Repository 图书仓储接口
type Repository interface {
	// Create 创建图书,ISBN重复返回ErrISBNDuplicate
	Create(ctx context.Context, book *Book) error

	// FindByID 不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 不存在返回ErrBookNotFound
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// Update 更新图书信息,不修改quantity
	Update(ctx context.Context, book *Book) error

	// Delete 软删除
	Delete(ctx context.Context, id uint) error

	// List 分页查询图书列表
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// Count 图书种数
	Count(ctx context.Context) (int64, error)

	// LockByID SELECT ... FOR UPDATE锁定图书行
	// 必须在事务内调用,锁在事务提交或回滚时释放
	LockByID(ctx context.Context, id uint) (*Book, error)
}

// Ledger 库存台账,quantity的唯一写入方
// 每个方法都是单条条件UPDATE,不会把quantity改成负数
type Ledger interface {
	// Decrement quantity减1: WHERE quantity > 0
	// 图书不存在返回ErrBookNotFound,quantity已为0返回ErrOutOfStock
	Decrement(ctx context.Context, bookID uint) error

	// Increment quantity加1,不设上限;图书不存在返回ErrBookNotFound
	Increment(ctx context.Context, bookID uint) error

	// Adjust 管理员盘点调整: WHERE quantity + delta >= 0
	// 调整后为负返回ErrOutOfStock
	Adjust(ctx context.Context, bookID uint, delta int) error

	// Available 当前可借副本数
	Available(ctx context.Context, bookID uint) (int, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	Keyword  string // 匹配书名、作者、ISBN
	Category string
	SortBy   string // title_asc | created_at_desc | quantity_desc
}
