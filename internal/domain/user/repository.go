package user

import (
	"context"
)

// Repository 用户仓储接口
type Repository interface {
	// Create 创建用户,邮箱已存在返回ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 不存在返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 不存在返回ErrUserNotFound
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Update 更新用户信息
	Update(ctx context.Context, user *User) error

	// Delete 软删除
	Delete(ctx context.Context, id uint) error

	// List 分页查询
	List(ctx context.Context, params ListParams) ([]*User, int64, error)

	// CountMembers 非管理员用户数(仪表盘"会员总数")
	CountMembers(ctx context.Context) (int64, error)

	// LockByID SELECT ... FOR UPDATE锁定用户行,不存在返回ErrUserNotFound
	// 必须在事务内调用
	LockByID(ctx context.Context, id uint) (*User, error)
}

// ListParams 用户列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	Role     Role   // 空表示不过滤
	Keyword  string // 匹配姓名、邮箱
}
