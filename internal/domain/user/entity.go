package user

import (
	"strings"
	"time"
)

// Role 用户角色
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
	RoleStudent   Role = "student"
)

// IsValid 是否为已知角色
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleLibrarian, RoleStudent:
		return true
	}
	return false
}

// IsStaff 馆员或管理员,可以办理借还
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleLibrarian
}

// User 用户实体(聚合根)
// 学生是借阅人(member),馆员和管理员是操作人
// 密码只保存bcrypt哈希
type User struct {
	ID          uint
	Name        string
	Email       string
	Password    string // bcrypt哈希值
	Role        Role
	AdmissionID string // 学生学号
	EmployeeID  string // 馆员工号
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewUser 创建新用户(工厂方法),角色为空时默认为学生
func NewUser(name, email, hashedPassword string, role Role) *User {
	if role == "" {
		role = RoleStudent
	}
	now := time.Now()
	return &User{
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  hashedPassword,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsStaff 是否为馆员或管理员
func (u *User) IsStaff() bool {
	return u.Role.IsStaff()
}
