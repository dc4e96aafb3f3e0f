// Package user 账号用例(注册、登录、登出、会员管理)
package user

import (
	"time"

	"github.com/xiebiao/librarydesk/internal/domain/user"
)

// UserInfo 用户信息DTO,不返回密码
type UserInfo struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AdmissionID string `json:"admission_id,omitempty"`
	EmployeeID  string `json:"employee_id,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func newUserInfo(u *user.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		AdmissionID: u.AdmissionID,
		EmployeeID:  u.EmployeeID,
		CreatedAt:   u.CreatedAt.Format(time.DateTime),
	}
}
