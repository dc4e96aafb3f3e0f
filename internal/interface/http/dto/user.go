package dto

// RegisterRequest HTTP注册请求
type RegisterRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=50" example:"张三"`
	Email       string `json:"email" binding:"required,email" example:"zhangsan@lib.cn"`
	Password    string `json:"password" binding:"required,min=8,max=20" example:"secret123"`
	AdmissionID string `json:"admission_id" binding:"max=50" example:"2024001"`
}

// LoginRequest HTTP登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"zhangsan@lib.cn"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// CreateMemberRequest 管理员添加用户
type CreateMemberRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=50"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=20"`
	Role        string `json:"role" binding:"omitempty,oneof=admin librarian student" example:"student"`
	AdmissionID string `json:"admission_id" binding:"max=50"`
	EmployeeID  string `json:"employee_id" binding:"max=50"`
}

// ListMembersRequest 用户列表
type ListMembersRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Role     string `form:"role" binding:"omitempty,oneof=admin librarian student"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100"`
}
