package dto

// DateLayout 应还日期格式
const DateLayout = "2006-01-02"

// IssueBookRequest 借出请求,due_date为空时按默认借期计算
type IssueBookRequest struct {
	BookID   uint   `json:"book_id" binding:"required" example:"1"`
	MemberID uint   `json:"member_id" binding:"required" example:"2"`
	DueDate  string `json:"due_date" binding:"omitempty,datetime=2006-01-02" example:"2024-01-15"`
}

// ListTransactionsRequest 借阅记录查询
type ListTransactionsRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	MemberID uint   `form:"member_id"`
	BookID   uint   `form:"book_id"`
	Status   string `form:"status" binding:"omitempty,oneof=issued returned"`
}

// MyHistoryRequest 我的借阅记录
type MyHistoryRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=issued returned"`
}
