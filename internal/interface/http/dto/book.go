package dto

// AddBookRequest HTTP录入图书请求
// ISBN格式由领域服务校验(10位或13位,可含连字符)
type AddBookRequest struct {
	ISBN        string `json:"isbn" binding:"required" example:"9787115428028"`
	Title       string `json:"title" binding:"required,max=200" example:"Go程序设计语言"`
	Author      string `json:"author" binding:"required,max=100" example:"Alan A. A. Donovan"`
	Category    string `json:"category" binding:"required,max=50" example:"计算机"`
	Quantity    int    `json:"quantity" binding:"min=0" example:"5"`
	Publisher   string `json:"publisher" binding:"max=100" example:"机械工业出版社"`
	Description string `json:"description" binding:"max=5000" example:"Go语言圣经"`
}

// UpdateBookRequest HTTP修改图书请求,空字段不修改,库存不能通过此接口修改
type UpdateBookRequest struct {
	Title       string `json:"title" binding:"max=200"`
	Author      string `json:"author" binding:"max=100"`
	Category    string `json:"category" binding:"max=50"`
	Publisher   string `json:"publisher" binding:"max=100"`
	Description string `json:"description" binding:"max=5000"`
}

// RestockRequest 盘点调整,delta为正入库、为负报损
type RestockRequest struct {
	Delta  int    `json:"delta" binding:"required" example:"3"`
	Reason string `json:"reason" binding:"max=200" example:"新购入"`
}

// ListBooksRequest HTTP图书列表请求
type ListBooksRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100" example:"Go"`
	Category string `form:"category" binding:"omitempty,max=50" example:"计算机"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=title_asc created_at_desc quantity_desc" example:"created_at_desc"`
}
