package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/librarydesk/internal/application/circulation"
	"github.com/xiebiao/librarydesk/internal/application/report"
	"github.com/xiebiao/librarydesk/internal/interface/http/dto"
	"github.com/xiebiao/librarydesk/internal/interface/http/middleware"
	"github.com/xiebiao/librarydesk/pkg/clock"
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
	"github.com/xiebiao/librarydesk/pkg/response"
)

// LoanPolicy 借期设置
// due_date按Location解析为当天零点;未指定时为今天加DefaultDays天
type LoanPolicy struct {
	DefaultDays int
	Location    *time.Location
}

// TransactionHandler 借还与借阅记录
type TransactionHandler struct {
	issueUseCase   *circulation.IssueBookUseCase
	returnUseCase  *circulation.ReturnBookUseCase
	listUseCase    *report.ListTransactionsUseCase
	historyUseCase *report.MyHistoryUseCase
	getUseCase     *report.GetTransactionUseCase
	loans          LoanPolicy
	clock          clock.Clock
}

// NewTransactionHandler 创建借还处理器
func NewTransactionHandler(
	issueUseCase *circulation.IssueBookUseCase,
	returnUseCase *circulation.ReturnBookUseCase,
	listUseCase *report.ListTransactionsUseCase,
	historyUseCase *report.MyHistoryUseCase,
	getUseCase *report.GetTransactionUseCase,
	loans LoanPolicy,
	clk clock.Clock,
) *TransactionHandler {
	if loans.Location == nil {
		loans.Location = time.Local
	}
	return &TransactionHandler{
		issueUseCase:   issueUseCase,
		returnUseCase:  returnUseCase,
		listUseCase:    listUseCase,
		historyUseCase: historyUseCase,
		getUseCase:     getUseCase,
		loans:          loans,
		clock:          clk,
	}
}

// IssueBook 借出图书
// @Summary      借出图书
// @Description  锁定图书行后校验库存,写借阅记录并扣减库存,并发借最后一本只有一个成功
// @Tags         借还
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.IssueBookRequest true "借出信息"
// @Success      200 {object} response.Response{data=circulation.TransactionResponse}
// @Failure      400 {object} response.Response "40001 暂无可借副本 / 40401 借阅人不存在 / 40402 图书不存在"
// @Router       /api/v1/transactions/issue [post]
func (h *TransactionHandler) IssueBook(c *gin.Context) {
	var req dto.IssueBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	due, err := h.dueDate(req.DueDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.issueUseCase.Execute(c.Request.Context(), circulation.IssueBookRequest{
		BookID:   req.BookID,
		MemberID: req.MemberID,
		DueDate:  due,
		IssuedBy: middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ReturnBook 归还图书
// @Summary      归还图书
// @Description  按自然日计算逾期罚金,同一记录只能归还一次
// @Tags         借还
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅记录ID"
// @Success      200 {object} response.Response{data=circulation.TransactionResponse}
// @Failure      400 {object} response.Response "40002 已归还 / 40403 借阅记录不存在"
// @Router       /api/v1/transactions/return/{id} [put]
func (h *TransactionHandler) ReturnBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.returnUseCase.Execute(c.Request.Context(), circulation.ReturnBookRequest{
		TransactionID: id,
		ReturnedBy:    middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListTransactions 全部借阅记录
// @Summary      借阅记录列表
// @Tags         借还
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int    false "页码"
// @Param        page_size query int    false "每页数量"
// @Param        member_id query int    false "借阅人"
// @Param        book_id   query int    false "图书"
// @Param        status    query string false "issued | returned"
// @Success      200 {object} response.Response{data=report.ListTransactionsResponse}
// @Router       /api/v1/transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var req dto.ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), report.ListTransactionsRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		MemberID: req.MemberID,
		BookID:   req.BookID,
		Status:   req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// MyHistory 我的借阅记录
// @Summary      我的借阅记录
// @Tags         借还
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int    false "页码"
// @Param        page_size query int    false "每页数量"
// @Param        status    query string false "issued | returned"
// @Success      200 {object} response.Response{data=report.ListTransactionsResponse}
// @Router       /api/v1/transactions/my-history [get]
func (h *TransactionHandler) MyHistory(c *gin.Context) {
	var req dto.MyHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.historyUseCase.Execute(c.Request.Context(), report.MyHistoryRequest{
		MemberID: middleware.MustGetUserID(c),
		Page:     req.Page,
		PageSize: req.PageSize,
		Status:   req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// GetTransaction 借阅记录详情
// @Summary      借阅记录详情
// @Description  学生只能查看自己的记录
// @Tags         借还
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅记录ID"
// @Success      200 {object} response.Response{data=circulation.TransactionResponse}
// @Failure      400 {object} response.Response "40104 无权限访问"
// @Router       /api/v1/transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), report.GetTransactionRequest{
		ID:            id,
		ViewerID:      middleware.MustGetUserID(c),
		ViewerIsStaff: middleware.IsStaff(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// dueDate 解析应还日期,空串时使用默认借期
func (h *TransactionHandler) dueDate(s string) (time.Time, error) {
	if s == "" {
		y, m, d := h.clock.Now().In(h.loans.Location).Date()
		return time.Date(y, m, d+h.loans.DefaultDays, 0, 0, 0, 0, h.loans.Location), nil
	}
	t, err := time.ParseInLocation(dto.DateLayout, s, h.loans.Location)
	if err != nil {
		return time.Time{}, apperrors.New(apperrors.ErrCodeInvalidParams, "应还日期格式应为YYYY-MM-DD")
	}
	return t, nil
}
