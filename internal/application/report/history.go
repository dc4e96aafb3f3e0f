// Package report 借阅记录查询与仪表盘统计
package report

import (
	"context"

	"github.com/xiebiao/librarydesk/internal/application/circulation"
	"github.com/xiebiao/librarydesk/internal/domain/transaction"
	"github.com/xiebiao/librarydesk/pkg/clock"
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListTransactionsUseCase 馆员查看全部借阅记录
type ListTransactionsUseCase struct {
	txns   transaction.Repository
	clock  clock.Clock
	policy transaction.FinePolicy
}

// NewListTransactionsUseCase 创建借阅记录列表用例
func NewListTransactionsUseCase(txns transaction.Repository, clk clock.Clock, policy transaction.FinePolicy) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{txns: txns, clock: clk, policy: policy}
}

// ListTransactionsRequest 列表查询请求
type ListTransactionsRequest struct {
	Page     int
	PageSize int
	MemberID uint   // 0表示全部
	BookID   uint   // 0表示全部
	Status   string // issued | returned,空表示全部
}

// ListTransactionsResponse 列表响应
type ListTransactionsResponse struct {
	List     []*circulation.TransactionResponse `json:"list"`
	Total    int64                              `json:"total"`
	Page     int                                `json:"page"`
	PageSize int                                `json:"page_size"`
}

func (uc *ListTransactionsUseCase) Execute(ctx context.Context, req ListTransactionsRequest) (*ListTransactionsResponse, error) {
	status := transaction.Status(req.Status)
	if status != "" && !status.IsValid() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "状态只能是issued或returned")
	}

	page, pageSize := normalizePage(req.Page, req.PageSize)
	details, total, err := uc.txns.List(ctx, transaction.ListParams{
		Page:     page,
		PageSize: pageSize,
		MemberID: req.MemberID,
		BookID:   req.BookID,
		Status:   status,
	})
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	list := make([]*circulation.TransactionResponse, len(details))
	for i, d := range details {
		list[i] = circulation.NewTransactionResponse(d, uc.policy, now)
	}

	return &ListTransactionsResponse{List: list, Total: total, Page: page, PageSize: pageSize}, nil
}

// MyHistoryUseCase 会员查看自己的借阅记录
type MyHistoryUseCase struct {
	list *ListTransactionsUseCase
}

// NewMyHistoryUseCase 创建借阅历史用例
func NewMyHistoryUseCase(list *ListTransactionsUseCase) *MyHistoryUseCase {
	return &MyHistoryUseCase{list: list}
}

// MyHistoryRequest MemberID从JWT中提取,不信任请求参数
type MyHistoryRequest struct {
	MemberID uint
	Page     int
	PageSize int
	Status   string
}

func (uc *MyHistoryUseCase) Execute(ctx context.Context, req MyHistoryRequest) (*ListTransactionsResponse, error) {
	if req.MemberID == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	return uc.list.Execute(ctx, ListTransactionsRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		MemberID: req.MemberID,
		Status:   req.Status,
	})
}

// GetTransactionUseCase 查看单条借阅记录
// 学生只能查看自己的记录
type GetTransactionUseCase struct {
	txns   transaction.Repository
	clock  clock.Clock
	policy transaction.FinePolicy
}

// NewGetTransactionUseCase 创建借阅详情用例
func NewGetTransactionUseCase(txns transaction.Repository, clk clock.Clock, policy transaction.FinePolicy) *GetTransactionUseCase {
	return &GetTransactionUseCase{txns: txns, clock: clk, policy: policy}
}

// GetTransactionRequest 详情请求
type GetTransactionRequest struct {
	ID            uint
	ViewerID      uint
	ViewerIsStaff bool
}

func (uc *GetTransactionUseCase) Execute(ctx context.Context, req GetTransactionRequest) (*circulation.TransactionResponse, error) {
	d, err := uc.txns.FindDetailByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !req.ViewerIsStaff && !d.IsBorrowedBy(req.ViewerID) {
		return nil, apperrors.ErrForbidden
	}
	return circulation.NewTransactionResponse(d, uc.policy, uc.clock.Now()), nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
