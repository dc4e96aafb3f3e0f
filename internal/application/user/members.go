package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/librarydesk/internal/domain/user"
)

// StatsInvalidator 会员数变化后清理仪表盘统计缓存
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// CreateMemberUseCase 管理员添加用户,可指定角色
type CreateMemberUseCase struct {
	userService user.Service
	stats       StatsInvalidator
	log         *zap.Logger
}

// NewCreateMemberUseCase 创建添加用户用例
func NewCreateMemberUseCase(userService user.Service, stats StatsInvalidator, log *zap.Logger) *CreateMemberUseCase {
	return &CreateMemberUseCase{userService: userService, stats: stats, log: log}
}

// CreateMemberRequest 添加用户请求
type CreateMemberRequest struct {
	Name        string
	Email       string
	Password    string
	Role        string
	AdmissionID string
	EmployeeID  string
	OperatorID  uint
}

func (uc *CreateMemberUseCase) Execute(ctx context.Context, req CreateMemberRequest) (*UserInfo, error) {
	u, err := uc.userService.CreateMember(ctx, user.Profile{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        user.Role(req.Role),
		AdmissionID: req.AdmissionID,
		EmployeeID:  req.EmployeeID,
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, uc.stats, uc.log)
	uc.log.Info("添加用户",
		zap.Uint("user_id", u.ID),
		zap.String("role", string(u.Role)),
		zap.Uint("operator_id", req.OperatorID))
	info := newUserInfo(u)
	return &info, nil
}

// ListMembersUseCase 用户列表
type ListMembersUseCase struct {
	userService user.Service
}

// NewListMembersUseCase 创建用户列表用例
func NewListMembersUseCase(userService user.Service) *ListMembersUseCase {
	return &ListMembersUseCase{userService: userService}
}

// ListMembersRequest 列表请求
type ListMembersRequest struct {
	Page     int
	PageSize int
	Role     string
	Keyword  string // 匹配姓名、邮箱
}

// ListMembersResponse 列表响应
type ListMembersResponse struct {
	List     []UserInfo `json:"list"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

func (uc *ListMembersUseCase) Execute(ctx context.Context, req ListMembersRequest) (*ListMembersResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	users, total, err := uc.userService.ListMembers(ctx, user.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Role:     user.Role(req.Role),
		Keyword:  req.Keyword,
	})
	if err != nil {
		return nil, err
	}

	list := make([]UserInfo, len(users))
	for i, u := range users {
		list[i] = newUserInfo(u)
	}
	return &ListMembersResponse{List: list, Total: total, Page: req.Page, PageSize: req.PageSize}, nil
}

// DeleteMemberUseCase 删除用户
type DeleteMemberUseCase struct {
	userService user.Service
	stats       StatsInvalidator
	log         *zap.Logger
}

// NewDeleteMemberUseCase 创建删除用户用例
func NewDeleteMemberUseCase(userService user.Service, stats StatsInvalidator, log *zap.Logger) *DeleteMemberUseCase {
	return &DeleteMemberUseCase{userService: userService, stats: stats, log: log}
}

func (uc *DeleteMemberUseCase) Execute(ctx context.Context, id, operatorID uint) error {
	if err := uc.userService.DeleteMember(ctx, id, operatorID); err != nil {
		return err
	}
	invalidate(ctx, uc.stats, uc.log)
	uc.log.Info("删除用户", zap.Uint("user_id", id), zap.Uint("operator_id", operatorID))
	return nil
}

func invalidate(ctx context.Context, stats StatsInvalidator, log *zap.Logger) {
	if stats == nil {
		return
	}
	if err := stats.Invalidate(ctx); err != nil {
		log.Warn("清理统计缓存失败", zap.Error(err))
	}
}
