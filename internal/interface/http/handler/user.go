package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/librarydesk/internal/application/user"
	"github.com/xiebiao/librarydesk/internal/interface/http/dto"
	"github.com/xiebiao/librarydesk/internal/interface/http/middleware"
	"github.com/xiebiao/librarydesk/pkg/response"
)

// UserHandler 账号与会员管理
type UserHandler struct {
	registerUseCase     *appuser.RegisterUseCase
	loginUseCase        *appuser.LoginUseCase
	logoutUseCase       *appuser.LogoutUseCase
	createMemberUseCase *appuser.CreateMemberUseCase
	listMembersUseCase  *appuser.ListMembersUseCase
	deleteMemberUseCase *appuser.DeleteMemberUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
	createMemberUseCase *appuser.CreateMemberUseCase,
	listMembersUseCase *appuser.ListMembersUseCase,
	deleteMemberUseCase *appuser.DeleteMemberUseCase,
) *UserHandler {
	return &UserHandler{
		registerUseCase:     registerUseCase,
		loginUseCase:        loginUseCase,
		logoutUseCase:       logoutUseCase,
		createMemberUseCase: createMemberUseCase,
		listMembersUseCase:  listMembersUseCase,
		deleteMemberUseCase: deleteMemberUseCase,
	}
}

// Register 学生注册
// @Summary      用户注册
// @Description  公开注册,角色固定为学生
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      200 {object} response.Response{data=appuser.UserInfo} "注册成功"
// @Failure      400 {object} response.Response "40003 邮箱已存在 / 40005 密码强度不足"
// @Router       /api/v1/auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		AdmissionID: req.AdmissionID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Login 登录
// @Summary      用户登录
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=appuser.LoginResponse} "登录成功"
// @Failure      400 {object} response.Response "40103 邮箱或密码错误"
// @Router       /api/v1/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appuser.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Logout 登出
// @Summary      登出
// @Tags         认证
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	token, expiresAt := middleware.GetAccessToken(c)
	err := h.logoutUseCase.Execute(c.Request.Context(), appuser.LogoutRequest{
		UserID:      middleware.MustGetUserID(c),
		AccessToken: token,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// CreateMember 添加用户
// @Summary      添加用户
// @Description  管理员添加学生、馆员或管理员
// @Tags         用户管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateMemberRequest true "用户信息"
// @Success      200 {object} response.Response{data=appuser.UserInfo}
// @Router       /api/v1/users [post]
func (h *UserHandler) CreateMember(c *gin.Context) {
	var req dto.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.createMemberUseCase.Execute(c.Request.Context(), appuser.CreateMemberRequest{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		AdmissionID: req.AdmissionID,
		EmployeeID:  req.EmployeeID,
		OperatorID:  middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListMembers 用户列表
// @Summary      用户列表
// @Tags         用户管理
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int    false "页码"
// @Param        page_size query int    false "每页数量"
// @Param        role      query string false "角色"
// @Param        keyword   query string false "姓名或邮箱"
// @Success      200 {object} response.Response{data=appuser.ListMembersResponse}
// @Router       /api/v1/users [get]
func (h *UserHandler) ListMembers(c *gin.Context) {
	var req dto.ListMembersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.listMembersUseCase.Execute(c.Request.Context(), appuser.ListMembersRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Role:     req.Role,
		Keyword:  req.Keyword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// DeleteMember 删除用户
// @Summary      删除用户
// @Description  不能删除自己,不能删除仍有未还图书的会员
// @Tags         用户管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/users/{id} [delete]
func (h *UserHandler) DeleteMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deleteMemberUseCase.Execute(c.Request.Context(), id, middleware.MustGetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
