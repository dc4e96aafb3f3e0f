package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/librarydesk/internal/domain/user"
)

// RegisterUseCase 学生自助注册
type RegisterUseCase struct {
	userService user.Service
	log         *zap.Logger
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service, log *zap.Logger) *RegisterUseCase {
	return &RegisterUseCase{userService: userService, log: log}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name        string
	Email       string
	Password    string
	AdmissionID string
}

// Execute 执行注册,角色固定为学生
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	u, err := uc.userService.Register(ctx, user.Profile{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		AdmissionID: req.AdmissionID,
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("用户注册成功", zap.Uint("user_id", u.ID), zap.String("email", u.Email))
	info := newUserInfo(u)
	return &info, nil
}
