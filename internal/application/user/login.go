package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/librarydesk/internal/domain/user"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/librarydesk/pkg/clock"
	"github.com/xiebiao/librarydesk/pkg/jwt"
)

// LoginUseCase 用户登录
//  1. 验证邮箱密码
//  2. 生成JWT Token对
//  3. 保存会话到Redis
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
	clock        clock.Clock
	log          *zap.Logger
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
	clk clock.Clock,
	log *zap.Logger,
) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		clock:        clk,
		log:          log,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
	IP       string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // Access Token过期时间(秒)
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	// 1. 验证邮箱密码
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	// 2. 生成JWT Token对
	pair, err := uc.jwtManager.GenerateToken(jwt.Identity{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   string(u.Role),
	})
	if err != nil {
		return nil, err
	}

	// 3. 保存会话,有效期与Refresh Token一致;失败不影响登录
	sess := redis.Session{
		UserID:  u.ID,
		Email:   u.Email,
		Role:    string(u.Role),
		LoginAt: uc.clock.Now(),
		IP:      req.IP,
	}
	if err := uc.sessionStore.SaveSession(ctx, sess, uc.jwtManager.RefreshTokenTTL()); err != nil {
		uc.log.Warn("保存会话失败", zap.Uint("user_id", u.ID), zap.Error(err))
	}

	uc.log.Info("用户登录", zap.Uint("user_id", u.ID), zap.String("role", string(u.Role)), zap.String("ip", req.IP))
	return &LoginResponse{
		User:         newUserInfo(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}
