package user

import (
	"context"
	"time"

	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/librarydesk/pkg/clock"
)

// LogoutUseCase 用户登出
type LogoutUseCase struct {
	sessionStore *redis.SessionStore
	clock        clock.Clock
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore *redis.SessionStore, clk clock.Clock) *LogoutUseCase {
	return &LogoutUseCase{sessionStore: sessionStore, clock: clk}
}

// LogoutRequest ExpiresAt为Access Token的过期时间
type LogoutRequest struct {
	UserID      uint
	AccessToken string
	ExpiresAt   time.Time
}

// Execute 删除会话,并把Access Token加入黑名单直到它自然过期
func (uc *LogoutUseCase) Execute(ctx context.Context, req LogoutRequest) error {
	// 1. 删除会话
	if err := uc.sessionStore.DeleteSession(ctx, req.UserID); err != nil {
		return err
	}

	// 2. 黑名单只需保留到Token过期
	return uc.sessionStore.AddToBlacklist(ctx, req.AccessToken, req.ExpiresAt.Sub(uc.clock.Now()))
}
