package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/librarydesk/internal/domain/user"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
	"github.com/xiebiao/librarydesk/pkg/jwt"
	"github.com/xiebiao/librarydesk/pkg/response"
)

// Context键
const (
	ctxUserID    = "user_id"
	ctxEmail     = "email"
	ctxName      = "name"
	ctxRole      = "role"
	ctxToken     = "access_token"
	ctxExpiresAt = "token_expires_at"
)

// AuthMiddleware JWT认证中间件
//  1. 从Header提取Token
//  2. 检查Token黑名单
//  3. 验证Token签名和有效期
//  4. 将用户信息注入Context
type AuthMiddleware struct {
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// RequireAuth 要求登录
//
//	authorized := r.Group("/api/v1")
//	authorized.Use(authMiddleware.RequireAuth())
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "Token格式错误")
			c.Abort()
			return
		}
		tokenString := parts[1]

		// 2. 已登出的Token;Redis不可用时拒绝请求
		revoked, err := m.sessionStore.IsInBlacklist(c.Request.Context(), tokenString)
		if err != nil {
			response.Error(c, apperrors.ErrRedisError.WithErr(err))
			c.Abort()
			return
		}
		if revoked {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "Token已失效,请重新登录")
			c.Abort()
			return
		}

		// 3. 签名和有效期
		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		// 4. 注入用户信息
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxName, claims.Name)
		c.Set(ctxRole, user.Role(claims.Role))
		c.Set(ctxToken, tokenString)
		if claims.ExpiresAt != nil {
			c.Set(ctxExpiresAt, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// RequireRole 要求指定角色之一,必须在RequireAuth之后使用
func RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Error(c, apperrors.ErrForbidden)
		c.Abort()
	}
}

// RequireStaff 馆员或管理员
func RequireStaff() gin.HandlerFunc {
	return RequireRole(user.RoleAdmin, user.RoleLibrarian)
}

// RequireAdmin 仅管理员
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(user.RoleAdmin)
}

// GetUserID 从Context获取当前登录用户ID,未登录返回0
func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// MustGetUserID 用于已经通过RequireAuth的Handler
func MustGetUserID(c *gin.Context) uint {
	id := GetUserID(c)
	if id == 0 {
		panic("user_id not found in context")
	}
	return id
}

// GetEmail 当前登录用户邮箱
func GetEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}

// GetRole 当前登录用户角色
func GetRole(c *gin.Context) user.Role {
	if v, ok := c.Get(ctxRole); ok {
		if r, ok := v.(user.Role); ok {
			return r
		}
	}
	return ""
}

// IsStaff 当前用户是否为馆员或管理员
func IsStaff(c *gin.Context) bool {
	return GetRole(c).IsStaff()
}

// GetAccessToken 当前请求的Access Token及其过期时间
func GetAccessToken(c *gin.Context) (string, time.Time) {
	exp, _ := c.Get(ctxExpiresAt)
	t, _ := exp.(time.Time)
	return c.GetString(ctxToken), t
}
