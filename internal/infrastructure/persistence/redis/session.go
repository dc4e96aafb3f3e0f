package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
)

// Session 登录会话
type Session struct {
	UserID  uint
	Email   string
	Role    string
	LoginAt time.Time
	IP      string
}

// SessionStore 会话存储
// Key设计:
//   - session:{user_id}  登录会话(Hash),过期时间与Refresh Token一致
//   - blacklist:{token}  已登出的Access Token,过期时间为Token剩余有效期
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("session:%d", userID)
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}

// SaveSession 保存会话,HSet和Expire在同一个事务管道里执行
func (s *SessionStore) SaveSession(ctx context.Context, sess Session, ttl time.Duration) error {
	key := sessionKey(sess.UserID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			"user_id":  sess.UserID,
			"email":    sess.Email,
			"role":     sess.Role,
			"login_at": sess.LoginAt.Format(time.RFC3339),
			"ip":       sess.IP,
		})
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, "保存会话失败")
	}
	return nil
}

// GetSession 会话不存在返回ErrUnauthorized
func (s *SessionStore) GetSession(ctx context.Context, userID uint) (*Session, error) {
	result, err := s.client.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, "获取会话失败")
	}
	if len(result) == 0 {
		return nil, apperrors.ErrUnauthorized
	}

	id, _ := strconv.ParseUint(result["user_id"], 10, 64)
	loginAt, _ := time.Parse(time.RFC3339, result["login_at"])
	return &Session{
		UserID:  uint(id),
		Email:   result["email"],
		Role:    result["role"],
		LoginAt: loginAt,
		IP:      result["ip"],
	}, nil
}

// DeleteSession 登出时删除会话
func (s *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return apperrors.Wrap(err, "删除会话失败")
	}
	return nil
}

// AddToBlacklist 将Token加入黑名单,ttl<=0时不写入(Token已过期)
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "添加Token到黑名单失败")
	}
	return nil
}

// IsInBlacklist 检查Token是否已登出
func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	exists, err := s.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "检查黑名单失败")
	}
	return exists > 0, nil
}
