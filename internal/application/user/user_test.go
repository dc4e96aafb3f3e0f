package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	userapp "github.com/xiebiao/librarydesk/internal/application/user"
	"github.com/xiebiao/librarydesk/internal/domain/transaction"
	"github.com/xiebiao/librarydesk/internal/domain/user"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/rdb/rdbtest"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/librarydesk/pkg/clock"
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
	"github.com/xiebiao/librarydesk/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type suite struct {
	mr       *miniredis.Miniredis
	users    user.Repository
	txns     transaction.Repository
	sessions *redis.SessionStore
	jwt      *jwt.Manager
	clock    *clock.Fake
	register *userapp.RegisterUseCase
	login    *userapp.LoginUseCase
	logout   *userapp.LogoutUseCase
	create   *userapp.CreateMemberUseCase
	list     *userapp.ListMembersUseCase
	del      *userapp.DeleteMemberUseCase
}

func newSuite(t *testing.T) *suite {
	t.Helper()
	db := rdbtest.New(t)
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := &suite{
		mr:       mr,
		users:    rdb.NewUserRepository(db),
		txns:     rdb.NewTransactionRepository(db),
		sessions: redis.NewSessionStore(client),
		jwt:      jwt.NewManager("test-secret", 2*time.Hour, 7*24*time.Hour),
		clock:    clock.NewFake(time.Now()),
	}
	svc := user.NewServiceWithCost(s.users, s.txns, rdb.NewTxManager(db), bcrypt.MinCost)
	log := zap.NewNop()
	s.register = userapp.NewRegisterUseCase(svc, log)
	s.login = userapp.NewLoginUseCase(svc, s.jwt, s.sessions, s.clock, log)
	s.logout = userapp.NewLogoutUseCase(s.sessions, s.clock)
	s.create = userapp.NewCreateMemberUseCase(svc, nil, log)
	s.list = userapp.NewListMembersUseCase(svc)
	s.del = userapp.NewDeleteMemberUseCase(svc, nil, log)
	return s
}

func (s *suite) registerStudent(t *testing.T, name, email string) *userapp.UserInfo {
	t.Helper()
	info, err := s.register.Execute(context.Background(), userapp.RegisterRequest{
		Name: name, Email: email, Password: "secret123", AdmissionID: "2024" + name,
	})
	require.NoError(t, err)
	return info
}

func TestRegister_AlwaysStudent(t *testing.T) {
	s := newSuite(t)
	info := s.registerStudent(t, "张三", "ZhangSan@Lib.cn")

	assert.Equal(t, "student", info.Role)
	assert.Equal(t, "zhangsan@lib.cn", info.Email)

	_, err := s.register.Execute(context.Background(), userapp.RegisterRequest{
		Name: "李四", Email: "zhangsan@lib.cn", Password: "secret123",
	})
	assert.ErrorIs(t, err, user.ErrEmailDuplicate)
}

func TestLogin_IssuesTokensAndSession(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	info := s.registerStudent(t, "张三", "zs@lib.cn")

	resp, err := s.login.Execute(ctx, userapp.LoginRequest{Email: "ZS@lib.cn", Password: "secret123", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, int64(7200), resp.ExpiresIn)

	claims, err := s.jwt.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, info.ID, claims.UserID)
	assert.Equal(t, "student", claims.Role)

	sess, err := s.sessions.GetSession(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", sess.IP)
	assert.Equal(t, "student", sess.Role)
}

func TestLogin_WrongCredentials(t *testing.T) {
	s := newSuite(t)
	s.registerStudent(t, "张三", "zs@lib.cn")

	_, err := s.login.Execute(context.Background(), userapp.LoginRequest{Email: "zs@lib.cn", Password: "wrong1234"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	// 未注册的邮箱返回同样的错误
	_, err = s.login.Execute(context.Background(), userapp.LoginRequest{Email: "nobody@lib.cn", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
}

func TestLogin_SucceedsWhenRedisDown(t *testing.T) {
	s := newSuite(t)
	s.registerStudent(t, "张三", "zs@lib.cn")
	s.mr.Close()

	resp, err := s.login.Execute(context.Background(), userapp.LoginRequest{Email: "zs@lib.cn", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLogout_BlacklistsUntilExpiry(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	info := s.registerStudent(t, "张三", "zs@lib.cn")
	resp, err := s.login.Execute(ctx, userapp.LoginRequest{Email: "zs@lib.cn", Password: "secret123"})
	require.NoError(t, err)

	claims, err := s.jwt.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	require.NoError(t, s.logout.Execute(ctx, userapp.LogoutRequest{
		UserID: info.ID, AccessToken: resp.AccessToken, ExpiresAt: claims.ExpiresAt.Time,
	}))

	blocked, err := s.sessions.IsInBlacklist(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, blocked)

	_, err = s.sessions.GetSession(ctx, info.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	s.mr.FastForward(3 * time.Hour)
	blocked, err = s.sessions.IsInBlacklist(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestCreateAndListMembers(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	s.registerStudent(t, "张三", "zs@lib.cn")

	lib, err := s.create.Execute(ctx, userapp.CreateMemberRequest{
		Name: "王馆员", Email: "wang@lib.cn", Password: "secret123", Role: "librarian", EmployeeID: "E01",
	})
	require.NoError(t, err)
	assert.Equal(t, "librarian", lib.Role)

	_, err = s.create.Execute(ctx, userapp.CreateMemberRequest{
		Name: "赵", Email: "zhao@lib.cn", Password: "secret123", Role: "janitor",
	})
	assert.ErrorIs(t, err, user.ErrInvalidRole)

	all, err := s.list.Execute(ctx, userapp.ListMembersRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	students, err := s.list.Execute(ctx, userapp.ListMembersRequest{Role: "student"})
	require.NoError(t, err)
	require.Len(t, students.List, 1)
	assert.Equal(t, "zs@lib.cn", students.List[0].Email)
}

func TestDeleteMember(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	admin, err := s.create.Execute(ctx, userapp.CreateMemberRequest{
		Name: "管理员", Email: "admin@lib.cn", Password: "secret123", Role: "admin",
	})
	require.NoError(t, err)
	student := s.registerStudent(t, "张三", "zs@lib.cn")

	assert.ErrorIs(t, s.del.Execute(ctx, admin.ID, admin.ID), user.ErrDeleteSelf)

	now := time.Now()
	txn, err := transaction.NewTransaction("T1", 1, student.ID, admin.ID, now, now.AddDate(0, 0, 14))
	require.NoError(t, err)
	require.NoError(t, s.txns.Create(ctx, txn))
	assert.ErrorIs(t, s.del.Execute(ctx, student.ID, admin.ID), user.ErrMemberHasLoans)

	require.NoError(t, txn.MarkReturned(now, 0, admin.ID))
	require.NoError(t, s.txns.MarkReturned(ctx, txn))
	require.NoError(t, s.del.Execute(ctx, student.ID, admin.ID))

	_, err = s.users.FindByID(ctx, student.ID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
