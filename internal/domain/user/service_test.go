package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
)

type memRepo struct {
	Repository
	users  map[uint]*User
	nextID uint
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[uint]*User{}}
}

func (r *memRepo) Create(_ context.Context, u *User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrEmailDuplicate
		}
	}
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = u
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id uint) (*User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memRepo) Delete(_ context.Context, id uint) error {
	delete(r.users, id)
	return nil
}

func (r *memRepo) LockByID(ctx context.Context, id uint) (*User, error) {
	return r.FindByID(ctx, id)
}

type inTxKey struct{}

// markingTx 在ctx上标记事务
type markingTx struct{}

func (markingTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(context.WithValue(ctx, inTxKey{}, true))
}

type fixedLoans map[uint]int64

func (f fixedLoans) CountIssuedByMember(ctx context.Context, id uint) (int64, error) {
	if ctx.Value(inTxKey{}) != true {
		return 0, errors.New("借阅统计必须在删除事务内执行")
	}
	return f[id], nil
}

func newTestService(repo Repository, loans LoanCounter) Service {
	return NewServiceWithCost(repo, loans, markingTx{}, bcrypt.MinCost)
}

func TestRegister_AlwaysStudent(t *testing.T) {
	svc := newTestService(newMemRepo(), fixedLoans{})

	u, err := svc.Register(context.Background(), Profile{
		Name:        "张三",
		Email:       "Zhang@Example.com",
		Password:    "secret123",
		Role:        RoleAdmin,
		AdmissionID: "S2024001",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, u.Role)
	assert.Equal(t, "zhang@example.com", u.Email)
	assert.Equal(t, "S2024001", u.AdmissionID)
	assert.NotEqual(t, "secret123", u.Password)
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(newMemRepo(), fixedLoans{})

	tests := []struct {
		name    string
		profile Profile
		want    error
	}{
		{"邮箱格式错误", Profile{Name: "张三", Email: "bad", Password: "secret123"}, ErrInvalidEmail},
		{"姓名过短", Profile{Name: "张", Email: "a@b.cn", Password: "secret123"}, ErrInvalidName},
		{"密码无数字", Profile{Name: "张三", Email: "a@b.cn", Password: "abcdefgh"}, apperrors.ErrWeakPassword},
		{"密码过短", Profile{Name: "张三", Email: "a@b.cn", Password: "ab1"}, apperrors.ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.profile)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateMember_Roles(t *testing.T) {
	svc := newTestService(newMemRepo(), fixedLoans{})
	ctx := context.Background()

	u, err := svc.CreateMember(ctx, Profile{Name: "李四", Email: "li@lib.cn", Password: "secret123", Role: RoleLibrarian, EmployeeID: "E01"})
	require.NoError(t, err)
	assert.True(t, u.IsStaff())

	_, err = svc.CreateMember(ctx, Profile{Name: "王五", Email: "wang@lib.cn", Password: "secret123", Role: "janitor"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.CreateMember(ctx, Profile{Name: "李四", Email: "li@lib.cn", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailDuplicate)
}

func TestLogin(t *testing.T) {
	svc := newTestService(newMemRepo(), fixedLoans{})
	ctx := context.Background()

	_, err := svc.Register(ctx, Profile{Name: "张三", Email: "z@lib.cn", Password: "secret123"})
	require.NoError(t, err)

	u, err := svc.Login(ctx, "z@lib.cn", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "张三", u.Name)

	_, err = svc.Login(ctx, "z@lib.cn", "wrong1234")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	_, err = svc.Login(ctx, "nobody@lib.cn", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
}

func TestDeleteMember(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := newTestService(repo, fixedLoans{})

	admin, err := svc.CreateMember(ctx, Profile{Name: "管理员", Email: "admin@lib.cn", Password: "secret123", Role: RoleAdmin})
	require.NoError(t, err)
	student, err := svc.Register(ctx, Profile{Name: "张三", Email: "z@lib.cn", Password: "secret123"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteMember(ctx, admin.ID, admin.ID), ErrDeleteSelf)
	assert.ErrorIs(t, svc.DeleteMember(ctx, 999, admin.ID), ErrUserNotFound)

	busy := newTestService(repo, fixedLoans{student.ID: 2})
	assert.ErrorIs(t, busy.DeleteMember(ctx, student.ID, admin.ID), ErrMemberHasLoans)

	require.NoError(t, svc.DeleteMember(ctx, student.ID, admin.ID))
	_, err = repo.FindByID(ctx, student.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
