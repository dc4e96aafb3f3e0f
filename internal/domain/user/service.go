package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
)

// LoanCounter 查询会员借出未还的记录数(由借阅仓储实现)
type LoanCounter interface {
	CountIssuedByMember(ctx context.Context, memberID uint) (int64, error)
}

// Transactor 事务执行器(rdb.TxManager)
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Profile 新建用户的资料
type Profile struct {
	Name        string
	Email       string
	Password    string
	Role        Role
	AdmissionID string
	EmployeeID  string
}

// Service 用户领域服务
type Service interface {
	// Register 公开注册,角色固定为学生
	Register(ctx context.Context, p Profile) (*User, error)

	// CreateMember 管理员手动添加用户,可指定角色
	CreateMember(ctx context.Context, p Profile) (*User, error)

	// Login 校验邮箱和密码
	Login(ctx context.Context, email, password string) (*User, error)

	// DeleteMember 删除用户,不能删除自己,不能删除仍有借阅的会员
	// 借出时会锁定借阅人行,删除持有同一把锁
	DeleteMember(ctx context.Context, id, operatorID uint) error

	ListMembers(ctx context.Context, params ListParams) ([]*User, int64, error)

	// ValidatePassword 比对明文与哈希
	ValidatePassword(hashedPassword, plainPassword string) error
}

type service struct {
	repo  Repository
	loans LoanCounter
	tx    Transactor
	cost  int
}

// NewService 创建用户服务
func NewService(repo Repository, loans LoanCounter, tx Transactor) Service {
	return NewServiceWithCost(repo, loans, tx, 12)
}

// NewServiceWithCost 指定bcrypt cost(测试用较小的cost)
func NewServiceWithCost(repo Repository, loans LoanCounter, tx Transactor, cost int) Service {
	return &service{repo: repo, loans: loans, tx: tx, cost: cost}
}

func (s *service) Register(ctx context.Context, p Profile) (*User, error) {
	p.Role = RoleStudent
	p.EmployeeID = ""
	return s.create(ctx, p)
}

func (s *service) CreateMember(ctx context.Context, p Profile) (*User, error) {
	if p.Role == "" {
		p.Role = RoleStudent
	}
	if !p.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	return s.create(ctx, p)
}

// create 校验并持久化
// 邮箱唯一性由数据库UNIQUE索引保证,Repository转换为ErrEmailDuplicate
func (s *service) create(ctx context.Context, p Profile) (*User, error) {
	// 1. 字段校验
	if !isValidEmail(p.Email) {
		return nil, ErrInvalidEmail
	}
	if n := utf8.RuneCountInString(p.Name); n < 2 || n > 50 {
		return nil, ErrInvalidName
	}
	if err := validatePasswordStrength(p.Password); err != nil {
		return nil, err
	}

	// 2. 密码加密
	hashed, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.cost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	// 3. 创建实体并持久化
	u := NewUser(p.Name, p.Email, string(hashed), p.Role)
	u.AdmissionID = p.AdmissionID
	u.EmployeeID = p.EmployeeID
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// 不暴露邮箱是否存在
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, err
	}

	if err := s.ValidatePassword(u.Password, password); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) DeleteMember(ctx context.Context, id, operatorID uint) error {
	if id == operatorID {
		return ErrDeleteSelf
	}

	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.LockByID(ctx, id); err != nil {
			return err
		}

		onLoan, err := s.loans.CountIssuedByMember(ctx, id)
		if err != nil {
			return err
		}
		if onLoan > 0 {
			return ErrMemberHasLoans
		}
		return s.repo.Delete(ctx, id)
	})
}

func (s *service) ListMembers(ctx context.Context, params ListParams) ([]*User, int64, error) {
	if params.Role != "" && !params.Role.IsValid() {
		return nil, 0, ErrInvalidRole
	}
	return s.repo.List(ctx, params)
}

func (s *service) ValidatePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperrors.ErrInvalidPassword
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	hasLetter    = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit     = regexp.MustCompile(`[0-9]`)
)

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// validatePasswordStrength 8-20位,必须包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return apperrors.ErrWeakPassword
	}
	return nil
}
