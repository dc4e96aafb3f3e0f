package rdb

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/librarydesk/internal/domain/user"
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
)

// userRepository 用户仓储实现
// 邮箱唯一性由UNIQUE索引保证,冲突转换为ErrEmailDuplicate
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := toUserModel(u)

	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return user.ErrEmailDuplicate
		}
		return apperrors.WrapDB(err, "创建用户失败")
	}

	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.WrapDB(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	if err := dbFrom(ctx, r.db).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.WrapDB(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	result := dbFrom(ctx, r.db).Model(&UserModel{ID: u.ID}).Updates(map[string]any{
		"name":         u.Name,
		"role":         string(u.Role),
		"admission_id": u.AdmissionID,
		"employee_id":  u.EmployeeID,
		"password":     u.Password,
	})
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "更新用户失败")
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&UserModel{}, id)
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "删除用户失败")
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// LockByID 借出和删除会员共用的行锁,已软删除的用户视为不存在
func (r *userRepository) LockByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	err := dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.WrapDB(err, "锁定用户失败")
	}
	return toUserEntity(&model), nil
}

func (r *userRepository) List(ctx context.Context, params user.ListParams) ([]*user.User, int64, error) {
	var (
		models []UserModel
		total  int64
	)

	query := dbFrom(ctx, r.db).Model(&UserModel{})
	if params.Role != "" {
		query = query.Where("role = ?", string(params.Role))
	}
	if params.Keyword != "" {
		kw := likePattern(params.Keyword)
		query = query.Where("name LIKE ? OR email LIKE ?", kw, kw)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapDB(err, "查询用户总数失败")
	}

	offset, limit := paginate(params.Page, params.PageSize)
	if err := query.Order("id ASC").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, 0, apperrors.WrapDB(err, "查询用户列表失败")
	}

	users := make([]*user.User, len(models))
	for i := range models {
		users[i] = toUserEntity(&models[i])
	}
	return users, total, nil
}

// CountMembers 管理员不算会员
func (r *userRepository) CountMembers(ctx context.Context) (int64, error) {
	var total int64
	err := dbFrom(ctx, r.db).Model(&UserModel{}).Where("role <> ?", string(user.RoleAdmin)).Count(&total).Error
	if err != nil {
		return 0, apperrors.WrapDB(err, "统计会员数量失败")
	}
	return total, nil
}

func toUserModel(u *user.User) *UserModel {
	return &UserModel{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Password:    u.Password,
		Role:        string(u.Role),
		AdmissionID: u.AdmissionID,
		EmployeeID:  u.EmployeeID,
	}
}

func toUserEntity(model *UserModel) *user.User {
	return &user.User{
		ID:          model.ID,
		Name:        model.Name,
		Email:       model.Email,
		Password:    model.Password,
		Role:        user.Role(model.Role),
		AdmissionID: model.AdmissionID,
		EmployeeID:  model.EmployeeID,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
