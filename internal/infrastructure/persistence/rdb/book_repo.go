package rdb

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/librarydesk/internal/domain/book"
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
)

// bookRepository 图书仓储实现
// 负责领域实体与GORM模型之间的转换,并把唯一索引冲突转换为业务错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.WrapDB(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.WrapDB(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	if err := dbFrom(ctx, r.db).Where("isbn = ?", isbn).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.WrapDB(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// Update 只更新图书信息字段,quantity由Ledger维护
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	result := dbFrom(ctx, r.db).Model(&BookModel{ID: b.ID}).Updates(map[string]any{
		"title":       b.Title,
		"author":      b.Author,
		"category":    b.Category,
		"publisher":   b.Publisher,
		"description": b.Description,
	})
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "更新图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&BookModel{}, id)
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	var (
		models []BookModel
		total  int64
	)

	query := dbFrom(ctx, r.db).Model(&BookModel{})

	// 关键词匹配书名、作者、ISBN
	if params.Keyword != "" {
		kw := likePattern(params.Keyword)
		query = query.Where("title LIKE ? OR author LIKE ? OR isbn LIKE ?", kw, kw, kw)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapDB(err, "查询图书总数失败")
	}

	switch params.SortBy {
	case "title_asc":
		query = query.Order("title ASC")
	case "quantity_desc":
		query = query.Order("quantity DESC")
	default:
		query = query.Order("created_at DESC")
	}
	query = query.Order("id DESC")

	offset, limit := paginate(params.Page, params.PageSize)
	if err := query.Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, 0, apperrors.WrapDB(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, total, nil
}

func (r *bookRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := dbFrom(ctx, r.db).Model(&BookModel{}).Count(&total).Error; err != nil {
		return 0, apperrors.WrapDB(err, "统计图书数量失败")
	}
	return total, nil
}

// LockByID SELECT ... FOR UPDATE
// 必须在TxManager.Transaction内调用;sqlite不支持行锁,靠单连接串行化事务
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.WrapDB(err, "锁定图书失败")
	}
	return toBookEntity(&model), nil
}

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Category:    b.Category,
		Quantity:    b.Quantity,
		Publisher:   b.Publisher,
		Description: b.Description,
		AddedBy:     b.AddedBy,
	}
}

func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:          model.ID,
		ISBN:        model.ISBN,
		Title:       model.Title,
		Author:      model.Author,
		Category:    model.Category,
		Quantity:    model.Quantity,
		Publisher:   model.Publisher,
		Description: model.Description,
		AddedBy:     model.AddedBy,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
