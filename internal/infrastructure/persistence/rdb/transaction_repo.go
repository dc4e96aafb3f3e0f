package rdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/librarydesk/internal/domain/transaction"
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
)

// transactionRepository 借阅记录仓储实现
// 时间统一按UTC写入和比较,sqlite以文本保存时间,时区不一致会比较出错
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建借阅记录仓储
func NewTransactionRepository(db *gorm.DB) transaction.Repository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	model := toTransactionModel(txn)

	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.WrapDB(err, "创建借阅记录失败")
	}

	txn.ID = model.ID
	txn.CreatedAt = model.CreatedAt
	txn.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *transactionRepository) FindByID(ctx context.Context, id uint) (*transaction.Transaction, error) {
	var model TransactionModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transaction.ErrTransactionNotFound
		}
		return nil, apperrors.WrapDB(err, "查询借阅记录失败")
	}
	return toTransactionEntity(&model), nil
}

// LockByID SELECT ... FOR UPDATE,必须在事务内调用
func (r *transactionRepository) LockByID(ctx context.Context, id uint) (*transaction.Transaction, error) {
	var model TransactionModel
	err := dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transaction.ErrTransactionNotFound
		}
		return nil, apperrors.WrapDB(err, "锁定借阅记录失败")
	}
	return toTransactionEntity(&model), nil
}

// MarkReturned UPDATE ... WHERE id = ? AND status = 'issued'
// 行锁之外再加一道状态条件,同一条记录只会被归还一次
func (r *transactionRepository) MarkReturned(ctx context.Context, txn *transaction.Transaction) error {
	if txn.ReturnDate == nil {
		return apperrors.New(apperrors.ErrCodeInternal, "归还时间缺失")
	}

	db := dbFrom(ctx, r.db)
	result := db.Model(&TransactionModel{}).
		Where("id = ? AND status = ?", txn.ID, string(transaction.StatusIssued)).
		Updates(map[string]any{
			"status":      string(transaction.StatusReturned),
			"return_date": txn.ReturnDate.UTC(),
			"fine":        txn.Fine,
			"returned_by": txn.ReturnedBy,
		})
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "更新借阅记录失败")
	}

	if result.RowsAffected == 0 {
		var model TransactionModel
		if err := db.Select("id").First(&model, txn.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return transaction.ErrTransactionNotFound
			}
			return apperrors.WrapDB(err, "查询借阅记录失败")
		}
		return transaction.ErrAlreadyReturned
	}
	return nil
}

// detailRow 借阅记录联表查询结果
type detailRow struct {
	TransactionModel `gorm:"embedded"`
	BookTitle        string
	BookISBN         string
	MemberName       string
	MemberEmail      string
}

const detailColumns = "t.*, " +
	"COALESCE(b.title, '') AS book_title, COALESCE(b.isbn, '') AS book_isbn, " +
	"COALESCE(u.name, '') AS member_name, COALESCE(u.email, '') AS member_email"

// detailQuery 借阅记录联表图书和用户
// 图书或用户被软删除后历史记录仍然可以查到名称
func (r *transactionRepository) detailQuery(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db).
		Table("transactions AS t").
		Select(detailColumns).
		Joins("LEFT JOIN books b ON b.id = t.book_id").
		Joins("LEFT JOIN users u ON u.id = t.member_id")
}

func (r *transactionRepository) List(ctx context.Context, params transaction.ListParams) ([]*transaction.Detail, int64, error) {
	var total int64
	countQuery := applyTransactionFilter(dbFrom(ctx, r.db).Table("transactions AS t"), params)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapDB(err, "查询借阅记录总数失败")
	}

	var rows []detailRow
	offset, limit := paginate(params.Page, params.PageSize)
	err := applyTransactionFilter(r.detailQuery(ctx), params).
		Order("t.issue_date DESC").
		Order("t.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, apperrors.WrapDB(err, "查询借阅记录列表失败")
	}

	details := make([]*transaction.Detail, len(rows))
	for i := range rows {
		details[i] = toDetail(&rows[i])
	}
	return details, total, nil
}

func (r *transactionRepository) FindDetailByID(ctx context.Context, id uint) (*transaction.Detail, error) {
	var rows []detailRow
	if err := r.detailQuery(ctx).Where("t.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, apperrors.WrapDB(err, "查询借阅记录失败")
	}
	if len(rows) == 0 {
		return nil, transaction.ErrTransactionNotFound
	}
	return toDetail(&rows[0]), nil
}

func (r *transactionRepository) CountByStatus(ctx context.Context, status transaction.Status) (int64, error) {
	return r.count(ctx, "status = ?", string(status))
}

func (r *transactionRepository) CountReturnedSince(ctx context.Context, since time.Time) (int64, error) {
	return r.count(ctx, "status = ? AND return_date >= ?", string(transaction.StatusReturned), since.UTC())
}

func (r *transactionRepository) CountOverdue(ctx context.Context, before time.Time) (int64, error) {
	return r.count(ctx, "status = ? AND due_date < ?", string(transaction.StatusIssued), before.UTC())
}

func (r *transactionRepository) CountIssuedByBook(ctx context.Context, bookID uint) (int64, error) {
	return r.count(ctx, "status = ? AND book_id = ?", string(transaction.StatusIssued), bookID)
}

func (r *transactionRepository) CountIssuedByMember(ctx context.Context, memberID uint) (int64, error) {
	return r.count(ctx, "status = ? AND member_id = ?", string(transaction.StatusIssued), memberID)
}

func (r *transactionRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var total int64
	if err := dbFrom(ctx, r.db).Model(&TransactionModel{}).Where(query, args...).Count(&total).Error; err != nil {
		return 0, apperrors.WrapDB(err, "统计借阅记录失败")
	}
	return total, nil
}

func applyTransactionFilter(q *gorm.DB, params transaction.ListParams) *gorm.DB {
	if params.MemberID != 0 {
		q = q.Where("t.member_id = ?", params.MemberID)
	}
	if params.BookID != 0 {
		q = q.Where("t.book_id = ?", params.BookID)
	}
	if params.Status != "" {
		q = q.Where("t.status = ?", string(params.Status))
	}
	return q
}

func toTransactionModel(txn *transaction.Transaction) *TransactionModel {
	model := &TransactionModel{
		ID:         txn.ID,
		TxnNo:      txn.TxnNo,
		BookID:     txn.BookID,
		MemberID:   txn.MemberID,
		IssueDate:  txn.IssueDate.UTC(),
		DueDate:    txn.DueDate.UTC(),
		Status:     string(txn.Status),
		Fine:       txn.Fine,
		IssuedBy:   txn.IssuedBy,
		ReturnedBy: txn.ReturnedBy,
	}
	if txn.ReturnDate != nil {
		at := txn.ReturnDate.UTC()
		model.ReturnDate = &at
	}
	return model
}

func toTransactionEntity(model *TransactionModel) *transaction.Transaction {
	return &transaction.Transaction{
		ID:         model.ID,
		TxnNo:      model.TxnNo,
		BookID:     model.BookID,
		MemberID:   model.MemberID,
		IssueDate:  model.IssueDate,
		DueDate:    model.DueDate,
		ReturnDate: model.ReturnDate,
		Status:     transaction.Status(model.Status),
		Fine:       model.Fine,
		IssuedBy:   model.IssuedBy,
		ReturnedBy: model.ReturnedBy,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func toDetail(row *detailRow) *transaction.Detail {
	return &transaction.Detail{
		Transaction: *toTransactionEntity(&row.TransactionModel),
		BookTitle:   row.BookTitle,
		BookISBN:    row.BookISBN,
		MemberName:  row.MemberName,
		MemberEmail: row.MemberEmail,
	}
}
