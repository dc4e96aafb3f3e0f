package book

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// LoanCounter 查询某本书借出未还的副本数(由借阅仓储实现)
type LoanCounter interface {
	CountIssuedByBook(ctx context.Context, bookID uint) (int64, error)
}

// Transactor 事务执行器(rdb.TxManager)
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service 图书领域服务
type Service interface {
	// AddBook 录入图书
	// 业务规则: ISBN为10位或13位(可含连字符,ISBN-10末位可为X);书名、作者、分类必填;库存>=0;ISBN唯一
	AddBook(ctx context.Context, b *Book) (*Book, error)

	GetBook(ctx context.Context, id uint) (*Book, error)

	UpdateBookInfo(ctx context.Context, id uint, info Info) (*Book, error)

	// DeleteBook 删除图书,仍有借出未还副本时返回ErrBookOnLoan
	// 与借出使用同一把图书行锁,检查和删除之间不会插入新的借出
	DeleteBook(ctx context.Context, id uint) error

	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

type service struct {
	repo  Repository
	loans LoanCounter
	tx    Transactor
}

// NewService 创建图书领域服务
func NewService(repo Repository, loans LoanCounter, tx Transactor) Service {
	return &service{repo: repo, loans: loans, tx: tx}
}

func (s *service) AddBook(ctx context.Context, b *Book) (*Book, error) {
	// 1. 字段校验
	if !isValidISBN(b.ISBN) {
		return nil, ErrInvalidISBN
	}
	if b.Title == "" || b.Author == "" || b.Category == "" {
		return nil, ErrMissingField
	}
	if b.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	// 2. ISBN查重(并发插入由唯一索引兜底,Repository转换为ErrISBNDuplicate)
	existing, err := s.repo.FindByISBN(ctx, b.ISBN)
	if err == nil && existing != nil {
		return nil, ErrISBNDuplicate
	}
	if err != nil && !errors.Is(err, ErrBookNotFound) {
		return nil, err
	}

	// 3. 持久化
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) UpdateBookInfo(ctx context.Context, id uint, info Info) (*Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	b.UpdateInfo(info)
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) DeleteBook(ctx context.Context, id uint) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		// 1. 锁定图书行,并发的借出在LockByID上等待
		if _, err := s.repo.LockByID(ctx, id); err != nil {
			return err
		}

		// 2. 锁内统计未还副本
		onLoan, err := s.loans.CountIssuedByBook(ctx, id)
		if err != nil {
			return err
		}
		if onLoan > 0 {
			return ErrBookOnLoan
		}

		// 3. 软删除,提交后等待中的借出拿到锁时图书已不存在
		return s.repo.Delete(ctx, id)
	})
}

func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

var isbnSeparators = regexp.MustCompile(`[\s-]`)

// isValidISBN 校验位数和字符,不校验校验位
func isValidISBN(isbn string) bool {
	clean := strings.ToUpper(isbnSeparators.ReplaceAllString(isbn, ""))

	switch len(clean) {
	case 13:
		return allDigits(clean)
	case 10:
		return allDigits(clean[:9]) && (clean[9] == 'X' || (clean[9] >= '0' && clean[9] <= '9'))
	default:
		return false
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
