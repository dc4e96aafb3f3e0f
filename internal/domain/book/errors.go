package book

import (
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrOutOfStock 没有可借副本
	ErrOutOfStock = apperrors.New(apperrors.ErrCodeOutOfStock, "该图书暂无可借副本")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "ISBN号已存在")

	// ErrInvalidQuantity 库存数量非法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "库存数量不能为负数")

	// ErrInvalidDelta 调整量为0
	ErrInvalidDelta = apperrors.New(apperrors.ErrCodeInvalidParams, "库存调整量不能为0")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")

	// ErrMissingField 书名、作者、分类必填
	ErrMissingField = apperrors.New(apperrors.ErrCodeInvalidParams, "书名、作者和分类不能为空")

	// ErrBookOnLoan 仍有借出未还的副本,不能删除
	ErrBookOnLoan = apperrors.New(apperrors.ErrCodeBookOnLoan, "该图书仍有未归还的借阅记录")
)
