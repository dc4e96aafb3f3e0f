package transaction

import (
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
)

// 借阅领域错误定义
var (
	// ErrTransactionNotFound 借阅记录不存在
	ErrTransactionNotFound = apperrors.New(apperrors.ErrCodeTransactionNotFound, "借阅记录不存在")

	// ErrAlreadyReturned 已归还的记录不能再次归还
	ErrAlreadyReturned = apperrors.New(apperrors.ErrCodeAlreadyReturned, "该借阅记录已归还")

	// ErrInvalidDueDate 应还日期缺失
	ErrInvalidDueDate = apperrors.New(apperrors.ErrCodeInvalidParams, "应还日期不能为空")

	// ErrTxnNoGenerate 借阅单号生成失败
	ErrTxnNoGenerate = apperrors.New(apperrors.ErrCodeInternal, "借阅单号生成失败")
)
