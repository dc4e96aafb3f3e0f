package user

import (
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
)

// 用户领域错误定义
var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = apperrors.New(apperrors.ErrCodeUserNotFound, "用户不存在")

	// ErrEmailDuplicate 邮箱已被注册
	ErrEmailDuplicate = apperrors.New(apperrors.ErrCodeEmailDuplicate, "邮箱已被注册")

	ErrInvalidEmail = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")

	ErrInvalidName = apperrors.New(apperrors.ErrCodeInvalidParams, "姓名长度应为2-50个字符")

	ErrInvalidRole = apperrors.New(apperrors.ErrCodeInvalidParams, "角色只能是admin、librarian或student")

	// ErrDeleteSelf 不能删除当前登录账号
	ErrDeleteSelf = apperrors.New(apperrors.ErrCodeBusinessError, "不能删除自己的账号")

	// ErrMemberHasLoans 仍有未归还图书的会员不能删除
	ErrMemberHasLoans = apperrors.New(apperrors.ErrCodeBookOnLoan, "该用户仍有未归还的图书")
)
