package errors

import (
	"errors"
	"fmt"
)

// AppError 应用错误
// Code返回给客户端,Message是可展示的提示,Err只进日志不返回给客户端
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较,包装后的同码错误也能被errors.Is命中哨兵错误
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e == t || (t.Err == nil && e.Code == t.Code && e.Message == t.Message)
}

// WithErr 复制错误码和提示,附带底层错误(errors.Is仍能命中原哨兵错误)
func (e *AppError) WithErr(err error) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Err: err}
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装基础设施错误(数据库、网络、缓存),对外统一为内部错误
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WrapDB 包装数据库错误
func WrapDB(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeDatabaseError,
		Message: message,
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 4xxxx: 调用方可处理的错误(参数、业务规则、资源不存在)
// 5xxxx: 服务端错误(数据库、缓存、消息队列)

const (
	// 系统级错误码(50000-50099)
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeMQError       = 50003 // 消息队列错误

	// 认证授权错误(40100-40199)
	ErrCodeUnauthorized    = 40100 // 未登录
	ErrCodeInvalidToken    = 40101 // Token无效
	ErrCodeTokenExpired    = 40102 // Token过期
	ErrCodeInvalidPassword = 40103 // 密码错误
	ErrCodeForbidden       = 40104 // 无权限

	// 资源不存在(40400-40499)
	ErrCodeNotFound            = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound        = 40401 // 用户不存在
	ErrCodeBookNotFound        = 40402 // 图书不存在
	ErrCodeTransactionNotFound = 40403 // 借阅记录不存在

	// 业务规则错误(40000-40099)
	ErrCodeBusinessError   = 40000 // 业务错误(通用)
	ErrCodeOutOfStock      = 40001 // 无可借副本
	ErrCodeAlreadyReturned = 40002 // 已归还
	ErrCodeEmailDuplicate  = 40003 // 邮箱已存在
	ErrCodeISBNDuplicate   = 40004 // ISBN已存在
	ErrCodeWeakPassword    = 40005 // 密码强度不足
	ErrCodeBookOnLoan      = 40006 // 图书仍有借出副本
	ErrCodeDuplicateEntry  = 40009 // 重复记录(通用)

	// 参数错误(40900-40999)
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
)

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	// 认证授权
	ErrUnauthorized    = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "邮箱或密码错误")
	ErrForbidden       = New(ErrCodeForbidden, "无权限访问")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
	ErrWeakPassword  = New(ErrCodeWeakPassword, "密码强度不足(需8-20位,包含字母和数字)")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError,不是AppError则包装成内部错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// IsNotFound 判断是否为资源不存在类错误(404xx)
func IsNotFound(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code >= ErrCodeNotFound && appErr.Code < ErrCodeNotFound+100
}

// IsInfrastructure 判断是否为服务端错误(5xxxx),非AppError也按服务端错误处理
func IsInfrastructure(err error) bool {
	if err == nil {
		return false
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return true
	}
	return appErr.Code >= 50000
}
