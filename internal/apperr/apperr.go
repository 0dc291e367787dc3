// internal/apperr/apperr.go - 业务错误分类
package apperr

import "github.com/zeebo/errs"

// 错误类, 处理器按类映射为 HTTP 状态码
var (
	// ErrValidation 参数错误, 不重试
	ErrValidation = errs.Class("参数错误")
	// ErrNotFound 资源不存在
	ErrNotFound = errs.Class("资源不存在")
	// ErrNoAuth 无权限, 默认拒绝
	ErrNoAuth = errs.Class("无权限")
	// ErrQuotaExceeded 空间额度不足
	ErrQuotaExceeded = errs.Class("额度不足")
	// ErrOperation 操作失败(状态冲突等)
	ErrOperation = errs.Class("操作失败")
	// ErrSystem 系统错误(IO/存储/外部服务), 对外不暴露细节
	ErrSystem = errs.Class("系统错误")
)
