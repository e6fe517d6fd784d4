package domain

import (
	"errors"
	"fmt"
)

// ErrorKind 错误分类
// 调用方依据分类选择补救路径，禁止对错误消息做字符串匹配。
type ErrorKind string

const (
	// KindValidation 入参非法，任何状态变更之前即被拒绝
	KindValidation ErrorKind = "validation"
	// KindRoutingRejected 路由时点合规校验未通过（如 IPO 冷静期），未提交任何状态
	KindRoutingRejected ErrorKind = "routing_rejected"
	// KindApprovalRequired 缺少必要的人工审批（覆盖审批人、四眼关闭）
	KindApprovalRequired ErrorKind = "approval_required"
	// KindNotFound 订单/块/差错不存在
	KindNotFound ErrorKind = "not_found"
	// KindConflict 与当前状态冲突的操作（重复分配、取消已成交订单）
	KindConflict ErrorKind = "conflict"
)

// Error 携带分类的领域错误
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewValidation 构造入参校验错误
func NewValidation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewRoutingRejected 构造路由拒绝错误
func NewRoutingRejected(format string, args ...any) *Error {
	return &Error{Kind: KindRoutingRejected, Message: fmt.Sprintf(format, args...)}
}

// NewApprovalRequired 构造缺少审批错误
func NewApprovalRequired(format string, args ...any) *Error {
	return &Error{Kind: KindApprovalRequired, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound 构造未找到错误
func NewNotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewConflict 构造状态冲突错误
func NewConflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// KindOf 返回错误分类；非领域错误返回空串。
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind 判断错误是否属于指定分类。
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
