package pkg

import (
	"errors"
	"strings"
)

// Kind 业务错误分类，handler 层据此决定 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindPermission
	KindNotFound
	KindConflict
	KindInvalidOperation
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindPermission:
		return "permission denied"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindInvalidOperation:
		return "invalid operation"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	// Fields 仅 KindValidation 使用：字段名 -> 错误信息列表
	Fields map[string][]string
}

func (e *Error) Error() string {
	if e.Kind == KindValidation && len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for field, msgs := range e.Fields {
			parts = append(parts, field+": "+strings.Join(msgs, " "))
		}
		return "validation: " + strings.Join(parts, "; ")
	}
	return e.Message
}

func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: map[string][]string{field: {msg}}}
}

func ValidationFields(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: "invalid input", Fields: fields}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindPermission, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func InvalidOperation(msg string) *Error {
	return &Error{Kind: KindInvalidOperation, Message: msg}
}

// KindOf 非业务错误一律视为 KindInternal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
