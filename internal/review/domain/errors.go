package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound 目标记录不存在，仅用于定点查询；列表查询返回空集不报错
var ErrNotFound = errors.New("record not found")

// ErrDuplicateReview 同 (客户, 日期, 类型) 的审核已存在
var ErrDuplicateReview = errors.New("review already exists for client, date and type")

// ErrValidation 入参校验失败
var ErrValidation = errors.New("validation failed")

// DuplicateError 查重冲突，携带已存在的记录供调用方展示
type DuplicateError struct {
	Conflict *Review
}

func (e *DuplicateError) Error() string {
	if e.Conflict != nil {
		return fmt.Sprintf("review already exists: client=%s date=%s tipo=%s id=%d",
			e.Conflict.ClientID, e.Conflict.AnalysisDate, e.Conflict.Tipo, e.Conflict.ID)
	}
	return ErrDuplicateReview.Error()
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateReview }

// NewDuplicateError 创建查重冲突错误
func NewDuplicateError(conflict *Review) *DuplicateError {
	return &DuplicateError{Conflict: conflict}
}

// ValidationError 字段级校验错误
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError 创建校验错误
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
