package notion

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error はNotion APIが返したエラーレスポンス。
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`

	// Retry-Afterヘッダーで指定された待ち時間
	retryAfter    time.Duration
	hasRetryAfter bool
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("notion: status %d (%s): %s", e.Status, e.Code, e.Message)
}

// IsValidationError はクエリ条件がソース側で拒否されたエラーかを判定する。
// 存在しないプロパティでのソートなどが該当する。
func IsValidationError(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusBadRequest || apiErr.Code == "validation_error"
}

// IsNotFound はリソースが見つからない（または共有されていない）エラーかを判定する。
func IsNotFound(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusNotFound || apiErr.Code == "object_not_found"
}
