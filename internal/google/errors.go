package google

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Google API 常见错误
var (
	// ErrUnauthorized 凭证无效或过期
	ErrUnauthorized = errors.New("google: unauthorised (invalid credentials)")

	// ErrForbidden 权限不足，或 Custom Search 的 API key 未启用
	ErrForbidden = errors.New("google: forbidden (insufficient permissions)")

	// ErrNotFound 表格或区域不存在
	ErrNotFound = errors.New("google: resource not found")

	// ErrRateLimited 触发限流或配额用尽
	ErrRateLimited = errors.New("google: rate limit exceeded")

	// ErrBadRequest 请求参数错误，例如非法的 range 或 start
	ErrBadRequest = errors.New("google: bad request")
)

// StatusCode 返回 googleapi.Error 中的 HTTP 状态码，不是 googleapi 错误时返回 0
func StatusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}

// IsRateLimited 是否为限流错误
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited) || StatusCode(err) == http.StatusTooManyRequests
}

// WrapError 把 googleapi.Error 归类为具体的哨兵错误，保留原始错误信息
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	var sentinel error
	switch gerr.Code {
	case http.StatusBadRequest:
		sentinel = ErrBadRequest
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusForbidden:
		sentinel = ErrForbidden
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	default:
		return err
	}
	return errors.Join(sentinel, err)
}
