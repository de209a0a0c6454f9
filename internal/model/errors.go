package model

import "fmt"

// ConfigError 轮转状态非法或输入为空
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError 创建配置错误
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// QueryError 某个 term/country 查询失败
type QueryError struct {
	Term    string
	Country string
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed [term=%q country=%q]: %v", e.Term, e.Country, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// RenderError 搜索结果记录缺少必需字段
type RenderError struct {
	Field   string
	Term    string
	Country string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("hit record missing field %q [term=%q country=%q]", e.Field, e.Term, e.Country)
}
