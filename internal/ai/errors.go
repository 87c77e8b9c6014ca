package ai

import (
	"errors"
	"fmt"
)

// ErrAPIKeyMissing 未配置文本生成服务凭证
// 在发起任何网络请求之前检查，调用方（批量模拟）把它当作该次迭代的失败
var ErrAPIKeyMissing = errors.New("ai: api key is not configured")

// ServiceError 远端文本生成调用失败（网络、配额、响应异常）
// 不自动重试，直接向上传播，由调用方决定是否回滚事务
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ai: generation request failed: %v", e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// SchemaError 结构化输出无法解析或不符合声明的 JSON Schema
type SchemaError struct {
	Name string // schema 名称
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("ai: structured output violates schema %q: %v", e.Name, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
