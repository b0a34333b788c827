package dto

import (
	"time"

	"github.com/turtacn/riskscore360/pkg/errors"
)

// APIResponse 通用 API 响应结构
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorDTO   `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDTO 错误信息 DTO
type ErrorDTO struct {
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Description string                 `json:"description,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// SuccessResponse 创建成功响应
func SuccessResponse(data interface{}, requestID string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

// ErrorResponse 创建错误响应
func ErrorResponse(err error, requestID string) *APIResponse {
	return &APIResponse{
		Success:   false,
		Error:     NewErrorDTO(err),
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

// NewErrorDTO 将任意错误转换为 ErrorDTO，非 AppError 按内部错误处理
func NewErrorDTO(err error) *ErrorDTO {
	if err == nil {
		return nil
	}
	resp := errors.ToErrorResponse(err)
	return &ErrorDTO{
		Code:        resp.Error,
		Message:     resp.Message,
		Description: resp.ErrorDescription,
		Details:     resp.Metadata,
	}
}
