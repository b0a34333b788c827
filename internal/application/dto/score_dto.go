package dto

import (
	"encoding/json"

	"github.com/turtacn/riskscore360/internal/domain/models"
)

// BatchScoreRequest is the body of a batch scoring call. Each document is
// decoded independently, so one malformed document fails only its own item.
// BatchScoreRequest 是批量评分请求体。每个文档独立解码，单个文档格式错误只影响其自身条目。
type BatchScoreRequest struct {
	Documents []json.RawMessage `json:"documents" validate:"required,min=1,max=100"`
}

// BatchItem is the outcome of one document of a batch, in request order.
// BatchItem 是批量请求中单个文档的结果，按请求顺序排列。
type BatchItem struct {
	Index  int                 `json:"index"`
	Source string              `json:"source,omitempty"`
	Result *models.ScoreResult `json:"result,omitempty"`
	Error  *ErrorDTO           `json:"error,omitempty"`
}

// BatchResponse summarizes a batch.
type BatchResponse struct {
	Items     []*BatchItem `json:"items"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// NewBatchResponse counts the successful and failed items.
func NewBatchResponse(items []*BatchItem) *BatchResponse {
	resp := &BatchResponse{Items: items}
	for _, item := range items {
		if item.Error != nil {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}
	return resp
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
}
