// Package types 状态服务的响应结构
package types

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/weisyn/oreminer/pkg/types"
)

// ProblemDetails 错误响应（RFC7807）
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Code      string `json:"code"`
	TraceID   string `json:"traceId"`
	Timestamp string `json:"timestamp"`
}

// Error 实现 error 接口
func (p *ProblemDetails) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// NewProblemDetails 创建错误响应
func NewProblemDetails(code, title, detail string, status int) *ProblemDetails {
	return &ProblemDetails{
		Type:      "about:blank",
		Title:     title,
		Status:    status,
		Detail:    detail,
		Code:      code,
		TraceID:   uuid.New().String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// IsProblemDetails 检查错误是否为 ProblemDetails
func IsProblemDetails(err error) (*ProblemDetails, bool) {
	pd, ok := err.(*ProblemDetails)
	return pd, ok
}

// 错误码
const (
	CodeInvalidParameter = "COMMON_INVALID_PARAMETER"
	CodeInternalError    = "COMMON_INTERNAL_ERROR"
	CodeHistoryDisabled  = "HISTORY_DISABLED"
	CodeHistoryQuery     = "HISTORY_QUERY_FAILED"
)

// BadRequest 参数错误
func BadRequest(detail string) *ProblemDetails {
	return NewProblemDetails(CodeInvalidParameter, "请求参数无效", detail, http.StatusBadRequest)
}

// HealthResponse /health 响应
type HealthResponse struct {
	Status    string  `json:"status"`
	Uptime    string  `json:"uptime"`
	Authority string  `json:"authority,omitempty"`
	Clock     *Health `json:"clock,omitempty"`
}

// Health 时钟同步状态
type Health struct {
	Healthy  bool      `json:"healthy"`
	OffsetMs int64     `json:"offset_ms"`
	LastSync time.Time `json:"last_sync"`
	Error    string    `json:"error,omitempty"`
}

// StatusResponse /status 响应
//
// Rounds 以事件主题为键，值为该主题最近一次发布的轮次记录。
type StatusResponse struct {
	Authority string                        `json:"authority,omitempty"`
	Published uint64                        `json:"published"`
	Rounds    map[string]*types.RoundRecord `json:"rounds"`
}

// RoundsResponse /rounds 响应
type RoundsResponse struct {
	Count  int                  `json:"count"`
	Rounds []*types.RoundRecord `json:"rounds"`
}
