// Package handlers 状态服务的 HTTP 处理器
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apitypes "github.com/weisyn/oreminer/internal/api/types"
	"github.com/weisyn/oreminer/pkg/constants/events"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/oreminer/pkg/types"
)

const (
	defaultRoundsLimit = 20
	maxRoundsLimit     = 1000
)

// RoundTracker 提供各事件主题最近一次发布的参数
type RoundTracker interface {
	Last(topic event.EventType) ([]interface{}, bool)
	PublishedCount() uint64
}

// StatusHandlers /health、/status、/rounds 处理器
type StatusHandlers struct {
	tracker   RoundTracker
	history   storage.HistoryStore
	clock     clock.Clock
	authority types.Pubkey
	startTime time.Time
}

// NewStatusHandlers 创建处理器；tracker 与 history 可为 nil
func NewStatusHandlers(tracker RoundTracker, history storage.HistoryStore, clk clock.Clock, authority types.Pubkey) *StatusHandlers {
	return &StatusHandlers{
		tracker:   tracker,
		history:   history,
		clock:     clk,
		authority: authority,
		startTime: clk.Now(),
	}
}

// RegisterRoutes 注册路由
func (h *StatusHandlers) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/status", h.Status)
	r.GET("/rounds", h.Rounds)
}

// Health 进程存活与时钟同步状态
//
// 时钟不健康时 status 为 degraded，仍返回 200：挖矿截止判断使用单调时钟，不依赖 NTP。
func (h *StatusHandlers) Health(c *gin.Context) {
	resp := apitypes.HealthResponse{
		Status: "ok",
		Uptime: h.clock.Since(h.startTime).Truncate(time.Second).String(),
	}
	if !h.authority.IsZero() {
		resp.Authority = h.authority.String()
	}
	if reporter, ok := h.clock.(clock.HealthReporter); ok {
		healthy, offset, lastSync, lastErr := reporter.Health()
		resp.Clock = &apitypes.Health{
			Healthy:  healthy,
			OffsetMs: offset.Milliseconds(),
			LastSync: lastSync,
		}
		if lastErr != nil {
			resp.Clock.Error = lastErr.Error()
		}
		if !healthy {
			resp.Status = "degraded"
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Status 各轮次事件最近一次的记录
func (h *StatusHandlers) Status(c *gin.Context) {
	resp := apitypes.StatusResponse{Rounds: make(map[string]*types.RoundRecord)}
	if !h.authority.IsZero() {
		resp.Authority = h.authority.String()
	}
	if h.tracker != nil {
		resp.Published = h.tracker.PublishedCount()
		for _, topic := range events.AllRoundEvents {
			args, ok := h.tracker.Last(topic)
			if !ok || len(args) == 0 {
				continue
			}
			if rec, ok := args[0].(*types.RoundRecord); ok {
				resp.Rounds[string(topic)] = rec.Clone()
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Rounds 最近的轮次历史，?limit=N（默认 20，上限 1000）
func (h *StatusHandlers) Rounds(c *gin.Context) {
	if h.history == nil {
		_ = c.Error(apitypes.NewProblemDetails(apitypes.CodeHistoryDisabled, "历史记录未启用", "", http.StatusServiceUnavailable))
		return
	}
	limit := defaultRoundsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			_ = c.Error(apitypes.BadRequest("limit 必须为正整数"))
			return
		}
		limit = min(n, maxRoundsLimit)
	}
	records, err := h.history.List(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(apitypes.NewProblemDetails(apitypes.CodeHistoryQuery, "查询轮次历史失败", err.Error(), http.StatusInternalServerError))
		return
	}
	if records == nil {
		records = []*types.RoundRecord{}
	}
	c.JSON(http.StatusOK, apitypes.RoundsResponse{Count: len(records), Rounds: records})
}
