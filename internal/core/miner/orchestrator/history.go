package orchestrator

import (
	"context"
	"time"

	"github.com/weisyn/oreminer/pkg/constants/events"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/oreminer/pkg/types"
)

const historySaveTimeout = 5 * time.Second

// HistoryRecorder 把结束的轮次写入历史存储
type HistoryRecorder struct {
	store  storage.HistoryStore
	logger log.Logger
}

// NewHistoryRecorder 创建记录器
func NewHistoryRecorder(store storage.HistoryStore, logger log.Logger) *HistoryRecorder {
	return &HistoryRecorder{store: store, logger: logger}
}

// Record 保存一轮记录，失败只记录日志
func (h *HistoryRecorder) Record(r *types.RoundRecord) {
	if r == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), historySaveTimeout)
	defer cancel()
	if err := h.store.Save(ctx, r); err != nil && h.logger != nil {
		h.logger.Warnf("保存轮次记录 %s 失败: %v", r.ID, err)
	}
}

// Subscribe 订阅轮次结束事件（确认与失败），同一主题内串行写入
func (h *HistoryRecorder) Subscribe(bus event.EventBus) error {
	for _, topic := range []event.EventType{events.EventTypeRoundConfirmed, events.EventTypeRoundFailed} {
		if err := bus.SubscribeAsync(topic, h.Record, true); err != nil {
			return err
		}
	}
	return nil
}
