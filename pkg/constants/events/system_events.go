// Package events 挖矿轮次事件主题常量
//
// 命名规范：domain.category.action
//
// ```go
// import "github.com/weisyn/oreminer/pkg/constants/events"
//
// eventBus.SubscribeAsync(events.EventTypeRoundConfirmed, handler, false)
// eventBus.Publish(events.EventTypeRoundConfirmed, record)
// ```
//
// 所有主题的参数均为单个 *types.RoundRecord。
package events

import (
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/event"
)

const (
	// EventTypeRoundStarted 新一轮开始（已取得 proof/config）
	EventTypeRoundStarted event.EventType = "miner.round.started"

	// EventTypeSolutionFound 并行搜索结束，得到本轮最优解
	EventTypeSolutionFound event.EventType = "miner.round.solution_found"

	// EventTypeRoundConfirmed 交易确认成功
	EventTypeRoundConfirmed event.EventType = "miner.round.confirmed"

	// EventTypeRoundFailed 交易提交失败
	EventTypeRoundFailed event.EventType = "miner.round.failed"
)

// AllRoundEvents 全部轮次事件（WebSocket 推送按此顺序订阅）
var AllRoundEvents = []event.EventType{
	EventTypeRoundStarted,
	EventTypeSolutionFound,
	EventTypeRoundConfirmed,
	EventTypeRoundFailed,
}
