// Package event 定义挖矿客户端内部的事件总线接口
//
// 轮次控制器只负责发布事件；通知、历史记录、WebSocket 推送等
// 旁路功能通过订阅接入，它们的失败不会影响挖矿轮次本身。
package event

// EventType 事件主题
type EventType string

// EventBus 事件总线
type EventBus interface {
	// Publish 发布事件
	Publish(topic EventType, args ...interface{})

	// Subscribe 同步订阅
	Subscribe(topic EventType, handler interface{}) error

	// SubscribeAsync 异步订阅；transactional 为 true 时同一主题的处理串行执行
	SubscribeAsync(topic EventType, handler interface{}, transactional bool) error

	// Unsubscribe 取消订阅
	Unsubscribe(topic EventType, handler interface{}) error

	// WaitAsync 等待所有异步处理完成
	WaitAsync()
}
