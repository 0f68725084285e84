// 基于asaskevich/EventBus的事件总线实现

package event

import (
	"sync"
	"sync/atomic"

	evbus "github.com/asaskevich/EventBus"

	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/event"
)

// EventBus 是对 asaskevich/EventBus 的薄封装
//
// 额外保存每个主题最近一次的参数，供状态查询使用；并统计发布次数。
type EventBus struct {
	bus evbus.Bus

	lastMu sync.RWMutex
	last   map[event.EventType][]interface{}

	published atomic.Uint64
}

var _ event.EventBus = (*EventBus)(nil)

// New 创建事件总线实例
func New() *EventBus {
	return &EventBus{
		bus:  evbus.New(),
		last: make(map[event.EventType][]interface{}),
	}
}

// Publish 发布事件
func (eb *EventBus) Publish(topic event.EventType, args ...interface{}) {
	eb.lastMu.Lock()
	eb.last[topic] = args
	eb.lastMu.Unlock()
	eb.published.Add(1)
	eb.bus.Publish(string(topic), args...)
}

// Subscribe 实现订阅
func (eb *EventBus) Subscribe(topic event.EventType, handler interface{}) error {
	return eb.bus.Subscribe(string(topic), handler)
}

// SubscribeAsync 实现异步订阅
func (eb *EventBus) SubscribeAsync(topic event.EventType, handler interface{}, transactional bool) error {
	return eb.bus.SubscribeAsync(string(topic), handler, transactional)
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(topic event.EventType, handler interface{}) error {
	return eb.bus.Unsubscribe(string(topic), handler)
}

// WaitAsync 等待所有异步处理完成
func (eb *EventBus) WaitAsync() {
	eb.bus.WaitAsync()
}

// HasSubscribers 主题是否存在订阅者
func (eb *EventBus) HasSubscribers(topic event.EventType) bool {
	return eb.bus.HasCallback(string(topic))
}

// Last 返回主题最近一次发布的参数
func (eb *EventBus) Last(topic event.EventType) ([]interface{}, bool) {
	eb.lastMu.RLock()
	defer eb.lastMu.RUnlock()
	args, ok := eb.last[topic]
	return args, ok
}

// PublishedCount 已发布事件总数
func (eb *EventBus) PublishedCount() uint64 {
	return eb.published.Load()
}
