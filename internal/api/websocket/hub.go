// Package websocket 向浏览器或监控脚本推送挖矿轮次事件
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/weisyn/oreminer/pkg/constants/events"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/event"
	logInterface "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/oreminer/pkg/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Message 推送给客户端的消息
type Message struct {
	Topic string             `json:"topic"`
	Round *types.RoundRecord `json:"round"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub 订阅全部轮次事件，并广播给已连接的客户端
//
// 客户端只读：发来的消息被丢弃。发送队列满的慢客户端会被断开。
type Hub struct {
	bus      event.EventBus
	logger   logInterface.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	clients  map[*client]struct{}
	handlers map[event.EventType]func(*types.RoundRecord)
}

// NewHub 创建推送中心
func NewHub(bus event.EventBus, readBufferSize, writeBufferSize int, logger logInterface.Logger) *Hub {
	return &Hub{
		bus:    bus,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			// 状态服务默认只监听本机
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients:  make(map[*client]struct{}),
		handlers: make(map[event.EventType]func(*types.RoundRecord)),
	}
}

// Start 订阅轮次事件
func (h *Hub) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range events.AllRoundEvents {
		if _, ok := h.handlers[topic]; ok {
			continue
		}
		topic := topic
		handler := func(r *types.RoundRecord) { h.broadcast(topic, r) }
		if err := h.bus.SubscribeAsync(topic, handler, true); err != nil {
			return err
		}
		h.handlers[topic] = handler
	}
	return nil
}

// Stop 取消订阅并断开所有客户端
func (h *Hub) Stop() {
	h.mu.Lock()
	handlers := h.handlers
	h.handlers = make(map[event.EventType]func(*types.RoundRecord))
	h.mu.Unlock()

	// 取消订阅时不持有 h.mu，正在执行的 broadcast 可能在等待它
	for topic, handler := range handlers {
		if err := h.bus.Unsubscribe(topic, handler); err != nil {
			h.logger.Warnf("取消订阅 %s 失败: %v", topic, err)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		h.removeLocked(cl)
	}
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS 升级连接并阻塞到客户端断开（Gin Handler）
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnf("WebSocket 升级失败: %v", err)
		return
	}
	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
	h.logger.Infof("WebSocket 连接建立: %s", conn.RemoteAddr())

	go h.writePump(cl)
	h.readPump(cl)

	h.mu.Lock()
	h.removeLocked(cl)
	h.mu.Unlock()
}

func (h *Hub) broadcast(topic event.EventType, r *types.RoundRecord) {
	payload, err := json.Marshal(Message{Topic: string(topic), Round: r})
	if err != nil {
		h.logger.Errorf("序列化轮次事件失败: %v", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- payload:
		default:
			h.logger.Warnf("WebSocket 客户端过慢，断开: %s", cl.conn.RemoteAddr())
			h.removeLocked(cl)
		}
	}
}

// removeLocked 移除客户端并关闭发送队列，调用方持有 h.mu
func (h *Hub) removeLocked(cl *client) {
	if _, ok := h.clients[cl]; !ok {
		return
	}
	delete(h.clients, cl)
	close(cl.send)
}

func (h *Hub) readPump(cl *client) {
	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warnf("WebSocket 连接异常关闭: %v", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
