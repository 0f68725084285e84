// Package http 本地状态服务：健康检查、轮次状态、历史、指标与 WebSocket 推送
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weisyn/oreminer/internal/api/http/handlers"
	"github.com/weisyn/oreminer/internal/api/http/middleware"
	"github.com/weisyn/oreminer/internal/api/websocket"
	apiconfig "github.com/weisyn/oreminer/internal/config/api"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/event"
	logInterface "github.com/weisyn/oreminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/oreminer/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/oreminer/pkg/types"
)

// Deps 状态服务依赖；除 Config、Clock、Logger 外均可为空
type Deps struct {
	Config     *apiconfig.HTTPConfig
	Clock      clock.Clock
	Logger     logInterface.Logger
	Authority  types.Pubkey
	EventBus   event.EventBus
	Tracker    handlers.RoundTracker
	History    storage.HistoryStore
	Gatherer   prometheus.Gatherer
	Registerer prometheus.Registerer
}

// Server HTTP 状态服务
type Server struct {
	cfg    *apiconfig.HTTPConfig
	logger logInterface.Logger
	router *gin.Engine
	hub    *websocket.Hub

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	done       chan struct{}
}

// NewServer 创建服务并注册路由，不监听端口
func NewServer(d Deps) *Server {
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(d.Logger),
		middleware.NewMetrics(d.Registerer).Middleware(),
		middleware.ErrorHandler(d.Logger),
	)

	s := &Server{cfg: d.Config, logger: d.Logger, router: router}

	handlers.NewStatusHandlers(d.Tracker, d.History, d.Clock, d.Authority).RegisterRoutes(router)

	if d.Config.EnableMetrics && d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	if d.Config.EnableWebSocket && d.EventBus != nil {
		s.hub = websocket.NewHub(d.EventBus, d.Config.ReadBufferSize, d.Config.WriteBufferSize, d.Logger)
		router.GET("/ws", s.hub.ServeWS)
	}
	return s
}

// Handler 路由，测试时可直接交给 httptest
func (s *Server) Handler() http.Handler { return s.router }

// Hub WebSocket 推送中心，未启用时为 nil
func (s *Server) Hub() *websocket.Hub { return s.hub }

// Start 监听端口并在后台提供服务
//
// 端口被占用时直接返回错误。
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer != nil {
		return errors.New("状态服务已启动")
	}

	if s.hub != nil {
		if err := s.hub.Start(); err != nil {
			return fmt.Errorf("订阅轮次事件失败: %w", err)
		}
	}

	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		if s.hub != nil {
			s.hub.Stop()
		}
		return fmt.Errorf("监听 %s 失败: %w", s.cfg.Addr(), err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	s.done = make(chan struct{})

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("状态服务异常退出: %v", err)
		}
	}(s.httpServer, s.done)

	s.logger.Infof("状态服务已启动: http://%s", ln.Addr())
	return nil
}

// Addr 实际监听地址，未启动时为空
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop 断开 WebSocket 客户端并优雅关闭
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.httpServer, s.done
	s.httpServer, s.listener = nil, nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	if s.hub != nil {
		s.hub.Stop()
	}
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	err := srv.Shutdown(ctx)
	<-done
	s.logger.Info("状态服务已停止")
	return err
}
