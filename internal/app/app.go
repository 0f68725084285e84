// Package app 装配并运行挖矿客户端
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"

	"github.com/weisyn/oreminer/internal/config"
	"github.com/weisyn/oreminer/pkg/types"
)

// ExitError 应用以非零退出码关闭（如启动阶段创建 proof 账户失败）
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("应用异常退出 (exit code %d)", e.Code)
}

// LoadConfig 读取配置文件并依次应用覆盖
func LoadConfig(opts ...Option) (*types.AppConfig, error) {
	return newOptions(opts...).load()
}

func (o *options) load() (*types.AppConfig, error) {
	if o.appConfig == nil {
		cfg, err := config.LoadAppConfig(o.configFilePath)
		if err != nil {
			return nil, err
		}
		o.appConfig = cfg
	}
	for _, fn := range o.overrides {
		fn(o.appConfig)
	}
	return o.appConfig, nil
}

// App 挖矿客户端应用
type App struct {
	fxApp *fx.App
}

// New 加载配置并构建依赖图，不启动任何服务
//
// 依赖缺失、密钥文件无效、RPC 地址为空等错误在这里返回。
func New(opts ...Option) (*App, error) {
	o := newOptions(opts...)
	if _, err := o.load(); err != nil {
		return nil, err
	}
	fxApp := NewBootstrap(o).CreateFxApp()
	if err := fxApp.Err(); err != nil {
		return nil, fmt.Errorf("构建应用失败: %w", err)
	}
	return &App{fxApp: fxApp}, nil
}

// Run 启动应用，阻塞到收到 SIGINT/SIGTERM、ctx 取消或模块请求关闭
func (a *App) Run(ctx context.Context) error {
	startCtx, cancel := context.WithTimeout(ctx, a.fxApp.StartTimeout())
	defer cancel()
	if err := a.fxApp.Start(startCtx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}

	code := 0
	select {
	case sig := <-a.fxApp.Wait():
		code = sig.ExitCode
	case <-ctx.Done():
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.fxApp.StopTimeout())
	defer stopCancel()
	stopErr := a.fxApp.Stop(stopCtx)
	if code != 0 {
		return errors.Join(&ExitError{Code: code}, stopErr)
	}
	if stopErr != nil {
		return fmt.Errorf("停止应用失败: %w", stopErr)
	}
	return nil
}
