package app

import (
	"go.uber.org/fx"

	"github.com/weisyn/oreminer/internal/cli/ui"
	"github.com/weisyn/oreminer/pkg/interfaces/config"
	"github.com/weisyn/oreminer/pkg/types"
)

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项，实现 config.AppOptions
type options struct {
	// 配置文件路径，文件不存在时使用默认配置
	configFilePath string

	// 已加载的用户配置（优先级高于 configFilePath）
	appConfig *types.AppConfig

	// 命令行参数等覆盖，按添加顺序在文件加载之后执行
	overrides []func(*types.AppConfig)

	// 状态服务模块开关（默认装配，是否监听由 api.http_enabled 决定）
	enableAPI bool

	// 终端输出，为 nil 时不输出逐轮信息
	console *ui.Console

	// 附加 fx 选项，测试时用于替换依赖
	extra []fx.Option
}

var _ config.AppOptions = (*options)(nil)

// WithConfigFile 设置配置文件路径
func WithConfigFile(path string) Option {
	return func(o *options) { o.configFilePath = path }
}

// WithAppConfig 直接使用给定配置，不再读取文件
func WithAppConfig(cfg *types.AppConfig) Option {
	return func(o *options) { o.appConfig = cfg }
}

// WithOverride 在配置加载后修改配置
func WithOverride(fn func(*types.AppConfig)) Option {
	return func(o *options) { o.overrides = append(o.overrides, fn) }
}

// WithoutAPI 不装配状态服务模块
func WithoutAPI() Option {
	return func(o *options) { o.enableAPI = false }
}

// WithConsole 订阅轮次事件并输出到终端
func WithConsole(c *ui.Console) Option {
	return func(o *options) { o.console = c }
}

// WithFxOptions 附加 fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) { o.extra = append(o.extra, opts...) }
}

func newOptions(opts ...Option) *options {
	o := &options{enableAPI: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GetAppConfig 返回应用程序配置
func (o *options) GetAppConfig() *types.AppConfig {
	return o.appConfig
}
