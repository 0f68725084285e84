// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
type AppConfig struct {
	// 应用程序基本信息
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据目录路径

	// 链上 RPC 配置
	RPC *UserRPCConfig `json:"rpc,omitempty"`

	// 挖矿配置 - 对应配置文件中的 mining 字段
	Mining *UserMiningConfig `json:"mining,omitempty"`

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// 时钟配置
	Clock *UserClockConfig `json:"clock,omitempty"`

	// 状态服务配置（HTTP /status /metrics /ws）
	API *UserAPIConfig `json:"api,omitempty"`

	// 本地存储配置（轮次历史）
	Storage *UserStorageConfig `json:"storage,omitempty"`

	// 通知配置
	Notifier *UserNotifierConfig `json:"notifier,omitempty"`
}

// UserRPCConfig 用户RPC配置
// 只包含JSON配置文件中实际出现的字段
type UserRPCConfig struct {
	URL            *string `json:"url,omitempty"`             // Solana JSON-RPC 地址
	KeypairPath    *string `json:"keypair,omitempty"`         // 签名密钥文件（Solana JSON 格式）
	TimeoutSeconds *int    `json:"timeout_seconds,omitempty"` // 单次请求超时
	PriorityFee    *uint64 `json:"priority_fee,omitempty"`    // 优先费（micro-lamports / CU）
}

// UserMiningConfig 用户挖矿配置
type UserMiningConfig struct {
	Cores            *int    `json:"cores,omitempty"`                  // 核心数上限（0 表示全部）
	BufferSeconds    *uint64 `json:"buffer_time,omitempty"`            // 截止时间提前量（秒）
	PinCores         *bool   `json:"pin_cores,omitempty"`              // 是否尝试绑核
	ResetOneIn       *uint32 `json:"reset_one_in,omitempty"`           // 重置指令节流（1/N）
	ResetBufferSecs  *int64  `json:"reset_buffer_seconds,omitempty"`   // epoch 重置安全余量（秒）
	DefaultCutoff    *uint64 `json:"default_cutoff_seconds,omitempty"` // 读取链上时钟失败时的截止时间
	BackoffInitialMs *int    `json:"backoff_initial_ms,omitempty"`     // 提交失败退避初值
	BackoffMaxMs     *int    `json:"backoff_max_ms,omitempty"`         // 提交失败退避上限
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level    *string `json:"level,omitempty"`     // 日志级别：debug, info, warn, error, fatal
	FilePath *string `json:"file_path,omitempty"` // 日志文件路径

	ToConsole    *bool `json:"to_console,omitempty"`    // 后台运行时可关闭控制台输出
	MaxSizeMB    *int  `json:"max_size,omitempty"`      // 单个日志文件上限（MB）
	MaxBackups   *int  `json:"max_backups,omitempty"`   // 保留的历史文件数
	EnableCaller *bool `json:"enable_caller,omitempty"` // 输出调用位置
}

// UserClockConfig 用户时钟配置
type UserClockConfig struct {
	Type      *string `json:"type,omitempty"`       // system | ntp
	NTPServer *string `json:"ntp_server,omitempty"` // 如 time.google.com
}

// UserAPIConfig 用户状态服务配置
type UserAPIConfig struct {
	HTTPEnabled *bool   `json:"http_enabled,omitempty"` // 是否启用HTTP服务（默认false）
	HTTPHost    *string `json:"http_host,omitempty"`
	HTTPPort    *int    `json:"http_port,omitempty"` // HTTP监听端口
}

// UserStorageConfig 用户存储配置
type UserStorageConfig struct {
	Enabled    *bool   `json:"enabled,omitempty"`      // 是否记录轮次历史
	Backend    *string `json:"backend,omitempty"`      // badger | memory | redis
	Path       *string `json:"path,omitempty"`         // BadgerDB 目录
	RetainHour *int    `json:"retain_hours,omitempty"` // memory 后端保留时长
	RedisURL   *string `json:"redis_url,omitempty"`    // redis://host:6379/0
	RedisKey   *string `json:"redis_key,omitempty"`    // 历史列表键名
}

// UserNotifierConfig 用户通知配置
type UserNotifierConfig struct {
	WebhookURL        *string `json:"webhook_url,omitempty"`        // Discord webhook
	MentionDifficulty *uint32 `json:"mention_difficulty,omitempty"` // 达到该难度时 @everyone
	ExplorerTxURL     *string `json:"explorer_tx_url,omitempty"`    // 交易浏览器前缀
}

// 配置辅助函数
// 这些函数帮助创建指针类型的配置值，区分"未设置"和"设置为零值"

// BoolPtr 创建bool指针，用于明确表示用户设置了该值
func BoolPtr(v bool) *bool {
	return &v
}

// IntPtr 创建int指针，用于明确表示用户设置了该值
func IntPtr(v int) *int {
	return &v
}

// StringPtr 创建string指针，用于明确表示用户设置了该值
func StringPtr(v string) *string {
	return &v
}

// UInt64Ptr 创建uint64指针，用于明确表示用户设置了该值
func UInt64Ptr(v uint64) *uint64 {
	return &v
}

// UInt32Ptr 创建uint32指针
func UInt32Ptr(v uint32) *uint32 {
	return &v
}
