package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/weisyn/oreminer/internal/app"
	"github.com/weisyn/oreminer/internal/cli/ui"
	"github.com/weisyn/oreminer/internal/core/miner/policy"
	"github.com/weisyn/oreminer/pkg/types"
)

type mineFlags struct {
	cores      int
	bufferTime uint64
	pinCores   bool
}

func newMineCmd(global *GlobalFlags) *cobra.Command {
	flags := &mineFlags{}
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "开始挖矿",
		Long: `循环执行挖矿轮次，直到收到 Ctrl+C。

proof 账户不存在时先提交 open 指令创建。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			console := ui.NewConsole(cmd.OutOrStdout())
			opts := append(global.appOptions(cmd),
				app.WithOverride(flags.apply(cmd)),
				app.WithConsole(console),
			)
			// 合并配置文件与命令行后的核心数，超出时调度器会静默截断
			if cfg, err := app.LoadConfig(opts...); err == nil && cfg.Mining != nil && cfg.Mining.Cores != nil {
				if msg, ok := policy.CheckNumCores(*cfg.Mining.Cores); !ok {
					console.Warning(msg)
				}
			}

			a, err := app.New(opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}
	f := cmd.Flags()
	f.IntVar(&flags.cores, "cores", 0, "工作线程数（默认使用全部逻辑核）")
	f.Uint64Var(&flags.bufferTime, "buffer-time", 0, "截止时间提前量（秒）")
	f.BoolVar(&flags.pinCores, "pin-cores", false, "尝试把工作线程绑定到核心")
	return cmd
}

func (f *mineFlags) apply(cmd *cobra.Command) func(*types.AppConfig) {
	changed := cmd.Flags().Changed
	return func(c *types.AppConfig) {
		if c.Mining == nil {
			c.Mining = &types.UserMiningConfig{}
		}
		if changed("cores") {
			c.Mining.Cores = types.IntPtr(f.cores)
		}
		if changed("buffer-time") {
			c.Mining.BufferSeconds = types.UInt64Ptr(f.bufferTime)
		}
		if changed("pin-cores") {
			c.Mining.PinCores = types.BoolPtr(f.pinCores)
		}
	}
}
