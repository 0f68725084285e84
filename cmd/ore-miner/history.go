package main

import (
	"github.com/spf13/cobra"

	"github.com/weisyn/oreminer/internal/app"
	"github.com/weisyn/oreminer/internal/cli/ui"
	"github.com/weisyn/oreminer/internal/config"
	logimpl "github.com/weisyn/oreminer/internal/core/infrastructure/log"
	"github.com/weisyn/oreminer/internal/core/infrastructure/storage"
)

func newHistoryCmd(global *GlobalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "查看最近的挖矿轮次",
		Long: `按时间倒序列出已记录的轮次。

badger 后端同一时间只允许一个进程打开，挖矿进行中请通过状态服务的 /rounds 查询。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(global.appOptions(cmd)...)
			if err != nil {
				return err
			}
			provider := config.NewProvider(cfg)
			store, err := storage.NewHistoryStore(cmd.Context(), provider.GetStorage(), logimpl.NewNop())
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return ui.NewConsole(cmd.OutOrStdout()).HistoryTable(records)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "最多显示的轮次数（0 表示全部）")
	return cmd
}
