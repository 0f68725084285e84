package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weisyn/oreminer/internal/app"
	"github.com/weisyn/oreminer/internal/cli/ui"
	"github.com/weisyn/oreminer/internal/config"
	"github.com/weisyn/oreminer/internal/core/chain/pda"
	"github.com/weisyn/oreminer/internal/core/chain/rpc"
	logimpl "github.com/weisyn/oreminer/internal/core/infrastructure/log"
	"github.com/weisyn/oreminer/pkg/types"
)

func newBusCmd(global *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "bus",
		Short: "查看各 bus 的剩余奖励",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(global.appOptions(cmd)...)
			if err != nil {
				return err
			}
			client, err := rpc.New(cmd.Context(), config.NewProvider(cfg).GetRPC(), logimpl.NewNop())
			if err != nil {
				return err
			}
			defer client.Close()

			addresses := pda.BusAddresses()
			accounts, err := client.GetMultipleAccounts(cmd.Context(), addresses)
			if err != nil {
				return fmt.Errorf("读取 bus 账户: %w", err)
			}
			buses := make([]*types.Bus, len(addresses))
			for i, data := range accounts {
				if data == nil {
					continue
				}
				if bus, err := types.DecodeBus(data); err == nil {
					buses[i] = bus
				}
			}
			return ui.NewConsole(cmd.OutOrStdout()).BusTable(addresses, buses)
		},
	}
}
