package main

import (
	"github.com/spf13/cobra"

	"github.com/weisyn/oreminer/internal/app"
	"github.com/weisyn/oreminer/pkg/types"
)

const defaultConfigPath = "./configs/miner.json"

// GlobalFlags 全局标志，显式给出时覆盖配置文件
type GlobalFlags struct {
	ConfigPath  string
	RPC         string
	Keypair     string
	PriorityFee uint64
}

func newRootCmd() *cobra.Command {
	flags := &GlobalFlags{}
	root := &cobra.Command{
		Use:   "ore-miner",
		Short: "ORE 挖矿客户端",
		Long: `ore-miner 在本机并行搜索 ORE 工作量证明，并把答案提交到 Solana。

配置文件可选（默认 ./configs/miner.json），命令行参数优先于配置文件，
环境变量 ORE_RPC_URL、ORE_KEYPAIR 优先于两者。`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.ConfigPath, "config", defaultConfigPath, "配置文件路径")
	pf.StringVar(&flags.RPC, "rpc", "", "Solana JSON-RPC 地址")
	pf.StringVar(&flags.Keypair, "keypair", "", "签名密钥文件（Solana JSON 格式）")
	pf.Uint64Var(&flags.PriorityFee, "priority-fee", 0, "优先费（micro-lamports / CU）")

	root.AddCommand(
		newMineCmd(flags),
		newHistoryCmd(flags),
		newBusCmd(flags),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// appOptions 配置文件路径与已显式给出的全局标志
func (f *GlobalFlags) appOptions(cmd *cobra.Command) []app.Option {
	opts := []app.Option{app.WithConfigFile(f.ConfigPath)}
	changed := cmd.Flags().Changed
	if !changed("rpc") && !changed("keypair") && !changed("priority-fee") {
		return opts
	}
	return append(opts, app.WithOverride(func(c *types.AppConfig) {
		if c.RPC == nil {
			c.RPC = &types.UserRPCConfig{}
		}
		if changed("rpc") {
			c.RPC.URL = types.StringPtr(f.RPC)
		}
		if changed("keypair") {
			c.RPC.KeypairPath = types.StringPtr(f.Keypair)
		}
		if changed("priority-fee") {
			c.RPC.PriorityFee = types.UInt64Ptr(f.PriorityFee)
		}
	}))
}
