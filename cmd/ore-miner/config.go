package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weisyn/oreminer/configs"
)

func newConfigCmd() *cobra.Command {
	var output string
	var force bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "输出示例配置",
		Long: `输出带默认值的示例配置。

使用 --output 写入文件，文件已存在时需要 --force。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data := configs.MinerConfig()
			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s 已存在，使用 --force 覆盖", output)
			}
			if err := os.WriteFile(output, data, 0o600); err != nil {
				return fmt.Errorf("写入配置文件: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已写入 %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "写入的文件路径")
	cmd.Flags().BoolVar(&force, "force", false, "覆盖已有文件")
	return cmd
}
