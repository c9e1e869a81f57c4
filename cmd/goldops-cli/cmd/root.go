package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "goldops-cli",
	Short: "金币商户运营平台管理工具",
	Long: `goldops-core 的命令行管理工具。
通过 HTTP API 查询加权平均成本和日结算统计。`,
}

// 全局标志
var (
	serverAddr string
	tenantID   uint64
)

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "http://localhost:8080", "goldops-server 地址")
	rootCmd.PersistentFlags().Uint64Var(&tenantID, "tenant", 0, "租户 ID")
}
