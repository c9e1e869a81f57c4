package cmd

import (
	"github.com/spf13/cobra"
)

// costCmd 代表 cost 命令
var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "查询租户的加权平均进货成本",
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiGet("/api/v1/stats/avg-cost")
	},
}

func init() {
	rootCmd.AddCommand(costCmd)
}
