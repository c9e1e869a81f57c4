package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

// apiGet 带租户头请求服务端并美化输出 data 部分
func apiGet(path string) error {
	if tenantID == 0 {
		return fmt.Errorf("必须指定 --tenant")
	}

	client := resty.New().SetBaseURL(serverAddr)
	resp, err := client.R().
		SetHeader("X-Tenant-ID", strconv.FormatUint(tenantID, 10)).
		Get(path)
	if err != nil {
		return err
	}

	var envelope struct {
		Code    int             `json:"code"`
		Message string          `json:"msg"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("响应解析失败: %w", err)
	}
	if envelope.Code != 0 {
		return fmt.Errorf("服务端错误 (code=%d): %s", envelope.Code, envelope.Message)
	}

	pretty, err := json.MarshalIndent(json.RawMessage(envelope.Data), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}

// statsCmd 代表 stats 命令
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "查询租户的日结算和全局统计",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("== 日结算 ==")
		if err := apiGet("/api/v1/stats/daily"); err != nil {
			return err
		}
		fmt.Println("== 全局统计 ==")
		return apiGet("/api/v1/stats/overview")
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
