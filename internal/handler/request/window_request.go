package request

// CreateMachineRequest 新购机器 (窗口随机器一并创建)
type CreateMachineRequest struct {
	Name           string `json:"name" binding:"required"`
	Phone          string `json:"phone"`
	Platform       string `json:"platform"`
	LoginType      string `json:"login_type"`
	LoginPassword  string `json:"login_password"`
	WindowCount    int    `json:"window_count" binding:"min=0"`
	InitialBalance int64  `json:"initial_balance" binding:"min=0"`
}

// CreateWindowRequest 在既有机器下加窗口
type CreateWindowRequest struct {
	MachineID      uint64 `json:"machine_id" binding:"required"`
	WindowNumber   int    `json:"window_number" binding:"required"`
	InitialBalance int64  `json:"initial_balance" binding:"min=0"`
}

// AssignWindowRequest 分配/释放窗口。StaffID 为空表示释放回未分配。
type AssignWindowRequest struct {
	StaffID *uint64 `json:"staff_id"`
}

// RechargeWindowRequest 窗口充值: 设置绝对余额 (最小单位)
type RechargeWindowRequest struct {
	GoldBalance int64 `json:"gold_balance" binding:"min=0"`
}

// AppendLedgerRequest 记一笔进货台账
type AppendLedgerRequest struct {
	BizDate   string `json:"biz_date" binding:"required"`
	AmountWan int64  `json:"amount_wan" binding:"required,gt=0"`
	Cost      string `json:"cost" binding:"required"` // 元，decimal string
}
