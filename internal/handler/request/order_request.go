package request

// DispatchOrderRequest 派单
type DispatchOrderRequest struct {
	StaffID    uint64   `json:"staff_id" binding:"required"`
	WindowIDs  []uint64 `json:"window_ids" binding:"required,min=1"`
	AmountWan  int64    `json:"amount_wan" binding:"required,gt=0"`
	UnitPrice  string   `json:"unit_price" binding:"required"` // decimal string, 元/千万
	FeePercent string   `json:"fee_percent"`
	BizDate    string   `json:"biz_date"` // YYYY-MM-DD，缺省当天
}

// PauseOrderRequest 暂停订单
type PauseOrderRequest struct {
	CompletedAmountWan int64 `json:"completed_amount_wan" binding:"min=0"`
}

// ResumeOrderRequest 恢复订单，StaffID 非空时转给新打手
type ResumeOrderRequest struct {
	StaffID *uint64 `json:"staff_id"`
}

// ReleaseWindowRequest 中途释放窗口。EndBalance 缺省按零消耗处理。
type ReleaseWindowRequest struct {
	WindowID   uint64 `json:"window_id" binding:"required"`
	EndBalance *int64 `json:"end_balance"`
}

// CompleteOrderRequest 完成订单
type CompleteOrderRequest struct {
	// EndBalances 窗口 ID -> 终点余额 (最小单位)；缺省的窗口按零消耗处理
	EndBalances map[uint64]int64 `json:"end_balances"`
	// Confirm 少交付时必须显式确认后重新提交
	Confirm bool `json:"confirm"`
}
