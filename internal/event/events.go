package event

// Topic 命名: goldops_events_<entity>
const (
	TopicOrderCompleted   = "goldops_events_order_completed"
	TopicTransferAccepted = "goldops_events_transfer_accepted"
)

// OrderCompletedEvent 订单完成事件
// Topic: goldops_events_order_completed
type OrderCompletedEvent struct {
	OrderID          uint64 `json:"order_id"`
	TenantID         uint64 `json:"tenant_id"`
	StaffID          uint64 `json:"staff_id"`
	BizDate          string `json:"biz_date"`
	AmountWan        int64  `json:"amount_wan"`
	TotalConsumedWan int64  `json:"total_consumed_wan"`
	LossWan          int64  `json:"loss_wan"`
}

// TransferAcceptedEvent 转让接受事件
// Topic: goldops_events_transfer_accepted
type TransferAcceptedEvent struct {
	TransferID   uint64 `json:"transfer_id"`
	FromTenantID uint64 `json:"from_tenant_id"`
	ToTenantID   uint64 `json:"to_tenant_id"`
	Kind         string `json:"kind"`
	TotalGold    int64  `json:"total_gold"`
	Price        string `json:"price"` // Decimal string
}
