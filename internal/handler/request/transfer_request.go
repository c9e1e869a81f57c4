package request

// RequestWindowTransferRequest 单窗口转让
type RequestWindowTransferRequest struct {
	ToTenantID uint64 `json:"to_tenant_id" binding:"required"`
	WindowID   uint64 `json:"window_id" binding:"required"`
	Price      string `json:"price"` // 缺省按发送方加权平均成本计价
}

// RequestMachineTransferRequest 整机转让
type RequestMachineTransferRequest struct {
	ToTenantID uint64 `json:"to_tenant_id" binding:"required"`
	MachineID  uint64 `json:"machine_id" binding:"required"`
	Price      string `json:"price"`
}

// RespondTransferRequest 接受/拒绝转让
type RespondTransferRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
}
