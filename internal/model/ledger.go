package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 台账类型
const (
	LedgerKindNormal      = "normal"       // 正常进货
	LedgerKindTransferOut = "transfer_out" // 转让出库 (amount/cost 均为负)
	LedgerKindTransferIn  = "transfer_in"  // 转让入库
)

// LedgerEntry 进货台账 (append-only)
// Amount 单位是最小金币单位，Cost 是对应支出 (元)。
// 某租户的全部台账是成本模型的唯一输入。
type LedgerEntry struct {
	ID       uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID uint64          `gorm:"not null;index:idx_ledger_tenant_date" json:"tenant_id"`
	BizDate  string          `gorm:"type:varchar(10);not null;index:idx_ledger_tenant_date" json:"biz_date"`
	Amount   int64           `gorm:"not null" json:"amount"`
	Cost     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"cost"`
	Kind     string          `gorm:"type:varchar(20);not null;default:'normal'" json:"kind"`
	// 转让产生的条目带上请求 ID，方便审计
	TransferID *uint64   `gorm:"index" json:"transfer_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DailySettlement 每日结算快照 (定时任务物化，实时查询仍然现算)
type DailySettlement struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID     uint64          `gorm:"not null;uniqueIndex:idx_settle_tenant_date" json:"tenant_id"`
	BizDate      string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_settle_tenant_date" json:"biz_date"`
	Revenue      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"revenue"`
	EmployeeCost decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"employee_cost"`
	Cogs         decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"cogs"`
	Profit       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"profit"`
	SoldWan      int64           `gorm:"not null;default:0" json:"sold_wan"`
	LossWan      int64           `gorm:"not null;default:0" json:"loss_wan"`
	OrderCount   int             `gorm:"not null;default:0" json:"order_count"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

func (DailySettlement) TableName() string {
	return "daily_settlements"
}
