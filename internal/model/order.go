package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 订单状态
const (
	OrderStatusPending   = "pending"
	OrderStatusPaused    = "paused"
	OrderStatusCompleted = "completed"
)

// WindowSnapshot 派单时窗口的快照
type WindowSnapshot struct {
	WindowID     uint64 `json:"window_id"`
	MachineID    uint64 `json:"machine_id"`
	WindowNumber int    `json:"window_number"`
	MachineName  string `json:"machine_name"`
	StartBalance int64  `json:"start_balance"` // 最小单位
}

// PartialResult 中途释放窗口的结算记录
type PartialResult struct {
	WindowID     uint64    `json:"window_id"`
	WindowNumber int       `json:"window_number"`
	MachineName  string    `json:"machine_name"`
	StaffID      uint64    `json:"staff_id"`
	StaffName    string    `json:"staff_name"`
	StartBalance int64     `json:"start_balance"`
	EndBalance   int64     `json:"end_balance"`
	Consumed     int64     `json:"consumed"`
	ReleasedAt   time.Time `json:"released_at"`
}

// WindowResult 完成订单时各窗口的结算记录
type WindowResult struct {
	WindowID   uint64 `json:"window_id"`
	EndBalance int64  `json:"end_balance"`
	Consumed   int64  `json:"consumed"`
}

// ExecutionRecord 订单执行历史 (暂停/转单时记录接手情况)
type ExecutionRecord struct {
	StaffID   uint64     `json:"staff_id"`
	StaffName string     `json:"staff_name"`
	AmountWan int64      `json:"amount_wan"` // 该打手经手的数量 (万)
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// JSONB 切片类型，实现 Valuer/Scanner 存入 jsonb 列

type WindowSnapshots []WindowSnapshot
type PartialResults []PartialResult
type WindowResults []WindowResult
type ExecutionHistory []ExecutionRecord

func jsonbValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonbScan(src, dst interface{}) error {
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, dst)
	case string:
		return json.Unmarshal([]byte(data), dst)
	case nil:
		return nil
	default:
		return errors.New("unsupported jsonb source type")
	}
}

func (s WindowSnapshots) Value() (driver.Value, error)  { return jsonbValue(s) }
func (s *WindowSnapshots) Scan(src interface{}) error   { return jsonbScan(src, s) }
func (p PartialResults) Value() (driver.Value, error)   { return jsonbValue(p) }
func (p *PartialResults) Scan(src interface{}) error    { return jsonbScan(src, p) }
func (w WindowResults) Value() (driver.Value, error)    { return jsonbValue(w) }
func (w *WindowResults) Scan(src interface{}) error     { return jsonbScan(src, w) }
func (h ExecutionHistory) Value() (driver.Value, error) { return jsonbValue(h) }
func (h *ExecutionHistory) Scan(src interface{}) error  { return jsonbScan(src, h) }

// Order 派单 (一次金币交付任务)
// AmountWan/LossWan/TotalConsumedWan 以 "万" 计，窗口余额以最小单位计
type Order struct {
	ID       uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID uint64    `gorm:"not null;index" json:"tenant_id"`
	BizDate  string    `gorm:"type:varchar(10);not null;index" json:"biz_date"` // YYYY-MM-DD
	StaffID  uint64    `gorm:"not null;index" json:"staff_id"`

	AmountWan  int64           `gorm:"not null" json:"amount_wan"`                   // 目标交付数量 (万)
	UnitPrice  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"` // 元/千万
	FeePercent decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"fee_percent"`

	Status string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	WindowSnapshots  WindowSnapshots  `gorm:"type:jsonb" json:"window_snapshots"`
	PartialResults   PartialResults   `gorm:"type:jsonb" json:"partial_results"`
	WindowResults    WindowResults    `gorm:"type:jsonb" json:"window_results"`
	ExecutionHistory ExecutionHistory `gorm:"type:jsonb" json:"execution_history"`

	TotalConsumedWan   int64 `gorm:"not null;default:0" json:"total_consumed_wan"`
	LossWan            int64 `gorm:"not null;default:0" json:"loss_wan"`
	CompletedAmountWan int64 `gorm:"not null;default:0" json:"completed_amount_wan"` // 暂停时已完成的部分

	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}
