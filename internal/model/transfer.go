package model

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
)

// 转让请求状态，pending 只能被解析一次
const (
	TransferStatusPending   = "pending"
	TransferStatusAccepted  = "accepted"
	TransferStatusRejected  = "rejected"
	TransferStatusCancelled = "cancelled"
)

// 转让对象类型 (显式 tagged variant，不再根据数据形状猜)
const (
	TransferKindSingleWindow = "single_window"
	TransferKindWholeMachine = "whole_machine"
)

// TransferWindowSnapshot 请求创建时转让窗口的快照
type TransferWindowSnapshot struct {
	WindowID     uint64 `json:"window_id"`
	MachineID    uint64 `json:"machine_id"`
	WindowNumber int    `json:"window_number"`
	GoldBalance  int64  `json:"gold_balance"`
}

type TransferWindowSnapshots []TransferWindowSnapshot

func (s TransferWindowSnapshots) Value() (driver.Value, error) { return jsonbValue(s) }
func (s *TransferWindowSnapshots) Scan(src interface{}) error  { return jsonbScan(src, s) }

// TransferMachineSnapshot 被转让机器的登录信息快照，接收方据此重建机器
type TransferMachineSnapshot struct {
	MachineID uint64 `json:"machine_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Platform  string `json:"platform"`
	LoginType string `json:"login_type"`
}

type TransferMachineSnapshots []TransferMachineSnapshot

func (s TransferMachineSnapshots) Value() (driver.Value, error) { return jsonbValue(s) }
func (s *TransferMachineSnapshots) Scan(src interface{}) error  { return jsonbScan(src, s) }

// TransferRequest 好友间转让请求 (单窗口或整机)
type TransferRequest struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	FromTenantID uint64 `gorm:"not null;index" json:"from_tenant_id"`
	ToTenantID   uint64 `gorm:"not null;index" json:"to_tenant_id"`
	Kind         string `gorm:"type:varchar(20);not null" json:"kind"`

	// 原机器 ID -> 窗口列表的展平快照；整机转让时包含全部未分配窗口
	Windows  TransferWindowSnapshots  `gorm:"type:jsonb" json:"windows"`
	Machines TransferMachineSnapshots `gorm:"type:jsonb" json:"machines"`

	Price     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`      // 双方台账按此计价
	TotalGold int64           `gorm:"not null" json:"total_gold"`                    // 最小单位
	Status    string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (TransferRequest) TableName() string {
	return "transfer_requests"
}
