package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tenant 租户 (金币商户)
type Tenant struct {
	ID             uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string          `gorm:"type:varchar(255);not null;unique" json:"name"`
	InitialCapital decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"initial_capital"` // 初始资金，用于总资产统计
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Staff 打手 (接单员工)
type Staff struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID  uint64         `gorm:"not null;index" json:"tenant_id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string         `gorm:"type:varchar(32)" json:"phone"`
	Status    string         `gorm:"type:varchar(20);not null;default:'active'" json:"status"` // active, disabled
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Machine 云机 (托管设备)
type Machine struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID  uint64    `gorm:"not null;index" json:"tenant_id"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Phone     string    `gorm:"type:varchar(32)" json:"phone"`
	Platform  string    `gorm:"type:varchar(64)" json:"platform"`
	LoginType string    `gorm:"type:varchar(32)" json:"login_type"`
	// 登录密码 AES-GCM 加密后 base64 存储，不返回给前端
	LoginPassword string    `gorm:"type:text" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// 关联
	Windows []Window `gorm:"foreignKey:MachineID" json:"windows,omitempty"`
}

// Window 云机窗口 (游戏登录位，持有金币余额)
// GoldBalance 单位是最小金币单位，换算见 pkg/gold
type Window struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID        uint64    `gorm:"not null;index" json:"tenant_id"`
	MachineID       uint64    `gorm:"not null;index" json:"machine_id"`
	WindowNumber    int       `gorm:"not null" json:"window_number"`
	GoldBalance     int64     `gorm:"not null;default:0" json:"gold_balance"`
	AssignedStaffID *uint64   `gorm:"index" json:"assigned_staff_id"` // nil 表示未分配
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Friendship 租户好友关系 (只有 accepted 的关系允许互相转让)
type Friendship struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID       uint64    `gorm:"not null;uniqueIndex:idx_tenant_friend" json:"tenant_id"`
	FriendTenantID uint64    `gorm:"not null;uniqueIndex:idx_tenant_friend" json:"friend_tenant_id"`
	Status         string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"` // pending, accepted
	CreatedAt      time.Time `json:"created_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}

func (Staff) TableName() string {
	return "staffs"
}

func (Machine) TableName() string {
	return "machines"
}

func (Window) TableName() string {
	return "windows"
}

func (Friendship) TableName() string {
	return "friendships"
}
