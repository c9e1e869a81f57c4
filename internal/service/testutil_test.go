package service

import (
	"fmt"
	"testing"

	"goldops-core/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 每个测试一个独立的内存库 (按测试名隔离)
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开 sqlite 失败: %v", err)
	}
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, name string) *model.Tenant {
	t.Helper()
	tenant := &model.Tenant{Name: name}
	if err := db.Create(tenant).Error; err != nil {
		t.Fatalf("创建租户失败: %v", err)
	}
	return tenant
}

func seedStaff(t *testing.T, db *gorm.DB, tenantID uint64, name string) *model.Staff {
	t.Helper()
	staff := &model.Staff{TenantID: tenantID, Name: name, Status: "active"}
	if err := db.Create(staff).Error; err != nil {
		t.Fatalf("创建打手失败: %v", err)
	}
	return staff
}

func seedMachine(t *testing.T, db *gorm.DB, tenantID uint64, name string) *model.Machine {
	t.Helper()
	machine := &model.Machine{TenantID: tenantID, Name: name, Platform: "android"}
	if err := db.Create(machine).Error; err != nil {
		t.Fatalf("创建机器失败: %v", err)
	}
	return machine
}

func seedWindow(t *testing.T, db *gorm.DB, tenantID, machineID uint64, number int, balance int64) *model.Window {
	t.Helper()
	w := &model.Window{
		TenantID:     tenantID,
		MachineID:    machineID,
		WindowNumber: number,
		GoldBalance:  balance,
	}
	if err := db.Create(w).Error; err != nil {
		t.Fatalf("创建窗口失败: %v", err)
	}
	return w
}

func seedFriendship(t *testing.T, db *gorm.DB, tenantID, friendID uint64) {
	t.Helper()
	f := &model.Friendship{TenantID: tenantID, FriendTenantID: friendID, Status: "accepted"}
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("创建好友关系失败: %v", err)
	}
}

func uint64Ptr(v uint64) *uint64 { return &v }
func int64Ptr(v int64) *int64    { return &v }
