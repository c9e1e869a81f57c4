package service

import (
	"context"
	"errors"

	"goldops-core/internal/model"
	"goldops-core/pkg/crypto_util"
	"goldops-core/pkg/errno"

	"gorm.io/gorm"
)

// MachineService 云机记录维护。登录密码经 AES-GCM 加密后落库。
type MachineService struct {
	db      *gorm.DB
	sealKey []byte
}

func NewMachineService(db *gorm.DB, sealKey []byte) *MachineService {
	return &MachineService{db: db, sealKey: sealKey}
}

// CreateMachineInput 新购机器入参
type CreateMachineInput struct {
	TenantID      uint64
	Name          string
	Phone         string
	Platform      string
	LoginType     string
	LoginPassword string
	// WindowCount 随机器一并创建的窗口数
	WindowCount    int
	InitialBalance int64
}

// Create 新建机器，顺带创建其窗口
func (s *MachineService) Create(ctx context.Context, in CreateMachineInput) (*model.Machine, error) {
	if in.InitialBalance < 0 {
		return nil, errno.ErrNegativeBalance
	}

	sealed, err := crypto_util.SealPassword(s.sealKey, in.LoginPassword)
	if err != nil {
		return nil, err
	}

	machine := &model.Machine{
		TenantID:      in.TenantID,
		Name:          in.Name,
		Phone:         in.Phone,
		Platform:      in.Platform,
		LoginType:     in.LoginType,
		LoginPassword: sealed,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(machine).Error; err != nil {
			return err
		}
		for i := 0; i < in.WindowCount; i++ {
			w := model.Window{
				TenantID:     in.TenantID,
				MachineID:    machine.ID,
				WindowNumber: i + 1,
				GoldBalance:  in.InitialBalance,
			}
			if err := tx.Create(&w).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return machine, nil
}

// Get 查询机器
func (s *MachineService) Get(ctx context.Context, tenantID, machineID uint64) (*model.Machine, error) {
	var machine model.Machine
	if err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", machineID, tenantID).
		First(&machine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrMachineNotFound
		}
		return nil, err
	}
	return &machine, nil
}

// List 查询租户全部机器 (带窗口)
func (s *MachineService) List(ctx context.Context, tenantID uint64) ([]model.Machine, error) {
	var machines []model.Machine
	err := s.db.WithContext(ctx).
		Preload("Windows").
		Where("tenant_id = ?", tenantID).
		Find(&machines).Error
	return machines, err
}

// Delete 删除机器并级联其全部窗口
func (s *MachineService) Delete(ctx context.Context, tenantID, machineID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("machine_id = ? AND tenant_id = ?", machineID, tenantID).
			Delete(&model.Window{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND tenant_id = ?", machineID, tenantID).
			Delete(&model.Machine{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errno.ErrMachineNotFound
		}
		return nil
	})
}

// LoginPassword 解密机器登录密码 (运维查看用)
func (s *MachineService) LoginPassword(ctx context.Context, tenantID, machineID uint64) (string, error) {
	machine, err := s.Get(ctx, tenantID, machineID)
	if err != nil {
		return "", err
	}
	return crypto_util.OpenPassword(s.sealKey, machine.LoginPassword)
}
