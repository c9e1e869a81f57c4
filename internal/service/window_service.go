package service

import (
	"context"
	"errors"

	"goldops-core/internal/model"
	"goldops-core/pkg/errno"

	"gorm.io/gorm"
)

// WindowService 窗口台账: 每个窗口的当前余额和归属是全系统唯一的热点可变状态，
// 订单和转让的所有消耗算术都读写这里。
type WindowService struct {
	db *gorm.DB
	// MaxPerStaff 单个打手可持有窗口上限
	MaxPerStaff int
}

func NewWindowService(db *gorm.DB, maxPerStaff int) *WindowService {
	if maxPerStaff <= 0 {
		maxPerStaff = 10
	}
	return &WindowService{db: db, MaxPerStaff: maxPerStaff}
}

// Create 在机器下新建窗口
func (s *WindowService) Create(ctx context.Context, tenantID, machineID uint64, windowNumber int, initialBalance int64) (*model.Window, error) {
	if initialBalance < 0 {
		return nil, errno.ErrNegativeBalance
	}

	var machine model.Machine
	if err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", machineID, tenantID).
		First(&machine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrMachineNotFound
		}
		return nil, err
	}

	w := &model.Window{
		TenantID:     tenantID,
		MachineID:    machineID,
		WindowNumber: windowNumber,
		GoldBalance:  initialBalance,
	}
	if err := s.db.WithContext(ctx).Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// Assign 把窗口分配给打手 (staffID 为 nil 表示释放回未分配)。
// 分配时检查持窗上限；变更立即对订单逻辑可见，订单完成认的是窗口的当前归属。
func (s *WindowService) Assign(ctx context.Context, tenantID, windowID uint64, staffID *uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var w model.Window
		if err := tx.Where("id = ? AND tenant_id = ?", windowID, tenantID).First(&w).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errno.ErrWindowNotFound
			}
			return err
		}

		if staffID != nil {
			var held int64
			if err := tx.Model(&model.Window{}).
				Where("assigned_staff_id = ? AND id <> ?", *staffID, windowID).
				Count(&held).Error; err != nil {
				return err
			}
			if held >= int64(s.MaxPerStaff) {
				return errno.ErrWindowCapReached
			}
		}

		return tx.Model(&w).Update("assigned_staff_id", staffID).Error
	})
}

// AdjustBalance 设置窗口绝对余额 (充值和结算都走这里)，拒绝负值
func (s *WindowService) AdjustBalance(ctx context.Context, tenantID, windowID uint64, newBalance int64) error {
	if newBalance < 0 {
		return errno.ErrNegativeBalance
	}

	result := s.db.WithContext(ctx).Model(&model.Window{}).
		Where("id = ? AND tenant_id = ?", windowID, tenantID).
		Update("gold_balance", newBalance)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errno.ErrWindowNotFound
	}
	return nil
}

// Delete 删除窗口
func (s *WindowService) Delete(ctx context.Context, tenantID, windowID uint64) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", windowID, tenantID).
		Delete(&model.Window{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errno.ErrWindowNotFound
	}
	return nil
}

// DeleteByMachine 删除机器下全部窗口 (机器删除的级联入口)
func (s *WindowService) DeleteByMachine(ctx context.Context, tenantID, machineID uint64) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("machine_id = ? AND tenant_id = ?", machineID, tenantID).
		Delete(&model.Window{})
	return result.RowsAffected, result.Error
}

// Get 查询单个窗口
func (s *WindowService) Get(ctx context.Context, tenantID, windowID uint64) (*model.Window, error) {
	var w model.Window
	if err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", windowID, tenantID).
		First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrWindowNotFound
		}
		return nil, err
	}
	return &w, nil
}

// ListByTenant 查询租户全部窗口
func (s *WindowService) ListByTenant(ctx context.Context, tenantID uint64) ([]model.Window, error) {
	var windows []model.Window
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("machine_id, window_number").
		Find(&windows).Error
	return windows, err
}

// ListByStaff 查询打手当前持有的窗口 (订单完成时的"当前归属"集合)
func (s *WindowService) ListByStaff(ctx context.Context, tenantID, staffID uint64) ([]model.Window, error) {
	var windows []model.Window
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND assigned_staff_id = ?", tenantID, staffID).
		Find(&windows).Error
	return windows, err
}
