package service

import (
	"context"
	"errors"

	"goldops-core/internal/model"
	"goldops-core/pkg/errno"

	"gorm.io/gorm"
)

// StaffService 打手目录的数据库实现
type StaffService struct {
	db *gorm.DB
}

var _ StaffDirectory = (*StaffService)(nil)

func NewStaffService(db *gorm.DB) *StaffService {
	return &StaffService{db: db}
}

func (s *StaffService) get(ctx context.Context, staffID uint64) (*model.Staff, error) {
	var staff model.Staff
	if err := s.db.WithContext(ctx).First(&staff, "id = ?", staffID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrStaffNotFound
		}
		return nil, err
	}
	return &staff, nil
}

func (s *StaffService) StaffName(ctx context.Context, staffID uint64) (string, error) {
	staff, err := s.get(ctx, staffID)
	if err != nil {
		return "", err
	}
	return staff.Name, nil
}

func (s *StaffService) StaffTenant(ctx context.Context, staffID uint64) (uint64, error) {
	staff, err := s.get(ctx, staffID)
	if err != nil {
		return 0, err
	}
	return staff.TenantID, nil
}
