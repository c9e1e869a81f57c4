package service

import (
	"context"

	"goldops-core/internal/model"

	"gorm.io/gorm"
)

// FriendService 好友关系校验的数据库实现。
// 关系表按发起方向存一行，IsFriend 两个方向都认。
type FriendService struct {
	db *gorm.DB
}

var _ FriendshipChecker = (*FriendService)(nil)

func NewFriendService(db *gorm.DB) *FriendService {
	return &FriendService{db: db}
}

func (s *FriendService) IsFriend(ctx context.Context, tenantA, tenantB uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("status = ?", "accepted").
		Where("(tenant_id = ? AND friend_tenant_id = ?) OR (tenant_id = ? AND friend_tenant_id = ?)",
			tenantA, tenantB, tenantB, tenantA).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
