package service

import "context"

// 核心逻辑只依赖这两个协作方接口，社交关系和人员目录的维护不在本服务内。

// FriendshipChecker 好友关系校验 (转让前置条件)
type FriendshipChecker interface {
	// IsFriend 双向 accepted 关系才算好友
	IsFriend(ctx context.Context, tenantA, tenantB uint64) (bool, error)
}

// StaffDirectory 打手目录，用于快照打标签
type StaffDirectory interface {
	StaffName(ctx context.Context, staffID uint64) (string, error)
	StaffTenant(ctx context.Context, staffID uint64) (uint64, error)
}
