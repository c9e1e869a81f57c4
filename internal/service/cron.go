package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"goldops-core/internal/model"
	"goldops-core/pkg/logger"
	"goldops-core/pkg/utils/lock"
)

// CronService 定时任务: 每晚把各租户的日结算物化到 daily_settlements
type CronService struct {
	cron       *cron.Cron
	redis      *redis.Client
	settlement *SettlementService
}

func NewCronService(rdb *redis.Client, settlement *SettlementService) *CronService {
	c := cron.New()
	return &CronService{
		cron:       c,
		redis:      rdb,
		settlement: settlement,
	}
}

func (s *CronService) Start() {
	// 每天 00:10 跑前一天的结算快照
	_, _ = s.cron.AddFunc("10 0 * * *", s.SnapshotSettlements)

	s.cron.Start()
	logger.Info("Cron Service started")
}

func (s *CronService) Stop() {
	s.cron.Stop()
	logger.Info("Cron Service stopped")
}

// SnapshotSettlements 物化全部租户的日结算
func (s *CronService) SnapshotSettlements() {
	ctx := context.Background()
	lockKey := "cron:lock:snapshot_settlements"

	// 分布式锁，防止多实例同时执行
	locker := lock.NewRedisLock(s.redis)
	locked, err := locker.Acquire(ctx, lockKey, 5*time.Minute)
	if err != nil || !locked {
		logger.Debug("SnapshotSettlements: 获取锁失败或已有实例在运行")
		return
	}
	defer locker.Release(ctx, lockKey)

	start := time.Now()
	var tenantIDs []uint64
	if err := s.settlement.db.WithContext(ctx).
		Model(&model.Tenant{}).Pluck("id", &tenantIDs).Error; err != nil {
		logger.Error("结算快照: 查询租户失败", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		if err := s.settlement.Snapshot(ctx, tenantID); err != nil {
			logger.Error("结算快照失败", zap.Uint64("tenant", tenantID), zap.Error(err))
		}
	}
	logger.Info("结算快照完成",
		zap.Int("tenants", len(tenantIDs)),
		zap.Duration("elapsed", time.Since(start)))
}
