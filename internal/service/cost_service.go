package service

import (
	"context"
	"fmt"
	"time"

	"goldops-core/internal/model"
	"goldops-core/pkg/cache"
	"goldops-core/pkg/errno"
	"goldops-core/pkg/gold"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CostService 成本模型: 租户的进货台账是唯一输入，
// 加权平均成本 = Σcost / Σamount (含转让出入库的负数条目)。
type CostService struct {
	db    *gorm.DB
	cache cache.Cache
}

const avgCostTTL = 30 * time.Second

func NewCostService(db *gorm.DB, c cache.Cache) *CostService {
	return &CostService{db: db, cache: c}
}

func avgCostKey(tenantID uint64) string {
	return fmt.Sprintf("cost:avg:%d", tenantID)
}

// AppendEntry 追加一条台账 (普通进货入口)
// normal/transfer_in 要求 amount/cost >= 0；transfer_out 由转让协议在事务内写入
func (s *CostService) AppendEntry(ctx context.Context, entry *model.LedgerEntry) error {
	if entry.Kind == "" {
		entry.Kind = model.LedgerKindNormal
	}
	if entry.Kind != model.LedgerKindTransferOut {
		if entry.Amount < 0 || entry.Cost.IsNegative() {
			return errno.ErrInvalidLedgerEntry
		}
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return err
	}
	s.Invalidate(ctx, entry.TenantID)
	return nil
}

// AppendEntryTx 在既有事务内追加台账 (转让协议专用)，不做符号校验
func (s *CostService) AppendEntryTx(tx *gorm.DB, entry *model.LedgerEntry) error {
	return tx.Create(entry).Error
}

// Invalidate 台账变化后清掉均价缓存
func (s *CostService) Invalidate(ctx context.Context, tenantID uint64) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, avgCostKey(tenantID))
	}
}

// Totals 台账合计: 总数量 (最小单位) 和总成本
func (s *CostService) Totals(ctx context.Context, tenantID uint64) (int64, decimal.Decimal, error) {
	type row struct {
		TotalAmount int64
		TotalCost   decimal.Decimal
	}
	var r row
	err := s.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Select("COALESCE(SUM(amount),0) AS total_amount, COALESCE(SUM(cost),0) AS total_cost").
		Where("tenant_id = ?", tenantID).
		Scan(&r).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	return r.TotalAmount, r.TotalCost, nil
}

// AvgCostPerUnit 每最小单位的加权平均成本，无台账时返回 0
func (s *CostService) AvgCostPerUnit(ctx context.Context, tenantID uint64) (decimal.Decimal, error) {
	key := avgCostKey(tenantID)
	if s.cache != nil {
		var cached string
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			if d, err := decimal.NewFromString(cached); err == nil {
				return d, nil
			}
		}
	}

	totalAmount, totalCost, err := s.Totals(ctx, tenantID)
	if err != nil {
		return decimal.Zero, err
	}

	var avg decimal.Decimal
	if totalAmount != 0 {
		avg = totalCost.Div(decimal.NewFromInt(totalAmount))
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, avg.String(), avgCostTTL)
	}
	return avg, nil
}

// AvgCostPerThousandWan 每千万的加权平均成本 (结算公式用的计价单位)
func (s *CostService) AvgCostPerThousandWan(ctx context.Context, tenantID uint64) (decimal.Decimal, error) {
	totalAmount, totalCost, err := s.Totals(ctx, tenantID)
	if err != nil {
		return decimal.Zero, err
	}
	return gold.CostPerThousandWan(totalCost, totalAmount), nil
}

// InventoryValue 剩余库存估值 = (总进货 - 总消耗) * 加权平均成本
// remainingUnits 由结算服务根据已完成订单算出
func (s *CostService) InventoryValue(ctx context.Context, tenantID uint64, remainingUnits int64) (decimal.Decimal, error) {
	avg, err := s.AvgCostPerUnit(ctx, tenantID)
	if err != nil {
		return decimal.Zero, err
	}
	return avg.Mul(decimal.NewFromInt(remainingUnits)), nil
}

// ListEntries 台账查询 (审计/报表)
func (s *CostService) ListEntries(ctx context.Context, tenantID uint64) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("biz_date, id").
		Find(&entries).Error
	return entries, err
}
