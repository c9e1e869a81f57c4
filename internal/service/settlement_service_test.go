package service

import (
	"context"
	"testing"

	"goldops-core/internal/model"
	"goldops-core/pkg/gold"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 铺一个完整场景:
// 进货 30000 万花 600 元 -> 均价 20 元/千万
// 派单 10000 万、单价 60 元/千万、手续费 5%，起点 12000 万、终点 1500 万
// 消耗 10500 万、损耗 500 万
// revenue = 10 * 60 * 0.95        = 570
// employeeCost = 10 * 12          = 120
// cogs = 10.5 * 20                = 210
// profit = 570 - 120 - 210        = 240
func seedCompletedScenario(t *testing.T, db *gorm.DB, costs *CostService) *model.Tenant {
	t.Helper()
	tenant := seedTenant(t, db, "结算商户")
	staff := seedStaff(t, db, tenant.ID, "打手甲")
	machine := seedMachine(t, db, tenant.ID, "云机1")
	w := seedWindow(t, db, tenant.ID, machine.ID, 1, gold.FromWan(12000))
	ctx := context.Background()

	require.NoError(t, costs.AppendEntry(ctx, &model.LedgerEntry{
		TenantID: tenant.ID,
		BizDate:  "2026-08-01",
		Amount:   gold.FromWan(30000),
		Cost:     decimal.NewFromInt(600),
	}))

	orders := NewOrderService(db, NewStaffService(db))
	order, err := orders.Dispatch(ctx, DispatchInput{
		TenantID:   tenant.ID,
		StaffID:    staff.ID,
		WindowIDs:  []uint64{w.ID},
		AmountWan:  10000,
		UnitPrice:  "60",
		FeePercent: "5",
		BizDate:    "2026-08-10",
	})
	require.NoError(t, err)

	_, err = orders.Complete(ctx, CompleteInput{
		TenantID:    tenant.ID,
		OrderID:     order.ID,
		EndBalances: map[uint64]int64{w.ID: gold.FromWan(1500)},
	})
	require.NoError(t, err)
	return tenant
}

func TestSettlementService_Figures(t *testing.T) {
	db := newTestDB(t)
	costs := NewCostService(db, nil)
	settle := NewSettlementService(db, costs, 12.0, 1000.0)

	order := &model.Order{
		AmountWan:  10000,
		UnitPrice:  decimal.NewFromInt(60),
		FeePercent: decimal.NewFromInt(5),
		LossWan:    500,
	}
	f := settle.Figures(order, decimal.NewFromInt(20))

	assert.True(t, f.Revenue.Equal(decimal.NewFromInt(570)), "revenue %s", f.Revenue)
	assert.True(t, f.EmployeeCost.Equal(decimal.NewFromInt(120)), "employeeCost %s", f.EmployeeCost)
	assert.True(t, f.Cogs.Equal(decimal.NewFromInt(210)), "cogs %s", f.Cogs)
	assert.True(t, f.Profit.Equal(decimal.NewFromInt(240)), "profit %s", f.Profit)
}

func TestSettlementService_FiguresZeroFee(t *testing.T) {
	db := newTestDB(t)
	settle := NewSettlementService(db, NewCostService(db, nil), 12.0, 0)

	order := &model.Order{
		AmountWan: 1000,
		UnitPrice: decimal.NewFromInt(60),
	}
	f := settle.Figures(order, decimal.Zero)
	// 手续费为零时营收是全额
	assert.True(t, f.Revenue.Equal(decimal.NewFromInt(60)), "revenue %s", f.Revenue)
}

func TestSettlementService_Daily(t *testing.T) {
	db := newTestDB(t)
	costs := NewCostService(db, nil)
	tenant := seedCompletedScenario(t, db, costs)
	settle := NewSettlementService(db, costs, 12.0, 1000.0)

	reports, err := settle.Daily(context.Background(), tenant.ID)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	// 进货日: 只有库存变动
	assert.Equal(t, "2026-08-01", reports[0].BizDate)
	assert.Equal(t, 0, reports[0].OrderCount)
	assert.Equal(t, int64(30000), reports[0].InventoryWan)

	// 交付日
	day := reports[1]
	assert.Equal(t, "2026-08-10", day.BizDate)
	assert.Equal(t, 1, day.OrderCount)
	assert.Equal(t, int64(10000), day.SoldWan)
	assert.Equal(t, int64(500), day.LossWan)
	assert.True(t, day.Revenue.Equal(decimal.NewFromInt(570)), "revenue %s", day.Revenue)
	assert.True(t, day.Profit.Equal(decimal.NewFromInt(240)), "profit %s", day.Profit)
	// 库存 = 30000 - 10000 - 500
	assert.Equal(t, int64(19500), day.InventoryWan)
}

func TestSettlementService_Stats(t *testing.T) {
	db := newTestDB(t)
	costs := NewCostService(db, nil)
	tenant := seedCompletedScenario(t, db, costs)
	settle := NewSettlementService(db, costs, 12.0, 1000.0)

	stats, err := settle.Stats(context.Background(), tenant.ID)
	require.NoError(t, err)

	assert.True(t, stats.TotalProfit.Equal(decimal.NewFromInt(240)), "profit %s", stats.TotalProfit)
	assert.True(t, stats.AvgCostPerK.Equal(decimal.NewFromInt(20)), "avgCost %s", stats.AvgCostPerK)
	assert.Equal(t, int64(19500), stats.InventoryWan)
	// 19500 万按均价估值 390 元
	assert.True(t, stats.InventoryValue.Equal(decimal.NewFromInt(390)), "inventory %s", stats.InventoryValue)
	// 现金 = 1000 + 240 - 390
	assert.True(t, stats.CurrentCash.Equal(decimal.NewFromInt(850)), "cash %s", stats.CurrentCash)
	assert.True(t, stats.TotalAssets.Equal(decimal.NewFromInt(1240)), "assets %s", stats.TotalAssets)
}

func TestSettlementService_StatsEmptyTenant(t *testing.T) {
	db := newTestDB(t)
	costs := NewCostService(db, nil)
	tenant := seedTenant(t, db, "空商户")
	settle := NewSettlementService(db, costs, 12.0, 500.0)

	stats, err := settle.Stats(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.True(t, stats.TotalProfit.IsZero())
	assert.True(t, stats.AvgCostPerK.IsZero())
	assert.Equal(t, int64(0), stats.InventoryWan)
	assert.True(t, stats.CurrentCash.Equal(decimal.NewFromInt(500)))
}

func TestSettlementService_SnapshotIdempotent(t *testing.T) {
	db := newTestDB(t)
	costs := NewCostService(db, nil)
	tenant := seedCompletedScenario(t, db, costs)
	settle := NewSettlementService(db, costs, 12.0, 1000.0)
	ctx := context.Background()

	require.NoError(t, settle.Snapshot(ctx, tenant.ID))
	require.NoError(t, settle.Snapshot(ctx, tenant.ID))

	// 重复物化不产生重复行
	var rows []model.DailySettlement
	require.NoError(t, db.Where("tenant_id = ?", tenant.ID).Order("biz_date").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-08-10", rows[1].BizDate)
	assert.True(t, rows[1].Profit.Equal(decimal.NewFromInt(240)), "profit %s", rows[1].Profit)
	assert.Equal(t, 1, rows[1].OrderCount)
}
