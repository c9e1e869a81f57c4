package service

import (
	"context"
	"testing"

	"goldops-core/internal/model"
	"goldops-core/pkg/errno"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostService_WeightedAverage(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "商户A")
	costs := NewCostService(db, nil)
	ctx := context.Background()

	// 两笔进货: 10000 万花 250 元, 20000 万花 350 元
	// 合计 30000 万花 600 元 -> 每千万 20 元
	require.NoError(t, costs.AppendEntry(ctx, &model.LedgerEntry{
		TenantID: tenant.ID,
		BizDate:  "2026-08-01",
		Amount:   100000000,
		Cost:     decimal.NewFromInt(250),
	}))
	require.NoError(t, costs.AppendEntry(ctx, &model.LedgerEntry{
		TenantID: tenant.ID,
		BizDate:  "2026-08-02",
		Amount:   200000000,
		Cost:     decimal.NewFromInt(350),
	}))

	perK, err := costs.AvgCostPerThousandWan(ctx, tenant.ID)
	require.NoError(t, err)
	assert.True(t, perK.Equal(decimal.NewFromInt(20)), "got %s", perK)

	totalAmount, totalCost, err := costs.Totals(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300000000), totalAmount)
	assert.True(t, totalCost.Equal(decimal.NewFromInt(600)))
}

func TestCostService_EmptyLedgerIsZero(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "空台账")
	costs := NewCostService(db, nil)

	avg, err := costs.AvgCostPerUnit(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.True(t, avg.IsZero())

	perK, err := costs.AvgCostPerThousandWan(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.True(t, perK.IsZero())
}

func TestCostService_RejectsNegativeNormalEntry(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "商户B")
	costs := NewCostService(db, nil)
	ctx := context.Background()

	err := costs.AppendEntry(ctx, &model.LedgerEntry{
		TenantID: tenant.ID,
		BizDate:  "2026-08-01",
		Amount:   -100,
		Cost:     decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, errno.ErrInvalidLedgerEntry)

	err = costs.AppendEntry(ctx, &model.LedgerEntry{
		TenantID: tenant.ID,
		BizDate:  "2026-08-01",
		Amount:   100,
		Cost:     decimal.NewFromInt(-10),
	})
	assert.ErrorIs(t, err, errno.ErrInvalidLedgerEntry)
}

func TestCostService_TransferEntriesShiftAverage(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "商户C")
	costs := NewCostService(db, nil)
	ctx := context.Background()

	// 进货 20000 万 @ 400 元 -> 每千万 20
	require.NoError(t, costs.AppendEntry(ctx, &model.LedgerEntry{
		TenantID: tenant.ID,
		BizDate:  "2026-08-01",
		Amount:   200000000,
		Cost:     decimal.NewFromInt(400),
	}))
	// 转出 10000 万，计价 100 元 (低于成本价): 剩余成本被抬高
	require.NoError(t, costs.AppendEntryTx(db, &model.LedgerEntry{
		TenantID: tenant.ID,
		BizDate:  "2026-08-02",
		Amount:   -100000000,
		Cost:     decimal.NewFromInt(-100),
		Kind:     model.LedgerKindTransferOut,
	}))

	// (400-100) / (20000-10000)万 -> 每千万 30 元
	perK, err := costs.AvgCostPerThousandWan(ctx, tenant.ID)
	require.NoError(t, err)
	assert.True(t, perK.Equal(decimal.NewFromInt(30)), "got %s", perK)
}

func TestCostService_InventoryValue(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "商户D")
	costs := NewCostService(db, nil)
	ctx := context.Background()

	require.NoError(t, costs.AppendEntry(ctx, &model.LedgerEntry{
		TenantID: tenant.ID,
		BizDate:  "2026-08-01",
		Amount:   300000000,
		Cost:     decimal.NewFromInt(600),
	}))

	// 剩余 15000 万 (一半) -> 估值 300 元
	value, err := costs.InventoryValue(ctx, tenant.ID, 150000000)
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(300)), "got %s", value)
}

func TestCostService_ListEntriesOrdered(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "商户E")
	costs := NewCostService(db, nil)
	ctx := context.Background()

	for _, d := range []string{"2026-08-03", "2026-08-01", "2026-08-02"} {
		require.NoError(t, costs.AppendEntry(ctx, &model.LedgerEntry{
			TenantID: tenant.ID,
			BizDate:  d,
			Amount:   10000,
			Cost:     decimal.NewFromInt(1),
		}))
	}

	entries, err := costs.ListEntries(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2026-08-01", entries[0].BizDate)
	assert.Equal(t, "2026-08-03", entries[2].BizDate)
}
