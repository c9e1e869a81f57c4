package service

import (
	"context"
	"testing"

	"goldops-core/internal/model"
	"goldops-core/pkg/errno"
	"goldops-core/pkg/gold"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_Dispatch(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "派单商户")
	staff := seedStaff(t, db, tenant.ID, "打手甲")
	machine := seedMachine(t, db, tenant.ID, "云机1")
	w1 := seedWindow(t, db, tenant.ID, machine.ID, 1, gold.FromWan(8000))
	w2 := seedWindow(t, db, tenant.ID, machine.ID, 2, gold.FromWan(4000))
	orders := NewOrderService(db, NewStaffService(db))
	ctx := context.Background()

	order, err := orders.Dispatch(ctx, DispatchInput{
		TenantID:   tenant.ID,
		StaffID:    staff.ID,
		WindowIDs:  []uint64{w1.ID, w2.ID},
		AmountWan:  10000,
		UnitPrice:  "60",
		FeePercent: "5",
		BizDate:    "2026-08-10",
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)

	// 派单时记录窗口余额快照
	require.Len(t, order.WindowSnapshots, 2)
	assert.Equal(t, gold.FromWan(8000), order.WindowSnapshots[0].StartBalance)
	assert.Equal(t, "云机1", order.WindowSnapshots[0].MachineName)

	// 执行历史第一条是派单打手
	require.Len(t, order.ExecutionHistory, 1)
	assert.Equal(t, "打手甲", order.ExecutionHistory[0].StaffName)
	assert.Nil(t, order.ExecutionHistory[0].EndTime)

	// 窗口归属已划到该打手
	var w model.Window
	require.NoError(t, db.First(&w, w1.ID).Error)
	require.NotNil(t, w.AssignedStaffID)
	assert.Equal(t, staff.ID, *w.AssignedStaffID)
}

func TestOrderService_DispatchBusyStaff(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "派单商户")
	staff := seedStaff(t, db, tenant.ID, "打手甲")
	machine := seedMachine(t, db, tenant.ID, "云机1")
	w1 := seedWindow(t, db, tenant.ID, machine.ID, 1, 0)
	w2 := seedWindow(t, db, tenant.ID, machine.ID, 2, 0)
	orders := NewOrderService(db, NewStaffService(db))
	ctx := context.Background()

	first, err := orders.Dispatch(ctx, DispatchInput{
		TenantID: tenant.ID, StaffID: staff.ID, WindowIDs: []uint64{w1.ID}, AmountWan: 100,
	})
	require.NoError(t, err)

	// 同一打手已有 pending 订单时拒绝
	_, err = orders.Dispatch(ctx, DispatchInput{
		TenantID: tenant.ID, StaffID: staff.ID, WindowIDs: []uint64{w2.ID}, AmountWan: 100,
	})
	assert.ErrorIs(t, err, errno.ErrStaffBusy)

	// paused 不挡新单
	require.NoError(t, orders.Pause(ctx, tenant.ID, first.ID, 0))
	_, err = orders.Dispatch(ctx, DispatchInput{
		TenantID: tenant.ID, StaffID: staff.ID, WindowIDs: []uint64{w2.ID}, AmountWan: 100,
	})
	assert.NoError(t, err)
}

func TestOrderService_DispatchWindowOwnedByOther(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "派单商户")
	staffA := seedStaff(t, db, tenant.ID, "打手甲")
	staffB := seedStaff(t, db, tenant.ID, "打手乙")
	machine := seedMachine(t, db, tenant.ID, "云机1")
	w := seedWindow(t, db, tenant.ID, machine.ID, 1, 0)
	orders := NewOrderService(db, NewStaffService(db))
	ctx := context.Background()

	require.NoError(t, db.Model(&model.Window{}).Where("id = ?", w.ID).
		Update("assigned_staff_id", staffA.ID).Error)

	_, err := orders.Dispatch(ctx, DispatchInput{
		TenantID: tenant.ID, StaffID: staffB.ID, WindowIDs: []uint64{w.ID}, AmountWan: 100,
	})
	assert.ErrorIs(t, err, errno.ErrWindowAssigned)

	// 已经在自己手里的窗口可以再次派单
	_, err = orders.Dispatch(ctx, DispatchInput{
		TenantID: tenant.ID, StaffID: staffA.ID, WindowIDs: []uint64{w.ID}, AmountWan: 100,
	})
	assert.NoError(t, err)
}

func TestOrderService_PauseResume(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "派单商户")
	staffA := seedStaff(t, db, tenant.ID, "打手甲")
	staffB := seedStaff(t, db, tenant.ID, "打手乙")
	machine := seedMachine(t, db, tenant.ID, "云机1")
	w := seedWindow(t, db, tenant.ID, machine.ID, 1, 0)
	orders := NewOrderService(db, NewStaffService(db))
	ctx := context.Background()

	order, err := orders.Dispatch(ctx, DispatchInput{
		TenantID: tenant.ID, StaffID: staffA.ID, WindowIDs: []uint64{w.ID}, AmountWan: 5000,
	})
	require.NoError(t, err)

	// paused 才能 resume，pending 才能 pause
	assert.ErrorIs(t, orders.Resume(ctx, tenant.ID, order.ID, nil), errno.ErrOrderNotPaused)
	require.NoError(t, orders.Pause(ctx, tenant.ID, order.ID, 2000))
	assert.ErrorIs(t, orders.Pause(ctx, tenant.ID, order.ID, 0), errno.ErrOrderNotPending)

	got, err := orders.Get(ctx, tenant.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaused, got.Status)
	assert.Equal(t, int64(2000), got.CompletedAmountWan)
	// 暂停时当前执行段要封口
	require.Len(t, got.ExecutionHistory, 1)
	assert.NotNil(t, got.ExecutionHistory[0].EndTime)

	// 换打手恢复
	require.NoError(t, orders.Resume(ctx, tenant.ID, order.ID, uint64Ptr(staffB.ID)))
	got, err = orders.Get(ctx, tenant.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	assert.Equal(t, staffB.ID, got.StaffID)
	require.Len(t, got.ExecutionHistory, 2)
	assert.Equal(t, "打手乙", got.ExecutionHistory[1].StaffName)
	// 接手的是剩余量
	assert.Equal(t, int64(3000), got.ExecutionHistory[1].AmountWan)
}

func TestOrderService_ResumeBusyTarget(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "派单商户")
	staffA := seedStaff(t, db, tenant.ID, "打手甲")
	staffB := seedStaff(t, db, tenant.ID, "打手乙")
	machine := seedMachine(t, db, tenant.ID, "云机1")
	w1 := seedWindow(t, db, tenant.ID, machine.ID, 1, 0)
	w2 := seedWindow(t, db, tenant.ID, machine.ID, 2, 0)
	orders := NewOrderService(db, NewStaffService(db))
	ctx := context.Background()

	paused, err := orders.Dispatch(ctx, DispatchInput{
		TenantID: tenant.ID, StaffID: staffA.ID, WindowIDs: []uint64{w1.ID}, AmountWan: 100,
	})
	require.NoError(t, err)
	require.NoError(t, orders.Pause(ctx, tenant.ID, paused.ID, 0))

	_, err = orders.Dispatch(ctx, DispatchInput{
		TenantID: tenant.ID, StaffID: staffB.ID, WindowIDs: []uint64{w2.ID}, AmountWan: 100,
	})
	require.NoError(t, err)

	// 目标打手手上有 pending 订单，恢复要拒绝
	assert.ErrorIs(t, orders.Resume(ctx, tenant.ID, paused.ID, uint64Ptr(staffB.ID)), errno.ErrStaffBusy)
}

func TestOrderService_ReleaseWindow(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "派单商户")
	staff := seedStaff(t, db, tenant.ID, "打手甲")
	machine := seedMachine(t, db, tenant.ID, "云机1")
	w := seedWindow(t, db, tenant.ID, machine.ID, 1, gold.FromWan(5000))
	orders := NewOrderService(db, NewStaffService(db))
	ctx := context.Background()

	order, err := orders.Dispatch(ctx, DispatchInput{
		TenantID: tenant.ID, StaffID: staff.ID, WindowIDs: []uint64{w.ID}, AmountWan: 3000,
	})
	require.NoError(t, err)

	require.NoError(t, orders.ReleaseWindow(ctx, tenant.ID, order.ID, w.ID, int64Ptr(gold.FromWan(2000))))

	got, err := orders.Get(ctx, tenant.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, got.PartialResults, 1)
	assert.Equal(t, gold.FromWan(3000), got.PartialResults[0].Consumed)
	assert.Equal(t, "打手甲", got.PartialResults[0].StaffName)

	// 窗口余额落到终点值并回到未分配
	var released model.Window
	require.NoError(t, db.First(&released, w.ID).Error)
	assert.Equal(t, gold.FromWan(2000), released.GoldBalance)
	assert.Nil(t, released.AssignedStaffID)

	// 释放后窗口已不在打手名下，重复释放要拒绝
	assert.ErrorIs(t, orders.ReleaseWindow(ctx, tenant.ID, order.ID, w.ID, nil), errno.ErrWindowNotOwned)
}

func TestOrderService_ReleaseWindowDefaultsToZeroConsumption(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "派单商户")
	staff := seedStaff(t, db, tenant.ID, "打手甲")
	machine := seedMachine(t, db, tenant.ID, "云机1")
	w := seedWindow(t, db, tenant.ID, machine.ID, 1, gold.FromWan(5000))
	orders := NewOrderService(db, NewStaffService(db))
	ctx := context.Background()

	order, err := orders.Dispatch(ctx, DispatchInput{
		TenantID: tenant.ID, StaffID: staff.ID, WindowIDs: []uint64{w.ID}, AmountWan: 3000,
	})
	require.NoError(t, err)

	// 不带终点余额: 按零消耗释放
	require.NoError(t, orders.ReleaseWindow(ctx, tenant.ID, order.ID, w.ID, nil))

	got, err := orders.Get(ctx, tenant.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, got.PartialResults, 1)
	assert.Equal(t, int64(0), got.PartialResults[0].Consumed)

	var released model.Window
	require.NoError(t, db.First(&released, w.ID).Error)
	assert.Equal(t, gold.FromWan(5000), released.GoldBalance)
}

func TestOrderService_Complete(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "派单商户")
	staff := seedStaff(t, db, tenant.ID, "打手甲")
	machine := seedMachine(t, db, tenant.ID, "云机1")
	w1 := seedWindow(t, db, tenant.ID, machine.ID, 1, gold.FromWan(12000))
	w2 := seedWindow(t, db, tenant.ID, machine.ID, 2, gold.FromWan(3000))
	orders := NewOrderService(db, NewStaffService(db))
	ctx := context.Background()

	order, err := orders.Dispatch(ctx, DispatchInput{
		TenantID:   tenant.ID,
		StaffID:    staff.ID,
		WindowIDs:  []uint64{w1.ID, w2.ID},
		AmountWan:  10000,
		UnitPrice:  "60",
		FeePercent: "5",
	})
	require.NoError(t, err)

	// w1 12000 -> 1500 消耗 10500 万; w2 缺省零消耗
	completed, err := orders.Complete(ctx, CompleteInput{
		TenantID:    tenant.ID,
		OrderID:     order.ID,
		EndBalances: map[uint64]int64{w1.ID: gold.FromWan(1500)},
	})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusCompleted, completed.Status)
	assert.Equal(t, int64(10500), completed.TotalConsumedWan)
	assert.Equal(t, int64(500), completed.LossWan)
	assert.NotNil(t, completed.CompletedAt)

	// w2 没报终点余额，余额不动
	var untouched model.Window
	require.NoError(t, db.First(&untouched, w2.ID).Error)
	assert.Equal(t, gold.FromWan(3000), untouched.GoldBalance)

	// 完成后窗口仍留在打手名下
	require.NotNil(t, untouched.AssignedStaffID)
	assert.Equal(t, staff.ID, *untouched.AssignedStaffID)

	// 完成事件进 outbox
	var outbox int64
	require.NoError(t, db.Model(&model.OutboxMessage{}).Count(&outbox).Error)
	assert.Equal(t, int64(1), outbox)

	// completed 是终态: 不能再完成、暂停或恢复
	_, err = orders.Complete(ctx, CompleteInput{TenantID: tenant.ID, OrderID: order.ID})
	assert.ErrorIs(t, err, errno.ErrOrderCompleted)
	assert.ErrorIs(t, orders.Pause(ctx, tenant.ID, order.ID, 0), errno.ErrOrderNotPending)
	assert.ErrorIs(t, orders.Resume(ctx, tenant.ID, order.ID, nil), errno.ErrOrderNotPaused)
}

func TestOrderService_CompleteUnderDeliveryNeedsConfirm(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "派单商户")
	staff := seedStaff(t, db, tenant.ID, "打手甲")
	machine := seedMachine(t, db, tenant.ID, "云机1")
	w := seedWindow(t, db, tenant.ID, machine.ID, 1, gold.FromWan(12000))
	orders := NewOrderService(db, NewStaffService(db))
	ctx := context.Background()

	order, err := orders.Dispatch(ctx, DispatchInput{
		TenantID: tenant.ID, StaffID: staff.ID, WindowIDs: []uint64{w.ID}, AmountWan: 10000,
	})
	require.NoError(t, err)

	// 只消耗了 4000 万，少交付要显式确认
	_, err = orders.Complete(ctx, CompleteInput{
		TenantID:    tenant.ID,
		OrderID:     order.ID,
		EndBalances: map[uint64]int64{w.ID: gold.FromWan(8000)},
	})
	assert.ErrorIs(t, err, errno.ErrUnderDelivery)

	completed, err := orders.Complete(ctx, CompleteInput{
		TenantID:             tenant.ID,
		OrderID:              order.ID,
		EndBalances:          map[uint64]int64{w.ID: gold.FromWan(8000)},
		ConfirmUnderDelivery: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4000), completed.TotalConsumedWan)
	// 少交付没有损耗
	assert.Equal(t, int64(0), completed.LossWan)
}

func TestOrderService_CompleteCountsPartials(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "派单商户")
	staff := seedStaff(t, db, tenant.ID, "打手甲")
	machine := seedMachine(t, db, tenant.ID, "云机1")
	w1 := seedWindow(t, db, tenant.ID, machine.ID, 1, gold.FromWan(6000))
	w2 := seedWindow(t, db, tenant.ID, machine.ID, 2, gold.FromWan(6000))
	orders := NewOrderService(db, NewStaffService(db))
	ctx := context.Background()

	order, err := orders.Dispatch(ctx, DispatchInput{
		TenantID: tenant.ID, StaffID: staff.ID, WindowIDs: []uint64{w1.ID, w2.ID}, AmountWan: 10000,
	})
	require.NoError(t, err)

	// 中途释放 w1，消耗 5000 万
	require.NoError(t, orders.ReleaseWindow(ctx, tenant.ID, order.ID, w1.ID, int64Ptr(gold.FromWan(1000))))

	// 完成时 w2 消耗 5000 万，合计正好 10000
	completed, err := orders.Complete(ctx, CompleteInput{
		TenantID:    tenant.ID,
		OrderID:     order.ID,
		EndBalances: map[uint64]int64{w2.ID: gold.FromWan(1000)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), completed.TotalConsumedWan)
	assert.Equal(t, int64(0), completed.LossWan)
	// 结算明细只包含完成时刻仍在打手名下的窗口
	require.Len(t, completed.WindowResults, 1)
	assert.Equal(t, w2.ID, completed.WindowResults[0].WindowID)
}

func TestOrderService_PausedCannotComplete(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "派单商户")
	staff := seedStaff(t, db, tenant.ID, "打手甲")
	machine := seedMachine(t, db, tenant.ID, "云机1")
	w := seedWindow(t, db, tenant.ID, machine.ID, 1, 0)
	orders := NewOrderService(db, NewStaffService(db))
	ctx := context.Background()

	order, err := orders.Dispatch(ctx, DispatchInput{
		TenantID: tenant.ID, StaffID: staff.ID, WindowIDs: []uint64{w.ID}, AmountWan: 100,
	})
	require.NoError(t, err)
	require.NoError(t, orders.Pause(ctx, tenant.ID, order.ID, 0))

	_, err = orders.Complete(ctx, CompleteInput{
		TenantID: tenant.ID, OrderID: order.ID, ConfirmUnderDelivery: true,
	})
	assert.ErrorIs(t, err, errno.ErrOrderNotPending)
}

func TestOrderService_DeleteDoesNotRestoreBalances(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "派单商户")
	staff := seedStaff(t, db, tenant.ID, "打手甲")
	machine := seedMachine(t, db, tenant.ID, "云机1")
	w := seedWindow(t, db, tenant.ID, machine.ID, 1, gold.FromWan(5000))
	orders := NewOrderService(db, NewStaffService(db))
	ctx := context.Background()

	order, err := orders.Dispatch(ctx, DispatchInput{
		TenantID: tenant.ID, StaffID: staff.ID, WindowIDs: []uint64{w.ID}, AmountWan: 1000,
	})
	require.NoError(t, err)
	require.NoError(t, orders.ReleaseWindow(ctx, tenant.ID, order.ID, w.ID, int64Ptr(gold.FromWan(4000))))

	require.NoError(t, orders.Delete(ctx, tenant.ID, order.ID))
	_, err = orders.Get(ctx, tenant.ID, order.ID)
	assert.ErrorIs(t, err, errno.ErrOrderNotFound)

	// 删除不回补: 已消耗的余额保持原样
	var after model.Window
	require.NoError(t, db.First(&after, w.ID).Error)
	assert.Equal(t, gold.FromWan(4000), after.GoldBalance)
}
