package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"goldops-core/internal/event"
	"goldops-core/internal/model"
	"goldops-core/pkg/errno"
	"goldops-core/pkg/gold"
	"goldops-core/pkg/monitor"

	"gorm.io/gorm"
)

// OrderService 订单状态机
//
// pending -> paused (暂停) -> pending (恢复，可换打手)
// pending -> completed (终态，不可逆)
// paused 不能直接 completed，必须先恢复
// 任何状态都可以删除；删除不回补窗口余额，消耗在物理上已经发生。
//
// 订单完成绑定的是窗口的"当前归属"而不是派单快照:
// 中途换入/释放的窗口以完成时刻分配给该打手的集合为准。
type OrderService struct {
	db     *gorm.DB
	staffs StaffDirectory
}

func NewOrderService(db *gorm.DB, staffs StaffDirectory) *OrderService {
	return &OrderService{db: db, staffs: staffs}
}

// DispatchInput 派单入参
type DispatchInput struct {
	TenantID   uint64
	StaffID    uint64
	WindowIDs  []uint64
	AmountWan  int64
	UnitPrice  string // decimal string, 元/千万
	FeePercent string
	BizDate    string // YYYY-MM-DD，缺省取当天
}

// Dispatch 派单: 选打手 + 一组窗口，记录窗口当前余额快照，窗口划归该打手。
// 打手已有 pending 订单时拒绝 (paused 不挡新单)。
func (s *OrderService) Dispatch(ctx context.Context, in DispatchInput) (*model.Order, error) {
	if len(in.WindowIDs) == 0 {
		return nil, errno.ErrNoWindowsSelected
	}
	if in.StaffID == 0 {
		return nil, errno.ErrStaffNotFound
	}

	staffName, err := s.staffs.StaffName(ctx, in.StaffID)
	if err != nil {
		return nil, err
	}

	unitPrice, err := decimalFromInput(in.UnitPrice)
	if err != nil {
		return nil, errno.ErrBind
	}
	feePercent, err := decimalFromInput(in.FeePercent)
	if err != nil {
		return nil, errno.ErrBind
	}

	bizDate := in.BizDate
	if bizDate == "" {
		bizDate = time.Now().Format("2006-01-02")
	}

	var order *model.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 忙碌检查: 同一打手同时只能有一个 pending 订单
		var busy int64
		if err := tx.Model(&model.Order{}).
			Where("staff_id = ? AND status = ?", in.StaffID, model.OrderStatusPending).
			Count(&busy).Error; err != nil {
			return err
		}
		if busy > 0 {
			return errno.ErrStaffBusy
		}

		var windows []model.Window
		if err := pessimisticLock(tx).
			Where("id IN ? AND tenant_id = ?", in.WindowIDs, in.TenantID).
			Find(&windows).Error; err != nil {
			return err
		}
		if len(windows) != len(in.WindowIDs) {
			return errno.ErrWindowNotFound
		}

		snapshots := make(model.WindowSnapshots, 0, len(windows))
		for i := range windows {
			w := &windows[i]
			// 窗口必须未分配，或已经在该打手手里
			if w.AssignedStaffID != nil && *w.AssignedStaffID != in.StaffID {
				return errno.ErrWindowAssigned
			}

			var machine model.Machine
			if err := tx.First(&machine, "id = ?", w.MachineID).Error; err != nil {
				return err
			}

			snapshots = append(snapshots, model.WindowSnapshot{
				WindowID:     w.ID,
				MachineID:    w.MachineID,
				WindowNumber: w.WindowNumber,
				MachineName:  machine.Name,
				StartBalance: w.GoldBalance,
			})

			if err := tx.Model(w).Update("assigned_staff_id", in.StaffID).Error; err != nil {
				return err
			}
		}

		order = &model.Order{
			TenantID:        in.TenantID,
			BizDate:         bizDate,
			StaffID:         in.StaffID,
			AmountWan:       in.AmountWan,
			UnitPrice:       unitPrice,
			FeePercent:      feePercent,
			Status:          model.OrderStatusPending,
			WindowSnapshots: snapshots,
			PartialResults:  model.PartialResults{},
			WindowResults:   model.WindowResults{},
			ExecutionHistory: model.ExecutionHistory{{
				StaffID:   in.StaffID,
				StaffName: staffName,
				AmountWan: in.AmountWan,
				StartTime: time.Now(),
			}},
		}
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}

	if monitor.Business != nil {
		tenant := strconv.FormatUint(in.TenantID, 10)
		monitor.Business.OrderDispatchedTotal.WithLabelValues(tenant).Inc()
		monitor.Business.PendingOrders.WithLabelValues(tenant).Inc()
	}
	return order, nil
}

// Pause 暂停订单，记录已完成的部分，不动窗口余额
func (s *OrderService) Pause(ctx context.Context, tenantID, orderID uint64, completedAmountWan int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderStatusPending {
			return errno.ErrOrderNotPending
		}

		now := time.Now()
		history := order.ExecutionHistory
		if n := len(history); n > 0 && history[n-1].EndTime == nil {
			history[n-1].EndTime = &now
		}

		return tx.Model(order).Updates(map[string]interface{}{
			"status":               model.OrderStatusPaused,
			"completed_amount_wan": completedAmountWan,
			"execution_history":    history,
		}).Error
	})
	if err == nil && monitor.Business != nil {
		monitor.Business.PendingOrders.WithLabelValues(strconv.FormatUint(tenantID, 10)).Dec()
	}
	return err
}

// Resume 恢复订单 (可选换打手)。换打手不会自动迁移窗口，操作员需另行分配。
func (s *OrderService) Resume(ctx context.Context, tenantID, orderID uint64, newStaffID *uint64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderStatusPaused {
			return errno.ErrOrderNotPaused
		}

		staffID := order.StaffID
		if newStaffID != nil {
			staffID = *newStaffID
		}

		// 目标打手的对称忙碌检查
		var busy int64
		if err := tx.Model(&model.Order{}).
			Where("staff_id = ? AND status = ? AND id <> ?", staffID, model.OrderStatusPending, orderID).
			Count(&busy).Error; err != nil {
			return err
		}
		if busy > 0 {
			return errno.ErrStaffBusy
		}

		staffName, err := s.staffs.StaffName(ctx, staffID)
		if err != nil {
			return err
		}

		history := append(order.ExecutionHistory, model.ExecutionRecord{
			StaffID:   staffID,
			StaffName: staffName,
			AmountWan: order.AmountWan - order.CompletedAmountWan,
			StartTime: time.Now(),
		})

		return tx.Model(order).Updates(map[string]interface{}{
			"status":            model.OrderStatusPending,
			"staff_id":          staffID,
			"execution_history": history,
		}).Error
	})
	if err == nil && monitor.Business != nil {
		monitor.Business.PendingOrders.WithLabelValues(strconv.FormatUint(tenantID, 10)).Inc()
	}
	return err
}

// ReleaseWindow 中途释放窗口。endBalance 为 nil 按"零消耗"处理 (取当前余额)，
// 消耗按释放时刻的当前余额算，窗口回到未分配。
func (s *OrderService) ReleaseWindow(ctx context.Context, tenantID, orderID, windowID uint64, endBalance *int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderStatusPending {
			return errno.ErrOrderNotPending
		}

		var w model.Window
		if err := pessimisticLock(tx).
			Where("id = ? AND tenant_id = ?", windowID, tenantID).
			First(&w).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errno.ErrWindowNotFound
			}
			return err
		}
		if w.AssignedStaffID == nil || *w.AssignedStaffID != order.StaffID {
			return errno.ErrWindowNotOwned
		}

		end := w.GoldBalance
		if endBalance != nil {
			end = *endBalance
		}
		if end < 0 {
			return errno.ErrNegativeBalance
		}
		consumed := w.GoldBalance - end

		staffName, err := s.staffs.StaffName(ctx, order.StaffID)
		if err != nil {
			return err
		}

		var machine model.Machine
		if err := tx.First(&machine, "id = ?", w.MachineID).Error; err != nil {
			return err
		}

		partials := append(order.PartialResults, model.PartialResult{
			WindowID:     w.ID,
			WindowNumber: w.WindowNumber,
			MachineName:  machine.Name,
			StaffID:      order.StaffID,
			StaffName:    staffName,
			StartBalance: w.GoldBalance,
			EndBalance:   end,
			Consumed:     consumed,
			ReleasedAt:   time.Now(),
		})

		if err := tx.Model(&w).Updates(map[string]interface{}{
			"gold_balance":      end,
			"assigned_staff_id": nil,
		}).Error; err != nil {
			return err
		}

		return tx.Model(order).Update("partial_results", partials).Error
	})
}

// CompleteInput 完成订单入参
type CompleteInput struct {
	TenantID uint64
	OrderID  uint64
	// EndBalances 窗口 ID -> 终点余额 (最小单位)。缺省的窗口按零消耗处理。
	EndBalances map[uint64]int64
	// ConfirmUnderDelivery 少交付 (totalConsumed < amount) 需要显式确认
	ConfirmUnderDelivery bool
}

// Complete 完成订单。结算对象是"当前分配给该打手"的全部窗口，
// 不限于派单快照。窗口完成后仍留在打手名下，需另行释放。
func (s *OrderService) Complete(ctx context.Context, in CompleteInput) (*model.Order, error) {
	var completed *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, in.TenantID, in.OrderID)
		if err != nil {
			return err
		}
		if order.Status == model.OrderStatusCompleted {
			return errno.ErrOrderCompleted
		}
		if order.Status != model.OrderStatusPending {
			// paused 必须先恢复
			return errno.ErrOrderNotPending
		}

		var windows []model.Window
		if err := pessimisticLock(tx).
			Where("tenant_id = ? AND assigned_staff_id = ?", in.TenantID, order.StaffID).
			Find(&windows).Error; err != nil {
			return err
		}

		results := make(model.WindowResults, 0, len(windows))
		var consumedUnits int64
		for i := range windows {
			w := &windows[i]
			end := w.GoldBalance // 缺省: 零消耗，余额不动
			if v, ok := in.EndBalances[w.ID]; ok {
				end = v
			}
			if end < 0 {
				return errno.ErrNegativeBalance
			}
			consumed := w.GoldBalance - end
			consumedUnits += consumed

			results = append(results, model.WindowResult{
				WindowID:   w.ID,
				EndBalance: end,
				Consumed:   consumed,
			})

			if err := tx.Model(w).Update("gold_balance", end).Error; err != nil {
				return err
			}
		}

		for _, p := range order.PartialResults {
			consumedUnits += p.Consumed
		}

		totalConsumedWan := gold.ToWan(consumedUnits)
		lossWan := totalConsumedWan - order.AmountWan
		if lossWan < 0 {
			lossWan = 0
		}

		if totalConsumedWan < order.AmountWan && !in.ConfirmUnderDelivery {
			return errno.ErrUnderDelivery
		}

		now := time.Now()
		history := order.ExecutionHistory
		if n := len(history); n > 0 && history[n-1].EndTime == nil {
			history[n-1].EndTime = &now
		}

		if err := tx.Model(order).Updates(map[string]interface{}{
			"status":             model.OrderStatusCompleted,
			"window_results":     results,
			"total_consumed_wan": totalConsumedWan,
			"loss_wan":           lossWan,
			"execution_history":  history,
			"completed_at":       now,
		}).Error; err != nil {
			return err
		}

		order.Status = model.OrderStatusCompleted
		order.WindowResults = results
		order.TotalConsumedWan = totalConsumedWan
		order.LossWan = lossWan
		order.CompletedAt = &now
		completed = order

		return model.CreateOutboxMessage(tx, event.TopicOrderCompleted, event.OrderCompletedEvent{
			OrderID:          order.ID,
			TenantID:         order.TenantID,
			StaffID:          order.StaffID,
			BizDate:          order.BizDate,
			AmountWan:        order.AmountWan,
			TotalConsumedWan: totalConsumedWan,
			LossWan:          lossWan,
		})
	})
	if err != nil {
		return nil, err
	}

	if monitor.Business != nil {
		tenant := strconv.FormatUint(in.TenantID, 10)
		monitor.Business.OrderCompletedTotal.WithLabelValues(tenant).Inc()
		monitor.Business.GoldConsumedTotal.WithLabelValues(tenant).Add(float64(completed.TotalConsumedWan))
		monitor.Business.GoldLossTotal.WithLabelValues(tenant).Add(float64(completed.LossWan))
		monitor.Business.PendingOrders.WithLabelValues(tenant).Dec()
	}
	return completed, nil
}

// Delete 删除订单，任何状态可删；不做余额回补
func (s *OrderService) Delete(ctx context.Context, tenantID, orderID uint64) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", orderID, tenantID).
		Delete(&model.Order{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errno.ErrOrderNotFound
	}
	return nil
}

// Get 查询订单
func (s *OrderService) Get(ctx context.Context, tenantID, orderID uint64) (*model.Order, error) {
	var order model.Order
	if err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", orderID, tenantID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// List 按租户查询订单，可按状态过滤
func (s *OrderService) List(ctx context.Context, tenantID uint64, status string) ([]model.Order, error) {
	query := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var orders []model.Order
	err := query.Order("id DESC").Find(&orders).Error
	return orders, err
}

// lockOrder 行锁读取订单
func (s *OrderService) lockOrder(tx *gorm.DB, tenantID, orderID uint64) (*model.Order, error) {
	var order model.Order
	if err := pessimisticLock(tx).
		Where("id = ? AND tenant_id = ?", orderID, tenantID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}
