package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"goldops-core/internal/event"
	"goldops-core/internal/model"
	"goldops-core/pkg/errno"
	"goldops-core/pkg/gold"
	"goldops-core/pkg/monitor"
	"goldops-core/pkg/utils/lock"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransferService 好友间转让协议。
//
// 接受转让在单个事务里完成: 行锁 + 状态 check-and-set 保证请求只被解析一次，
// 接收方按原机器分组重建机器记录 (不复用发送方的机器 ID，避免跨租户外键)，
// 窗口改挂接收方，双方台账各记一条按请求价计价的出/入库。
// 事务外再包一层 Redis 锁，挡掉同一请求的并发接受。
type TransferService struct {
	db      *gorm.DB
	costs   *CostService
	friends FriendshipChecker
	locker  lock.DistributedLock
}

func NewTransferService(db *gorm.DB, costs *CostService, friends FriendshipChecker, locker lock.DistributedLock) *TransferService {
	return &TransferService{db: db, costs: costs, friends: friends, locker: locker}
}

// RequestWindow 发起单窗口转让。窗口必须未分配。
// price 为空时默认按发送方加权平均成本计价: balance * avgCostPerUnit。
func (s *TransferService) RequestWindow(ctx context.Context, fromTenantID, toTenantID, windowID uint64, price string) (*model.TransferRequest, error) {
	if err := s.checkFriendship(ctx, fromTenantID, toTenantID); err != nil {
		return nil, err
	}

	var w model.Window
	if err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", windowID, fromTenantID).
		First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrWindowNotFound
		}
		return nil, err
	}
	if w.AssignedStaffID != nil {
		return nil, errno.ErrWindowAssigned
	}

	var machine model.Machine
	if err := s.db.WithContext(ctx).First(&machine, "id = ?", w.MachineID).Error; err != nil {
		return nil, err
	}

	priceDec, err := s.resolvePrice(ctx, fromTenantID, price, w.GoldBalance)
	if err != nil {
		return nil, err
	}

	req := &model.TransferRequest{
		FromTenantID: fromTenantID,
		ToTenantID:   toTenantID,
		Kind:         model.TransferKindSingleWindow,
		Windows: model.TransferWindowSnapshots{{
			WindowID:     w.ID,
			MachineID:    w.MachineID,
			WindowNumber: w.WindowNumber,
			GoldBalance:  w.GoldBalance,
		}},
		Machines:  machineSnapshots(machine),
		Price:     priceDec,
		TotalGold: w.GoldBalance,
		Status:    model.TransferStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

// RequestMachine 发起整机转让: 带上机器下全部未分配窗口，
// 仍在打手手里的窗口不参与；一个可转窗口都没有时拒绝。
func (s *TransferService) RequestMachine(ctx context.Context, fromTenantID, toTenantID, machineID uint64, price string) (*model.TransferRequest, error) {
	if err := s.checkFriendship(ctx, fromTenantID, toTenantID); err != nil {
		return nil, err
	}

	var machine model.Machine
	if err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", machineID, fromTenantID).
		First(&machine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrMachineNotFound
		}
		return nil, err
	}

	var windows []model.Window
	if err := s.db.WithContext(ctx).
		Where("machine_id = ? AND tenant_id = ? AND assigned_staff_id IS NULL", machineID, fromTenantID).
		Find(&windows).Error; err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, errno.ErrNoEligibleWindows
	}

	snapshots := make(model.TransferWindowSnapshots, 0, len(windows))
	var totalGold int64
	for _, w := range windows {
		snapshots = append(snapshots, model.TransferWindowSnapshot{
			WindowID:     w.ID,
			MachineID:    w.MachineID,
			WindowNumber: w.WindowNumber,
			GoldBalance:  w.GoldBalance,
		})
		totalGold += w.GoldBalance
	}

	priceDec, err := s.resolvePrice(ctx, fromTenantID, price, totalGold)
	if err != nil {
		return nil, err
	}

	req := &model.TransferRequest{
		FromTenantID: fromTenantID,
		ToTenantID:   toTenantID,
		Kind:         model.TransferKindWholeMachine,
		Windows:      snapshots,
		Machines:     machineSnapshots(machine),
		Price:        priceDec,
		TotalGold:    totalGold,
		Status:       model.TransferStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

// Respond 接收方接受或拒绝转让。请求只能被解析一次。
func (s *TransferService) Respond(ctx context.Context, toTenantID, requestID uint64, accept bool) error {
	if s.locker != nil {
		key := fmt.Sprintf("transfer:resolve:%d", requestID)
		locked, err := s.locker.Acquire(ctx, key, 10*time.Second)
		if err != nil {
			return err
		}
		if !locked {
			return errno.ErrTransferBusy
		}
		defer s.locker.Release(ctx, key)
	}

	var accepted *model.TransferRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req model.TransferRequest
		if err := pessimisticLock(tx).
			Where("id = ? AND to_tenant_id = ?", requestID, toTenantID).
			First(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errno.ErrTransferNotFound
			}
			return err
		}
		// 幂等保护: pending 以外的状态说明已经被解析过
		if req.Status != model.TransferStatusPending {
			return errno.ErrTransferResolved
		}

		now := time.Now()
		if !accept {
			return tx.Model(&req).Updates(map[string]interface{}{
				"status":      model.TransferStatusRejected,
				"resolved_at": now,
			}).Error
		}

		if err := s.applyAcceptance(tx, &req); err != nil {
			return err
		}

		if err := tx.Model(&req).Updates(map[string]interface{}{
			"status":      model.TransferStatusAccepted,
			"resolved_at": now,
		}).Error; err != nil {
			return err
		}

		accepted = &req
		return model.CreateOutboxMessage(tx, event.TopicTransferAccepted, event.TransferAcceptedEvent{
			TransferID:   req.ID,
			FromTenantID: req.FromTenantID,
			ToTenantID:   req.ToTenantID,
			Kind:         req.Kind,
			TotalGold:    req.TotalGold,
			Price:        req.Price.String(),
		})
	})
	if err != nil {
		return err
	}

	if accepted != nil {
		s.costs.Invalidate(ctx, accepted.FromTenantID)
		s.costs.Invalidate(ctx, accepted.ToTenantID)
		if monitor.Business != nil {
			wan := float64(gold.ToWan(accepted.TotalGold))
			monitor.Business.TransferAmountTotal.WithLabelValues("out").Add(wan)
			monitor.Business.TransferAmountTotal.WithLabelValues("in").Add(wan)
		}
	}
	return nil
}

// Cancel 发起方撤销未解析的请求，无任何台账/窗口副作用
func (s *TransferService) Cancel(ctx context.Context, fromTenantID, requestID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req model.TransferRequest
		if err := pessimisticLock(tx).
			Where("id = ? AND from_tenant_id = ?", requestID, fromTenantID).
			First(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errno.ErrTransferNotFound
			}
			return err
		}
		if req.Status != model.TransferStatusPending {
			return errno.ErrTransferResolved
		}
		now := time.Now()
		return tx.Model(&req).Updates(map[string]interface{}{
			"status":      model.TransferStatusCancelled,
			"resolved_at": now,
		}).Error
	})
}

// List 查询某租户相关的转让请求 (发出或收到)
func (s *TransferService) List(ctx context.Context, tenantID uint64) ([]model.TransferRequest, error) {
	var reqs []model.TransferRequest
	err := s.db.WithContext(ctx).
		Where("from_tenant_id = ? OR to_tenant_id = ?", tenantID, tenantID).
		Order("id DESC").
		Find(&reqs).Error
	return reqs, err
}

// applyAcceptance 执行接受的全部副作用，必须在事务内调用。
// 按原机器 ID 分组，每个原机器在接收方名下合成一台新机器。
func (s *TransferService) applyAcceptance(tx *gorm.DB, req *model.TransferRequest) error {
	machineInfo := make(map[uint64]model.TransferMachineSnapshot, len(req.Machines))
	for _, m := range req.Machines {
		machineInfo[m.MachineID] = m
	}

	// 原机器 ID -> 新机器 ID
	newMachines := make(map[uint64]uint64)
	for _, w := range req.Windows {
		if _, ok := newMachines[w.MachineID]; ok {
			continue
		}
		info := machineInfo[w.MachineID]
		machine := model.Machine{
			TenantID:  req.ToTenantID,
			Name:      info.Name,
			Phone:     info.Phone,
			Platform:  info.Platform,
			LoginType: info.LoginType,
		}
		if err := tx.Create(&machine).Error; err != nil {
			return err
		}
		newMachines[w.MachineID] = machine.ID
	}

	for _, snap := range req.Windows {
		result := tx.Model(&model.Window{}).
			Where("id = ? AND tenant_id = ?", snap.WindowID, req.FromTenantID).
			Updates(map[string]interface{}{
				"tenant_id":         req.ToTenantID,
				"machine_id":        newMachines[snap.MachineID],
				"assigned_staff_id": nil,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// 窗口在请求创建后被删除或已转走
			return errno.ErrWindowNotFound
		}
	}

	bizDate := time.Now().Format("2006-01-02")
	out := &model.LedgerEntry{
		TenantID:   req.FromTenantID,
		BizDate:    bizDate,
		Amount:     -req.TotalGold,
		Cost:       req.Price.Neg(),
		Kind:       model.LedgerKindTransferOut,
		TransferID: &req.ID,
	}
	if err := s.costs.AppendEntryTx(tx, out); err != nil {
		return err
	}

	in := &model.LedgerEntry{
		TenantID:   req.ToTenantID,
		BizDate:    bizDate,
		Amount:     req.TotalGold,
		Cost:       req.Price,
		Kind:       model.LedgerKindTransferIn,
		TransferID: &req.ID,
	}
	return s.costs.AppendEntryTx(tx, in)
}

func (s *TransferService) checkFriendship(ctx context.Context, fromTenantID, toTenantID uint64) error {
	ok, err := s.friends.IsFriend(ctx, fromTenantID, toTenantID)
	if err != nil {
		return err
	}
	if !ok {
		return errno.ErrNotFriends
	}
	return nil
}

// resolvePrice 请求未给价时按发送方加权平均成本估价
func (s *TransferService) resolvePrice(ctx context.Context, fromTenantID uint64, price string, totalGold int64) (decimal.Decimal, error) {
	if price != "" {
		return decimal.NewFromString(price)
	}
	avg, err := s.costs.AvgCostPerUnit(ctx, fromTenantID)
	if err != nil {
		return decimal.Zero, err
	}
	return avg.Mul(decimal.NewFromInt(totalGold)), nil
}

func machineSnapshots(machines ...model.Machine) model.TransferMachineSnapshots {
	snaps := make(model.TransferMachineSnapshots, 0, len(machines))
	for _, m := range machines {
		snaps = append(snaps, model.TransferMachineSnapshot{
			MachineID: m.ID,
			Name:      m.Name,
			Phone:     m.Phone,
			Platform:  m.Platform,
			LoginType: m.LoginType,
		})
	}
	return snaps
}
