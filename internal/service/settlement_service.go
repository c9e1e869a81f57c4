package service

import (
	"context"
	"sort"

	"goldops-core/internal/model"
	"goldops-core/pkg/gold"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementService 结算计算器: 把已完成订单和进货台账汇总成
// 日报表和全局统计。本服务只读，不改任何状态。
//
// 营收统一采用扣除手续费的口径:
//
//	revenue = (amount/1000) * unitPrice * (1 - feePercent/100)
type SettlementService struct {
	db    *gorm.DB
	costs *CostService
	// EmployeeCostRate 打手工费 (元/千万)
	EmployeeCostRate decimal.Decimal
	// InitialCapital 初始资金
	InitialCapital decimal.Decimal
}

func NewSettlementService(db *gorm.DB, costs *CostService, employeeCostRate, initialCapital float64) *SettlementService {
	return &SettlementService{
		db:               db,
		costs:            costs,
		EmployeeCostRate: decimal.NewFromFloat(employeeCostRate),
		InitialCapital:   decimal.NewFromFloat(initialCapital),
	}
}

// OrderFigures 单笔已完成订单的结算结果
type OrderFigures struct {
	Revenue      decimal.Decimal `json:"revenue"`
	EmployeeCost decimal.Decimal `json:"employee_cost"`
	Cogs         decimal.Decimal `json:"cogs"`
	Profit       decimal.Decimal `json:"profit"`
}

// DailyReport 某一天的汇总
type DailyReport struct {
	BizDate      string          `json:"biz_date"`
	OrderCount   int             `json:"order_count"`
	SoldWan      int64           `json:"sold_wan"`
	LossWan      int64           `json:"loss_wan"`
	Revenue      decimal.Decimal `json:"revenue"`
	EmployeeCost decimal.Decimal `json:"employee_cost"`
	Cogs         decimal.Decimal `json:"cogs"`
	Profit       decimal.Decimal `json:"profit"`
	// InventoryWan 截止当日的库存 (万): 累计进货 - 累计(交付+损耗)
	InventoryWan int64 `json:"inventory_wan"`
}

// Overview 全局统计
type Overview struct {
	TotalProfit    decimal.Decimal `json:"total_profit"`
	AvgCostPerK    decimal.Decimal `json:"avg_cost_per_thousand_wan"`
	InventoryWan   int64           `json:"inventory_wan"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	CurrentCash    decimal.Decimal `json:"current_cash"`
	TotalAssets    decimal.Decimal `json:"total_assets"`
}

var hundred = decimal.NewFromInt(100)

// Figures 按统一口径计算单笔订单
func (s *SettlementService) Figures(order *model.Order, costPerThousandWan decimal.Decimal) OrderFigures {
	amountK := gold.WanToThousand(order.AmountWan)
	feeFactor := decimal.NewFromInt(1).Sub(order.FeePercent.Div(hundred))

	revenue := amountK.Mul(order.UnitPrice).Mul(feeFactor)
	employeeCost := amountK.Mul(s.EmployeeCostRate)
	cogs := gold.WanToThousand(order.AmountWan + order.LossWan).Mul(costPerThousandWan)

	return OrderFigures{
		Revenue:      revenue,
		EmployeeCost: employeeCost,
		Cogs:         cogs,
		Profit:       revenue.Sub(employeeCost).Sub(cogs),
	}
}

// Daily 按日分桶汇总已完成订单，附带截止当日的库存走势
func (s *SettlementService) Daily(ctx context.Context, tenantID uint64) ([]DailyReport, error) {
	var orders []model.Order
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, model.OrderStatusCompleted).
		Find(&orders).Error; err != nil {
		return nil, err
	}

	costPerK, err := s.costs.AvgCostPerThousandWan(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*DailyReport)
	for i := range orders {
		o := &orders[i]
		report, ok := buckets[o.BizDate]
		if !ok {
			report = &DailyReport{BizDate: o.BizDate}
			buckets[o.BizDate] = report
		}
		f := s.Figures(o, costPerK)
		report.OrderCount++
		report.SoldWan += o.AmountWan
		report.LossWan += o.LossWan
		report.Revenue = report.Revenue.Add(f.Revenue)
		report.EmployeeCost = report.EmployeeCost.Add(f.EmployeeCost)
		report.Cogs = report.Cogs.Add(f.Cogs)
		report.Profit = report.Profit.Add(f.Profit)
	}

	// 进货量按日累加，库存 = 累计进货 - 累计(交付+损耗)
	purchases, err := s.purchasesByDate(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	dates := make(map[string]struct{})
	for d := range buckets {
		dates[d] = struct{}{}
	}
	for d := range purchases {
		dates[d] = struct{}{}
	}
	sorted := make([]string, 0, len(dates))
	for d := range dates {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	reports := make([]DailyReport, 0, len(sorted))
	var runningWan int64
	for _, d := range sorted {
		runningWan += purchases[d]
		report := buckets[d]
		if report == nil {
			report = &DailyReport{BizDate: d}
		}
		runningWan -= report.SoldWan + report.LossWan
		report.InventoryWan = runningWan
		reports = append(reports, *report)
	}
	return reports, nil
}

// Stats 全局统计
func (s *SettlementService) Stats(ctx context.Context, tenantID uint64) (*Overview, error) {
	reports, err := s.Daily(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var totalProfit decimal.Decimal
	var soldWan, lossWan int64
	for _, r := range reports {
		totalProfit = totalProfit.Add(r.Profit)
		soldWan += r.SoldWan
		lossWan += r.LossWan
	}

	totalUnits, totalCost, err := s.costs.Totals(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	remainingUnits := totalUnits - gold.FromWan(soldWan+lossWan)
	inventoryValue, err := s.costs.InventoryValue(ctx, tenantID, remainingUnits)
	if err != nil {
		return nil, err
	}

	currentCash := s.InitialCapital.Add(totalProfit).Sub(inventoryValue)
	return &Overview{
		TotalProfit:    totalProfit,
		AvgCostPerK:    gold.CostPerThousandWan(totalCost, totalUnits),
		InventoryWan:   gold.ToWan(remainingUnits),
		InventoryValue: inventoryValue,
		CurrentCash:    currentCash,
		TotalAssets:    currentCash.Add(inventoryValue),
	}, nil
}

// Snapshot 把某租户的日报表物化到 daily_settlements (定时任务调用)
func (s *SettlementService) Snapshot(ctx context.Context, tenantID uint64) error {
	reports, err := s.Daily(ctx, tenantID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range reports {
			row := model.DailySettlement{
				TenantID:     tenantID,
				BizDate:      r.BizDate,
				Revenue:      r.Revenue,
				EmployeeCost: r.EmployeeCost,
				Cogs:         r.Cogs,
				Profit:       r.Profit,
				SoldWan:      r.SoldWan,
				LossWan:      r.LossWan,
				OrderCount:   r.OrderCount,
			}
			err := tx.Where("tenant_id = ? AND biz_date = ?", tenantID, r.BizDate).
				Assign(map[string]interface{}{
					"revenue":       r.Revenue,
					"employee_cost": r.EmployeeCost,
					"cogs":          r.Cogs,
					"profit":        r.Profit,
					"sold_wan":      r.SoldWan,
					"loss_wan":      r.LossWan,
					"order_count":   r.OrderCount,
				}).
				FirstOrCreate(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// purchasesByDate 台账按日求和，返回 万
func (s *SettlementService) purchasesByDate(ctx context.Context, tenantID uint64) (map[string]int64, error) {
	type row struct {
		BizDate     string
		TotalAmount int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Select("biz_date, COALESCE(SUM(amount),0) AS total_amount").
		Where("tenant_id = ?", tenantID).
		Group("biz_date").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, r := range rows {
		result[r.BizDate] = gold.ToWan(r.TotalAmount)
	}
	return result, nil
}
