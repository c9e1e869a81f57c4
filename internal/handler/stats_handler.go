package handler

import (
	"goldops-core/internal/handler/request"
	"goldops-core/internal/handler/response"
	"goldops-core/internal/model"
	"goldops-core/internal/service"
	"goldops-core/pkg/errno"
	"goldops-core/pkg/gold"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type StatsHandler struct {
	costs      *service.CostService
	settlement *service.SettlementService
}

func NewStatsHandler(costs *service.CostService, settlement *service.SettlementService) *StatsHandler {
	return &StatsHandler{costs: costs, settlement: settlement}
}

// AppendLedger 记一笔进货
// @Summary 记一笔进货台账
// @Tags Ledger
// @Accept json
// @Produce json
// @Param request body request.AppendLedgerRequest true "Ledger Entry"
// @Success 200 {object} response.Response
// @Router /api/v1/ledger [post]
func (h *StatsHandler) AppendLedger(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.AppendLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cost, err := decimal.NewFromString(req.Cost)
	if err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	entry := &model.LedgerEntry{
		TenantID: tenant,
		BizDate:  req.BizDate,
		Amount:   gold.FromWan(req.AmountWan),
		Cost:     cost,
		Kind:     model.LedgerKindNormal,
	}
	if err := h.costs.AppendEntry(c.Request.Context(), entry); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, entry)
}

// ListLedger 台账列表
// @Summary 台账列表
// @Tags Ledger
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/ledger [get]
func (h *StatsHandler) ListLedger(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	entries, err := h.costs.ListEntries(c.Request.Context(), tenant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, entries)
}

// AvgCost 加权平均成本
// @Summary 加权平均成本
// @Description 返回每千万的加权平均进货成本
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/stats/avg-cost [get]
func (h *StatsHandler) AvgCost(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	costPerK, err := h.costs.AvgCostPerThousandWan(c.Request.Context(), tenant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"avg_cost_per_thousand_wan": costPerK})
}

// Daily 日结算报表
// @Summary 日结算报表
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/stats/daily [get]
func (h *StatsHandler) Daily(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	reports, err := h.settlement.Daily(c.Request.Context(), tenant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reports)
}

// Overview 全局统计
// @Summary 全局统计
// @Description 总利润、库存估值、现金和总资产
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/stats/overview [get]
func (h *StatsHandler) Overview(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	overview, err := h.settlement.Stats(c.Request.Context(), tenant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, overview)
}
