package handler

import (
	"goldops-core/internal/handler/request"
	"goldops-core/internal/handler/response"
	"goldops-core/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Dispatch 派单
// @Summary 派单
// @Description 选定打手和一组窗口创建订单并记录余额快照
// @Tags Order
// @Accept json
// @Produce json
// @Param request body request.DispatchOrderRequest true "Dispatch Request"
// @Success 200 {object} response.Response
// @Router /api/v1/orders/dispatch [post]
func (h *OrderHandler) Dispatch(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.DispatchOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.orders.Dispatch(c.Request.Context(), service.DispatchInput{
		TenantID:   tenant,
		StaffID:    req.StaffID,
		WindowIDs:  req.WindowIDs,
		AmountWan:  req.AmountWan,
		UnitPrice:  req.UnitPrice,
		FeePercent: req.FeePercent,
		BizDate:    req.BizDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, order)
}

// Pause 暂停订单
// @Summary 暂停订单
// @Tags Order
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body request.PauseOrderRequest true "Pause Request"
// @Success 200 {object} response.Response
// @Router /api/v1/orders/{id}/pause [post]
func (h *OrderHandler) Pause(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.PauseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.orders.Pause(c.Request.Context(), tenant, orderID, req.CompletedAmountWan); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Resume 恢复订单 (可转给新打手)
// @Summary 恢复订单
// @Tags Order
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body request.ResumeOrderRequest true "Resume Request"
// @Success 200 {object} response.Response
// @Router /api/v1/orders/{id}/resume [post]
func (h *OrderHandler) Resume(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.ResumeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.orders.Resume(c.Request.Context(), tenant, orderID, req.StaffID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ReleaseWindow 中途释放窗口
// @Summary 中途释放窗口
// @Description 结算单个窗口的消耗并把窗口放回未分配
// @Tags Order
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body request.ReleaseWindowRequest true "Release Request"
// @Success 200 {object} response.Response
// @Router /api/v1/orders/{id}/release-window [post]
func (h *OrderHandler) ReleaseWindow(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.ReleaseWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.orders.ReleaseWindow(c.Request.Context(), tenant, orderID, req.WindowID, req.EndBalance); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Complete 完成订单
// @Summary 完成订单
// @Description 按当前分配给打手的全部窗口结算；少交付需带 confirm 重新提交
// @Tags Order
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body request.CompleteOrderRequest true "Complete Request"
// @Success 200 {object} response.Response
// @Router /api/v1/orders/{id}/complete [post]
func (h *OrderHandler) Complete(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.CompleteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.orders.Complete(c.Request.Context(), service.CompleteInput{
		TenantID:             tenant,
		OrderID:              orderID,
		EndBalances:          req.EndBalances,
		ConfirmUnderDelivery: req.Confirm,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, order)
}

// Delete 删除订单
// @Summary 删除订单
// @Description 任意状态可删，不回补窗口余额
// @Tags Order
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} response.Response
// @Router /api/v1/orders/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.orders.Delete(c.Request.Context(), tenant, orderID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// List 订单列表
// @Summary 订单列表
// @Tags Order
// @Produce json
// @Param status query string false "pending / paused / completed"
// @Success 200 {object} response.Response
// @Router /api/v1/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	orders, err := h.orders.List(c.Request.Context(), tenant, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, orders)
}
