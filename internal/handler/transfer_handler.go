package handler

import (
	"goldops-core/internal/handler/request"
	"goldops-core/internal/handler/response"
	"goldops-core/internal/service"

	"github.com/gin-gonic/gin"
)

type TransferHandler struct {
	transfers *service.TransferService
}

func NewTransferHandler(transfers *service.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// RequestWindow 发起单窗口转让
// @Summary 发起单窗口转让
// @Description 未分配的窗口可以转让给好友租户；price 缺省按加权平均成本计价
// @Tags Transfer
// @Accept json
// @Produce json
// @Param request body request.RequestWindowTransferRequest true "Window Transfer"
// @Success 200 {object} response.Response
// @Router /api/v1/transfers/window [post]
func (h *TransferHandler) RequestWindow(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.RequestWindowTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	transfer, err := h.transfers.RequestWindow(c.Request.Context(), tenant, req.ToTenantID, req.WindowID, req.Price)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, transfer)
}

// RequestMachine 发起整机转让
// @Summary 发起整机转让
// @Description 整机连同全部未分配窗口转让；没有可转窗口时拒绝
// @Tags Transfer
// @Accept json
// @Produce json
// @Param request body request.RequestMachineTransferRequest true "Machine Transfer"
// @Success 200 {object} response.Response
// @Router /api/v1/transfers/machine [post]
func (h *TransferHandler) RequestMachine(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.RequestMachineTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	transfer, err := h.transfers.RequestMachine(c.Request.Context(), tenant, req.ToTenantID, req.MachineID, req.Price)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, transfer)
}

// Respond 接受或拒绝转让
// @Summary 接受或拒绝转让
// @Description 请求只能被解析一次，重复提交返回已解析错误
// @Tags Transfer
// @Accept json
// @Produce json
// @Param id path int true "Transfer ID"
// @Param request body request.RespondTransferRequest true "Respond Request"
// @Success 200 {object} response.Response
// @Router /api/v1/transfers/{id}/respond [post]
func (h *TransferHandler) Respond(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	transferID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.RespondTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.transfers.Respond(c.Request.Context(), tenant, transferID, req.Action == "accept"); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Cancel 撤销转让请求
// @Summary 撤销转让请求
// @Tags Transfer
// @Produce json
// @Param id path int true "Transfer ID"
// @Success 200 {object} response.Response
// @Router /api/v1/transfers/{id} [delete]
func (h *TransferHandler) Cancel(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	transferID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.transfers.Cancel(c.Request.Context(), tenant, transferID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// List 转让请求列表 (发出 + 收到)
// @Summary 转让请求列表
// @Tags Transfer
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/transfers [get]
func (h *TransferHandler) List(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	transfers, err := h.transfers.List(c.Request.Context(), tenant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, transfers)
}
