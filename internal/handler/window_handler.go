package handler

import (
	"goldops-core/internal/handler/request"
	"goldops-core/internal/handler/response"
	"goldops-core/internal/service"

	"github.com/gin-gonic/gin"
)

type WindowHandler struct {
	windows  *service.WindowService
	machines *service.MachineService
}

func NewWindowHandler(windows *service.WindowService, machines *service.MachineService) *WindowHandler {
	return &WindowHandler{windows: windows, machines: machines}
}

// CreateMachine 新购机器
// @Summary 新购机器
// @Description 创建机器记录及其窗口
// @Tags Machine
// @Accept json
// @Produce json
// @Param request body request.CreateMachineRequest true "Create Machine"
// @Success 200 {object} response.Response
// @Router /api/v1/machines [post]
func (h *WindowHandler) CreateMachine(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.CreateMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	machine, err := h.machines.Create(c.Request.Context(), service.CreateMachineInput{
		TenantID:       tenant,
		Name:           req.Name,
		Phone:          req.Phone,
		Platform:       req.Platform,
		LoginType:      req.LoginType,
		LoginPassword:  req.LoginPassword,
		WindowCount:    req.WindowCount,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, machine)
}

// ListMachines 机器列表 (带窗口)
// @Summary 机器列表
// @Tags Machine
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/machines [get]
func (h *WindowHandler) ListMachines(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	machines, err := h.machines.List(c.Request.Context(), tenant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, machines)
}

// DeleteMachineWindows 删除机器下全部窗口
// @Summary 删除机器下全部窗口
// @Tags Machine
// @Produce json
// @Param id path int true "Machine ID"
// @Success 200 {object} response.Response
// @Router /api/v1/machines/{id}/windows [delete]
func (h *WindowHandler) DeleteMachineWindows(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	machineID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	removed, err := h.windows.DeleteByMachine(c.Request.Context(), tenant, machineID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"removed": removed})
}

// DeleteMachine 删除机器 (级联窗口)
// @Summary 删除机器
// @Tags Machine
// @Produce json
// @Param id path int true "Machine ID"
// @Success 200 {object} response.Response
// @Router /api/v1/machines/{id} [delete]
func (h *WindowHandler) DeleteMachine(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	machineID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.machines.Delete(c.Request.Context(), tenant, machineID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// MachineLoginPassword 查看机器登录密码 (解密后返回，运维排障用)
// @Summary 查看机器登录密码
// @Tags Machine
// @Produce json
// @Param id path int true "Machine ID"
// @Success 200 {object} response.Response
// @Router /api/v1/machines/{id}/login-password [get]
func (h *WindowHandler) MachineLoginPassword(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	machineID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	password, err := h.machines.LoginPassword(c.Request.Context(), tenant, machineID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"login_password": password})
}

// CreateWindow 在机器下加窗口
// @Summary 新建窗口
// @Tags Window
// @Accept json
// @Produce json
// @Param request body request.CreateWindowRequest true "Create Window"
// @Success 200 {object} response.Response
// @Router /api/v1/windows [post]
func (h *WindowHandler) CreateWindow(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.CreateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	w, err := h.windows.Create(c.Request.Context(), tenant, req.MachineID, req.WindowNumber, req.InitialBalance)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, w)
}

// AssignWindow 分配/释放窗口
// @Summary 分配或释放窗口
// @Description staff_id 为空表示释放回未分配；分配受持窗上限约束
// @Tags Window
// @Accept json
// @Produce json
// @Param id path int true "Window ID"
// @Param request body request.AssignWindowRequest true "Assign Request"
// @Success 200 {object} response.Response
// @Router /api/v1/windows/{id}/assign [post]
func (h *WindowHandler) AssignWindow(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	windowID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.AssignWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.windows.Assign(c.Request.Context(), tenant, windowID, req.StaffID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// RechargeWindow 窗口充值
// @Summary 窗口充值
// @Description 设置窗口绝对余额，负值拒绝
// @Tags Window
// @Accept json
// @Produce json
// @Param id path int true "Window ID"
// @Param request body request.RechargeWindowRequest true "Recharge Request"
// @Success 200 {object} response.Response
// @Router /api/v1/windows/{id}/recharge [post]
func (h *WindowHandler) RechargeWindow(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	windowID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.RechargeWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.windows.AdjustBalance(c.Request.Context(), tenant, windowID, req.GoldBalance); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// DeleteWindow 删除窗口
// @Summary 删除窗口
// @Tags Window
// @Produce json
// @Param id path int true "Window ID"
// @Success 200 {object} response.Response
// @Router /api/v1/windows/{id} [delete]
func (h *WindowHandler) DeleteWindow(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	windowID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.windows.Delete(c.Request.Context(), tenant, windowID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListWindows 窗口列表
// @Summary 窗口列表
// @Tags Window
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/windows [get]
func (h *WindowHandler) ListWindows(c *gin.Context) {
	tenant, err := tenantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	windows, err := h.windows.ListByTenant(c.Request.Context(), tenant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, windows)
}
