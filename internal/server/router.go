package server

import (
	"goldops-core/internal/handler"
	"goldops-core/internal/handler/response"

	"goldops-core/pkg/monitor"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers 路由需要的全部 Handler
type Handlers struct {
	Order    *handler.OrderHandler
	Transfer *handler.TransferHandler
	Window   *handler.WindowHandler
	Stats    *handler.StatsHandler
}

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(h Handlers) *gin.Engine {
	// 0. 初始化监控指标
	monitor.Init()

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 注册通用中间件
	r.Use(monitor.PrometheusMiddleware())

	// 3. 注册基础路由
	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 4. 注册 API 路由组
	api := r.Group("/api/v1")
	{
		api.GET("/ping", func(c *gin.Context) {
			response.Success(c, gin.H{"pong": true})
		})

		orders := api.Group("/orders")
		{
			orders.POST("/dispatch", h.Order.Dispatch)
			orders.POST("/:id/pause", h.Order.Pause)
			orders.POST("/:id/resume", h.Order.Resume)
			orders.POST("/:id/release-window", h.Order.ReleaseWindow)
			orders.POST("/:id/complete", h.Order.Complete)
			orders.DELETE("/:id", h.Order.Delete)
			orders.GET("", h.Order.List)
		}

		transfers := api.Group("/transfers")
		{
			transfers.POST("/window", h.Transfer.RequestWindow)
			transfers.POST("/machine", h.Transfer.RequestMachine)
			transfers.POST("/:id/respond", h.Transfer.Respond)
			transfers.DELETE("/:id", h.Transfer.Cancel)
			transfers.GET("", h.Transfer.List)
		}

		machines := api.Group("/machines")
		{
			machines.POST("", h.Window.CreateMachine)
			machines.GET("", h.Window.ListMachines)
			machines.DELETE("/:id", h.Window.DeleteMachine)
			machines.DELETE("/:id/windows", h.Window.DeleteMachineWindows)
			machines.GET("/:id/login-password", h.Window.MachineLoginPassword)
		}

		windows := api.Group("/windows")
		{
			windows.POST("", h.Window.CreateWindow)
			windows.GET("", h.Window.ListWindows)
			windows.POST("/:id/assign", h.Window.AssignWindow)
			windows.POST("/:id/recharge", h.Window.RechargeWindow)
			windows.DELETE("/:id", h.Window.DeleteWindow)
		}

		stats := api.Group("/stats")
		{
			stats.GET("/avg-cost", h.Stats.AvgCost)
			stats.GET("/daily", h.Stats.Daily)
			stats.GET("/overview", h.Stats.Overview)
		}

		api.POST("/ledger", h.Stats.AppendLedger)
		api.GET("/ledger", h.Stats.ListLedger)
	}

	return r
}
