package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 定义业务监控指标
type BusinessMetrics struct {
	OrderDispatchedTotal *prometheus.CounterVec
	OrderCompletedTotal  *prometheus.CounterVec
	GoldConsumedTotal    *prometheus.CounterVec
	GoldLossTotal        *prometheus.CounterVec
	TransferAmountTotal  *prometheus.CounterVec
	PendingOrders        *prometheus.GaugeVec
}

// Global Metrics Instance
var Business *BusinessMetrics

// InitBusinessMetrics 初始化业务指标
func InitBusinessMetrics() {
	Business = &BusinessMetrics{
		OrderDispatchedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "goldops_order_dispatched_total",
			Help: "The total number of dispatched orders",
		}, []string{"tenant"}),
		OrderCompletedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "goldops_order_completed_total",
			Help: "The total number of completed orders",
		}, []string{"tenant"}),
		GoldConsumedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "goldops_gold_consumed_wan_total",
			Help: "Total gold consumed by completed orders, in wan",
		}, []string{"tenant"}),
		GoldLossTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "goldops_gold_loss_wan_total",
			Help: "Total gold lost beyond order amounts, in wan",
		}, []string{"tenant"}),
		TransferAmountTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "goldops_transfer_gold_wan_total",
			Help: "Total gold moved by accepted transfers, in wan",
		}, []string{"direction"}),
		PendingOrders: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "goldops_pending_orders",
			Help: "Number of orders currently in pending state",
		}, []string{"tenant"}),
	}
}
