// Package metrics 提供 Prometheus helper，包含交易生命周期引擎的业务指标
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/tradeos/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// 订单指标
	OrdersCreatedTotal prometheus.Counter
	OrdersHeldTotal    prometheus.Counter
	OrdersCancelled    prometheus.Counter

	// 块与路由指标
	BlocksBuiltTotal     prometheus.Counter
	BlocksRoutedTotal    prometheus.Counter
	BlocksAllocatedTotal prometheus.Counter

	// 交易差错指标
	TradeErrorsOpen prometheus.Gauge

	// 审计账本指标
	LedgerAppendsTotal prometheus.Counter

	// 外部网关调用耗时
	GatewayCallDuration prometheus.Histogram
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		OrdersCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "orders_created_total",
			Help:      "Total orders accepted by pre-trade checks",
		}),
		OrdersHeldTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "orders_held_total",
			Help:      "Total orders held by pre-trade compliance gates",
		}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "orders_cancelled_total",
			Help:      "Total orders cancelled",
		}),
		BlocksBuiltTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "blocks_built_total",
			Help:      "Total blocks staged for routing",
		}),
		BlocksRoutedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "blocks_routed_total",
			Help:      "Total blocks dispatched to execution venues",
		}),
		BlocksAllocatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "blocks_allocated_total",
			Help:      "Total blocks allocated back to orders",
		}),
		TradeErrorsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "trade_errors_open",
			Help:      "Number of segregated trade errors awaiting closure",
		}),
		LedgerAppendsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "ledger_appends_total",
			Help:      "Total audit events appended to the WORM ledger",
		}),
		GatewayCallDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "gateway_call_duration_seconds",
			Help:      "External collaborator gateway call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.OrdersCreatedTotal,
		m.OrdersHeldTotal,
		m.OrdersCancelled,
		m.BlocksBuiltTotal,
		m.BlocksRoutedTotal,
		m.BlocksAllocatedTotal,
		m.TradeErrorsOpen,
		m.LedgerAppendsTotal,
		m.GatewayCallDuration,
	}

	for _, collector := range collectors {
		if err := prometheus.DefaultRegisterer.Register(collector); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "Failed to start Prometheus HTTP server", "error", err)
		}
	}()

	return nil
}
