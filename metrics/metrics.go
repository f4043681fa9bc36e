// Package metrics provides Prometheus metrics for the market maker.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 做市循环的指标集合。
type Metrics struct {
	Cycles          prometheus.Counter
	Quotes          prometheus.Counter
	OrdersPlaced    *prometheus.CounterVec
	RiskBlocked     *prometheus.CounterVec
	PlacementErrors prometheus.Counter
	VenueErrors     prometheus.Counter
	Mid             prometheus.Gauge
	Position        prometheus.Gauge
}

// New 在给定 Registerer 上注册指标；测试可传入独立 registry 避免重复注册冲突。
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "hlmm", Name: "cycles_total", Help: "完成的报价周期数",
		}),
		Quotes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "hlmm", Name: "quotes_total", Help: "生成的双边报价数",
		}),
		OrdersPlaced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hlmm", Name: "orders_placed_total", Help: "成功下发的挂单数",
		}, []string{"side"}),
		RiskBlocked: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hlmm", Name: "risk_blocked_total", Help: "被仓位上限拦截的报价边数",
		}, []string{"side"}),
		PlacementErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "hlmm", Name: "placement_errors_total", Help: "交易所拒单次数",
		}),
		VenueErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "hlmm", Name: "venue_errors_total", Help: "仓位同步/撤单等瞬时失败次数",
		}),
		Mid: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "hlmm", Name: "mid_price", Help: "最近一次参考 mid",
		}),
		Position: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "hlmm", Name: "position_base", Help: "最近一次同步的净仓位（基础资产）",
		}),
	}
}

// Serve 启动 Prometheus 指标服务器；addr 为空则不启动。
func Serve(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}
