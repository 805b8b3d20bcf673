package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 订单链路指标，后台服务通过 /metrics 暴露
var (
	checkoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gomall",
		Subsystem: "order",
		Name:      "checkout_total",
		Help:      "Checkout attempts by result.",
	}, []string{"result"})

	transitionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gomall",
		Subsystem: "order",
		Name:      "transition_total",
		Help:      "Order status transition attempts by operation and result.",
	}, []string{"op", "result"})

	mqPublishErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gomall",
		Subsystem: "mq",
		Name:      "publish_errors_total",
		Help:      "Order event publish failures.",
	})

	cacheErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gomall",
		Subsystem: "cache",
		Name:      "errors_total",
		Help:      "Redis cache operation failures.",
	})
)

func init() {
	prometheus.MustRegister(checkoutTotal, transitionTotal, mqPublishErrors, cacheErrors)
}

const (
	resultOK     = "ok"
	resultReject = "rejected" // 业务守卫拒绝（库存不足、状态不符等）
	resultError  = "error"    // 存储等系统性失败
)

// MetricsHandler 暴露 Prometheus 指标
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
