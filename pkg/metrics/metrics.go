// Package metrics Prometheus指标
//
// 指标集中在Metrics结构体中,由调用方传入Registerer注册:
//   - 生产环境使用prometheus.DefaultRegisterer,配合/metrics端点暴露
//   - 测试使用prometheus.NewRegistry(),避免重复注册
//
// 命名规范: Counter以_total结尾,Histogram以单位结尾(_seconds)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 结果标签取值
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected" // 业务规则拒绝(无库存、已归还、不存在)
	ResultError    = "error"    // 基础设施错误
)

// Metrics 应用指标
type Metrics struct {
	// HTTP
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInProgress prometheus.Gauge

	// 借还业务
	IssuesTotal       *prometheus.CounterVec
	ReturnsTotal      *prometheus.CounterVec
	FinesTotal        prometheus.Counter
	OperationDuration *prometheus.HistogramVec
	BooksOnLoan       prometheus.Gauge

	// 缓存与熔断器
	CacheRequests          *prometheus.CounterVec
	CircuitBreakerState    *prometheus.GaugeVec
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息
	MessagesPublishedTotal *prometheus.CounterVec
}

// New 创建并注册所有指标
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时(秒)",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		}, []string{"method", "path"}),

		HTTPRequestsInProgress: f.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		}),

		IssuesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "circulation_issues_total",
			Help: "借出操作总数",
		}, []string{"result"}),

		ReturnsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "circulation_returns_total",
			Help: "归还操作总数",
		}, []string{"result"}),

		FinesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "circulation_fines_total",
			Help: "归还时计算出的逾期罚金累计",
		}),

		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "circulation_operation_duration_seconds",
			Help:    "借还操作耗时(秒)",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation"}),

		BooksOnLoan: f.NewGauge(prometheus.GaugeOpts{
			Name: "circulation_books_on_loan",
			Help: "当前借出未还的副本数(进程内增量)",
		}),

		CacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "缓存访问总数",
		}, []string{"cache", "result"}),

		CircuitBreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态(0=CLOSED, 1=OPEN, 2=HALF_OPEN)",
		}, []string{"name"}),

		CircuitBreakerRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		}, []string{"name", "result"}),

		MessagesPublishedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		}, []string{"routing_key", "result"}),
	}
}

// ObserveIssue 记录一次借出
func (m *Metrics) ObserveIssue(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.IssuesTotal.WithLabelValues(result).Inc()
	m.OperationDuration.WithLabelValues("issue").Observe(elapsed.Seconds())
	if result == ResultSuccess {
		m.BooksOnLoan.Inc()
	}
}

// ObserveReturn 记录一次归还
func (m *Metrics) ObserveReturn(result string, fine int64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ReturnsTotal.WithLabelValues(result).Inc()
	m.OperationDuration.WithLabelValues("return").Observe(elapsed.Seconds())
	if result == ResultSuccess {
		m.BooksOnLoan.Dec()
		if fine > 0 {
			m.FinesTotal.Add(float64(fine))
		}
	}
}

// SetBooksOnLoan 启动时用数据库中的借出数初始化books_on_loan,之后由借还增减
func (m *Metrics) SetBooksOnLoan(n int64) {
	if m == nil {
		return
	}
	m.BooksOnLoan.Set(float64(n))
}

// ObserveCache 记录缓存命中情况(hit | miss | error)
func (m *Metrics) ObserveCache(cache, result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(cache, result).Inc()
}

// ObservePublish 记录消息发布
func (m *Metrics) ObservePublish(routingKey, result string) {
	if m == nil {
		return
	}
	m.MessagesPublishedTotal.WithLabelValues(routingKey, result).Inc()
}

// SetBreakerState 记录熔断器状态
func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// ObserveBreaker 记录熔断器请求结果(success | failure | rejected)
func (m *Metrics) ObserveBreaker(name, result string) {
	if m == nil {
		return
	}
	m.CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}
