// Package metrics 以 Prometheus 匯出銀行操作與 HTTP 指標。
// Metrics 同時實作 bank.Observer，可直接以 bank.WithObserver 注入。
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ledgerbank/internal/bank"
)

const namespace = "ledgerbank"

// Metrics 持有獨立的 Registry，測試可各自建立而不互相衝突。
type Metrics struct {
	Registry *prometheus.Registry

	operations        *prometheus.CounterVec
	accountsAvailable *prometheus.GaugeVec
	httpInFlight      prometheus.Gauge
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New 建立並註冊所有 collector。
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bank",
				Name:      "operations_total",
				Help:      "Total number of bank operations by outcome.",
			},
			[]string{"bank", "operation", "result"},
		),
		accountsAvailable: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "bank",
				Name:      "accounts_available",
				Help:      "Number of accounts that can still be created.",
			},
			[]string{"bank"},
		),
		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"method", "path"},
		),
	}
	m.Registry.MustRegister(
		m.operations,
		m.accountsAvailable,
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		prometheus.NewGoCollector(),
	)
	return m
}

// Result 將操作錯誤歸類成低基數的標籤值。
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, bank.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, bank.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, bank.ErrAccountCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, bank.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, bank.ErrForeignAccountNotFound):
		return "foreign_account_not_found"
	case errors.Is(err, bank.ErrForeignFeeNotFound):
		return "foreign_fee_not_found"
	default:
		return "error"
	}
}

// OperationCompleted implements bank.Observer.
func (m *Metrics) OperationCompleted(bankName, op string, err error) {
	m.operations.WithLabelValues(bankName, op, Result(err)).Inc()
}

// AccountsAvailable implements bank.Observer.
func (m *Metrics) AccountsAvailable(bankName string, available int) {
	m.accountsAvailable.WithLabelValues(bankName).Set(float64(available))
}

// Handler 回傳 /metrics 端點。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware 記錄每個請求的次數、延遲與進行中數量；path 使用路由樣板以控制基數。
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		m.httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

var _ bank.Observer = (*Metrics)(nil)
