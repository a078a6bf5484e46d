package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(accountCallsLatencyMs, authSessionsTotal, registeredAccounts) }

var (
	accountCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "account_calls_latency_ms",
			Help:    "Account service call latency in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"provider", "op", "success"},
	)

	authSessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_sessions_total",
			Help: "Auth session lifecycle events (issued/revoked/rejected).",
		},
		[]string{"event"},
	)

	registeredAccounts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "accounts_registered",
			Help: "Accounts stored by the self-hosted provider.",
		},
	)
)

// ObserveAccountCall records one account-service round trip.
func ObserveAccountCall(provider, op string, start time.Time, err error) {
	accountCallsLatencyMs.
		WithLabelValues(norm(provider), norm(op), strconv.FormatBool(err == nil)).
		Observe(float64(time.Since(start).Milliseconds()))
}

func IncAuthSession(event string) {
	authSessionsTotal.WithLabelValues(norm(event)).Inc()
}

func SetRegisteredAccounts(n int) { registeredAccounts.Set(float64(n)) }
