package providers

import (
	"rld/internal/models"
	"rld/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncTransactions(txType string)
	IncExchanges(outcome string)
	AddExchangedFlowers(amount int64)
	IncRewardsAwarded()
	AddRewardFlowers(amount int64)
	ObserveRewardBatchDuration(duration time.Duration)
	IncRateLimited()
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	transactionsTotal   *prometheus.CounterVec
	exchangesTotal      *prometheus.CounterVec
	exchangedFlowers    prometheus.Counter
	rewardsAwarded      prometheus.Counter
	rewardFlowers       prometheus.Counter
	rewardBatchDuration prometheus.Histogram
	rateLimitedTotal    prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncTransactions(txType string) {
	m.transactionsTotal.WithLabelValues(txType).Inc()
}

func (m *MetricsProvider) IncExchanges(outcome string) {
	m.exchangesTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) AddExchangedFlowers(amount int64) {
	m.exchangedFlowers.Add(float64(amount))
}

func (m *MetricsProvider) IncRewardsAwarded() {
	m.rewardsAwarded.Inc()
}

func (m *MetricsProvider) AddRewardFlowers(amount int64) {
	m.rewardFlowers.Add(float64(amount))
}

func (m *MetricsProvider) ObserveRewardBatchDuration(duration time.Duration) {
	m.rewardBatchDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncRateLimited() {
	m.rateLimitedTotal.Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, store *models.Store) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rld_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rld_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rld_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rld_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rld_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		transactionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rld_ledger_transactions_total",
			Help: "Total number of committed ledger transactions",
		}, []string{"type"}),

		exchangesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rld_exchanges_total",
			Help: "Total number of exchange attempts by outcome",
		}, []string{"outcome"}),

		exchangedFlowers: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rld_exchanged_flowers_total",
			Help: "Total flowers debited by completed exchanges",
		}),

		rewardsAwarded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rld_rewards_awarded_total",
			Help: "Total number of staking rewards credited",
		}),

		rewardFlowers: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rld_reward_flowers_total",
			Help: "Total flowers credited by staking rewards",
		}),

		rewardBatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rld_reward_batch_duration_seconds",
			Help:    "Duration of daily reward batch runs in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		rateLimitedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rld_rate_limited_total",
			Help: "Total number of rate-limited requests",
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "rld_accounts_total",
		Help: "Number of accounts with a ledger entry",
	}, func() float64 {
		return float64(store.CountAccounts())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "rld_snapshots_total",
		Help: "Number of retained balance snapshots",
	}, func() float64 {
		return float64(store.CountSnapshots())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "rld_ledger_commits_total",
		Help: "Number of committed units of work since start",
	}, func() float64 {
		return float64(store.Commits())
	})

	return m
}

type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(string, int)                 {}
func (n *noopMetrics) ObserveRequestDuration(string, time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                {}
func (n *noopMetrics) IncCacheMisses()                              {}
func (n *noopMetrics) ObservePersistenceDuration(time.Duration)     {}
func (n *noopMetrics) IncTransactions(string)                       {}
func (n *noopMetrics) IncExchanges(string)                          {}
func (n *noopMetrics) AddExchangedFlowers(int64)                    {}
func (n *noopMetrics) IncRewardsAwarded()                           {}
func (n *noopMetrics) AddRewardFlowers(int64)                       {}
func (n *noopMetrics) ObserveRewardBatchDuration(time.Duration)     {}
func (n *noopMetrics) IncRateLimited()                              {}
