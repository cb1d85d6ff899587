package monitor

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OnlinePlayers  prometheus.Gauge
	ActiveGames    prometheus.Gauge
	DiceRolls      prometheus.Counter
	RobberRolls    prometheus.Counter
	TradesAccepted prometheus.Counter
	TradesRejected prometheus.Counter
	CardsDiscarded prometheus.Counter
	TurnDuration   prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of online players",
		}),
		ActiveGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_games",
			Help:      "Number of games currently in progress",
		}),
		DiceRolls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dice_rolls_total",
			Help:      "Total number of dice rolls",
		}),
		RobberRolls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "robber_rolls_total",
			Help:      "Total number of rolls that triggered the robber",
		}),
		TradesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_accepted_total",
			Help:      "Total number of accepted trades",
		}),
		TradesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_rejected_total",
			Help:      "Total number of declined or voided trades",
		}),
		CardsDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cards_discarded_total",
			Help:      "Total number of resource cards discarded to the robber",
		}),
		TurnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Duration of complete player turns",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}

	prometheus.MustRegister(
		m.OnlinePlayers,
		m.ActiveGames,
		m.DiceRolls,
		m.RobberRolls,
		m.TradesAccepted,
		m.TradesRejected,
		m.CardsDiscarded,
		m.TurnDuration,
	)

	return m
}

type Monitor struct {
	metrics   *Metrics
	startTime time.Time
	turnCount int64
	mutex     sync.Mutex
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

func (m *Monitor) StartServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())

	// 添加expvar指标
	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	expvar.Publish("turns", expvar.Func(func() interface{} {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		return m.turnCount
	}))

	go http.ListenAndServe(addr, nil)
}

func (m *Monitor) IncOnlinePlayers() {
	m.metrics.OnlinePlayers.Inc()
}

func (m *Monitor) DecOnlinePlayers() {
	m.metrics.OnlinePlayers.Dec()
}

func (m *Monitor) GameStarted() {
	m.metrics.ActiveGames.Inc()
}

func (m *Monitor) GameFinished() {
	m.metrics.ActiveGames.Dec()
}

func (m *Monitor) DiceRolled(robber bool) {
	m.metrics.DiceRolls.Inc()
	if robber {
		m.metrics.RobberRolls.Inc()
	}
}

func (m *Monitor) TradeAccepted() {
	m.metrics.TradesAccepted.Inc()
}

func (m *Monitor) TradeRejected() {
	m.metrics.TradesRejected.Inc()
}

func (m *Monitor) CardsDiscarded(count int) {
	m.metrics.CardsDiscarded.Add(float64(count))
}

func (m *Monitor) ObserveTurnDuration(duration time.Duration) {
	m.metrics.TurnDuration.Observe(duration.Seconds())
	m.mutex.Lock()
	m.turnCount++
	m.mutex.Unlock()
}
