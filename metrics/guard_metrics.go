package metrics

import (
	"math/big"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
)

// Declare the metrics instance as a singleton: the guard and the rpc
// layer share one set of collectors registered against the default
// registry exactly once.
var (
	guardMetricsRegisterOnce sync.Once
	guardMetricsInstance     *GuardMetrics
)

// GuardMetrics records the mint guard's decisions and the governance
// timelock's activity.
type GuardMetrics struct {
	mintsAuthorizedCounter prometheus.Counter
	mintsDeniedCounter     *prometheus.CounterVec
	totalMintedGauge       prometheus.Gauge
	windowAmountGauge      prometheus.Gauge
	mintingPausedGauge     prometheus.Gauge
	burnsRecordedCounter   prometheus.Counter

	updatesBegunCounter    prometheus.Counter
	updatesExecutedCounter prometheus.Counter
	pendingUpdateGauge     prometheus.Gauge
}

// NewGuardMetrics returns the singleton metrics instance, registering
// the collectors on first use.
func NewGuardMetrics() *GuardMetrics {
	guardMetricsRegisterOnce.Do(func() {
		guardMetricsInstance = &GuardMetrics{
			mintsAuthorizedCounter: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "riskguard_mints_authorized_total",
				Help: "Total number of mint requests the guard allowed",
			}),
			mintsDeniedCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "riskguard_mints_denied_total",
				Help: "Total number of mint requests the guard denied, by reason",
			}, []string{"reason"}),
			totalMintedGauge: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "riskguard_total_minted",
				Help: "Cumulative amount minted through the guarded path",
			}),
			windowAmountGauge: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "riskguard_window_amount",
				Help: "Amount accounted in the current rate-limit window",
			}),
			mintingPausedGauge: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "riskguard_minting_paused",
				Help: "Whether minting is paused (1) or not (0)",
			}),
			burnsRecordedCounter: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "riskguard_burns_recorded_total",
				Help: "Total number of burns recorded against the supply counter",
			}),
			updatesBegunCounter: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "riskguard_governance_updates_begun_total",
				Help: "Total number of governance updates begun",
			}),
			updatesExecutedCounter: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "riskguard_governance_updates_executed_total",
				Help: "Total number of governance updates executed",
			}),
			pendingUpdateGauge: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "riskguard_governance_update_pending",
				Help: "Whether a governance update is pending finalization (1) or not (0)",
			}),
		}

		prometheus.MustRegister(
			guardMetricsInstance.mintsAuthorizedCounter,
			guardMetricsInstance.mintsDeniedCounter,
			guardMetricsInstance.totalMintedGauge,
			guardMetricsInstance.windowAmountGauge,
			guardMetricsInstance.mintingPausedGauge,
			guardMetricsInstance.burnsRecordedCounter,
			guardMetricsInstance.updatesBegunCounter,
			guardMetricsInstance.updatesExecutedCounter,
			guardMetricsInstance.pendingUpdateGauge,
		)
	})

	return guardMetricsInstance
}

// RecordMintAuthorized updates the decision counter and the supply
// gauges after an allowed mint.
func (m *GuardMetrics) RecordMintAuthorized(totalMinted, windowAmount sdkmath.Int) {
	m.mintsAuthorizedCounter.Inc()
	m.totalMintedGauge.Set(intToFloat(totalMinted))
	m.windowAmountGauge.Set(intToFloat(windowAmount))
}

// RecordMintDenied counts a denied mint by reason.
func (m *GuardMetrics) RecordMintDenied(reason string) {
	m.mintsDeniedCounter.WithLabelValues(reason).Inc()
}

// RecordBurn updates the supply gauge after a recorded burn.
func (m *GuardMetrics) RecordBurn(totalMinted sdkmath.Int) {
	m.burnsRecordedCounter.Inc()
	m.totalMintedGauge.Set(intToFloat(totalMinted))
}

// RecordMintingPaused mirrors the circuit-breaker state.
func (m *GuardMetrics) RecordMintingPaused(paused bool) {
	if paused {
		m.mintingPausedGauge.Set(1)
	} else {
		m.mintingPausedGauge.Set(0)
	}
}

// RecordUpdateBegun counts a begun governance update.
func (m *GuardMetrics) RecordUpdateBegun() {
	m.updatesBegunCounter.Inc()
	m.pendingUpdateGauge.Set(1)
}

// RecordUpdateExecuted counts an executed governance update.
func (m *GuardMetrics) RecordUpdateExecuted() {
	m.updatesExecutedCounter.Inc()
	m.pendingUpdateGauge.Set(0)
}

func intToFloat(v sdkmath.Int) float64 {
	f, _ := new(big.Float).SetInt(v.BigInt()).Float64()

	return f
}
