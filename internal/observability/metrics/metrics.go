package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for appointment and credential flows.
type BookingMetrics struct {
	appointmentOps  *prometheus.CounterVec
	tokenRefresh    *prometheus.CounterVec
	calendarLatency *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		appointmentOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental_booking",
			Subsystem: "appointments",
			Name:      "ops_total",
			Help:      "Total appointment operations by outcome",
		}, []string{"op", "status"}),
		tokenRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental_booking",
			Subsystem: "credential",
			Name:      "refresh_total",
			Help:      "Total shared-credential refresh exchanges",
		}, []string{"outcome"}),
		calendarLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dental_booking",
			Subsystem: "calendar",
			Name:      "latency_seconds",
			Help:      "Latency of shared-calendar API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.appointmentOps, m.tokenRefresh, m.calendarLatency)
	return m
}

func (m *BookingMetrics) ObserveOp(op, status string) {
	if m == nil {
		return
	}
	m.appointmentOps.WithLabelValues(op, status).Inc()
}

func (m *BookingMetrics) ObserveTokenRefresh(outcome string) {
	if m == nil {
		return
	}
	m.tokenRefresh.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveCalendarLatency(op string, seconds float64) {
	if m == nil {
		return
	}
	m.calendarLatency.WithLabelValues(op).Observe(seconds)
}
