package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RouteCalculations    *prometheus.CounterVec
	RoutingSeconds       *prometheus.HistogramVec
	StaleRoutesDropped   prometheus.Counter
	GeocodeFallbacks     prometheus.Counter
	ActiveRecalculations prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RouteCalculations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "wayfind_route_calculations_total",
			Help: "Total number of route calculations, by outcome.",
		}, []string{"status"}),
		RoutingSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wayfind_routing_request_duration_seconds",
			Help:    "Duration of requests to the routing backend.",
			Buckets: prometheus.DefBuckets,
		}, []string{"profile"}),
		StaleRoutesDropped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "wayfind_stale_route_responses_dropped_total",
			Help: "Total number of routing responses discarded because a newer request superseded them.",
		}),
		GeocodeFallbacks: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "wayfind_geocode_fallbacks_total",
			Help: "Total number of geocoding failures resolved with a coordinate fallback string.",
		}),
		ActiveRecalculations: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "wayfind_active_recalculations",
			Help: "Current number of in-flight route recalculations.",
		}),
	}
}
