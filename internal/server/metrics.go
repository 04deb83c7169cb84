package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var histogramResponseTime = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "kakeibo",
		Subsystem: "http",
		Name:      "histogram_response_time_seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	},
	[]string{"path", "status"},
)

func observeRequest(path string, status int, elapsed time.Duration) {
	histogramResponseTime.
		WithLabelValues(path, strconv.Itoa(status)).
		Observe(elapsed.Seconds())
}
