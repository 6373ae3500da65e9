package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the tape client.
type Metrics struct {
	FramesTotal      prometheus.Counter
	ParseErrorsTotal prometheus.Counter
	TradesTotal      prometheus.Counter
	BufferSize       prometheus.Gauge
	TrimmedTotal     prometheus.Counter
	ReconnectsTotal  prometheus.Counter
	FetchesTotal     *prometheus.CounterVec
	FetchBytesTotal  prometheus.Counter
}

// New creates and registers all metrics on reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		FramesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tapefeed_frames_total",
			Help: "Total inbound frames received on the live feed",
		}),
		ParseErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tapefeed_parse_errors_total",
			Help: "Total inbound frames dropped as malformed",
		}),
		TradesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tapefeed_trades_total",
			Help: "Total trades accepted into the buffer from the live feed",
		}),
		BufferSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tapefeed_buffer_size",
			Help: "Current number of buffered trades",
		}),
		TrimmedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tapefeed_trimmed_total",
			Help: "Total trades removed by trim housekeeping",
		}),
		ReconnectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tapefeed_reconnects_total",
			Help: "Total reconnect attempts scheduled",
		}),
		FetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tapefeed_fetches_total",
			Help: "Total backfill requests by result",
		}, []string{"result"}),
		FetchBytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tapefeed_fetch_bytes_total",
			Help: "Total bytes downloaded by backfill requests",
		}),
	}
}

// Backfill request results.
const (
	FetchOK         = "ok"
	FetchError      = "error"
	FetchDuplicate  = "duplicate"
	FetchSuperseded = "superseded"
)
