package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RemoteSendTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "escape_remote_send_total",
		Help: "Total number of writes forwarded to a remote broker",
	})

	RemoteSendFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "escape_remote_send_failures_total",
		Help: "Total number of remote sends that produced no usable outcome",
	})

	RemotePullTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "escape_remote_pull_total",
		Help: "Total number of reads forwarded to a remote broker",
	})

	RemotePullFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "escape_remote_pull_failures_total",
		Help: "Total number of remote pulls that failed or found nothing",
	})

	ServiceUnavailableTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "escape_service_unavailable_total",
		Help: "Total number of calls rejected because neither a local store nor the escape path was usable",
	})

	DecodeSkipsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "escape_decode_skips_total",
		Help: "Total number of message buffers skipped during batch decode",
	})

	BridgeUp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "escape_bridge_up",
		Help: "1 while the escape bridge's inner clients are running",
	})
)
