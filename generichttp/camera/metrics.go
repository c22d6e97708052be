package camera

import "github.com/prometheus/client_golang/prometheus"

// metrics counts what the hub's capture loop does
type metrics struct {
	frames      prometheus.Counter
	dropped     prometheus.Counter
	incomplete  prometheus.Counter
	timeouts    prometheus.Counter
	failures    prometheus.Counter
	subscribers prometheus.Gauge
}

func newMetrics(serial string) *metrics {
	labels := prometheus.Labels{"serial": serial}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "gx",
			Subsystem:   "hub",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}
	return &metrics{
		frames:     counter("frames_total", "Frames captured and handed to subscribers."),
		dropped:    counter("dropped_total", "Frames a subscriber missed because it was still busy with the last one."),
		incomplete: counter("incomplete_total", "Frames the camera delivered incomplete."),
		timeouts:   counter("timeouts_total", "Captures that timed out waiting for a frame."),
		failures:   counter("failures_total", "Capture errors which stopped the live views."),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "gx",
			Subsystem:   "hub",
			Name:        "subscribers",
			Help:        "Live views and image requests waiting on frames.",
			ConstLabels: labels,
		}),
	}
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.frames, m.dropped, m.incomplete, m.timeouts, m.failures, m.subscribers}
}

// Collectors returns the live view counters, for registration with a
// prometheus registry
func (h *HTTPWrapper) Collectors() []prometheus.Collector {
	return h.hub.m.collectors()
}
