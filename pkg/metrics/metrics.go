// Package metrics counts board operations. There is no network surface to
// scrape, so a text-format snapshot is written to disk when the session
// ends instead.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"bbs/pkg/state"
)

// registry is private so snapshots carry only board metrics and tests do
// not share state through the default registry.
var registry = prometheus.NewRegistry()

var factory = promauto.With(registry)

var (
	// Operation metrics
	Posts = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "bbs_posts_total",
			Help: "Total number of messages posted",
		},
	)

	Deletes = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "bbs_deletes_total",
			Help: "Total number of messages deleted",
		},
	)

	Views = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "bbs_views_total",
			Help: "Total number of single-message views",
		},
	)

	Summaries = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "bbs_summaries_total",
			Help: "Total number of summary scans",
		},
	)

	// Error metrics
	OpErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bbs_op_errors_total",
			Help: "Total number of failed operations",
		},
		[]string{"op", "kind"},
	)

	// Storage metrics
	LiveMessages = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "bbs_live_messages",
			Help: "Number of live (posted, not deleted) messages",
		},
	)
)

// WriteSnapshot gathers the board registry and writes it in prometheus
// text format to path, atomically.
func WriteSnapshot(path string) error {
	mfs, err := registry.Gather()
	if err != nil {
		return err
	}
	return state.WriteFileAtomic(path, func(w io.Writer) error {
		enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
		for _, mf := range mfs {
			if err := enc.Encode(mf); err != nil {
				return err
			}
		}
		return nil
	})
}
