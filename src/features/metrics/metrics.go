package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the import pipeline and the rating flow.
var (
	ImportRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rottenolives_import_runs_total",
		Help: "Import runs by outcome (ok, dry_run, error).",
	}, []string{"status"})

	ImportedReleases = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rottenolives_imported_releases_total",
		Help: "Releases upserted by import runs.",
	})

	RatingsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rottenolives_ratings_accepted_total",
		Help: "Ratings accepted and aggregated.",
	})

	RatingsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rottenolives_ratings_rejected_total",
		Help: "Ratings rejected by reason (validation, unknown_release, duplicate, subnet_limited).",
	}, []string{"reason"})
)
