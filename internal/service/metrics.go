package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reviewsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_created_total",
			Help: "Total number of reviews created",
		},
		[]string{"target_kind"},
	)

	reviewsDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_deleted_total",
			Help: "Total number of reviews deleted",
		},
		[]string{"target_kind"},
	)

	recomputeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_recompute_failures_total",
			Help: "Aggregate recomputations that failed after a successful review write, leaving the target's summary stale",
		},
		[]string{"target_kind"},
	)

	hydrationMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_hydration_misses_total",
			Help: "Relationship lookups that failed during hydration (non-fatal)",
		},
		[]string{"relation"},
	)
)
