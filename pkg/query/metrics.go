package query

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// queriesTotal tracks reads by the entry state they observed.
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminapi_queries_total",
		Help: "Total query reads by observed cache state",
	}, []string{"state"}) // loading, ready, refetching, stale, disabled

	// refetchesTotal tracks background stale-entry refetches.
	refetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adminapi_query_refetches_total",
		Help: "Total background refetches of stale cache entries",
	})

	// mutationsTotal tracks mutation outcomes.
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminapi_mutations_total",
		Help: "Total mutations by result",
	}, []string{"result"}) // success, error

	// walkerPagesTotal tracks pages fetched by cursor walkers.
	walkerPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adminapi_walker_pages_total",
		Help: "Total cursor pages fetched by pagination walkers",
	})

	// retriesTotal tracks explicit retry attempts by error class.
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminapi_retries_total",
		Help: "Total explicit retry attempts by error class",
	}, []string{"error_class"})

	// retryExhaustedTotal tracks retries that ran out of attempts.
	retryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adminapi_retry_exhausted_total",
		Help: "Total retries that exhausted all attempts",
	})
)
