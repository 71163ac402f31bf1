package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// HitExact labels cache hits on the normalized query fingerprint.
	HitExact = "exact"
	// HitSemantic labels cache hits resolved by embedding similarity.
	HitSemantic = "semantic"
)

var (
	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetingassist",
			Name:      "search_cache_lookups_total",
			Help:      "Shared search cache lookups, partitioned by result (exact, semantic, miss).",
		},
		[]string{"result"},
	)

	cacheEvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetingassist",
			Name:      "search_cache_evictions_total",
			Help:      "Shared search cache evictions, partitioned by cause (lru, ttl, teardown).",
		},
		[]string{"cause"},
	)

	cacheStoresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "meetingassist",
			Name:      "search_cache_stores_total",
			Help:      "Entries stored into the shared search cache.",
		},
	)

	questionsCommittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetingassist",
			Name:      "questions_committed_total",
			Help:      "Questions answered, partitioned by answer source.",
		},
		[]string{"source"},
	)

	questionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "meetingassist",
			Name:      "questions_expired_total",
			Help:      "Questions that reached the global deadline with no committed answer.",
		},
	)

	candidatesDiscardedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetingassist",
			Name:      "candidates_discarded_total",
			Help:      "Tier candidates discarded by the answer handler, partitioned by reason (late, threshold).",
		},
		[]string{"reason"},
	)
)

// Register attaches the collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		cacheLookupsTotal,
		cacheEvictionsTotal,
		cacheStoresTotal,
		questionsCommittedTotal,
		questionsExpiredTotal,
		candidatesDiscardedTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// CacheHit records a cache hit of the given kind (HitExact or HitSemantic).
func CacheHit(kind string) {
	cacheLookupsTotal.WithLabelValues(kind).Inc()
}

// CacheMiss records a cache miss.
func CacheMiss() {
	cacheLookupsTotal.WithLabelValues("miss").Inc()
}

// CacheStore records a stored entry.
func CacheStore() {
	cacheStoresTotal.Inc()
}

// CacheEvicted records an eviction with its cause (lru, ttl, teardown).
func CacheEvicted(cause string) {
	cacheEvictionsTotal.WithLabelValues(cause).Inc()
}

// QuestionCommitted records a committed answer by source.
func QuestionCommitted(source string) {
	questionsCommittedTotal.WithLabelValues(source).Inc()
}

// QuestionExpired records an expiry.
func QuestionExpired() {
	questionsExpiredTotal.Inc()
}

// CandidateDiscarded records a discarded candidate (late or threshold).
func CandidateDiscarded(reason string) {
	candidatesDiscardedTotal.WithLabelValues(reason).Inc()
}
