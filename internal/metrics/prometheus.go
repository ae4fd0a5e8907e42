// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the challenge platform.
var (
	// Counters.
	ChallengeJoinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_joins_total",
			Help: "Total number of challenge join attempts",
		},
		[]string{"category", "status"},
	)

	ProofSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proof_submissions_total",
			Help: "Total number of proof submissions",
		},
		[]string{"category", "status"},
	)

	ReviewsResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_resolved_total",
			Help: "Total number of submissions resolved by admins",
		},
		[]string{"decision"},
	)

	PointsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eco_points_awarded_total",
			Help: "Total eco-points credited through approvals",
		},
		[]string{"category"},
	)

	RewardClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reward_claims_total",
			Help: "Total number of reward claim attempts",
		},
		[]string{"status"},
	)

	LeaderboardCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_cache_requests_total",
			Help: "Leaderboard projection requests by cache outcome",
		},
		[]string{"outcome"},
	)

	// Gauges.
	PendingSubmissions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pending_submissions",
			Help: "Current depth of the under-review queue",
		},
	)

	// Histograms.
	ReviewTurnaroundSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "review_turnaround_seconds",
			Help:    "Time from proof submission to admin decision",
			Buckets: prometheus.ExponentialBuckets(60, 2, 12), // 1min to ~3days
		},
	)
)

// RecordJoin records a challenge join attempt.
func RecordJoin(category, status string) {
	ChallengeJoinsTotal.WithLabelValues(category, status).Inc()
}

// RecordProofSubmission records a proof submission attempt.
func RecordProofSubmission(category, status string) {
	ProofSubmissionsTotal.WithLabelValues(category, status).Inc()
}

// RecordReviewResolved records an admin decision.
func RecordReviewResolved(decision string) {
	ReviewsResolvedTotal.WithLabelValues(decision).Inc()
}

// RecordPointsAwarded records points credited on approval.
func RecordPointsAwarded(category string, points int) {
	PointsAwardedTotal.WithLabelValues(category).Add(float64(points))
}

// RecordRewardClaim records a reward claim attempt.
func RecordRewardClaim(status string) {
	RewardClaimsTotal.WithLabelValues(status).Inc()
}

// RecordLeaderboardCache records a projection request cache outcome.
func RecordLeaderboardCache(outcome string) {
	LeaderboardCacheTotal.WithLabelValues(outcome).Inc()
}

// SetPendingSubmissions sets the current review queue depth.
func SetPendingSubmissions(count int64) {
	PendingSubmissions.Set(float64(count))
}

// ObserveReviewTurnaround observes submission-to-decision latency.
func ObserveReviewTurnaround(seconds float64) {
	ReviewTurnaroundSeconds.Observe(seconds)
}
