package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics
var (
	SimulationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "h2h_simulations_total",
		Help: "Total number of matchup simulations run",
	})

	SamplesDrawn = promauto.NewCounter(prometheus.CounterOpts{
		Name: "h2h_samples_drawn_total",
		Help: "Total number of Monte Carlo team samples drawn",
	})

	SimulationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "h2h_simulation_duration_seconds",
		Help:    "Duration of full matchup simulations",
		Buckets: prometheus.DefBuckets,
	})

	DegenerateTeams = promauto.NewCounter(prometheus.CounterOpts{
		Name: "h2h_degenerate_teams_total",
		Help: "Teams projected with no valid players",
	})

	OptimizerSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "h2h_optimizer_candidates_total",
		Help: "Candidate rosters scored, by strategy",
	}, []string{"strategy"})

	OptimizerImprovements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "h2h_optimizer_improvements_total",
		Help: "Improving rosters yielded, by strategy",
	}, []string{"strategy"})

	CombinationsScored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "h2h_bruteforce_combinations_scored_total",
		Help: "Brute-force combinations that packed into a legal lineup",
	})

	CombinationsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "h2h_bruteforce_combinations_rejected_total",
		Help: "Brute-force combinations the packer could not place",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "h2h_cache_hits_total",
		Help: "Result cache hits, by kind",
	}, []string{"kind"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "h2h_cache_misses_total",
		Help: "Result cache misses, by kind",
	}, []string{"kind"})
)
