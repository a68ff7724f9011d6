package referee

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	roundsPlayed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_rounds_total",
			Help: "Rounds played, by result (invalid attempts included)",
		},
		[]string{"result"},
	)
	matchesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_matches_finished_total",
			Help: "Matches that reached the round limit, by winner",
		},
		[]string{"winner"},
	)
)

func init() {
	prometheus.MustRegister(roundsPlayed)
	prometheus.MustRegister(matchesFinished)
}
