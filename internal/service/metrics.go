package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LedgerEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_entries_total",
			Help: "Wallet ledger entries written",
		},
		[]string{"kind"},
	)
	ReferralRedemptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_redemptions_total",
			Help: "Referral redemption attempts by result",
		},
		[]string{"result"},
	)
	MatchResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_results_total",
			Help: "Random match outcomes by pool",
		},
		[]string{"pool"},
	)
	PlansExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vip_plans_expired_total",
			Help: "VIP plans demoted on reconcile",
		},
	)
)

func init() {
	prometheus.MustRegister(LedgerEntries)
	prometheus.MustRegister(ReferralRedemptions)
	prometheus.MustRegister(MatchResults)
	prometheus.MustRegister(PlansExpired)
}
