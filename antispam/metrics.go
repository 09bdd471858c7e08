package antispam

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	violationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "antispam_violations_total",
		Help: "Rule violations detected, by rule name.",
	}, []string{"rule"})

	rulePanicsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "antispam_rule_panics_total",
		Help: "Rule evaluations recovered from a panic, by rule name.",
	}, []string{"rule"})

	messagesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "antispam_messages_deleted_total",
		Help: "Messages removed by antispam clean-up passes.",
	})

	flushesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "antispam_flushes_total",
		Help: "Detection contexts flushed.",
	})
)
