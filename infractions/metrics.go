package infractions

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	appliedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "infractions_applied_total",
		Help: "Infractions applied, by type.",
	}, []string{"type"})

	deactivatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "infractions_deactivated_total",
		Help: "Infractions deactivated, by type and audit outcome.",
	}, []string{"type", "audit"})
)
