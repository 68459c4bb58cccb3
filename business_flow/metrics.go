package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attributionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_attribution_outcomes_total",
			Help: "Attribution capture attempts by result and reason",
		},
		[]string{"result", "reason"},
	)

	campaignClicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_campaign_clicks_total",
			Help: "Campaign click increments by outcome",
		},
		[]string{"outcome"},
	)

	leadsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_leads_created_total",
			Help: "Consultation forms submitted, split into attributed and direct visits",
		},
		[]string{"attribution"},
	)

	leadsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clinic_leads_by_status",
			Help: "Current number of leads in each workflow status",
		},
		[]string{"status"},
	)

	staleNewLeads = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clinic_stale_new_leads",
			Help: "Leads still in the initial status after the follow-up deadline",
		},
	)
)
