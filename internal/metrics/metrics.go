package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cheflow_http_requests_total",
		Help: "Total HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cheflow_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	LinksEstablished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cheflow_links_established_total",
		Help: "Cross-entity links established, by record kind",
	}, []string{"kind"})

	LinkRacesLost = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cheflow_link_races_lost_total",
		Help: "Link attempts that found the slot already filled",
	})

	DuplicateBusinessKeys = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cheflow_duplicate_business_keys_total",
		Help: "Lookups that matched more than one record for one business key",
	}, []string{"kind"})

	DeliveriesMerged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cheflow_deliveries_merged_total",
		Help: "Deliveries folded into a survivor by merges",
	})

	RoutesAutoCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cheflow_routes_auto_completed_total",
		Help: "Routes closed automatically after their last delivery",
	})

	ChecklistStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cheflow_checklist_status_changes_total",
		Help: "Checklist status transitions by resulting status",
	}, []string{"status"})
)
