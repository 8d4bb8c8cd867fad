package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP requests by route template, method and status class
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobby_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobby_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Profile writes; kind: profile/image/contact, status: success/invalid/forbidden/error
	ProfileMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobby_profile_mutations_total",
			Help: "Total number of candidate profile writes",
		},
		[]string{"kind", "status"},
	)

	ProfileCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobby_profile_cache_lookups_total",
			Help: "Profile cache lookups by result",
		},
		[]string{"result"}, // hit/miss
	)

	ImageUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobby_image_uploads_total",
			Help: "Total number of profile image uploads",
		},
		[]string{"status"}, // success/rejected/limited/error
	)

	ImageUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobby_image_upload_bytes",
			Help:    "Size of stored profile images after compression",
			Buckets: prometheus.ExponentialBuckets(4<<10, 2, 10),
		},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobby_rate_limited_total",
			Help: "Requests rejected by rate limiting",
		},
		[]string{"scope"},
	)
)
