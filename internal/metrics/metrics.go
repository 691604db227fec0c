// Package metrics exposes Prometheus collectors for the donor, need feed and
// OTP flows. Collectors register on the default registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DonorsRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sevagan_donors_registered_total",
			Help: "Total number of donor records created",
		},
	)

	NeedsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sevagan_needs_created_total",
			Help: "Total number of blood need requests created",
		},
		[]string{"blood_group"},
	)

	FeedSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sevagan_feed_subscribers",
			Help: "Currently open live feed subscriptions",
		},
	)

	FeedEventsDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sevagan_feed_events_delivered_total",
			Help: "Need events queued to live feed subscriptions",
		},
	)

	FeedEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sevagan_feed_events_dropped_total",
			Help: "Need events dropped because a subscription buffer was full",
		},
	)

	OTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sevagan_otp_requests_total",
			Help: "OTP codes issued, by delivery channel",
		},
		[]string{"channel"},
	)

	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sevagan_otp_verifications_total",
			Help: "OTP verification attempts, by result",
		},
		[]string{"result"}, // ok, invalid, expired, missing, locked
	)

	ProfileSinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sevagan_profile_sink_errors_total",
			Help: "Failed signup profile exports, by sink",
		},
		[]string{"sink"},
	)
)
