// Package metrics defines the custom Prometheus metrics for the platform
// API. It is the single source of truth for metric names, labels, and help
// strings. Metrics register themselves with the default registry via
// promauto at package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "platform"

// LoginAttemptsTotal counts sign-in attempts across both surfaces.
// Labels:
//   - origin: "ui" (interactive) or "api" (token endpoint)
//   - outcome: "success" or "failure"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of sign-in attempts, by origin and outcome.",
	},
	[]string{"origin", "outcome"},
)

// AccountsRegisteredTotal counts successfully created accounts.
var AccountsRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_registered_total",
		Help:      "Total number of accounts created.",
	},
)

// TokensIssuedTotal counts bearer tokens issued by the API login endpoint.
var TokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of bearer tokens issued.",
	},
)

// ChannelsCreatedTotal counts channel-creation commands that passed
// validation and were persisted.
var ChannelsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "channels_created_total",
		Help:      "Total number of channels created.",
	},
)
