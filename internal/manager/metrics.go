package manager

import "github.com/prometheus/client_golang/prometheus"

// Deployment outcomes.
const (
	resultRendered  = "rendered"
	resultCommitted = "committed"
	resultInvalid   = "invalid"
	resultFailed    = "failed"
)

var deploymentsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "catalogd",
		Name:      "deployments_total",
		Help:      "Deployment requests by outcome.",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(deploymentsTotal)
}
