package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Workflow transition counters. Grafana-side rates over these are the
// portal's approval throughput.
var (
	RegistrationTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accesshub_registration_transitions_total",
		Help: "Registration workflow transitions by kind",
	}, []string{"transition"}) // submitted, approved, rejected, activated

	RequestTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accesshub_request_transitions_total",
		Help: "Permission request workflow transitions by kind",
	}, []string{"transition"}) // submitted, approved, rejected

	ActivationEmails = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accesshub_activation_emails_total",
		Help: "Activation email delivery attempts by result",
	}, []string{"result"}) // sent, failed

	QueueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "accesshub_queue_depth",
		Help: "Items currently sitting in each approval queue",
	}, []string{"queue"}) // registrations_pending, registrations_awaiting, requests_pending
)

func init() {
	prometheus.MustRegister(RegistrationTransitions, RequestTransitions, ActivationEmails, QueueDepth)
}
