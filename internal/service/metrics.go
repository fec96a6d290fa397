package service

import "github.com/prometheus/client_golang/prometheus"

var (
	lifecycleTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "events_lifecycle_transitions_total", Help: "Event lifecycle transitions"},
		[]string{"transition"},
	)
	certificatesIssued = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "certificates_issued_total", Help: "Certificates issued on workshop completion"},
	)
	registrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "registrations_total", Help: "Registration attempts by result"},
		[]string{"result"},
	)
)

func init() { prometheus.MustRegister(lifecycleTotal, certificatesIssued, registrationsTotal) }
