// Package metrics exposes prometheus instrumentation for the automation
// pipeline. The collector is passed by handle to its consumers; there is no
// package-level singleton.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the pipeline counters. A nil *Collector is a no-op so the
// engine can run uninstrumented in tests.
type Collector struct {
	classifications *prometheus.CounterVec
	suppressions    *prometheus.CounterVec
	enrollments     *prometheus.CounterVec
	steps           *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "automation_classifications_total",
			Help: "Appointment title classifications by trigger type.",
		}, []string{"trigger_type", "matched"}),
		suppressions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "automation_suppressions_total",
			Help: "Enrollments suppressed by the duplicate cool-down window.",
		}, []string{"trigger_type"}),
		enrollments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "automation_enrollments_total",
			Help: "Enrollments created by trigger type.",
		}, []string{"trigger_type"}),
		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "automation_steps_total",
			Help: "Step attempts by kind and outcome status.",
		}, []string{"kind", "status"}),
	}
}

func (c *Collector) RecordClassification(triggerType string, matched bool) {
	if c == nil {
		return
	}
	label := "false"
	if matched {
		label = "true"
	} else {
		triggerType = "none"
	}
	c.classifications.WithLabelValues(triggerType, label).Inc()
}

func (c *Collector) RecordSuppression(triggerType string) {
	if c == nil {
		return
	}
	c.suppressions.WithLabelValues(triggerType).Inc()
}

func (c *Collector) RecordEnrollment(triggerType string) {
	if c == nil {
		return
	}
	c.enrollments.WithLabelValues(triggerType).Inc()
}

func (c *Collector) RecordStep(kind, status string) {
	if c == nil {
		return
	}
	c.steps.WithLabelValues(kind, status).Inc()
}
