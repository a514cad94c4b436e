package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "nova"
)

var (
	// Rule Store Metrics
	RuleMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rule_mutations_total",
		Help:      "Count of rule store commands.",
	}, []string{"operation", "status"})

	RulesTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rules_total",
		Help:      "Number of rules held in memory.",
	}, []string{"status"})

	// Wizard Metrics
	RuleValidationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rule_validation_failures_total",
		Help:      "Number of wizard steps or saves rejected by validation.",
	}, []string{"step"})

	RuleTestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rule_tests_total",
		Help:      "Number of Test Rule dry runs.",
	}, []string{"status"})

	RuleTestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rule_test_duration_seconds",
		Help:      "Time taken to validate and evaluate a Test Rule request.",
		Buckets:   prometheus.DefBuckets,
	})

	// Catalog Metrics
	CatalogReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_reloads_total",
		Help:      "Count of catalog file reload attempts.",
	}, []string{"status"})

	// Label Metrics
	LabelMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "label_mutations_total",
		Help:      "Count of classification label commands.",
	}, []string{"operation", "status"})

	// Tag Metrics
	TagMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tag_mutations_total",
		Help:      "Count of tag definition commands.",
	}, []string{"operation", "status"})
)

// ObserveRuleCounts resets the rules gauge from a per-status count.
func ObserveRuleCounts(counts map[string]int) {
	RulesTotal.Reset()
	for status, n := range counts {
		RulesTotal.WithLabelValues(status).Set(float64(n))
	}
}

func resultStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordRuleMutation counts one rule store command.
func RecordRuleMutation(operation string, err error) {
	RuleMutationsTotal.WithLabelValues(operation, resultStatus(err)).Inc()
}

// RecordLabelMutation counts one label store command.
func RecordLabelMutation(operation string, err error) {
	LabelMutationsTotal.WithLabelValues(operation, resultStatus(err)).Inc()
}

// RecordTagMutation counts one tag store command.
func RecordTagMutation(operation string, err error) {
	TagMutationsTotal.WithLabelValues(operation, resultStatus(err)).Inc()
}
