package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "validator"

// Metrics are registered on a private registry so that several engines can
// live in one process, tests included.
type Metrics struct {
	Registry *prometheus.Registry

	// Transactions counts applied transactions.
	Transactions prometheus.Counter
	// RowsInserted counts inserted rows, RowsOverwritten the subset that
	// replaced a live row.
	RowsInserted    prometheus.Counter
	RowsOverwritten prometheus.Counter
	// RowsDeleted counts deletes that hit a live row, DeleteMisses the rest.
	RowsDeleted  prometheus.Counter
	DeleteMisses prometheus.Counter
	// Validations counts computed validations by outcome.
	Validations *prometheus.CounterVec
	Released    prometheus.Counter
	Pending     prometheus.Gauge
	// PrunedVersions counts versions dropped by retention.
	PrunedVersions      prometheus.Counter
	RetentionMark       prometheus.Gauge
	RetentionUnderflows prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Transactions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Total number of applied transactions",
		}),
		RowsInserted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_inserted_total",
			Help:      "Total number of inserted rows",
		}),
		RowsOverwritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_overwritten_total",
			Help:      "Total number of inserts that replaced a live row",
		}),
		RowsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_deleted_total",
			Help:      "Total number of deleted live rows",
		}),
		DeleteMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delete_misses_total",
			Help:      "Total number of deletes without a live row",
		}),
		Validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Total number of computed validations",
		}, []string{"outcome"}),
		Released: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "released_total",
			Help:      "Total number of released validation results",
		}),
		Pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_results",
			Help:      "Number of computed but unreleased validation results",
		}),
		PrunedVersions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pruned_versions_total",
			Help:      "Total number of row versions dropped by retention",
		}),
		RetentionMark: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "retention_mark",
			Help:      "Current retention mark",
		}),
		RetentionUnderflows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retention_underflows_total",
			Help:      "Total number of ignored retention marks below the current one",
		}),
	}
}

func (m *Metrics) ObserveValidation(outcome bool) {
	label := "pass"
	if !outcome {
		label = "conflict"
	}
	m.Validations.WithLabelValues(label).Inc()
}

// Snapshot gathers every counter and gauge into a flat map keyed by metric
// name and label pairs.
func (m *Metrics) Snapshot() (map[string]float64, error) {
	families, err := m.Registry.Gather()
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string]float64)
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			key := family.GetName() + labelString(metric.GetLabel())
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				snapshot[key] = metric.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				snapshot[key] = metric.GetGauge().GetValue()
			}
		}
	}
	return snapshot, nil
}

func (m *Metrics) String() string {
	snapshot, err := m.Snapshot()
	if err != nil {
		return fmt.Sprintf("METRICS[%v]", err)
	}
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", strings.TrimPrefix(k, namespace+"_"), snapshot[k])
	}
	return fmt.Sprintf("METRICS[%s]", strings.Join(parts, ","))
}

func labelString(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%s=%q", l.GetName(), l.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}
