// Package metrics exposes Prometheus counters for emitted records, masking
// outcomes and sink failures.
//
// Metrics:
//
//	masklog_records_total{level,type}
//	masklog_mask_operations_total{masking_type,outcome}
//	masklog_sink_errors_total{sink}
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// UnknownMaskingType is the masking_type label for types the masker does not
// know. Callers collapse unknown names to it to keep label values bounded.
const UnknownMaskingType = "unknown"

// Collector handles metrics collection for the logger. A nil *Collector is
// valid and records nothing.
type Collector struct {
	records    *prometheus.CounterVec
	masks      *prometheus.CounterVec
	sinkErrors *prometheus.CounterVec
}

// NewCollector creates the counters and registers them with reg. Counters
// already registered by another Collector on the same registry are reused,
// so every Logger in a process can call NewCollector with the default
// registerer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	records, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "masklog_records_total",
			Help: "Total number of log records emitted, by level and record type",
		},
		[]string{"level", "type"},
	))
	if err != nil {
		return nil, err
	}

	masks, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "masklog_mask_operations_total",
			Help: "Total number of masking rules applied, by masking type and outcome",
		},
		[]string{"masking_type", "outcome"},
	))
	if err != nil {
		return nil, err
	}

	sinkErrors, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "masklog_sink_errors_total",
			Help: "Total number of failed writes to a log sink",
		},
		[]string{"sink"},
	))
	if err != nil {
		return nil, err
	}

	return &Collector{records: records, masks: masks, sinkErrors: sinkErrors}, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, errors.Wrap(err, "register metric")
	}
	return c, nil
}

// TrackRecord counts one emitted record.
func (c *Collector) TrackRecord(level, recordType string) {
	if c == nil {
		return
	}
	c.records.WithLabelValues(level, recordType).Inc()
}

// TrackMask counts one applied masking rule.
func (c *Collector) TrackMask(maskingType, outcome string) {
	if c == nil {
		return
	}
	if maskingType == "" {
		maskingType = UnknownMaskingType
	}
	c.masks.WithLabelValues(maskingType, outcome).Inc()
}

// TrackSinkError counts one failed sink write.
func (c *Collector) TrackSinkError(sink string) {
	if c == nil {
		return
	}
	c.sinkErrors.WithLabelValues(sink).Inc()
}
