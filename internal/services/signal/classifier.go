// Package signal maps derived metrics onto traffic-light severities.
package signal

import (
	"math"

	"FinSignal/internal/domain/models"
)

// Classify returns the severity of one metric value under preset.
// Infinite values stand for the growth sentinels and bypass the thresholds.
func Classify(value *float64, kind models.MetricKind, preset models.ThresholdPreset) models.Severity {
	if value == nil || math.IsNaN(*value) {
		return models.SeverityNoData
	}
	v := *value
	switch {
	case math.IsInf(v, 1):
		return models.SeverityGreen
	case math.IsInf(v, -1):
		return models.SeverityRed
	}

	th, ok := preset.For(kind)
	if !ok {
		return models.SeverityNoData
	}
	if kind.HigherIsBetter() {
		switch {
		case v >= th.Caution:
			return models.SeverityGreen
		case v >= th.Danger:
			return models.SeverityOrange
		}
		return models.SeverityRed
	}
	switch {
	case v <= th.Caution:
		return models.SeverityGreen
	case v <= th.Danger:
		return models.SeverityOrange
	}
	return models.SeverityRed
}

// Evaluate classifies all six metrics.
func Evaluate(m models.DerivedMetrics, preset models.ThresholdPreset) models.SignalSnapshot {
	out := make(models.SignalSnapshot, len(models.MetricKinds))
	for _, kind := range models.MetricKinds {
		out[kind] = Classify(m.Value(kind), kind, preset)
	}
	return out
}
