package repository

import (
	"context"
	"time"

	"FinSignal/internal/domain/models"
)

// QuoteProvider serves current quotes and daily closes. Implementations return
// an error wrapping models.ErrSymbolNotFound for unknown symbols.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	Historical(ctx context.Context, symbol string, from, to time.Time) ([]models.PricePoint, error)
}

// DisclosureProvider serves regulatory filings. A soft failure of one call is
// returned as an error; an empty result is not an error.
type DisclosureProvider interface {
	// StandardAccounts returns the full statement keyed by standard account ids.
	StandardAccounts(ctx context.Context, registryID string, year int, scope models.ConsolidationScope) ([]models.FiscalLineItem, error)
	// LegacyAccounts returns the key-account summary keyed by free-text account names.
	LegacyAccounts(ctx context.Context, registryID string, year int) ([]models.FiscalLineItem, error)
	Dividends(ctx context.Context, registryID string, year int) ([]models.DividendItem, error)
}

// TickerTable is the read-only reference table loaded at startup.
type TickerTable interface {
	Lookup(ticker string) (models.SecurityIdentity, bool)
	All() []models.SecurityIdentity
}

// PresetStore persists user presets.
type PresetStore interface {
	Get(ctx context.Context, userID, name string) (*models.ThresholdPreset, error)
	List(ctx context.Context, userID string) ([]models.ThresholdPreset, error)
	Save(ctx context.Context, userID string, p models.ThresholdPreset) error
	Delete(ctx context.Context, userID, name string) error
	// Default returns the name of the user's default preset, "" when unset.
	Default(ctx context.Context, userID string) (string, error)
	SetDefault(ctx context.Context, userID, name string) error
}

// EvaluationPublisher emits evaluation records to downstream consumers.
type EvaluationPublisher interface {
	Publish(ctx context.Context, r models.EvaluationRecord) error
	Close() error
}

// EvaluationStore keeps evaluation history.
type EvaluationStore interface {
	Store(ctx context.Context, r models.EvaluationRecord) error
	Query(ctx context.Context, ticker string, limit int) ([]models.EvaluationRecord, error)
	Health(ctx context.Context) error
}

type Metrics interface {
	RecordUpstreamError(provider, op string)
	RecordLatency(op string, seconds float64)
	RecordFallbackStep(chain, step string)
	RecordSeverity(metric, severity string)
	RecordEvaluation(result string)
}
