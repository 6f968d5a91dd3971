package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	pkgch "FinSignal/pkg/clickhouse"
	applogger "FinSignal/pkg/logger"
)

// EvaluationHistorySchema creates the history table. ReplacingMergeTree on
// request_id makes redelivered messages collapse.
func EvaluationHistorySchema(table string) []string {
	return []string{fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			request_id     String,
			user_id        String,
			ticker         LowCardinality(String),
			venue          LowCardinality(String),
			evaluated_at   DateTime64(3, 'UTC'),
			price          Nullable(Float64),
			market_cap     Nullable(Float64),
			growth_kind    LowCardinality(String),
			growth_percent Nullable(Float64),
			per            Nullable(Float64),
			debt_ratio     Nullable(Float64),
			quick_ratio    Nullable(Float64),
			dividend_yield Nullable(Float64),
			preset_name    String,
			signals        String
		)
		ENGINE = ReplacingMergeTree
		ORDER BY (ticker, evaluated_at, request_id)
	`, table)}
}

const historyColumns = "request_id, user_id, ticker, venue, evaluated_at, price, market_cap, growth_kind, growth_percent, per, debt_ratio, quick_ratio, dividend_yield, preset_name, signals"

// CHEvaluationStore keeps evaluation history in ClickHouse.
type CHEvaluationStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHEvaluationStore(ch *pkgch.Client, table string, l *applogger.Logger) *CHEvaluationStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHEvaluationStore{db: ch.DB(), table: table, l: l}
}

func (s *CHEvaluationStore) Store(ctx context.Context, r models.EvaluationRecord) error {
	args, err := recordArgs(r)
	if err != nil {
		return err
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table, historyColumns)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		s.l.Error("clickhouse insert evaluation failed",
			applogger.String("ticker", r.Ticker),
			applogger.String("request_id", r.RequestID),
			applogger.Error(err),
		)
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// Query returns up to limit records for ticker, newest first.
func (s *CHEvaluationStore) Query(ctx context.Context, ticker string, limit int) ([]models.EvaluationRecord, error) {
	q := fmt.Sprintf("SELECT %s FROM %s FINAL WHERE ticker = ? ORDER BY evaluated_at DESC LIMIT ?", historyColumns, s.table)
	rows, err := s.db.QueryContext(ctx, q, ticker, limit)
	if err != nil {
		s.l.Error("clickhouse history query failed", applogger.String("ticker", ticker), applogger.Error(err))
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make([]models.EvaluationRecord, 0, limit)
	for rows.Next() {
		var (
			r       models.EvaluationRecord
			signals string
		)
		if err := rows.Scan(
			&r.RequestID, &r.UserID, &r.Ticker, &r.Venue, &r.EvaluatedAt,
			&r.Price, &r.MarketCap, &r.GrowthKind, &r.GrowthPercent,
			&r.PER, &r.DebtRatio, &r.QuickRatio, &r.DividendYield,
			&r.PresetName, &signals,
		); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if r.Signals, err = decodeSignals(signals); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *CHEvaluationStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func recordArgs(r models.EvaluationRecord) ([]any, error) {
	signals, err := encodeSignals(r.Signals)
	if err != nil {
		return nil, err
	}
	return []any{
		r.RequestID, r.UserID, r.Ticker, r.Venue, r.EvaluatedAt.UTC(),
		r.Price, r.MarketCap, r.GrowthKind, r.GrowthPercent,
		r.PER, r.DebtRatio, r.QuickRatio, r.DividendYield,
		r.PresetName, signals,
	}, nil
}

func encodeSignals(s models.SignalSnapshot) (string, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode signals: %w", err)
	}
	return string(b), nil
}

func decodeSignals(raw string) (models.SignalSnapshot, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var s models.SignalSnapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode signals: %w", err)
	}
	return s, nil
}

var _ domrepo.EvaluationStore = (*CHEvaluationStore)(nil)
