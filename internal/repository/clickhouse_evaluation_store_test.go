package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinSignal/internal/domain/models"
)

func TestRecordArgsOrderMatchesColumns(t *testing.T) {
	per := 12.5
	at := time.Date(2025, 3, 5, 9, 0, 0, 0, time.FixedZone("KST", 9*3600))
	r := models.EvaluationRecord{
		RequestID:   "req-9",
		Ticker:      "005930",
		Venue:       "KOSPI",
		EvaluatedAt: at,
		PER:         &per,
		Signals:     models.SignalSnapshot{models.MetricPER: models.SeverityGreen},
	}

	args, err := recordArgs(r)
	require.NoError(t, err)
	require.Len(t, args, len(strings.Split(historyColumns, ",")))

	assert.Equal(t, "req-9", args[0])
	assert.Equal(t, at.UTC(), args[4])
	assert.Equal(t, &per, args[9])
	assert.JSONEq(t, `{"per":"green"}`, args[14].(string))
}

func TestSignalsRoundTripThroughColumn(t *testing.T) {
	raw, err := encodeSignals(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", raw)

	got, err := decodeSignals(`{"debt":"red","quick":"nodata"}`)
	require.NoError(t, err)
	assert.Equal(t, models.SeverityRed, got[models.MetricDebtRatio])
	assert.Equal(t, models.SeverityNoData, got[models.MetricQuickRatio])

	_, err = decodeSignals("{broken")
	assert.Error(t, err)
}

func TestEvaluationHistorySchemaNamesTable(t *testing.T) {
	stmts := EvaluationHistorySchema("finsignal.evaluations")
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS finsignal.evaluations")
	assert.Contains(t, stmts[0], "ReplacingMergeTree")
}
