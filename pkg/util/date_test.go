package util

import (
	"reflect"
	"testing"
	"time"
)

func TestTrailingWindow(t *testing.T) {
	now := time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC)
	from, to := TrailingWindow(now, 30)
	if !to.Equal(now) {
		t.Fatalf("unexpected to %v", to)
	}
	if got := from.Format(DateLayout); got != "2025-03-01" {
		t.Fatalf("unexpected from %s", got)
	}
}

func TestFormatUnixDate(t *testing.T) {
	ts := time.Date(2024, 10, 10, 23, 59, 0, 0, time.UTC).Unix()
	if got := FormatUnixDate(ts); got != "2024-10-10" {
		t.Fatalf("unexpected date %s", got)
	}
}

func TestYearsBack(t *testing.T) {
	if got := YearsBack(2024, 3); !reflect.DeepEqual(got, []int{2024, 2023, 2022}) {
		t.Fatalf("unexpected years %v", got)
	}
	if got := YearsBack(2024, 0); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
