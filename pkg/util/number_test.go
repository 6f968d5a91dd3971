package util

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   any
		want string
		ok   bool
	}{
		{"1,234,567", "1234567", true},
		{" -9,876 ", "-9876", true},
		{"(1,000)", "-1000", true},
		{"\u22125", "-5", true},
		{"-", "0", false},
		{"", "0", false},
		{"abc", "0", false},
		{nil, "0", false},
		{float64(12.5), "12.5", true},
		{int64(-42), "-42", true},
		{json.Number("3000"), "3000", true},
	}
	for _, c := range cases {
		got, ok := ParseAmount(c.in)
		if ok != c.ok {
			t.Fatalf("ParseAmount(%v) ok=%v, want %v", c.in, ok, c.ok)
		}
		if got.String() != c.want {
			t.Fatalf("ParseAmount(%v)=%s, want %s", c.in, got.String(), c.want)
		}
	}
}

func TestParsePercent(t *testing.T) {
	got, ok := ParsePercent("2.35%")
	if !ok || got.String() != "2.35" {
		t.Fatalf("unexpected %s %v", got.String(), ok)
	}
	if _, ok := ParsePercent("-"); ok {
		t.Fatalf("placeholder must not parse")
	}
}

func TestCompact(t *testing.T) {
	if got := Compact(" Samsung  Electronics\t"); got != "samsungelectronics" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Compact("당기 순이익"); got != "당기순이익" {
		t.Fatalf("unexpected %q", got)
	}
}
