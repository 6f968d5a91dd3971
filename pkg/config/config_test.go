package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\nreference:\n  tickers_path: data/t.json\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("unexpected port %d", c.Server.Port)
	}
	if c.Evaluation.UpstreamTimeout != 8*time.Second {
		t.Fatalf("unexpected upstream timeout %v", c.Evaluation.UpstreamTimeout)
	}
	if c.Evaluation.VenueSuffixes["KOSPI"] != ".KS" || c.Evaluation.VenueSuffixes["KOSDAQ"] != ".KQ" {
		t.Fatalf("unexpected suffixes %v", c.Evaluation.VenueSuffixes)
	}
	if len(c.Evaluation.MarketCapBands["KRW"]) != 4 {
		t.Fatalf("expected default KRW bands")
	}
	if c.Dart.ReportCode != "11011" {
		t.Fatalf("unexpected report code %q", c.Dart.ReportCode)
	}
}

func TestParseKeepsExplicitValues(t *testing.T) {
	c, err := Parse([]byte(`
environment: prod
server:
  port: 9090
evaluation:
  lookback_years: 5
  venue_suffixes:
    KOSPI: ".KS"
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Port != 9090 || c.Evaluation.LookbackYears != 5 {
		t.Fatalf("explicit values overwritten: %+v", c.Server)
	}
	if _, ok := c.Evaluation.VenueSuffixes["KOSDAQ"]; ok {
		t.Fatalf("explicit map must not be merged with defaults")
	}
}

func TestValidateRejectsAscendingBands(t *testing.T) {
	_, err := Parse([]byte(`
evaluation:
  market_cap_bands:
    KRW: [1, 2]
`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidateRejectsKafkaWithoutBrokers(t *testing.T) {
	if _, err := Parse([]byte("kafka:\n  enabled: true\n")); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("environment: dev\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DART_API_KEY", "dart-key")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("PORT", "7070")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Dart.APIKey != "dart-key" {
		t.Fatalf("env api key not applied")
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 {
		t.Fatalf("kafka env not applied: %+v", c.Kafka.Brokers)
	}
	if c.Server.Port != 7070 {
		t.Fatalf("port env not applied: %d", c.Server.Port)
	}
}

func TestSampleConfigLoads(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if c.Kafka.Consumer.DLQTopic != "finsignal.evaluations.dlq" {
		t.Fatalf("unexpected dlq topic %q", c.Kafka.Consumer.DLQTopic)
	}
	if got := c.Evaluation.MarketCapBands["USD"]; len(got) != 4 || got[0] != 200e9 {
		t.Fatalf("unexpected USD bands %v", got)
	}
	if c.Dart.Cache.Enabled || c.Dart.Cache.TTL != 12*time.Hour || c.Dart.Cache.MemorySize != 512 {
		t.Fatalf("unexpected filing cache %+v", c.Dart.Cache)
	}
}
