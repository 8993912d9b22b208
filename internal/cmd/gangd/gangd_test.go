package gangd

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("gangd", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8087 {
		t.Fatalf("expected default port 8087, got %d", cfg.Port)
	}
	if cfg.DBPath != "data/gang.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.FoundingFee != 1000 {
		t.Fatalf("expected founding fee 1000, got %d", cfg.FoundingFee)
	}
	if cfg.AttackCooldown != 24*time.Hour {
		t.Fatalf("expected 24h attack cooldown, got %v", cfg.AttackCooldown)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	fs := flag.NewFlagSet("gangd", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{
		"-port", "9001",
		"-db", "/tmp/test.db",
		"-founding-fee", "250",
		"-income-interval", "5m",
	})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9001 {
		t.Fatalf("expected port 9001, got %d", cfg.Port)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Fatalf("expected db override, got %q", cfg.DBPath)
	}
	if cfg.FoundingFee != 250 {
		t.Fatalf("expected founding fee 250, got %d", cfg.FoundingFee)
	}
	if cfg.IncomeInterval != 5*time.Minute {
		t.Fatalf("expected 5m income interval, got %v", cfg.IncomeInterval)
	}
}
