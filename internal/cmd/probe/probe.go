// Package probe checks that a running gang service answers its health check.
// Deploy gates call it and act on the exit code.
package probe

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	entrypoint "github.com/blackhand-games/syndicate/internal/platform/cmd"
	platformgrpc "github.com/blackhand-games/syndicate/internal/platform/grpc"
)

// Config holds probe command configuration.
type Config struct {
	Addr    string        `env:"SYNDICATE_PROBE_ADDR" envDefault:"localhost:8087"`
	Timeout time.Duration `env:"SYNDICATE_PROBE_TIMEOUT" envDefault:"10s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The gang server address to probe")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "How long to wait for a healthy answer")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run dials the service and waits for its health check to serve.
func Run(ctx context.Context, cfg Config) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("probe address is required")
	}

	conn, err := platformgrpc.DialWithHealth(
		ctx,
		nil,
		cfg.Addr,
		cfg.Timeout,
		log.Printf,
		platformgrpc.DefaultClientDialOptions()...,
	)
	if err != nil {
		return fmt.Errorf("probe %s: %w", cfg.Addr, err)
	}
	return conn.Close()
}
