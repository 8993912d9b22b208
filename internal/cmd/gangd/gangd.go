// Package gangd parses gang service flags and starts the runtime.
package gangd

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/blackhand-games/syndicate/internal/platform/cmd"
	server "github.com/blackhand-games/syndicate/internal/services/gang/app"
)

// Config holds gangd command configuration.
type Config struct {
	Port           int           `env:"SYNDICATE_GANG_PORT" envDefault:"8087"`
	DBPath         string        `env:"SYNDICATE_GANG_DB_PATH" envDefault:"data/gang.db"`
	FoundingFee    int64         `env:"SYNDICATE_GANG_FOUNDING_FEE" envDefault:"1000"`
	StartingCash   int64         `env:"SYNDICATE_GANG_STARTING_CASH" envDefault:"5000"`
	AttackCooldown time.Duration `env:"SYNDICATE_GANG_ATTACK_COOLDOWN" envDefault:"24h"`
	IncomeInterval time.Duration `env:"SYNDICATE_GANG_INCOME_INTERVAL" envDefault:"1h"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The gang server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the gang SQLite database")
	fs.Int64Var(&cfg.FoundingFee, "founding-fee", cfg.FoundingFee, "Cash debited when founding a gang")
	fs.Int64Var(&cfg.StartingCash, "starting-cash", cfg.StartingCash, "Cash seeded for new users")
	fs.DurationVar(&cfg.AttackCooldown, "attack-cooldown", cfg.AttackCooldown, "Cooldown between attacks on a territory")
	fs.DurationVar(&cfg.IncomeInterval, "income-interval", cfg.IncomeInterval, "Interval between territory income passes")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the gang service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGang, func(ctx context.Context) error {
		return server.Run(ctx, server.RuntimeConfig{
			Port:           cfg.Port,
			DBPath:         cfg.DBPath,
			FoundingFee:    cfg.FoundingFee,
			StartingCash:   cfg.StartingCash,
			AttackCooldown: cfg.AttackCooldown,
			IncomeInterval: cfg.IncomeInterval,
		})
	})
}
