package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	probecmd "github.com/blackhand-games/syndicate/internal/cmd/probe"
	"github.com/blackhand-games/syndicate/internal/platform/config"
)

func main() {
	cfg, err := probecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := probecmd.Run(ctx, cfg); err != nil {
		config.Exitf("Error: %v", err)
	}
}
