package main

import (
	"fmt"
	"os"

	"github.com/noah-isme/clinic-scheduler-api/internal/cli"
	"github.com/noah-isme/clinic-scheduler-api/pkg/config"
	"github.com/noah-isme/clinic-scheduler-api/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	return cli.NewRootCmd(cli.NewLoader(cfg, logr)).Execute()
}
