package main

import (
	"context"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/app"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/config"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/metrics"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/util"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Resolve(getEnv("ECOM_CONFIG", defaultConfigPath))
	if err != nil {
		boot := util.NewLogger("info")
		boot.Fatal().Err(err).Msg("load config")
	}

	log := util.NewLogger(cfg.App.LogLevel)

	if srv := metrics.Serve(cfg.App.MetricsAddr); srv != nil {
		defer srv.Close()
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	a, err := app.Build(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build client")
	}
	defer a.Close()

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Runner.Run(ctx); err != nil {
		a.Close()
		log.Fatal().Err(err).Msg("run failed")
	}
	log.Info().Int("submissions", len(a.Ledger.Snapshot())).Msg("run complete")
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
