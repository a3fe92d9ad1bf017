package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rewardengine/internal/adapter/repo"
	"rewardengine/internal/database"
	"rewardengine/internal/governance"
	"rewardengine/internal/http/handlers"
	httpapi "rewardengine/internal/http/httpapi"
	"rewardengine/internal/infra"
	"rewardengine/internal/loyalty"
	"rewardengine/internal/reward"
	"rewardengine/internal/vesting"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	store := repo.NewStore(dbpool)
	ledger := vesting.NewLedger(store)
	engine := loyalty.NewEngine(store, ledger, reward.StaticTierResolver{}, loyalty.Config{
		DefaultWindowDays: cfg.VestingWindowDays,
		DefaultRewardBps:  cfg.DefaultRewardBps,
	})
	governor := governance.NewGovernor(store)

	app := handlers.NewApp(logger, engine, governor)
	router := httpapi.NewRouter(cfg, logger, app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
