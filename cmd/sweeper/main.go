package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rewardengine/internal/adapter/repo"
	"rewardengine/internal/infra"
	"rewardengine/internal/loyalty"
	"rewardengine/internal/reward"
	"rewardengine/internal/vesting"
)

type sweeper struct {
	ctx      context.Context
	engine   *loyalty.Engine
	logger   infra.Logger
	interval time.Duration
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("sweeper: db connection failed")
	}
	defer pool.Close()

	store := repo.NewStore(pool)
	ledger := vesting.NewLedger(store)
	engine := loyalty.NewEngine(store, ledger, reward.StaticTierResolver{}, loyalty.Config{
		DefaultWindowDays: cfg.VestingWindowDays,
		DefaultRewardBps:  cfg.DefaultRewardBps,
	})

	s := &sweeper{ctx: ctx, engine: engine, logger: logger, interval: cfg.SweepInterval}
	if err := s.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("sweeper: stopped with error")
	}
	logger.Info().Msg("sweeper: stopped")
}

func (s *sweeper) Run() error {
	s.logger.Info().Dur("interval", s.interval).Msg("sweeper: started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Sweep once at startup so a restart never delays overdue maturities.
	s.sweep()

	for {
		select {
		case <-s.ctx.Done():
			return s.ctx.Err()
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *sweeper) sweep() {
	matured, err := s.engine.SweepMaturities(s.ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("sweeper: maturity sweep failed")
		return
	}
	if matured > 0 {
		s.logger.Info().Int64("matured", matured).Msg("sweeper: grants matured")
	}
}
