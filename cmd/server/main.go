package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ecocampus/eco-challenge/internal/api/admin"
	"github.com/ecocampus/eco-challenge/internal/api/portal"
	"github.com/ecocampus/eco-challenge/internal/auth"
	"github.com/ecocampus/eco-challenge/internal/cache"
	"github.com/ecocampus/eco-challenge/internal/catalog"
	"github.com/ecocampus/eco-challenge/internal/config"
	"github.com/ecocampus/eco-challenge/internal/repository"
	"github.com/ecocampus/eco-challenge/internal/server"
	"github.com/ecocampus/eco-challenge/internal/service/analytics"
	"github.com/ecocampus/eco-challenge/internal/service/leaderboard"
	"github.com/ecocampus/eco-challenge/internal/service/ledger"
	"github.com/ecocampus/eco-challenge/internal/service/review"
	"github.com/ecocampus/eco-challenge/internal/service/rewards"
	"github.com/ecocampus/eco-challenge/internal/service/scheduler"
	"github.com/ecocampus/eco-challenge/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log.Info().Str("environment", cfg.Server.Environment).Msg("Starting eco-challenge server")

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisCache.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	participationRepo := repository.NewParticipationRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	rewardRepo := repository.NewRewardRepository(db)

	// Services
	leaderboardService := leaderboard.NewService(userRepo, redisCache, cfg.Leaderboard.CacheDuration(), log)
	ledgerService := ledger.NewService(participationRepo, challengeRepo, submissionRepo, log)
	reviewService := review.NewService(submissionRepo, userRepo, leaderboardService, log)
	rewardsService := rewards.NewService(rewardRepo, userRepo, log)
	analyticsService := analytics.NewService(userRepo, challengeRepo, submissionRepo, rewardRepo, log)

	// Seed the catalog on first boot
	seeder := catalog.NewSeeder(challengeRepo, rewardRepo, log)
	if err := seeder.SeedChallenges(cfg.Seed.ChallengesFile); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed challenges")
	}
	if err := seeder.SeedRewards(cfg.Seed.RewardsFile); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed rewards")
	}

	// Background maintenance jobs
	warm := func(ctx context.Context) error {
		_, err := leaderboardService.GetGlobal(ctx, 0)
		return err
	}
	sched := scheduler.NewService(&cfg.Scheduler, submissionRepo, warm, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer sched.Stop()

	// HTTP layer
	authManager := auth.NewManager(&cfg.Auth)
	router := server.NewRouter(server.Deps{
		Config:        cfg,
		DB:            db,
		Cache:         redisCache,
		AuthManager:   authManager,
		AuthHandler:   portal.NewAuthHandler(userRepo, authManager, log),
		PortalHandler: portal.NewHandler(ledgerService, leaderboardService, rewardsService, challengeRepo, userRepo, participationRepo, log),
		AdminHandler:  admin.NewHandler(reviewService, challengeRepo, analyticsService, log),
		Log:           log,
	})

	if err := server.Run(&cfg.Server, router, log); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
}
