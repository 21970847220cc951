package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gator-commons/internal/utils"
	"gator-commons/simulator"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	simConfig = simulator.DefaultSimConfig()
	duration  time.Duration
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:          "simulator",
	Short:        "Drive concurrent likes, comments and guestbook traffic at an engine and verify post counters",
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&simConfig.EngineURL, "url", simConfig.EngineURL, "engine base URL")
	flags.IntVar(&simConfig.NumUsers, "users", simConfig.NumUsers, "number of simulated users")
	flags.IntVar(&simConfig.NumPosts, "posts", simConfig.NumPosts, "number of seeded posts")
	flags.IntVar(&simConfig.Rounds, "rounds", simConfig.Rounds, "actions per user")
	flags.IntVar(&simConfig.Workers, "workers", simConfig.Workers, "concurrent users")
	flags.Float64Var(&simConfig.LikeProbability, "like-prob", simConfig.LikeProbability, "probability an action toggles a like")
	flags.Float64Var(&simConfig.CommentProbability, "comment-prob", simConfig.CommentProbability, "probability an action comments")
	flags.Float64Var(&simConfig.GuestbookProbability, "guestbook-prob", simConfig.GuestbookProbability, "probability an action signs the guestbook")
	flags.Float64Var(&simConfig.ZipfS, "zipf", simConfig.ZipfS, "Zipf exponent for post popularity (must be > 1)")
	flags.Int64Var(&simConfig.Seed, "seed", simConfig.Seed, "random seed")
	flags.DurationVar(&duration, "timeout", 10*time.Minute, "overall time limit")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := utils.NewLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	sim := simulator.NewSimulator(simConfig, logger)
	runErr := sim.Run(ctx)

	metrics := sim.GetMetrics()
	logger.Info("simulation finished",
		zap.Int("users", metrics.TotalUsers),
		zap.Int("posts", metrics.TotalPosts),
		zap.Int("comments", metrics.TotalComments),
		zap.Int("like_toggles", metrics.LikeToggles),
		zap.Int("guestbook_entries", metrics.GuestbookEntries),
		zap.Int64("requests", metrics.TotalRequests),
		zap.Int64("failed_requests", metrics.FailedRequests),
		zap.Duration("p50", metrics.P50Latency),
		zap.Duration("p99", metrics.P99Latency),
		zap.Duration("elapsed", metrics.Elapsed),
	)
	return runErr
}
