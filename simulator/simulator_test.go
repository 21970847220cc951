package simulator

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"gator-commons/internal/app"
	"gator-commons/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startEngine(t *testing.T) string {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Database.Type = "sqlite"
	cfg.Database.SQLitePath = ":memory:"
	cfg.Auth.JWTSecret = "simulator-secret"
	cfg.Auth.BcryptCost = 4

	application, err := app.New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close(context.Background()) })

	ts := httptest.NewServer(application.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestSimulationKeepsCountersConsistent(t *testing.T) {
	cfg := DefaultSimConfig()
	cfg.EngineURL = startEngine(t)
	cfg.NumUsers = 6
	cfg.NumPosts = 3
	cfg.Rounds = 15
	cfg.Workers = 6
	cfg.Seed = 42

	sim := NewSimulator(cfg, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	require.NoError(t, sim.Run(ctx))

	metrics := sim.GetMetrics()
	assert.Equal(t, 6, metrics.TotalUsers)
	assert.Equal(t, 3, metrics.TotalPosts)
	assert.Zero(t, metrics.FailedRequests)
	assert.Positive(t, metrics.LikeToggles+metrics.TotalComments)
	assert.GreaterOrEqual(t, metrics.P99Latency, metrics.P50Latency)
}

func TestVerifyDetectsDrift(t *testing.T) {
	cfg := DefaultSimConfig()
	cfg.EngineURL = startEngine(t)
	cfg.NumUsers = 2
	cfg.NumPosts = 1
	cfg.Rounds = 0

	sim := NewSimulator(cfg, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, sim.initialize(ctx))

	// Claim a comment the engine never saw.
	sim.comments[sim.posts[0]] = 1

	err := sim.Verify(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comments 0 want 1")
}

func TestSimulateActivitiesNeedsPosts(t *testing.T) {
	sim := NewSimulator(DefaultSimConfig(), nil)
	assert.Error(t, sim.SimulateActivities(context.Background()))
}
