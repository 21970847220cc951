package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type SimConfig struct {
	NumUsers             int
	NumPosts             int
	Rounds               int // actions per user
	LikeProbability      float64
	CommentProbability   float64
	GuestbookProbability float64
	ZipfS                float64
	Workers              int
	Seed                 int64
	RequestTimeout       time.Duration
	EngineURL            string
}

// DefaultSimConfig is a short run that finishes in seconds against a local engine.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		NumUsers:             20,
		NumPosts:             10,
		Rounds:               25,
		LikeProbability:      0.6,
		CommentProbability:   0.3,
		GuestbookProbability: 0.05,
		ZipfS:                1.07,
		Workers:              8,
		Seed:                 time.Now().UnixNano(),
		RequestTimeout:       10 * time.Second,
		EngineURL:            "http://localhost:8080",
	}
}

type SimulationStats struct {
	mu               sync.RWMutex
	StartTime        time.Time
	TotalRequests    int64
	SuccessRequests  int64
	FailedRequests   int64
	TotalPosts       int
	TotalComments    int
	LikeToggles      int
	GuestbookEntries int
	RequestLatencies []time.Duration
}

// SimulationMetrics is the summary returned after a run.
type SimulationMetrics struct {
	TotalUsers       int
	TotalPosts       int
	TotalComments    int
	LikeToggles      int
	GuestbookEntries int
	TotalRequests    int64
	FailedRequests   int64
	P50Latency       time.Duration
	P99Latency       time.Duration
	Elapsed          time.Duration
}

// SimulatedUser tracks what the engine has told this user about their own likes.
type SimulatedUser struct {
	ID       uuid.UUID
	Username string
	Token    string
	Liked    map[uuid.UUID]bool
}

type Simulator struct {
	config SimConfig
	stats  *SimulationStats
	users  []*SimulatedUser
	posts  []uuid.UUID
	client *http.Client
	logger *zap.Logger

	mu        sync.Mutex
	comments  map[uuid.UUID]int
	uncertain map[uuid.UUID]bool // a write to this post failed mid-flight
}

func NewSimulator(config SimConfig, logger *zap.Logger) *Simulator {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		config: config,
		stats: &SimulationStats{
			StartTime:        time.Now(),
			RequestLatencies: make([]time.Duration, 0),
		},
		client: &http.Client{
			Timeout: config.RequestTimeout,
		},
		logger:    logger.Named("simulator"),
		comments:  make(map[uuid.UUID]int),
		uncertain: make(map[uuid.UUID]bool),
	}
}

// Run signs users up, seeds posts, drives concurrent activity and then checks that every
// post's counters match what the clients observed.
func (s *Simulator) Run(ctx context.Context) error {
	s.logger.Info("starting simulation",
		zap.String("engine_url", s.config.EngineURL),
		zap.Int("users", s.config.NumUsers),
		zap.Int("posts", s.config.NumPosts),
		zap.Int("rounds", s.config.Rounds),
	)

	if err := s.initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := s.SimulateActivities(ctx); err != nil {
		return fmt.Errorf("activities failed: %w", err)
	}
	return s.Verify(ctx)
}

func (s *Simulator) initialize(ctx context.Context) error {
	s.logger.Info("phase 1: creating users", zap.Int("count", s.config.NumUsers))
	s.users = make([]*SimulatedUser, s.config.NumUsers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	runID := uuid.NewString()[:8]
	for i := range s.users {
		i := i
		g.Go(func() error {
			user := &SimulatedUser{
				Username: fmt.Sprintf("sim_%s_%d", runID, i),
				Liked:    make(map[uuid.UUID]bool),
			}
			if err := s.registerAndLogin(gctx, user); err != nil {
				return fmt.Errorf("user %s: %w", user.Username, err)
			}
			s.users[i] = user
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info("phase 2: seeding posts", zap.Int("count", s.config.NumPosts))
	for i := 0; i < s.config.NumPosts; i++ {
		author := s.users[i%len(s.users)]
		var post struct {
			ID uuid.UUID `json:"id"`
		}
		err := s.makeRequest(ctx, http.MethodPost, "/posts", author.Token, map[string]string{
			"title":   fmt.Sprintf("%s post %d", getRandomTopic(i), i),
			"content": "Seeded by the load simulator.",
		}, &post)
		if err != nil {
			return fmt.Errorf("failed to create post %d: %w", i, err)
		}
		s.posts = append(s.posts, post.ID)
		s.stats.mu.Lock()
		s.stats.TotalPosts++
		s.stats.mu.Unlock()
	}
	return nil
}

func (s *Simulator) registerAndLogin(ctx context.Context, user *SimulatedUser) error {
	creds := map[string]string{"username": user.Username, "password": "simpass123"}

	var registered struct {
		ID uuid.UUID `json:"id"`
	}
	if err := s.makeRequest(ctx, http.MethodPost, "/user/register", "", creds, &registered); err != nil {
		return fmt.Errorf("failed to register: %w", err)
	}
	user.ID = registered.ID

	var login struct {
		Token string `json:"token"`
	}
	if err := s.makeRequest(ctx, http.MethodPost, "/user/login", "", creds, &login); err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}
	user.Token = login.Token
	return nil
}

// statusError is returned for non-2xx responses.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

func (s *Simulator) makeRequest(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.EngineURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.recordRequest(time.Since(start), false)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	s.recordRequest(time.Since(start), err == nil && resp.StatusCode < 300)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return &statusError{Status: resp.StatusCode, Body: string(respBody)}
	}
	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

func (s *Simulator) recordRequest(latency time.Duration, ok bool) {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()
	s.stats.TotalRequests++
	if ok {
		s.stats.SuccessRequests++
	} else {
		s.stats.FailedRequests++
	}
	s.stats.RequestLatencies = append(s.stats.RequestLatencies, latency)
}

func (s *Simulator) GetMetrics() SimulationMetrics {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	metrics := SimulationMetrics{
		TotalUsers:       len(s.users),
		TotalPosts:       s.stats.TotalPosts,
		TotalComments:    s.stats.TotalComments,
		LikeToggles:      s.stats.LikeToggles,
		GuestbookEntries: s.stats.GuestbookEntries,
		TotalRequests:    s.stats.TotalRequests,
		FailedRequests:   s.stats.FailedRequests,
		Elapsed:          time.Since(s.stats.StartTime),
	}
	if n := len(s.stats.RequestLatencies); n > 0 {
		sorted := append([]time.Duration(nil), s.stats.RequestLatencies...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		metrics.P50Latency = sorted[n/2]
		metrics.P99Latency = sorted[(n*99)/100]
	}
	return metrics
}

func getRandomTopic(i int) string {
	topics := []string{
		"gaming", "tech", "science", "music", "movies",
		"books", "sports", "food", "travel", "art",
	}
	return topics[i%len(topics)]
}
