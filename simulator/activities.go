package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SimulateActivities runs every user concurrently. Each user picks posts by Zipf
// popularity, so a few posts take most of the likes and comments.
func (s *Simulator) SimulateActivities(ctx context.Context) error {
	if len(s.posts) == 0 {
		return errors.New("no posts to act on")
	}
	s.logger.Info("phase 3: simulating activity")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i, user := range s.users {
		user := user
		rng := rand.New(rand.NewSource(s.config.Seed + int64(i)))
		g.Go(func() error {
			return s.simulateUser(gctx, user, rng)
		})
	}
	return g.Wait()
}

func (s *Simulator) simulateUser(ctx context.Context, user *SimulatedUser, rng *rand.Rand) error {
	var zipf *rand.Zipf
	if len(s.posts) > 1 && s.config.ZipfS > 1 {
		zipf = rand.NewZipf(rng, s.config.ZipfS, 1, uint64(len(s.posts)-1))
	}
	pick := func() uuid.UUID {
		if zipf == nil {
			return s.posts[rng.Intn(len(s.posts))]
		}
		return s.posts[zipf.Uint64()]
	}

	for round := 0; round < s.config.Rounds; round++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		roll := rng.Float64()
		switch {
		case roll < s.config.LikeProbability:
			s.toggleLike(ctx, user, pick())
		case roll < s.config.LikeProbability+s.config.CommentProbability:
			s.comment(ctx, user, pick(), round)
		case roll < s.config.LikeProbability+s.config.CommentProbability+s.config.GuestbookProbability:
			s.signGuestbook(ctx, user, round)
		default:
			// Browse a page; reads never move counters.
			_ = s.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/posts?page=%d", rng.Intn(3)+1), "", nil, nil)
		}
	}
	return nil
}

func (s *Simulator) toggleLike(ctx context.Context, user *SimulatedUser, postID uuid.UUID) {
	var state struct {
		Liked bool `json:"liked"`
	}
	err := s.makeRequest(ctx, http.MethodPost, "/post/like", user.Token, map[string]string{
		"postId": postID.String(),
	}, &state)
	if err != nil {
		s.writeFailed(postID, err)
		return
	}
	user.Liked[postID] = state.Liked

	s.stats.mu.Lock()
	s.stats.LikeToggles++
	s.stats.mu.Unlock()
}

func (s *Simulator) comment(ctx context.Context, user *SimulatedUser, postID uuid.UUID, round int) {
	err := s.makeRequest(ctx, http.MethodPost, "/post/comments", user.Token, map[string]string{
		"postId":  postID.String(),
		"content": fmt.Sprintf("comment %d from %s", round, user.Username),
	}, nil)
	if err != nil {
		s.writeFailed(postID, err)
		return
	}

	s.mu.Lock()
	s.comments[postID]++
	s.mu.Unlock()

	s.stats.mu.Lock()
	s.stats.TotalComments++
	s.stats.mu.Unlock()
}

func (s *Simulator) signGuestbook(ctx context.Context, user *SimulatedUser, round int) {
	err := s.makeRequest(ctx, http.MethodPost, "/guestbook", "", map[string]interface{}{
		"name":    user.Username,
		"message": fmt.Sprintf("visit %d", round),
	}, nil)
	if err != nil {
		s.logger.Debug("guestbook entry failed", zap.Error(err))
		return
	}
	s.stats.mu.Lock()
	s.stats.GuestbookEntries++
	s.stats.mu.Unlock()
}

// writeFailed marks a post whose outcome is unknown. A 4xx means the write was rejected
// outright, so the post's counters are still predictable.
func (s *Simulator) writeFailed(postID uuid.UUID, err error) {
	var statusErr *statusError
	if errors.As(err, &statusErr) && statusErr.Status < http.StatusInternalServerError {
		s.logger.Debug("write rejected", zap.Stringer("post_id", postID), zap.Error(err))
		return
	}
	s.logger.Warn("write failed", zap.Stringer("post_id", postID), zap.Error(err))
	s.mu.Lock()
	s.uncertain[postID] = true
	s.mu.Unlock()
}

// Verify compares each post's stored counters with the clients' view: likes are the
// number of users whose last toggle left the post liked, comments the number of
// acknowledged comments.
func (s *Simulator) Verify(ctx context.Context) error {
	expectedLikes := make(map[uuid.UUID]int, len(s.posts))
	for _, user := range s.users {
		for postID, liked := range user.Liked {
			if liked {
				expectedLikes[postID]++
			}
		}
	}

	var mismatches []string
	for _, postID := range s.posts {
		s.mu.Lock()
		skip := s.uncertain[postID]
		wantComments := s.comments[postID]
		s.mu.Unlock()
		if skip {
			continue
		}

		var post struct {
			LikesCount    int `json:"likesCount"`
			CommentsCount int `json:"commentsCount"`
		}
		if err := s.makeRequest(ctx, http.MethodGet, "/post?id="+postID.String(), "", nil, &post); err != nil {
			return fmt.Errorf("failed to fetch post %s: %w", postID, err)
		}
		if post.LikesCount != expectedLikes[postID] || post.CommentsCount != wantComments {
			mismatches = append(mismatches, fmt.Sprintf("%s: likes %d want %d, comments %d want %d",
				postID, post.LikesCount, expectedLikes[postID], post.CommentsCount, wantComments))
		}
	}

	if len(mismatches) > 0 {
		return fmt.Errorf("counter mismatch on %d posts: %s", len(mismatches), strings.Join(mismatches, "; "))
	}
	s.logger.Info("counters verified", zap.Int("posts", len(s.posts)))
	return nil
}
