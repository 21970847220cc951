package handlers

import (
	stdctx "context"
	"net/http"
	"strconv"
	"time"

	"gator-commons/internal/api"
	"gator-commons/internal/engine/actors"
	"gator-commons/internal/models"
	"gator-commons/internal/utils"
)

// CreatePostRequest represents a request to create a new post
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// HandleHealth handles health check requests
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}

		resp := api.HealthResponse{
			Status:     "healthy",
			Database:   "ok",
			ServerTime: time.Now(),
		}

		if s.DB != nil {
			ctx, cancel := stdctx.WithTimeout(r.Context(), s.RequestTimeout)
			err := s.DB.Ping(ctx)
			cancel()
			if err != nil {
				resp.Status = "degraded"
				resp.Database = "unreachable"
				writeJSON(w, http.StatusServiceUnavailable, resp)
				return
			}
		}

		if result, err := s.request(s.Engine.GetPostActor(), &actors.GetCountsMsg{}); err == nil {
			resp.PostCount, _ = result.(int)
		}
		if result, err := s.request(s.Engine.GetGuestbookActor(), &actors.GetCountsMsg{}); err == nil {
			resp.GuestbookCount, _ = result.(int)
		}

		if s.MetricsEnabled && s.Metrics != nil {
			snapshot := s.Metrics.Snapshot()
			resp.Metrics = &snapshot
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// HandlePosts lists posts page by page (GET) and creates posts (POST).
func (s *Server) HandlePosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			page, err := queryInt(r, "page", 1)
			if err != nil {
				s.writeError(w, err)
				return
			}
			pageSize, err := queryInt(r, "pageSize", 0)
			if err != nil {
				s.writeError(w, err)
				return
			}

			result, err := s.request(s.Engine.GetPostActor(), &actors.ListPostsMsg{
				Page:     page,
				PageSize: pageSize,
			})
			if err != nil {
				s.writeError(w, err)
				return
			}

			postPage, ok := result.(*models.PostPage)
			if !ok {
				s.writeError(w, utils.NewAppError(utils.ErrMessageRejected, "unexpected response", nil))
				return
			}
			if postPage.Items == nil {
				postPage.Items = []*models.Post{}
			}
			writeJSON(w, http.StatusOK, postPage)

		case http.MethodPost:
			sess, err := session(r)
			if err != nil {
				s.writeError(w, err)
				return
			}

			var req CreatePostRequest
			if err := decode(w, r, &req); err != nil {
				s.writeError(w, err)
				return
			}

			result, err := s.request(s.Engine.GetPostActor(), &actors.CreatePostMsg{
				Session: sess,
				Title:   req.Title,
				Content: req.Content,
			})
			if err != nil {
				s.writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, result)

		default:
			methodNotAllowed(w)
		}
	}
}

// HandleGetPost returns one post with its current counters.
func (s *Server) HandleGetPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}

		postID, err := parseID(r.URL.Query().Get("id"), "post ID")
		if err != nil {
			s.writeError(w, err)
			return
		}

		result, err := s.request(s.Engine.GetPostActor(), &actors.GetPostMsg{PostID: postID})
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, utils.NewValidationError(name + " must be an integer")
	}
	return n, nil
}
