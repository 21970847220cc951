package handlers

import (
	"net/http"

	"gator-commons/internal/engine/actors"
	"gator-commons/internal/models"
)

type ToggleLikeRequest struct {
	PostID string `json:"postId"`
}

// HandleLike reports whether the caller likes a post (GET) and toggles the like (POST).
func (s *Server) HandleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(r)
		if err != nil {
			s.writeError(w, err)
			return
		}

		switch r.Method {
		case http.MethodGet:
			postID, err := parseID(r.URL.Query().Get("postId"), "post ID")
			if err != nil {
				s.writeError(w, err)
				return
			}

			result, err := s.request(s.Engine.GetLikeActor(), &actors.GetLikeStateMsg{
				PostID: postID,
				UserID: sess.UserID,
			})
			if err != nil {
				s.writeError(w, err)
				return
			}
			state, _ := result.(*models.LikeState)

			// Fill in the current count so clients can render the button in one call.
			if state != nil {
				if post, err := s.request(s.Engine.GetPostActor(), &actors.GetPostMsg{PostID: postID}); err == nil {
					if p, ok := post.(*models.Post); ok {
						state.LikesCount = p.LikesCount
					}
				}
			}
			writeJSON(w, http.StatusOK, state)

		case http.MethodPost:
			var req ToggleLikeRequest
			if err := decode(w, r, &req); err != nil {
				s.writeError(w, err)
				return
			}

			postID, err := parseID(req.PostID, "post ID")
			if err != nil {
				s.writeError(w, err)
				return
			}

			result, err := s.request(s.Engine.GetLikeActor(), &actors.ToggleLikeMsg{
				Session: sess,
				PostID:  postID,
			})
			if err != nil {
				s.writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, result)

		default:
			methodNotAllowed(w)
		}
	}
}
