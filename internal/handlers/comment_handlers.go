package handlers

import (
	"net/http"

	"gator-commons/internal/engine/actors"
	"gator-commons/internal/models"
)

// CreateCommentRequest represents a request to create a new comment
type CreateCommentRequest struct {
	PostID  string `json:"postId"`
	Content string `json:"content"`
}

// HandleComments lists a post's comments (GET) and adds a comment as the caller (POST).
func (s *Server) HandleComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			postID, err := parseID(r.URL.Query().Get("postId"), "post ID")
			if err != nil {
				s.writeError(w, err)
				return
			}

			result, err := s.request(s.Engine.GetCommentActor(), &actors.GetCommentsForPostMsg{PostID: postID})
			if err != nil {
				s.writeError(w, err)
				return
			}

			comments, _ := result.([]*models.Comment)
			if comments == nil {
				comments = []*models.Comment{}
			}
			writeJSON(w, http.StatusOK, comments)

		case http.MethodPost:
			sess, err := session(r)
			if err != nil {
				s.writeError(w, err)
				return
			}

			var req CreateCommentRequest
			if err := decode(w, r, &req); err != nil {
				s.writeError(w, err)
				return
			}

			postID, err := parseID(req.PostID, "post ID")
			if err != nil {
				s.writeError(w, err)
				return
			}

			result, err := s.request(s.Engine.GetCommentActor(), &actors.CreateCommentMsg{
				Session: sess,
				PostID:  postID,
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
