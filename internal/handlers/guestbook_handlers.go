package handlers

import (
	"net/http"

	"gator-commons/internal/engine/actors"
	"gator-commons/internal/models"
)

type GuestbookEntryRequest struct {
	Name          string `json:"name"`
	Message       string `json:"message"`
	Organization  string `json:"organization,omitempty"`
	Email         string `json:"email,omitempty"`
	IsEmailPublic bool   `json:"isEmailPublic"`
}

// HandleGuestbook lists recent entries (GET) and signs the guestbook (POST). Both are
// public, so private emails never leave the server.
func (s *Server) HandleGuestbook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			limit, err := queryInt(r, "limit", 0)
			if err != nil {
				s.writeError(w, err)
				return
			}

			result, err := s.request(s.Engine.GetGuestbookActor(), &actors.ListEntriesMsg{Limit: limit})
			if err != nil {
				s.writeError(w, err)
				return
			}

			entries, _ := result.([]*models.GuestbookEntry)
			masked := make([]models.GuestbookEntry, 0, len(entries))
			for _, entry := range entries {
				masked = append(masked, entry.Masked())
			}
			writeJSON(w, http.StatusOK, masked)

		case http.MethodPost:
			var req GuestbookEntryRequest
			if err := decode(w, r, &req); err != nil {
				s.writeError(w, err)
				return
			}

			result, err := s.request(s.Engine.GetGuestbookActor(), &actors.AddEntryMsg{
				AuthorName:    req.Name,
				Message:       req.Message,
				Organization:  req.Organization,
				Email:         req.Email,
				IsEmailPublic: req.IsEmailPublic,
			})
			if err != nil {
				s.writeError(w, err)
				return
			}

			entry, ok := result.(*models.GuestbookEntry)
			if !ok {
				writeJSON(w, http.StatusCreated, result)
				return
			}
			writeJSON(w, http.StatusCreated, entry.Masked())

		default:
			methodNotAllowed(w)
		}
	}
}
