package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Marcus0035/Looksy/internal/blobstore"
	"github.com/Marcus0035/Looksy/internal/domain"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps the service error taxonomy to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrUnauthorized):
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, "you are not a member of this group", http.StatusForbidden)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, blobstore.ErrUnavailable):
		http.Error(w, "object storage unavailable, try again", http.StatusServiceUnavailable)
	case errors.Is(err, blobstore.ErrKeyNotFound):
		// Metadata claims a resolved photo but storage has no object.
		s.logger.Error("metadata/storage drift", "path", r.URL.Path, "error", err)
		http.Error(w, "photo object missing", http.StatusInternalServerError)
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

type photoResponse struct {
	ID          int64     `json:"id"`
	URL         *string   `json:"url"`
	Description string    `json:"description"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UploadedBy  int64     `json:"uploaded_by"`
	GroupID     int64     `json:"group_id"`
}

// toPhotoResponse renders a photo record; the url is null while the record
// is still transient.
func toPhotoResponse(p *domain.Photo) photoResponse {
	resp := photoResponse{
		ID:          p.ID,
		Description: p.Description,
		UploadedAt:  p.UploadedAt,
		UploadedBy:  p.UploadedBy,
		GroupID:     p.GroupID,
	}
	if p.Resolved() {
		url := p.URL
		resp.URL = &url
	}
	return resp
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}
