package web

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Get(r.Context(), principal(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

type updateProfileRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), principal(r), req.Username, req.Email, req.FirstName, req.LastName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.users.ChangePassword(r.Context(), principal(r), req.CurrentPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Delete(r.Context(), principal(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMyGroups(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.groups.SummariesForUser(r.Context(), principal(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	type groupSummaryResponse struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		MemberCount int64  `json:"member_count"`
		PhotoCount  int64  `json:"photo_count"`
	}
	out := make([]groupSummaryResponse, 0, len(summaries))
	for _, sum := range summaries {
		out = append(out, groupSummaryResponse{
			ID:          sum.ID,
			Name:        sum.Name,
			MemberCount: sum.MemberCount,
			PhotoCount:  sum.PhotoCount,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}
