package web

import (
	"encoding/json"
	"net/http"
)

type createGroupRequest struct {
	Name      string  `json:"name"`
	MemberIDs []int64 `json:"member_ids"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	group, err := s.groups.Create(r.Context(), principal(r), req.Name, req.MemberIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"id":         group.ID,
		"name":       group.Name,
		"created_at": group.CreatedAt,
	})
}

func (s *Server) handleGetMembers(w http.ResponseWriter, r *http.Request) {
	groupID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	members, err := s.groups.Members(r.Context(), principal(r), groupID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if members == nil {
		members = []int64{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"group_id": groupID, "member_ids": members})
}

func (s *Server) handleChangeMembers(w http.ResponseWriter, r *http.Request) {
	groupID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	var memberIDs []int64
	if err := json.NewDecoder(r.Body).Decode(&memberIDs); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.groups.ChangeMembers(r.Context(), principal(r), groupID, memberIDs); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	if err := s.groups.Delete(r.Context(), principal(r), groupID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLatestPhoto mints a fresh time-bounded signed URL for the newest
// photo in the group.
func (s *Server) handleLatestPhoto(w http.ResponseWriter, r *http.Request) {
	groupID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	url, err := s.photos.LatestURL(r.Context(), principal(r), groupID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"url": url, "group_id": groupID})
}

func (s *Server) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	groupID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	photos, err := s.photos.List(r.Context(), principal(r), groupID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]photoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, toPhotoResponse(p))
	}
	s.writeJSON(w, http.StatusOK, out)
}
