package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"people-crud/internal/store"
)

const maxBodyBytes = 1 << 20

// errorResponse is the payload of every failed API call.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type deleteResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.List()
	if err != nil {
		s.writeError(w, "Error fetching users", err)
		return
	}
	s.writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		s.writeError(w, "Error adding new user", err)
		return
	}
	rec, err := s.svc.Create(in)
	if err != nil {
		s.writeError(w, "Error adding new user", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	in, err := decodeInput(w, r)
	if err != nil {
		s.writeError(w, "Error updating user", err)
		return
	}
	rec, err := s.svc.Update(id, in)
	if err != nil {
		s.writeError(w, "Error updating user", err)
		return
	}
	// rec is nil for an unknown id and encodes as null.
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.Delete(id); err != nil {
		s.writeError(w, "Error deleting user", err)
		return
	}
	s.writeJSON(w, http.StatusOK, deleteResponse{Message: "User deleted successfully"})
}

func decodeInput(w http.ResponseWriter, r *http.Request) (store.RecordInput, error) {
	var in store.RecordInput
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return store.RecordInput{}, fmt.Errorf("invalid request body: %w", err)
	}
	return in, nil
}

// writeError reports any failure as a server error, with the cause attached.
func (s *Server) writeError(w http.ResponseWriter, message string, err error) {
	s.logger.Error(message, "err", err)
	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Message: message, Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("writeJSON encode failed", "err", err)
	}
}
