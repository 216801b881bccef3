package web

import (
	"net/http"
	"slices"

	"people-crud/internal/automation"
)

// hookStatus is a script as reported by the hooks API.
type hookStatus struct {
	*automation.Script
	Running bool `json:"running"`
}

func (s *Server) hookStatuses(scripts []*automation.Script) []hookStatus {
	var running []string
	if s.autoEngine != nil {
		running = s.autoEngine.Running()
	}
	out := make([]hookStatus, 0, len(scripts))
	for _, sc := range scripts {
		out = append(out, hookStatus{Script: sc, Running: slices.Contains(running, sc.ID)})
	}
	return out
}

func (s *Server) handleListHooks(w http.ResponseWriter, r *http.Request) {
	if s.scriptMgr == nil {
		s.writeJSON(w, http.StatusOK, []hookStatus{})
		return
	}
	scripts, err := s.scriptMgr.List()
	if err != nil {
		s.logger.Error("list scripts", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	s.writeJSON(w, http.StatusOK, s.hookStatuses(scripts))
}

func (s *Server) handleGetHook(w http.ResponseWriter, r *http.Request) {
	if s.scriptMgr == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	script, err := s.scriptMgr.Get(r.PathValue("id"))
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "script not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, s.hookStatuses([]*automation.Script{script})[0])
}
