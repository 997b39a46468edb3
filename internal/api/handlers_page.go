package api

import (
	"net/http"
	"os"

	"github.com/dgallion1/docbundle/internal/pipeline"
)

// handlePage serves the page written by the last successful run.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	run := s.orchestrator.LastRun()
	if run == nil {
		jsonError(w, "no build has run yet", http.StatusServiceUnavailable)
		return
	}
	snap := run.Snapshot()
	if snap.Phase != pipeline.PhaseCompleted {
		msg := "build " + string(snap.Phase)
		if snap.Error != "" {
			msg += ": " + snap.Error
		}
		jsonError(w, msg, http.StatusServiceUnavailable)
		return
	}

	data, err := os.ReadFile(snap.Output)
	if err != nil {
		s.log.Error("read page failed", "path", snap.Output, "error", err)
		jsonError(w, "page unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(data)
}
