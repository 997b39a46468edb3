package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/docbundle/internal/classify"
	"github.com/dgallion1/docbundle/internal/pipeline"
)

type statusResponse struct {
	Run         *pipeline.RunSnapshot  `json:"run"`
	RenderStats pipeline.StatsSnapshot `json:"render_stats"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{RenderStats: s.orchestrator.Stats().Snapshot()}
	if run := s.orchestrator.LastRun(); run != nil {
		snap := run.Snapshot()
		resp.Run = &snap
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	c := s.orchestrator.Classifier()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Rules    []classify.Rule `json:"rules"`
		Fallback string          `json:"fallback"`
	}{c.Rules(), c.Fallback()})
}
