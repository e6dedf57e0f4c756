package server

import (
	"encoding/json"
	"net/http"

	"github.com/comfyrun/comfyrun/internal/pod"
	"github.com/comfyrun/comfyrun/internal/validate"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"version":       s.version,
		"active_pods":   s.activePodCount(),
		"event_clients": s.hub.ClientCount(),
	})
}

func (s *Server) activePodCount() int {
	n := 0
	for _, v := range s.manager.List() {
		if pod.Status(v.Status).Active() {
			n++
		}
	}
	return n
}

func (s *Server) handleListGPUs(w http.ResponseWriter, r *http.Request) {
	type gpuView struct {
		ID          string  `json:"id"`
		DisplayName string  `json:"display_name"`
		VRAMGB      int     `json:"vram_gb"`
		Tier        string  `json:"tier"`
		CostPerHour float64 `json:"cost_per_hour"`
	}
	specs := s.catalog.All()
	out := make([]gpuView, 0, len(specs))
	for _, spec := range specs {
		out = append(out, gpuView{
			ID:          spec.ID,
			DisplayName: spec.DisplayName,
			VRAMGB:      spec.VRAMGB,
			Tier:        spec.Tier,
			CostPerHour: spec.CostPerHour,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"gpus": out})
}

func (s *Server) handleListPods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"pods": s.manager.List()})
}

type createPodRequest struct {
	Name   string      `json:"name"`
	GPUID  string      `json:"gpu_id"`
	Config *pod.Config `json:"config"`
}

func (s *Server) handleCreatePod(w http.ResponseWriter, r *http.Request) {
	var req createPodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg := pod.DefaultConfig()
	if req.Config != nil {
		cfg = *req.Config
		if cfg.Port == 0 {
			cfg.Port = pod.DefaultConfig().Port
		}
		if cfg.ContainerDiskGB == 0 {
			cfg.ContainerDiskGB = pod.DefaultConfig().ContainerDiskGB
		}
		if cfg.VolumeDiskGB == 0 {
			cfg.VolumeDiskGB = pod.DefaultConfig().VolumeDiskGB
		}
	}

	if err := validate.CreateRequest(s.catalog, req.Name, req.GPUID, cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.manager.Create(r.Context(), pod.CreateParams{Name: req.Name, GPUID: req.GPUID, Config: cfg})
	if err != nil {
		if pod.IsNoCapacity(err) {
			writeError(w, http.StatusServiceUnavailable, "no instances currently available for the requested GPU type")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, p.Snapshot())
}

func (s *Server) handleGetPod(w http.ResponseWriter, r *http.Request) {
	p, err := s.manager.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "pod not found")
		return
	}
	writeJSON(w, http.StatusOK, p.Snapshot())
}

func (s *Server) handleTerminatePod(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.manager.Terminate(r.Context(), id); err != nil {
		if pod.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "pod not found")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pod_id": id, "status": "terminated"})
}

func (s *Server) handleResumePod(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.manager.Resume(r.Context(), id); err != nil {
		switch {
		case pod.IsNotFound(err):
			writeError(w, http.StatusNotFound, "pod not found")
		default:
			writeError(w, http.StatusConflict, err.Error())
		}
		return
	}
	p, _ := s.manager.Get(id)
	writeJSON(w, http.StatusOK, p.Snapshot())
}

func (s *Server) handlePodLogs(w http.ResponseWriter, r *http.Request) {
	p, err := s.manager.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "pod not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pod_id": p.ID, "logs": p.Logs()})
}

func (s *Server) handleCostSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.CostSummary())
}

func (s *Server) handleCostBreakdown(w http.ResponseWriter, r *http.Request) {
	b, err := s.manager.CostBreakdown(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "pod not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type estimateRequest struct {
	GPUID         string  `json:"gpu_id"`
	Hours         float64 `json:"hours"`
	Interruptible bool    `json:"interruptible"`
}

func (s *Server) handleCostEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Hours <= 0 {
		writeError(w, http.StatusBadRequest, "hours must be positive")
		return
	}
	est, err := s.manager.EstimateCost(req.GPUID, req.Hours, req.Interruptible)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"gpu_id":         req.GPUID,
		"hours":          req.Hours,
		"interruptible":  req.Interruptible,
		"estimated_cost": est,
	})
}
