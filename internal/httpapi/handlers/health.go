package handlers

import (
	"context"
	"net/http"
	"time"

	"reelforge/internal/httpkit"
	"reelforge/internal/jobstore"
)

// Health reports liveness; ?deep=true also pings the job store and checks
// that the encoding tools are installed.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	health := map[string]any{
		"status":  "ok",
		"service": "reelforge",
		"version": "0.1.0",
	}

	if r.URL.Query().Get("deep") == "true" {
		checks := h.deepHealthCheck(ctx)
		health["checks"] = checks

		for _, check := range checks {
			if checkMap, ok := check.(map[string]any); ok {
				if checkMap["status"] != "ok" {
					health["status"] = "degraded"
					h.log.Warn("health check degraded", "checks", checks)
					break
				}
			}
		}
	}

	httpkit.WriteJSON(w, 200, health)
}

func (h *Handler) deepHealthCheck(ctx context.Context) map[string]any {
	checks := make(map[string]any)
	checks["job_store"] = h.checkJobStore(ctx)
	checks["storage"] = h.checkStorage(ctx)
	checks["encoder"] = h.checkEncoder()
	return checks
}

func (h *Handler) checkJobStore(ctx context.Context) map[string]any {
	start := time.Now()
	result := map[string]any{"status": "ok"}

	pinger, ok := h.store.(jobstore.Pinger)
	if !ok {
		result["detail"] = "backend has no ping"
		return result
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pinger.Ping(checkCtx); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}

	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}

func (h *Handler) checkStorage(_ context.Context) map[string]any {
	return map[string]any{
		"status":   "ok",
		"provider": h.sp.Provider(),
	}
}

func (h *Handler) checkEncoder() map[string]any {
	result := map[string]any{"status": "ok"}
	if h.encoder == nil {
		result["detail"] = "no encoder wired"
		return result
	}
	if err := h.encoder.Check(); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}
	return result
}
