package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"reelforge/internal/domain"
	"reelforge/internal/httpkit"
	"reelforge/internal/pkg/errors"
)

// PostRender accepts a project bundle, registers a pending job and hands it
// to the pipeline. The bundle arrives either as the multipart field "bundle"
// or as the raw request body. The archive is not inspected here; a corrupt
// upload is still accepted and fails asynchronously.
func (h *Handler) PostRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := h.readBundle(w, r)
	if err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if len(data) == 0 {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "bundle is required", map[string]any{"field": "bundle"})
		return
	}

	jobID := uuid.NewString()
	job := domain.NewJob(jobID, time.Now().UTC())

	if err := h.store.Create(ctx, job); err != nil {
		h.log.Error("job create failed", "job_id", jobID, "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "could not register job", nil)
		return
	}

	h.pipeline.Dispatch(jobID, data)

	h.log.Info("render accepted", "job_id", jobID, "bundle_bytes", len(data))
	httpkit.WriteJSON(w, 202, map[string]any{
		"job": map[string]any{
			"id":         job.ID,
			"status":     job.Status,
			"progress":   job.Progress,
			"created_at": job.CreatedAt,
		},
	})
}

// readBundle buffers the submitted archive, honoring the upload cap.
func (h *Handler) readBundle(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBundleBytes)

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		file, _, err := r.FormFile("bundle")
		if err != nil {
			return nil, errors.Validation("multipart field 'bundle' is required")
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	return io.ReadAll(r.Body)
}

// GetRender reports the job's current status and progress.
func (h *Handler) GetRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "jobId")

	job, err := h.store.Get(ctx, jobID)
	if err != nil {
		if errors.IsNotFound(err) {
			httpkit.WriteErr(w, 404, "JOB_NOT_FOUND", "render job not found", map[string]any{"job_id": jobID})
			return
		}
		h.log.Error("job lookup failed", "job_id", jobID, "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "job lookup failed", nil)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{"job": renderView(job)})
}

// GetRenderVideo streams the final video of a completed job.
func (h *Handler) GetRenderVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "jobId")

	job, err := h.store.Get(ctx, jobID)
	if err != nil {
		if errors.IsNotFound(err) {
			httpkit.WriteErr(w, 404, "JOB_NOT_FOUND", "render job not found", map[string]any{"job_id": jobID})
			return
		}
		h.log.Error("job lookup failed", "job_id", jobID, "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "job lookup failed", nil)
		return
	}

	switch job.Status {
	case domain.JobStatusCompleted:
	case domain.JobStatusFailed:
		httpkit.WriteErr(w, 409, "RENDER_FAILED", "render failed; submit a new bundle", map[string]any{
			"job_id": jobID,
			"error":  job.Error,
		})
		return
	default:
		httpkit.WriteErr(w, 409, "RENDER_NOT_READY", "render still in progress", map[string]any{
			"job_id":   jobID,
			"status":   job.Status,
			"progress": job.Progress,
		})
		return
	}

	rc, contentType, size, err := h.sp.GetObject(ctx, job.ResultRef)
	if err != nil {
		h.log.Error("result fetch failed", "job_id", jobID, "result_ref", job.ResultRef, "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "could not read final video", nil)
		return
	}
	defer rc.Close()

	if contentType == "" {
		contentType = "video/mp4"
	}
	w.Header().Set("Content-Type", contentType)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.WriteHeader(200)
	_, _ = io.Copy(w, rc)
}

// renderView is the wire shape of a job record.
func renderView(job domain.Job) map[string]any {
	view := map[string]any{
		"id":         job.ID,
		"status":     job.Status,
		"progress":   job.Progress,
		"created_at": job.CreatedAt,
		"updated_at": job.UpdatedAt,
	}
	if job.ResultRef != "" {
		view["result_ref"] = job.ResultRef
	}
	if job.Error != "" {
		view["error"] = job.Error
	}
	if job.SkippedScenes > 0 {
		view["skipped_scenes"] = job.SkippedScenes
	}
	return view
}
