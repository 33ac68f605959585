package pipeline

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"reelforge/internal/bundle"
	"reelforge/internal/domain"
	"reelforge/internal/jobstore"
	"reelforge/internal/pkg/errors"
	"reelforge/internal/pkg/logger"
	"reelforge/internal/ports"
)

// Stage progress marks outside the synthesis window.
const (
	progressStarted      = 5
	progressBundleParsed = 10
	progressExtracted    = 25
	progressConcatenate  = 85
	progressDone         = 100
)

// Stored error messages are capped so a noisy encoder dump cannot bloat the
// job record.
const maxStoredErrorLen = 2000

// Controller owns the render state machine for one job at a time:
// pending -> processing -> {completed, failed}. A given job id is processed
// by exactly one invocation; failed is final.
type Controller struct {
	store         jobstore.Store
	sp            ports.StorageProvider
	synth         *Synthesizer
	concat        *Concatenator
	workspaceRoot string
	log           *logger.Logger
}

type Deps struct {
	Store         jobstore.Store
	SP            ports.StorageProvider
	Encoder       Encoder
	Prober        Prober
	WorkspaceRoot string
	Log           *logger.Logger
}

func NewController(d Deps) *Controller {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("pipeline")

	return &Controller{
		store:         d.Store,
		sp:            d.SP,
		synth:         NewSynthesizer(d.Encoder, d.Prober, log),
		concat:        NewConcatenator(d.Encoder),
		workspaceRoot: d.WorkspaceRoot,
		log:           log,
	}
}

// Dispatch runs the pipeline for the job on a detached goroutine and returns
// immediately. The goroutine carries its own error boundary: the submission
// response has long been sent, so nothing may propagate back to it. No
// cancellation is wired in; a submitted job runs to completion or failure.
func (c *Controller) Dispatch(jobID string, bundleData []byte) {
	go func() {
		ctx := logger.ContextWithJobID(context.Background(), jobID)
		log := c.log.WithJobID(jobID)

		defer func() {
			if rec := recover(); rec != nil {
				log.Error("pipeline panic recovered",
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				c.failJob(ctx, jobID, errors.Internalf("pipeline panic: %v", rec))
			}
		}()

		c.process(ctx, jobID, bundleData)
	}()
}

// process drives ingestion, synthesis, concatenation and publication,
// updating the job record at each stage. The workspace is removed on every
// exit path once it exists.
func (c *Controller) process(ctx context.Context, jobID string, bundleData []byte) {
	log := c.log.WithJobID(jobID)
	log.Info("render started", "bundle_bytes", len(bundleData))

	c.mark(ctx, jobID, domain.JobStatusProcessing, progressStarted)

	b, err := bundle.Parse(bundleData)
	if err != nil {
		c.failJob(ctx, jobID, err)
		return
	}
	c.progress(ctx, jobID, progressBundleParsed)

	ws, err := NewWorkspace(c.workspaceRoot, jobID)
	if err != nil {
		c.failJob(ctx, jobID, errors.Wrap(err, "pipeline.workspace", "create workspace"))
		return
	}
	defer ws.Remove(log)

	if err := b.ExtractTo(ws.ImagesDir(), ws.VoiceoversDir()); err != nil {
		c.failJob(ctx, jobID, err)
		return
	}
	c.progress(ctx, jobID, progressExtracted)

	result, err := c.synth.Run(ctx, ws, b.Scenes, func(p int) {
		c.progress(ctx, jobID, p)
	})
	if err != nil {
		c.failJob(ctx, jobID, err)
		return
	}
	c.progress(ctx, jobID, progressConcatenate)

	outputPath, err := c.concat.Run(ctx, ws, result.Segments)
	if err != nil {
		c.failJob(ctx, jobID, err)
		return
	}

	resultRef, err := c.publish(ctx, jobID, outputPath)
	if err != nil {
		c.failJob(ctx, jobID, errors.Wrap(err, "pipeline.publish", "store final video"))
		return
	}

	status := domain.JobStatusCompleted
	progress := progressDone
	upd := domain.JobUpdate{
		Status:        &status,
		Progress:      &progress,
		ResultRef:     &resultRef,
		SkippedScenes: &result.SkippedScenes,
	}
	if err := c.store.Update(ctx, jobID, upd); err != nil {
		log.Error("failed to record completion", "error", err.Error())
		return
	}

	log.Info("render completed",
		"segments", len(result.Segments),
		"skipped_scenes", result.SkippedScenes,
		"result_ref", resultRef,
	)
}

// publish moves the final video into the storage provider and returns the
// object key stored as the job's result reference.
func (c *Controller) publish(ctx context.Context, jobID, outputPath string) (string, error) {
	f, err := os.Open(outputPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", err
	}

	out, err := c.sp.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   fmt.Sprintf("renders/%s.mp4", jobID),
		ContentType: "video/mp4",
		Reader:      f,
		Size:        st.Size(),
	})
	if err != nil {
		return "", err
	}
	return out.ObjectKey, nil
}

func (c *Controller) mark(ctx context.Context, jobID, status string, progress int) {
	upd := domain.JobUpdate{Status: &status, Progress: &progress}
	if err := c.store.Update(ctx, jobID, upd); err != nil {
		c.log.WithJobID(jobID).Warn("job status update failed",
			"status", status,
			"error", err.Error(),
		)
	}
}

func (c *Controller) progress(ctx context.Context, jobID string, progress int) {
	upd := domain.JobUpdate{Progress: &progress}
	if err := c.store.Update(ctx, jobID, upd); err != nil {
		c.log.WithJobID(jobID).Warn("job progress update failed",
			"progress", progress,
			"error", err.Error(),
		)
	}
}

// failJob records the terminal failure with the error message preserved
// verbatim for pollers (truncated only when extreme).
func (c *Controller) failJob(ctx context.Context, jobID string, cause error) {
	log := c.log.WithJobID(jobID)

	msg := cause.Error()
	if len(msg) > maxStoredErrorLen {
		msg = msg[:maxStoredErrorLen]
	}

	var codedErr *errors.Error
	if errors.As(cause, &codedErr) {
		log.Error("render failed",
			"code", string(codedErr.Code),
			"op", codedErr.Op,
			"message", codedErr.Message,
		)
	} else {
		log.Error("render failed", "error", msg)
	}

	status := domain.JobStatusFailed
	upd := domain.JobUpdate{Status: &status, Error: &msg}
	if err := c.store.Update(ctx, jobID, upd); err != nil {
		log.Error("failed to record failure", "error", err.Error())
	}
}
