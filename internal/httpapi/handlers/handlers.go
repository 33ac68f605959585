// Package handlers implements the HTTP endpoints of the render service.
package handlers

import (
	"reelforge/internal/jobstore"
	"reelforge/internal/pkg/logger"
	"reelforge/internal/ports"
)

// Dispatcher starts the render pipeline for an accepted job. It returns
// immediately; outcome is observable only through the job store.
type Dispatcher interface {
	Dispatch(jobID string, bundleData []byte)
}

// EncoderCheck probes for the external encoding tools.
type EncoderCheck interface {
	Check() error
}

// Submitted bundles larger than this are rejected before buffering.
const defaultMaxBundleBytes = 512 << 20

type Deps struct {
	Store    jobstore.Store
	SP       ports.StorageProvider
	Pipeline Dispatcher
	Encoder  EncoderCheck
	Log      *logger.Logger

	// MaxBundleBytes overrides the default upload cap when > 0.
	MaxBundleBytes int64
}

type Handler struct {
	store          jobstore.Store
	sp             ports.StorageProvider
	pipeline       Dispatcher
	encoder        EncoderCheck
	log            *logger.Logger
	maxBundleBytes int64
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	maxBytes := d.MaxBundleBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBundleBytes
	}

	return &Handler{
		store:          d.Store,
		sp:             d.SP,
		pipeline:       d.Pipeline,
		encoder:        d.Encoder,
		log:            log.WithComponent("httpapi"),
		maxBundleBytes: maxBytes,
	}
}
