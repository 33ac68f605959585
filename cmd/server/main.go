package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelforge/internal/ffmpeg"
	"reelforge/internal/httpapi"
	"reelforge/internal/jobstore"
	"reelforge/internal/pipeline"
	"reelforge/internal/pkg/logger"
	"reelforge/internal/pkg/shutdown"
	"reelforge/internal/storage"
)

func main() {
	// Initialize logger
	log := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Format:      getEnv("LOG_FORMAT", "json"),
		ServiceName: "reelforge",
		AddSource:   getEnv("LOG_SOURCE", "false") == "true",
	})

	log.Info("starting reelforge server",
		"version", "0.1.0",
	)

	// Load configuration
	httpPort := getEnv("HTTP_PORT", "8080")
	workspaceRoot := getEnv("WORKSPACE_ROOT", filepath.Join(os.TempDir(), "reelforge"))
	snapshotDir := getEnv("JOB_SNAPSHOT_DIR", filepath.Join(workspaceRoot, "jobs"))

	ctx := context.Background()

	// Initialize shutdown manager
	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	// Connect the shared job store backend
	log.Info("connecting job store", "backend", getEnv("JOBSTORE_BACKEND", "redis"))
	shared, closeShared, err := jobstore.NewSharedStore(ctx)
	if err != nil {
		log.LogFatal("failed to connect job store", err)
	}
	shutdownMgr.Register("jobstore", func(ctx context.Context) error {
		closeShared()
		return nil
	})
	log.Info("job store connected")

	// Job records are written to both the shared backend and local snapshots
	store := jobstore.NewDual(shared, jobstore.NewSnapshot(snapshotDir), log)

	// Initialize storage provider
	log.Info("initializing storage provider")
	sp, err := storage.NewProvider()
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	log.Info("storage provider initialized", "provider", sp.Provider())

	// Verify encoding tools before accepting work
	tool := ffmpeg.New(getEnv("FFMPEG_BIN", "ffmpeg"), getEnv("FFPROBE_BIN", "ffprobe"))
	if err := tool.Check(); err != nil {
		log.LogFatal("encoding tools unavailable", err)
	}
	log.Info("encoding tools found")

	// Create the render pipeline
	ctrl := pipeline.NewController(pipeline.Deps{
		Store:         store,
		SP:            sp,
		Encoder:       tool,
		Prober:        tool,
		WorkspaceRoot: workspaceRoot,
		Log:           log,
	})

	// Create HTTP router
	router := httpapi.NewRouter(httpapi.Deps{
		Store:    store,
		SP:       sp,
		Pipeline: ctrl,
		Encoder:  tool,
		Log:      log,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + httpPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Register server shutdown
	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	// Start server in goroutine
	go func() {
		log.Info("HTTP server listening",
			"addr", server.Addr,
			"port", httpPort,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	// Wait for shutdown signal
	shutdownMgr.Wait()
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	return v
}
