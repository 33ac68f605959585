package storage

import "reelforge/internal/ports"

// Provider is the storage contract shared by the API and the pipeline.
// It is an alias to ports.StorageProvider to keep call-sites simple.
type Provider = ports.StorageProvider
