package store

import (
	"context"
	"fmt"

	"github.com/danbi-analytics/channel-collector-go/internal/config"
)

// New builds the document store selected by the storage configuration.
func New(ctx context.Context, cfg config.StorageConfig) (DocumentStore, error) {
	switch cfg.Backend {
	case "local":
		return NewLocalStore(cfg.Dir)
	case "drive":
		return NewDriveStore(ctx, cfg.FolderID, cfg.CredentialsFile)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
