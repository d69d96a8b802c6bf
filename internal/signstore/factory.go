package signstore

import (
	"fmt"

	"github.com/IDGS10A-ECONORTE/lsm-server/internal/config"
)

// Open builds the store backend named by the configuration.
func Open(cfg config.Store) (Admin, error) {
	switch cfg.Backend {
	case "qdrant":
		return NewQdrant(cfg.Host, cfg.Port, cfg.Collection)
	case "sqlite":
		return NewSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
