package cache

import (
	"github.com/intunedeck/intunedeck/internal/config"
	"github.com/intunedeck/intunedeck/internal/logger"
)

// Initialize initializes the cache system
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Info("Initializing cache system")

	globalCache = NewInMemoryCache(cfg)

	log.Info("Cache system initialized")

	return globalCache
}
