package wiring

import (
	"time"

	"github.com/felixgeelhaar/goalgenie/internal/infrastructure/config"
	infraai "github.com/felixgeelhaar/goalgenie/pkg/ai"
	domainai "github.com/felixgeelhaar/goalgenie/pkg/domain/ai"
)

// LoadAIProvider builds the configured provider wrapped with retries and a
// timeout.
func LoadAIProvider(cfg *config.Config) (domainai.Provider, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	resilienceConfig := infraai.DefaultResilienceConfig()
	resilienceConfig.MaxRetries = cfg.MaxRetries
	if cfg.MaxRetries == 0 {
		// max_retries: 0 means a single attempt.
		resilienceConfig.MaxRetries = -1
	}
	if cfg.RetryDelayMs > 0 {
		resilienceConfig.RetryDelay = time.Duration(cfg.RetryDelayMs) * time.Millisecond
	}
	if cfg.TimeoutSec > 0 {
		resilienceConfig.Timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}

	baseProvider, err := infraai.GetDefaultProvider(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, err
	}

	return infraai.NewResilientProviderWithConfig(baseProvider, resilienceConfig), nil
}
