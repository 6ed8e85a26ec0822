package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// DefaultProbeTimeout bounds a whole validation round trip.
const DefaultProbeTimeout = 10 * time.Second

// probeText is embedded once to prove the model exists and to check its size.
const probeText = "docmatch connectivity check"

// ConfigValidator checks provider settings against the live provider
// before the settings wizard reports success.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator with DefaultProbeTimeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: DefaultProbeTimeout}
}

// WithTimeout returns a copy that gives up after d.
func (v *ConfigValidator) WithTimeout(d time.Duration) *ConfigValidator {
	return &ConfigValidator{timeout: d}
}

// ValidateEmbedding pings the provider and embeds a short probe.
// Unset settings validate trivially.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(config, Options{Timeout: v.timeout})
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close() //nolint:errcheck // nothing to release for http adapters

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%s unreachable: %w", config.Provider, err)
	}
	vec, err := svc.Embed(ctx, probeText)
	if err != nil {
		return fmt.Errorf("%s embedding probe with model %q: %w", config.Provider, svc.ModelName(), err)
	}
	if want := svc.Dimensions(); want > 0 && len(vec) != want {
		return domain.ConfigurationError("embedding",
			fmt.Sprintf("model %s returned %d dimensions, expected %d", svc.ModelName(), len(vec), want))
	}
	return nil
}

// ValidateLLM pings the provider. It never runs a completion.
// Unset settings validate trivially.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	svc, err := CreateLLMService(config, Options{Timeout: v.timeout})
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close() //nolint:errcheck // nothing to release for http adapters

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%s unreachable: %w", config.Provider, err)
	}
	return nil
}
