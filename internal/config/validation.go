package config

import (
	"fmt"
	"strings"
)

// Validate checks all configuration values and returns the first violation.
// Called by Load() so an invalid configuration never reaches the engine.
func (c *Config) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %.2f (must be in [0, 2])", ErrInvalidTemperature, c.Temperature)
	}
	if c.MaxTokens <= 0 || c.MaxTokens > 65536 {
		return fmt.Errorf("%w: %d (must be in [1, 65536])", ErrInvalidMaxTokens, c.MaxTokens)
	}
	if c.GenerationTimeout <= 0 || c.GenerationTimeout > 600 {
		return fmt.Errorf("%w: %ds (must be in [1, 600])", ErrInvalidTimeout, c.GenerationTimeout)
	}

	if c.TopKKnowledge <= 0 || c.TopKKnowledge > 50 {
		return fmt.Errorf("%w: top_k_knowledge=%d (must be in [1, 50])", ErrInvalidTopK, c.TopKKnowledge)
	}
	if c.TopKArticles <= 0 || c.TopKArticles > 50 {
		return fmt.Errorf("%w: top_k_articles=%d (must be in [1, 50])", ErrInvalidTopK, c.TopKArticles)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("%w: %.2f (must be in [0, 1])", ErrInvalidMinScore, c.MinScore)
	}
	if c.MaxContextChars < 200 {
		return fmt.Errorf("%w: %d (must be at least 200)", ErrInvalidContextBudget, c.MaxContextChars)
	}

	for _, w := range c.Scoring.weights() {
		if w < 0 || w > 1 {
			return fmt.Errorf("%w: %.2f (must be in [0, 1])", ErrInvalidWeight, w)
		}
	}

	if strings.TrimSpace(c.PostgresHost) == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort <= 0 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if strings.TrimSpace(c.PostgresDBName) == "" {
		return fmt.Errorf("%w: database name is empty", ErrInvalidPostgresDBName)
	}

	return nil
}
