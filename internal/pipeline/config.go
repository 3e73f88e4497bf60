package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/suneung/internal/llm"
	"github.com/abhisek/suneung/internal/problem"
)

// Backoff shapes the wait between local retries.
type Backoff struct {
	Initial    time.Duration `yaml:"initial" validate:"gte=0"`
	Max        time.Duration `yaml:"max" validate:"gte=0"`
	Multiplier float64       `yaml:"multiplier" validate:"gte=1"`
}

// Config holds every tunable of the pipeline. The Orchestrator copies it at
// construction; changing a Config afterwards has no effect on a running
// Orchestrator.
type Config struct {
	// MaxRevisions is the revision limit M. A candidate that still needs
	// revision after M revisions is rejected.
	MaxRevisions int `yaml:"max_revisions" validate:"gte=0"`

	// ReviewPassScore is the minimum appropriateness score for acceptance.
	ReviewPassScore int `yaml:"review_pass_score" validate:"gte=1,lte=10"`

	// ParseRetries is the number of re-generations after a failed
	// generation or revision call before the candidate fails.
	ParseRetries int `yaml:"parse_retries" validate:"gte=0"`

	// ReviewAttempts is the total number of review calls per review cycle.
	ReviewAttempts int `yaml:"review_attempts" validate:"gte=1"`

	// Concurrency is the ceiling on in-flight external calls, enforced by
	// the Orchestrator across all runs it drives.
	Concurrency int `yaml:"concurrency" validate:"gte=1"`

	// Workers is the number of pipeline instances a batch runs at once.
	Workers int `yaml:"workers" validate:"gte=1"`

	// EscalationProbability is the chance that a high-tier candidate below
	// its tier minimum is escalated to ultra-hard mode.
	EscalationProbability float64 `yaml:"escalation_probability" validate:"gte=0,lte=1"`

	// Seed seeds the escalation decider. Zero seeds from the clock.
	Seed int64 `yaml:"seed"`

	// CallTimeout bounds each external call. Zero disables the timeout.
	CallTimeout time.Duration `yaml:"call_timeout" validate:"gte=0"`

	Backoff Backoff `yaml:"backoff"`

	// TierMinimum is the score floor per tier that triggers escalation.
	TierMinimum map[problem.Tier]int `yaml:"tier_minimum" validate:"dive,keys,oneof=low mid high,endkeys,gte=0"`
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		MaxRevisions:          3,
		ReviewPassScore:       7,
		ParseRetries:          2,
		ReviewAttempts:        3,
		Concurrency:           4,
		Workers:               8,
		EscalationProbability: 0.5,
		CallTimeout:           60 * time.Second,
		Backoff: Backoff{
			Initial:    500 * time.Millisecond,
			Max:        8 * time.Second,
			Multiplier: 2,
		},
		TierMinimum: map[problem.Tier]int{problem.TierHigh: 80},
	}
}

// Validate checks the field ranges.
func (c Config) Validate() error {
	if err := problem.Validator().Struct(c); err != nil {
		return fmt.Errorf("invalid pipeline config: %w", err)
	}
	return nil
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
// An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read pipeline config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse pipeline config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal renders the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c Config) clone() Config {
	c.TierMinimum = maps.Clone(c.TierMinimum)
	return c
}

// ProviderConfig adapts an LLM config for use under this pipeline. The
// orchestrator owns retries, so the provider makes exactly one call per
// attempt, and the provider's ceiling matches Concurrency.
func (c Config) ProviderConfig(base llm.Config) llm.Config {
	base.Retry.MaxAttempts = 1
	base.MaxConcurrent = c.Concurrency
	return base
}

// retryConfig expresses the backoff as an llm.RetryConfig so the delays
// follow the same curve as provider-level retries.
func (c Config) retryConfig() llm.RetryConfig {
	return llm.RetryConfig{
		InitialWait: c.Backoff.Initial,
		MaxWait:     c.Backoff.Max,
		Multiplier:  c.Backoff.Multiplier,
	}
}
