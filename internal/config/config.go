// Package config loads the bot configuration from YAML and validates it
// against an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/queuedpixel/twitch-craps-bot/internal/expr"
)

//go:embed schema.cue
var schemaSource string

// Config is the bot configuration.
type Config struct {
	Channel         string `yaml:"channel" json:"channel"`
	Owner           string `yaml:"owner" json:"owner"`
	MessageInterval int    `yaml:"message_interval" json:"message_interval"`
	StartingBalance int    `yaml:"starting_balance" json:"starting_balance"`
	RollingDelay    int    `yaml:"rolling_delay" json:"rolling_delay"`
	HelpCooldown    int    `yaml:"help_cooldown" json:"help_cooldown"`
	Debug           bool   `yaml:"debug" json:"debug"`
	MaxCallDepth    int    `yaml:"max_call_depth" json:"max_call_depth"`
	MaxNesting      int    `yaml:"max_nesting" json:"max_nesting"`

	State   StateConfig   `yaml:"state" json:"state"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// StateConfig selects where the scripting state is persisted.
type StateConfig struct {
	Backend string `yaml:"backend" json:"backend"` // json or sqlite
	Path    string `yaml:"path" json:"path"`
}

// MetricsConfig configures pushing engine metrics.
type MetricsConfig struct {
	PushURL string `yaml:"push_url" json:"push_url"`
	Job     string `yaml:"job" json:"job"`
}

// Default returns the configuration used for fields a file leaves out.
func Default() Config {
	return Config{
		Owner:           "owner",
		MessageInterval: 2000,
		StartingBalance: 10000,
		RollingDelay:    60,
		HelpCooldown:    60,
		MaxCallDepth:    expr.DefaultMaxCallDepth,
		MaxNesting:      expr.DefaultMaxNesting,
		State: StateConfig{
			Backend: "json",
			Path:    "players.json",
		},
		Metrics: MetricsConfig{
			Job: "crapsbot",
		},
	}
}

// MessageIntervalDuration returns MessageInterval as a duration.
func (c Config) MessageIntervalDuration() time.Duration {
	return time.Duration(c.MessageInterval) * time.Millisecond
}

// RollingDelayDuration returns RollingDelay as a duration.
func (c Config) RollingDelayDuration() time.Duration {
	return time.Duration(c.RollingDelay) * time.Second
}

// HelpCooldownDuration returns HelpCooldown as a duration.
func (c Config) HelpCooldownDuration() time.Duration {
	return time.Duration(c.HelpCooldown) * time.Second
}

// IsOwner reports whether user is the configured owner. Twitch user names
// are case-insensitive.
func (c Config) IsOwner(user string) bool {
	return strings.EqualFold(user, c.Owner)
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ValidationError lists every schema violation found in a configuration.
type ValidationError struct {
	Problems []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

// Validate checks c against the embedded CUE schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := def.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		var problems []string
		for _, e := range cueerrors.Errors(err) {
			problems = append(problems, e.Error())
		}
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
