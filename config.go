package retry

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support human-readable strings in YAML
// configuration ("300ms", "30s", "1h30m"). An empty value is zero.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// PolicyConfig declares one named policy in a configuration file. Absent
// fields take the package defaults.
type PolicyConfig struct {
	Strategy     string   `yaml:"strategy"`
	MaxAttempts  int      `yaml:"maxAttempts"`
	BaseDelay    Duration `yaml:"baseDelay"`
	Multiplier   float64  `yaml:"multiplier"`
	MaxDelay     Duration `yaml:"maxDelay"`
	JitterFactor *float64 `yaml:"jitterFactor"`
}

// Config is the root of a policy configuration file:
//
//	policies:
//	  payments:
//	    strategy: exponential
//	    maxAttempts: 5
//	    baseDelay: 100ms
//	    maxDelay: 10s
//	    jitterFactor: 1.0
type Config struct {
	Policies map[string]PolicyConfig `yaml:"policies"`
}

// ParseConfig decodes a YAML policy configuration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse retry config: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads and decodes a YAML policy configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read retry config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// Registry builds a registry holding every configured policy. Policies are
// named after their config key, so they report metrics under that label.
func (c *Config) Registry(logger *zap.Logger) (*Registry, error) {
	reg := NewRegistry(logger)
	for name, pc := range c.Policies {
		p, err := New(pc.options(name, logger)...)
		if err != nil {
			return nil, fmt.Errorf("retry policy %q: %w", name, err)
		}
		reg.Register(name, p)
	}
	return reg, nil
}

func (pc PolicyConfig) options(name string, logger *zap.Logger) []Option {
	opts := []Option{WithName(name)}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	if pc.Strategy != "" {
		opts = append(opts, WithStrategy(Strategy(pc.Strategy)))
	}
	if pc.MaxAttempts != 0 {
		opts = append(opts, WithMaxAttempts(pc.MaxAttempts))
	}
	if pc.BaseDelay != 0 {
		opts = append(opts, WithBaseDelay(pc.BaseDelay.Duration()))
	}
	if pc.Multiplier != 0 {
		opts = append(opts, WithMultiplier(pc.Multiplier))
	}
	if pc.MaxDelay != 0 {
		opts = append(opts, WithMaxDelay(pc.MaxDelay.Duration()))
	}
	if pc.JitterFactor != nil {
		opts = append(opts, WithJitterFactor(*pc.JitterFactor))
	}
	return opts
}
