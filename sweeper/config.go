package sweeper

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when Config fields are left zero.
const (
	DefaultInterval    = 30 * time.Second
	DefaultMaxPerSweep = 256
)

// Config contains sweeper settings. The yaml tags let hosts embed it in
// their configuration files.
type Config struct {
	Interval    Duration `yaml:"interval"`      // How often to sweep (default: 30s)
	MaxPerSweep int      `yaml:"max_per_sweep"` // Records reclaimed per tick (default: 256)
}

func (c Config) interval() time.Duration {
	if time.Duration(c.Interval) <= 0 {
		return DefaultInterval
	}
	return time.Duration(c.Interval)
}

func (c Config) maxPerSweep() int {
	if c.MaxPerSweep <= 0 {
		return DefaultMaxPerSweep
	}
	return c.MaxPerSweep
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}
