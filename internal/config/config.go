// Package config loads the fan controller configuration with Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sweeney/fanctl/internal/gpio"
)

// ErrLoad is wrapped by every configuration error.
var ErrLoad = errors.New("config load failed")

// EnvPrefix prefixes environment overrides: FANCTL_TEM_MAX=65.
const EnvPrefix = "FANCTL"

// Defaults
const (
	DefaultTemMax         = 60.0
	DefaultTemMin         = 45.0
	DefaultSampleMax      = 3
	DefaultSamplePeriodMs = 5000
	DefaultPin            = 1
	DefaultBackend        = "exec"
	DefaultGPIOCmd        = "/usr/bin/gpio"
	DefaultGPIOChip       = "gpiochip0"
	DefaultCommandTimeout = 5000
	DefaultSensorPath     = "/sys/class/thermal/thermal_zone0/temp"
	DefaultHeartbeat      = 15 * time.Minute
)

// Config holds the controller configuration. It is immutable after Load.
type Config struct {
	TemMax           float64       `mapstructure:"tem_max"`
	TemMin           float64       `mapstructure:"tem_min"`
	SampleMax        int           `mapstructure:"sample_max"`
	SamplePeriodMs   int           `mapstructure:"sample_period"`
	Pin              int           `mapstructure:"wire_pi_pin"`
	Backend          string        `mapstructure:"backend"`
	GPIOCmd          string        `mapstructure:"gpio_cmd"`
	GPIOChip         string        `mapstructure:"gpio_chip"`
	CommandTimeoutMs int           `mapstructure:"command_timeout"`
	SensorPath       string        `mapstructure:"sensor_path"`
	Heartbeat        time.Duration `mapstructure:"heartbeat"`
	Logging          Logging       `mapstructure:"logging"`
}

// Logging configures the zap logger.
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SamplePeriod returns the cycle interval.
func (c Config) SamplePeriod() time.Duration {
	return time.Duration(c.SamplePeriodMs) * time.Millisecond
}

// CommandTimeout returns the per-command bound for the exec backend.
func (c Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutMs) * time.Millisecond
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"backend": "backend",
	"pin":     "wire_pi_pin",
}

// NewViper builds a Viper instance from defaults, the config file, the
// environment and any flags that were set, in increasing precedence.
// An empty path searches for fanctl.{json,yaml,toml} in . and /etc/fanctl;
// not finding one is fine. A path that was given must be readable.
func NewViper(path string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("tem_max", DefaultTemMax)
	v.SetDefault("tem_min", DefaultTemMin)
	v.SetDefault("sample_max", DefaultSampleMax)
	v.SetDefault("sample_period", DefaultSamplePeriodMs)
	v.SetDefault("wire_pi_pin", DefaultPin)
	v.SetDefault("backend", DefaultBackend)
	v.SetDefault("gpio_cmd", DefaultGPIOCmd)
	v.SetDefault("gpio_chip", DefaultGPIOChip)
	v.SetDefault("command_timeout", DefaultCommandTimeout)
	v.SetDefault("sensor_path", DefaultSensorPath)
	v.SetDefault("heartbeat", DefaultHeartbeat)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fanctl")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/fanctl")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("%w: bind flag %s: %w", ErrLoad, name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: reading config: %w", ErrLoad, err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}

// FromViper decodes and validates the configuration. Thresholds, sizes and
// periods set to zero fall back to their defaults; pin 0 is a real pin and
// is kept.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: decoding config: %w", ErrLoad, err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return cfg, nil
}

// Load reads the configuration from path (see NewViper) and returns it
// together with the Viper instance used for the logger.
func Load(path string, flags *pflag.FlagSet) (Config, *viper.Viper, error) {
	v, err := NewViper(path, flags)
	if err != nil {
		return Config{}, nil, err
	}
	cfg, err := FromViper(v)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, v, nil
}

func applyDefaults(cfg *Config) {
	if cfg.TemMax == 0 {
		cfg.TemMax = DefaultTemMax
	}
	if cfg.TemMin == 0 {
		cfg.TemMin = DefaultTemMin
	}
	if cfg.SampleMax == 0 {
		cfg.SampleMax = DefaultSampleMax
	}
	if cfg.SamplePeriodMs == 0 {
		cfg.SamplePeriodMs = DefaultSamplePeriodMs
	}
	if cfg.CommandTimeoutMs == 0 {
		cfg.CommandTimeoutMs = DefaultCommandTimeout
	}
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}
	if cfg.GPIOCmd == "" {
		cfg.GPIOCmd = DefaultGPIOCmd
	}
	if cfg.GPIOChip == "" {
		cfg.GPIOChip = DefaultGPIOChip
	}
	if cfg.SensorPath == "" {
		cfg.SensorPath = DefaultSensorPath
	}
}

// validate rejects values the controller cannot run with. The ordering of
// TemMin and TemMax is deliberately left unchecked.
func (c Config) validate() error {
	if c.SampleMax < 0 {
		return fmt.Errorf("sample_max must be positive, got %d", c.SampleMax)
	}
	if c.SamplePeriodMs < 0 {
		return fmt.Errorf("sample_period must be positive, got %d", c.SamplePeriodMs)
	}
	if c.CommandTimeoutMs < 0 {
		return fmt.Errorf("command_timeout must be positive, got %d", c.CommandTimeoutMs)
	}
	if c.Pin < 0 {
		return fmt.Errorf("wire_pi_pin must not be negative, got %d", c.Pin)
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("heartbeat must not be negative, got %v", c.Heartbeat)
	}
	switch c.Backend {
	case gpio.BackendExec, gpio.BackendChip, gpio.BackendRpio:
	default:
		return fmt.Errorf("backend must be one of %s, %s or %s, got %q",
			gpio.BackendExec, gpio.BackendChip, gpio.BackendRpio, c.Backend)
	}
	return nil
}

// LoadEnvFile loads KEY=value pairs from a dotenv file into the process
// environment without overriding variables that are already set. An empty
// path tries ".env" and ignores it if missing.
func LoadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: env file %s: %w", ErrLoad, path, err)
	}
	return nil
}
