// Package config loads and validates overlay configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Bridge     BridgeConfig     `mapstructure:"bridge"`
	Host       HostConfig       `mapstructure:"host"`
	Progress   ProgressConfig   `mapstructure:"progress"`
	Transition TransitionConfig `mapstructure:"transition"`
	Theme      ThemeConfig      `mapstructure:"theme"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Trace      TraceConfig      `mapstructure:"trace"`
}

// BridgeConfig controls where host messages are accepted.
type BridgeConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// HostConfig controls delivery of outbound notifications.
type HostConfig struct {
	CallbackURL string        `mapstructure:"callback_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ProgressConfig tunes the state machine.
type ProgressConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	SettleDelay  time.Duration `mapstructure:"settle_delay"`
	Segments     int           `mapstructure:"segments"`
}

// TransitionConfig tunes the enter/exit animation.
type TransitionConfig struct {
	Duration      time.Duration `mapstructure:"duration"`
	FrameInterval time.Duration `mapstructure:"frame_interval"`
}

// ThemeConfig holds the colours and sizes of the rendered bar. It is the
// only section applied on reload.
type ThemeConfig struct {
	FillColor  string `mapstructure:"fill_color"`
	EmptyColor string `mapstructure:"empty_color"`
	LabelWidth int    `mapstructure:"label_width"`
}

// LoggingConfig toggles zap development features and output.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
	File        string `mapstructure:"file"`
}

// TraceConfig enables OTLP span export when OTLPEndpoint is set.
type TraceConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

// Load builds a Config from defaults, an optional file and the environment.
func Load(path string) (Config, error) {
	v, err := newViper(path)
	if err != nil {
		return Config{}, err
	}
	return decode(v)
}

// Watch loads path and calls onChange with every valid configuration written
// to it afterwards. Invalid edits are logged and skipped.
func Watch(path string, logger *zap.Logger, onChange func(Config)) (Config, error) {
	if path == "" {
		return Config{}, errors.New("watch requires a config file")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	v, err := newViper(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := decode(v)
	if err != nil {
		return Config{}, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		next, err := decode(v)
		if err != nil {
			logger.Warn("ignoring invalid config change", zap.String("file", e.Name), zap.Error(err))
			return
		}
		logger.Info("config reloaded", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		onChange(next)
	})
	v.WatchConfig()
	return cfg, nil
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("NUIPROGRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bridge.listen_addr", "127.0.0.1:30120")
	v.SetDefault("host.callback_url", "http://127.0.0.1:30121")
	v.SetDefault("host.timeout", 2*time.Second)
	v.SetDefault("progress.tick_interval", 100*time.Millisecond)
	v.SetDefault("progress.settle_delay", 100*time.Millisecond)
	v.SetDefault("progress.segments", 20)
	v.SetDefault("transition.duration", 200*time.Millisecond)
	v.SetDefault("transition.frame_interval", 16*time.Millisecond)
	v.SetDefault("theme.fill_color", "#41118E")
	v.SetDefault("theme.empty_color", "#3A3A3A")
	v.SetDefault("theme.label_width", 32)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("trace.otlp_endpoint", "")
	v.SetDefault("trace.service_name", "nuiprogress")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Bridge.ListenAddr == "" {
		return fmt.Errorf("bridge.listen_addr must be set")
	}
	if c.Host.Timeout <= 0 {
		return fmt.Errorf("host.timeout must be > 0")
	}
	if c.Progress.TickInterval <= 0 {
		return fmt.Errorf("progress.tick_interval must be > 0")
	}
	if c.Progress.SettleDelay <= 0 {
		return fmt.Errorf("progress.settle_delay must be > 0")
	}
	if c.Progress.Segments <= 0 {
		return fmt.Errorf("progress.segments must be > 0")
	}
	if c.Transition.Duration < 0 {
		return fmt.Errorf("transition.duration must be >= 0")
	}
	if c.Transition.FrameInterval <= 0 {
		return fmt.Errorf("transition.frame_interval must be > 0")
	}
	if c.Theme.LabelWidth <= 0 {
		return fmt.Errorf("theme.label_width must be > 0")
	}
	return nil
}
