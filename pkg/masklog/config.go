package masklog

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"

	"github.com/wachat/masklog/pkg/backends"
	"github.com/wachat/masklog/pkg/formatters"
	"github.com/wachat/masklog/pkg/masking"
	"github.com/wachat/masklog/pkg/transport"
	"github.com/wachat/masklog/pkg/types"
)

// ConfigPathEnvVar names the YAML file loaded when LoadConfig gets no path.
const ConfigPathEnvVar = "MASKLOG_CONFIG_PATH"

// Transport names accepted in Config.Transport.
const (
	TransportConsole = "console"
	TransportFile    = "file"
	TransportNATS    = "nats"
	TransportSyslog  = "syslog"
)

// Config describes a Logger built by NewFromConfig.
type Config struct {
	Service   string `koanf:"service"`
	Version   string `koanf:"version"`
	Hostname  string `koanf:"hostname"`
	Module    string `koanf:"module"`
	Level     string `koanf:"level"`
	Format    string `koanf:"format"`
	Transport string `koanf:"transport"`

	File    FileConfig    `koanf:"file"`
	NATS    NATSConfig    `koanf:"nats"`
	Syslog  SyslogConfig  `koanf:"syslog"`
	Masking MaskingConfig `koanf:"masking"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// FileConfig configures the file transport.
type FileConfig struct {
	Path string `koanf:"path"`
}

// NATSConfig configures the NATS transport.
type NATSConfig struct {
	URL string `koanf:"url"` // nats://host:port/subject
}

// SyslogConfig configures the syslog transport. An empty address uses the
// local syslog socket.
type SyslogConfig struct {
	Network string `koanf:"network"`
	Address string `koanf:"address"`
	Tag     string `koanf:"tag"`
}

// MaskingConfig points at a YAML file replacing the built-in masking rules.
type MaskingConfig struct {
	ConfigPath string `koanf:"config_path"`
}

// MetricsConfig toggles the Prometheus counters.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Level:     string(types.LevelDebug),
		Format:    formatters.NameJSON,
		Transport: TransportConsole,
		Syslog: SyslogConfig{
			Tag: "masklog",
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.Errorf("invalid level: %q", c.Level)
	}

	if !formatters.DefaultFactory.Has(c.Format) {
		return errors.Errorf("unknown format: %q", c.Format)
	}

	switch c.Transport {
	case TransportConsole, TransportSyslog:
	case TransportFile:
		if c.File.Path == "" {
			return errors.New("file.path is required for the file transport")
		}
	case TransportNATS:
		if c.NATS.URL == "" {
			return errors.New("nats.url is required for the nats transport")
		}
	default:
		return errors.Errorf("unknown transport: %q", c.Transport)
	}
	return nil
}

// envKeys maps environment variables to config keys.
var envKeys = map[string]string{
	"masklog_service":             "service",
	"masklog_version":             "version",
	"masklog_hostname":            "hostname",
	"masklog_module":              "module",
	"masklog_level":               "level",
	"masklog_format":              "format",
	"masklog_transport":           "transport",
	"masklog_file_path":           "file.path",
	"masklog_nats_url":            "nats.url",
	"masklog_syslog_network":      "syslog.network",
	"masklog_syslog_address":      "syslog.address",
	"masklog_syslog_tag":          "syslog.tag",
	"masklog_masking_config_path": "masking.config_path",
	"masklog_metrics_enabled":     "metrics.enabled",
}

func envTransformFunc(s string) string {
	return envKeys[strings.ToLower(s)]
}

// LoadConfig layers defaults, an optional YAML file and MASKLOG_*
// environment variables, in increasing precedence. An empty path falls back
// to $MASKLOG_CONFIG_PATH; with neither set no file is read.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment variables")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// NewFromConfig builds a Logger from cfg. Options are applied after the
// ones derived from cfg and may override them.
func NewFromConfig(cfg *Config, opts ...Option) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	formatter, err := formatters.CreateFormatter(cfg.Format)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithService(cfg.Service),
		WithVersion(cfg.Version),
		WithModule(cfg.Module),
		WithLevel(types.ParseLevel(cfg.Level)),
	}
	if cfg.Hostname != "" {
		base = append(base, WithHostname(cfg.Hostname))
	}
	if cfg.Metrics.Enabled {
		base = append(base, WithMetrics(nil))
	}

	if cfg.Masking.ConfigPath != "" {
		maskCfg, err := masking.LoadConfigFile(cfg.Masking.ConfigPath)
		if err != nil {
			return nil, err
		}
		svc, err := masking.NewService(maskCfg)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid masking config %s", cfg.Masking.ConfigPath)
		}
		base = append(base, WithMasker(svc))
	}

	out, errOut, err := openBackends(cfg)
	if err != nil {
		return nil, err
	}
	base = append(base, withWriter(out, errOut, transport.WithFormatter(formatter)))

	l, err := New(append(base, opts...)...)
	if err != nil {
		_ = out.Close()
		if errOut != nil && errOut != out {
			_ = errOut.Close()
		}
		return nil, err
	}
	return l, nil
}

func openBackends(cfg *Config) (backends.Backend, backends.Backend, error) {
	switch cfg.Transport {
	case TransportFile:
		f, err := backends.NewFile(cfg.File.Path)
		if err != nil {
			return nil, nil, err
		}
		return f, nil, nil
	case TransportNATS:
		n, err := backends.NewNATS(cfg.NATS.URL)
		if err != nil {
			return nil, nil, err
		}
		return n, nil, nil
	case TransportSyslog:
		s, err := backends.NewSyslog(cfg.Syslog.Network, cfg.Syslog.Address, backends.DefaultSyslogPriority, cfg.Syslog.Tag)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		return backends.Stdout(), backends.Stderr(), nil
	}
}
