package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Env       string    `yaml:"env" env:"ENV" env-default:"local"`
	Name      string    `yaml:"name" env:"NAME" env-default:"Player"`
	Port      uint16    `yaml:"port" env:"PORT" env-default:"8080"`
	Interface string    `yaml:"interface" env:"INTERFACE"`
	Discovery Discovery `yaml:"discovery"`
}

type Discovery struct {
	Group            string        `yaml:"group" env:"DISCOVERY_GROUP" env-default:"239.255.255.250"`
	Port             uint16        `yaml:"port" env:"DISCOVERY_PORT" env-default:"9999"`
	TTL              int           `yaml:"ttl" env:"DISCOVERY_TTL" env-default:"1"`
	AnnounceInterval time.Duration `yaml:"announce_interval" env:"DISCOVERY_ANNOUNCE_INTERVAL" env-default:"2s"`
	ReportInterval   time.Duration `yaml:"report_interval" env:"DISCOVERY_REPORT_INTERVAL" env-default:"5s"`
	LivenessWindow   time.Duration `yaml:"liveness_window" env:"DISCOVERY_LIVENESS_WINDOW" env-default:"10s"`
}

// MustLoad загружает конфигурацию и паникует при ошибке.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic("cannot read config: " + err.Error())
	}
	return cfg
}

// Load читает конфигурацию.
// Priority: env > file > default. Empty path means env and defaults only.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
	} else {
		// check if file exists
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path returns the explicit path if set, CONFIG_PATH otherwise.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv("CONFIG_PATH")
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidConfig)
	}
	if c.Interface != "" {
		addr, err := netip.ParseAddr(c.Interface)
		if err != nil || !addr.Is4() {
			return fmt.Errorf("%w: interface %q is not an IPv4 address", ErrInvalidConfig, c.Interface)
		}
	}
	return c.Discovery.Validate()
}

func (d *Discovery) Validate() error {
	group, err := netip.ParseAddr(d.Group)
	if err != nil || !group.Is4() || !group.IsMulticast() {
		return fmt.Errorf("%w: group %q is not an IPv4 multicast address", ErrInvalidConfig, d.Group)
	}
	if d.Port == 0 {
		return fmt.Errorf("%w: discovery port is zero", ErrInvalidConfig)
	}
	if d.TTL < 1 || d.TTL > 255 {
		return fmt.Errorf("%w: ttl %d out of range", ErrInvalidConfig, d.TTL)
	}
	if d.AnnounceInterval <= 0 || d.ReportInterval <= 0 || d.LivenessWindow <= 0 {
		return fmt.Errorf("%w: intervals must be positive", ErrInvalidConfig)
	}
	if d.LivenessWindow < d.AnnounceInterval {
		return fmt.Errorf("%w: liveness window %s is shorter than announce interval %s",
			ErrInvalidConfig, d.LivenessWindow, d.AnnounceInterval)
	}
	return nil
}

// GroupAddr returns the multicast group as an address and port.
func (d *Discovery) GroupAddr() netip.AddrPort {
	return netip.AddrPortFrom(netip.MustParseAddr(d.Group), d.Port)
}
