// Package config holds the runtime configuration of the digipot tools.
//
// A configuration file may be written in YAML or TOML, the format is picked
// from the file extension (.toml, anything else is read as YAML):
//
//	adapter: periph
//	bus: "1"
//	address: 0x28
//	speed_hz: 100000
//	pins:
//	  sda: 21
//	  scl: 22
//	diagnostics:
//	  port: /dev/ttyUSB0
//	  baud: 115200
//	  level: debug
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Version is injected at build time.
var Version = "dev"

const (
	AdapterPeriph  = "periph"
	AdapterMCP2221 = "mcp2221"
	AdapterNanoPi  = "nanopi"
	AdapterSim     = "sim"
)

// Defaults for the second bus instance of the host and its diagnostic line.
const (
	DefaultBus     = "1"
	DefaultAddress = 0x28
	DefaultSpeedHz = 100_000
	DefaultSDAPin  = 21
	DefaultSCLPin  = 22
	DefaultBaud    = 115200
	DefaultLevel   = "info"
)

type Pins struct {
	SDA int `yaml:"sda" toml:"sda"`
	SCL int `yaml:"scl" toml:"scl"`
}

type Diagnostics struct {
	// Port is a serial device receiving diagnostics; stdout is used when empty.
	Port  string `yaml:"port" toml:"port"`
	Baud  int    `yaml:"baud" toml:"baud"`
	Level string `yaml:"level" toml:"level"`
}

type Config struct {
	Adapter     string      `yaml:"adapter" toml:"adapter"`
	Bus         string      `yaml:"bus" toml:"bus"`
	Address     byte        `yaml:"address" toml:"address"`
	SpeedHz     int64       `yaml:"speed_hz" toml:"speed_hz"`
	Pins        Pins        `yaml:"pins" toml:"pins"`
	Diagnostics Diagnostics `yaml:"diagnostics" toml:"diagnostics"`
}

func Default() Config {
	return Config{
		Adapter: AdapterPeriph,
		Bus:     DefaultBus,
		Address: DefaultAddress,
		SpeedHz: DefaultSpeedHz,
		Pins: Pins{
			SDA: DefaultSDAPin,
			SCL: DefaultSCLPin,
		},
		Diagnostics: Diagnostics{
			Baud:  DefaultBaud,
			Level: DefaultLevel,
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("could not parse toml config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("could not parse yaml config %s: %w", path, err)
		}
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Adapter {
	case AdapterPeriph, AdapterMCP2221, AdapterNanoPi, AdapterSim:
	default:
		return fmt.Errorf("unknown adapter %q", c.Adapter)
	}
	if c.Address > 0x7F {
		return fmt.Errorf("address %#x is outside the 7-bit range", c.Address)
	}
	if c.SpeedHz < 0 {
		return fmt.Errorf("negative bus speed %d", c.SpeedHz)
	}
	if c.Diagnostics.Baud <= 0 {
		return fmt.Errorf("invalid diagnostics baud rate %d", c.Diagnostics.Baud)
	}
	return nil
}
