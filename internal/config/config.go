package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the per-project configuration file, looked up next to the
// plan file and then in the working directory.
const FileName = ".s7plan.yml"

// Config captures CLI options sourced from config files or flags.
type Config struct {
	IP        string `yaml:"ip"`
	Rack      int    `yaml:"rack"`
	Slot      int    `yaml:"slot"`
	TimeoutMS int    `yaml:"timeout_ms"`

	Modules []string `yaml:"modules"`
	Tests   []string `yaml:"tests"`

	ContinueOnFailure bool   `yaml:"continue_on_failure"`
	DryRun            bool   `yaml:"dry_run"`
	Verbose           bool   `yaml:"verbose"`
	Format            string `yaml:"format"`

	MQTT MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig controls live publishing of results to a broker. Publishing
// stays off unless a broker address is configured or passed via --publish.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      int    `yaml:"qos"`
}

const (
	// FormatPretty renders human readable output.
	FormatPretty = "pretty"
	// FormatJSON renders machine readable output.
	FormatJSON = "json"
)

// Default returns the baseline configuration used when no flags or config
// file specify values.
func Default() Config {
	return Config{
		IP:        "127.0.0.1",
		Rack:      0,
		Slot:      1,
		TimeoutMS: 5000,
		Format:    FormatPretty,
		MQTT: MQTTConfig{
			Topic: "s7plan/results",
		},
	}
}

// Load reads .s7plan.yml from the given directories, first match wins.
// Missing files are ignored.
func Load(dirs ...string) (Config, error) {
	cfg := Default()
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, FileName)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return cfg, fmt.Errorf("read config %q: %w", path, err)
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %q: %w", path, err)
		}
		return merge(cfg, fileCfg), nil
	}
	return cfg, nil
}

func merge(base, override Config) Config {
	out := base

	if override.IP != "" {
		out.IP = override.IP
	}
	if override.Rack != 0 {
		out.Rack = override.Rack
	}
	if override.Slot != 0 {
		out.Slot = override.Slot
	}
	if override.TimeoutMS != 0 {
		out.TimeoutMS = override.TimeoutMS
	}
	if len(override.Modules) > 0 {
		out.Modules = append([]string{}, override.Modules...)
	}
	if len(override.Tests) > 0 {
		out.Tests = append([]string{}, override.Tests...)
	}
	if override.Format != "" {
		out.Format = override.Format
	}
	if override.ContinueOnFailure {
		out.ContinueOnFailure = true
	}
	if override.DryRun {
		out.DryRun = true
	}
	if override.Verbose {
		out.Verbose = true
	}

	if override.MQTT.Broker != "" {
		out.MQTT.Broker = override.MQTT.Broker
	}
	if override.MQTT.Topic != "" {
		out.MQTT.Topic = override.MQTT.Topic
	}
	if override.MQTT.Username != "" {
		out.MQTT.Username = override.MQTT.Username
	}
	if override.MQTT.Password != "" {
		out.MQTT.Password = override.MQTT.Password
	}
	if override.MQTT.QoS != 0 {
		out.MQTT.QoS = override.MQTT.QoS
	}

	return out
}

// ApplyFlags mutates cfg by applying values from CLI flags when they are
// present.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if flags.IP.Set {
		cfg.IP = flags.IP.Value
	}
	if flags.Rack.Set {
		cfg.Rack = flags.Rack.Value
	}
	if flags.Slot.Set {
		cfg.Slot = flags.Slot.Value
	}
	if flags.TimeoutMS.Set {
		cfg.TimeoutMS = flags.TimeoutMS.Value
	}
	if len(flags.Modules.Values) > 0 {
		cfg.Modules = append([]string{}, flags.Modules.Values...)
	}
	if len(flags.Tests.Values) > 0 {
		cfg.Tests = append([]string{}, flags.Tests.Values...)
	}
	if flags.Format.Set {
		cfg.Format = flags.Format.Value
	}
	if flags.ContinueOnFailure.Set {
		cfg.ContinueOnFailure = flags.ContinueOnFailure.Value
	}
	if flags.DryRun.Set {
		cfg.DryRun = flags.DryRun.Value
	}
	if flags.Verbose.Set {
		cfg.Verbose = flags.Verbose.Value
	}
	if flags.Publish.Set {
		cfg.MQTT.Broker = flags.Publish.Value
	}
}

// FlagValues captures CLI flag state with knowledge of whether each flag
// was set explicitly.
type FlagValues struct {
	IP                StringFlag
	Rack              IntFlag
	Slot              IntFlag
	TimeoutMS         IntFlag
	Modules           SliceFlag
	Tests             SliceFlag
	Format            StringFlag
	ContinueOnFailure BoolFlag
	DryRun            BoolFlag
	Verbose           BoolFlag
	Publish           StringFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// IntFlag represents an int flag and whether it was set.
type IntFlag struct {
	Value int
	Set   bool
}

// SliceFlag represents a slice flag and whether it captured values via CLI.
type SliceFlag struct {
	Values []string
}

// BoolFlag represents a bool flag and whether it was set.
type BoolFlag struct {
	Value bool
	Set   bool
}
