package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ribgpx/internal/rib"
)

type Config struct {
	Convert ConvertConfig `yaml:"convert"`
	Diag    DiagConfig    `yaml:"diag"`
}

type ConvertConfig struct {
	// Mode is the device selector ("1", "2" or a mode name). Empty means
	// it must be given on the command line.
	Mode      string `yaml:"mode"`
	TrackName string `yaml:"track_name"`
	Creator   string `yaml:"creator"`
	// Timezone is the IANA zone per-record timestamps are read in.
	Timezone string `yaml:"timezone"`
	OutDir   string `yaml:"out_dir"`
}

type DiagConfig struct {
	Plot PlotConfig `yaml:"plot"`
	Dump DumpConfig `yaml:"dump"`
}

type PlotConfig struct {
	Enable  bool   `yaml:"enable"`
	Path    string `yaml:"path"`
	Window  int    `yaml:"window"`
	Offsets []int  `yaml:"offsets"`
}

type DumpConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	if err := cfg.finish(); err != nil {
		// Defaults are always valid.
		panic(err)
	}
	return cfg
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.finish(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// finish applies defaults and validates.
func (cfg *Config) finish() error {
	cfg.Convert.Mode = strings.TrimSpace(cfg.Convert.Mode)
	var mode rib.Mode
	if cfg.Convert.Mode != "" {
		m, err := rib.ParseMode(cfg.Convert.Mode)
		if err != nil {
			return fmt.Errorf("convert.mode must be 1 (snow2) or 2 (zeal-transcend)")
		}
		mode = m
	}
	if cfg.Convert.TrackName == "" {
		cfg.Convert.TrackName = "rib track"
	}
	if cfg.Convert.Creator == "" {
		cfg.Convert.Creator = "ribgpx"
	}
	if cfg.Convert.Timezone == "" {
		cfg.Convert.Timezone = "Local"
	}
	if _, err := cfg.Convert.Location(); err != nil {
		return fmt.Errorf("convert.timezone is invalid: %w", err)
	}

	if cfg.Diag.Plot.Window <= 0 {
		cfg.Diag.Plot.Window = 1000
	}
	if len(cfg.Diag.Plot.Offsets) == 0 {
		// Undocumented bytes; suspected altitude and descent counters.
		cfg.Diag.Plot.Offsets = []int{19, 20}
	}
	// Without a configured mode the largest record bounds the offsets; the
	// command line checks them again once the mode is known.
	size := 0
	for _, m := range []rib.Mode{rib.ModeSnow2, rib.ModeZealTranscend} {
		if mode != 0 && m != mode {
			continue
		}
		l, err := rib.LayoutFor(m)
		if err != nil {
			return err
		}
		size = max(size, l.Size())
	}
	for _, off := range cfg.Diag.Plot.Offsets {
		if off < 0 || off >= size {
			return fmt.Errorf("diag.plot.offsets must be within 0..%d (got %d)", size-1, off)
		}
	}
	return nil
}

// Location resolves Timezone. "Local" and "" are time.Local.
func (c ConvertConfig) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
