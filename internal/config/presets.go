package config

import (
	"sort"

	"github.com/san-kum/lorenz/internal/dynamo"
)

var Presets = map[string]func() *Config{
	// The reference experiment: 2500 frames.
	"classic": DefaultConfig,
	// Same run cut to ten seconds, for quick looks.
	"short": func() *Config {
		cfg := DefaultConfig()
		cfg.Horizon = dynamo.Horizon{Start: 0, End: 10, Dt: 0.02}
		return cfg
	},
	// Every fifth frame of the reference run.
	"sparse": func() *Config {
		cfg := DefaultConfig()
		cfg.Output.Every = 5
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
