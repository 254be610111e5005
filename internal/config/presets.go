package config

import "sort"

// Presets are applied over DefaultConfig.
var Presets = map[string]func(*Config){
	"default": func(*Config) {},
	"short_pulse": func(c *Config) {
		c.Valve.OpenStart = 40
		c.Valve.OpenEnd = 50
	},
	"half_open": func(c *Config) {
		c.Valve.OpenValue = 50
	},
	"prefilled": func(c *Config) {
		c.InitialLevel = 10
	},
	"fine_grid": func(c *Config) {
		c.StepCount = 1000
		c.Valve.OpenStart = 210
		c.Valve.OpenEnd = 700
	},
}

func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
