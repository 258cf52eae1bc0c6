package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gorewood/meme/internal/compose"
	"github.com/gorewood/meme/internal/gallery"
)

// Config is the parsed configuration file.
type Config struct {
	Templates []gallery.Entry `yaml:"templates"`
	Style     compose.Style   `yaml:"-"`
}

// styleFile is the flat on-disk form of the caption colors. Unset keys keep
// the defaults.
type styleFile struct {
	TopFill      *compose.RGB `yaml:"top_fill"`
	TopStroke    *compose.RGB `yaml:"top_stroke"`
	BottomFill   *compose.RGB `yaml:"bottom_fill"`
	BottomStroke *compose.RGB `yaml:"bottom_stroke"`
}

type file struct {
	Templates []gallery.Entry `yaml:"templates"`
	Style     styleFile       `yaml:"style"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Templates: gallery.Defaults(),
		Style:     compose.DefaultStyle(),
	}
}

// Load reads the YAML config at path. A missing file yields Default; a file
// that does not parse, or names a bad color, is an error. An absent or empty
// templates list keeps the stock presets.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i, e := range f.Templates {
		if e.Path == "" {
			return cfg, fmt.Errorf("parsing %s: template %d has no path", path, i+1)
		}
	}
	if len(f.Templates) > 0 {
		cfg.Templates = f.Templates
	}

	overrides := []struct {
		value *compose.RGB
		slot  compose.Slot
		part  compose.Part
	}{
		{f.Style.TopFill, compose.Top, compose.Fill},
		{f.Style.TopStroke, compose.Top, compose.Stroke},
		{f.Style.BottomFill, compose.Bottom, compose.Fill},
		{f.Style.BottomStroke, compose.Bottom, compose.Stroke},
	}
	for _, o := range overrides {
		if o.value != nil {
			cfg.Style = cfg.Style.Set(o.slot, o.part, *o.value)
		}
	}
	return cfg, nil
}
