// Package config merges caller configuration over the defaults and decodes
// the result into compiler options.
package config

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"

	"github.com/3-lines-studio/sassbuild/internal/compiler"
)

func Defaults() map[string]any {
	return map[string]any{
		"outputStyle":       "nested",
		"precision":         5,
		"includePaths":      []string{},
		"indentedSyntax":    false,
		"sourceMap":         false,
		"sourceMapEmbed":    false,
		"sourceMapContents": false,
		"sourceMapRoot":     "",
	}
}

// Merge layers each override over defaults; later maps win on key
// collisions. Nested maps are merged key by key. The inputs are not modified.
func Merge(defaults map[string]any, overrides ...map[string]any) (map[string]any, error) {
	merged := clone(defaults)
	for _, o := range overrides {
		if len(o) == 0 {
			continue
		}
		if err := mergo.Merge(&merged, clone(o), mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge configuration: %w", err)
		}
	}
	return merged, nil
}

func clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch x := v.(type) {
		case map[string]any:
			out[k] = clone(x)
		case []any:
			out[k] = slices.Clone(x)
		case []string:
			out[k] = slices.Clone(x)
		default:
			out[k] = v
		}
	}
	return out
}

// Decode converts a merged configuration into compiler options. It returns
// the keys that do not map onto any option, sorted.
func Decode(cfg map[string]any) (compiler.Options, []string, error) {
	var opts compiler.Options
	var md mapstructure.Metadata

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		Metadata:         &md,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return opts, nil, err
	}
	if err := decoder.Decode(cfg); err != nil {
		return opts, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	unused := slices.Clone(md.Unused)
	slices.Sort(unused)
	return opts, unused, nil
}

// LoadFile reads a YAML (or JSON) configuration file into a map.
func LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	var cfg map[string]any
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}
	if cfg == nil {
		cfg = make(map[string]any)
	}
	return cfg, nil
}

// Keys returns the configuration keys in sorted order.
func Keys(cfg map[string]any) []string {
	return slices.Sorted(maps.Keys(cfg))
}
