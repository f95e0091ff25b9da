package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/tdl/log"
)

// loadConfig returns a [kong.ConfigurationLoader] that reads flag values from
// the mapping named name in a YAML config file.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(loadConfig(ctx, "config"), "/path/to/config.yaml")
//
// The YAML structure is converted as follows:
//   - The top-level mapping name holds the flag values
//   - Nested mappings join their keys with a hyphen, so log: {level: x}
//     sets --log-level
//   - Numbers are passed to kong as strings
//   - Sequences of scalars become comma-separated lists
//
// A file that cannot be parsed is logged and ignored.
func loadConfig(ctx context.Context, name string) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		buf, err := io.ReadAll(r)
		if err != nil {
			log.WarnContext(ctx, "config unreadable", slog.Any("error", err))

			return config{}, nil
		}

		var doc map[string]any

		if err := yaml.UnmarshalContext(ctx, buf, &doc); err != nil {
			log.WarnContext(ctx, "config ignored", slog.Any("error", err))

			return config{}, nil
		}

		section, ok := doc[name].(map[string]any)
		if !ok {
			return config{}, nil
		}

		cfg := make(config)
		cfg.flatten("", section)

		return cfg, nil
	}
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flags use hyphens (e.g., "log-level") but YAML keys commonly use
	// underscores. Try both forms.
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

// flatten stores the leaves of m in r under hyphen-joined keys.
func (r config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "-" + k
		}

		if sub, ok := v.(map[string]any); ok {
			r.flatten(key, sub)

			continue
		}

		r[key] = scalar(v)
	}
}

// scalar converts a decoded YAML value into a form kong can map onto a flag.
func scalar(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(v))
		for _, e := range v {
			parts = append(parts, fmt.Sprint(scalar(e)))
		}

		return strings.Join(parts, ",")
	default:
		return v
	}
}
