package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/thenexthub/Codira-sub015/log"
)

// resolve returns a [kong.ConfigurationLoader] reading YAML configuration
// files such as the one written by the init command.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.yaml")
//
// Keys name flags. Underscores and hyphens are interchangeable, and nested
// mappings join their keys with a hyphen, so each of these sets --log-level:
//
//	log-level: debug
//	log_level: debug
//	log:
//	  level: debug
//
// Numbers are passed to kong as strings, sequences as lists of strings.
// A file that is not valid YAML is ignored with a warning. Command-line
// flags override configuration values.
func resolve(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		if err := yaml.NewDecoder(r).DecodeContext(ctx, &doc); err != nil && !errors.Is(err, io.EOF) {
			log.WarnContext(ctx, "ignoring invalid configuration file",
				slog.Any("error", err),
			)

			return config{}, nil
		}

		cfg := make(config, len(doc))
		cfg.flatten("", doc)

		return cfg, nil
	}
}

// config implements [kong.Resolver] over flattened YAML keys.
type config map[string]any

// flatten stores every leaf of m under its hyphen-joined, normalized key.
func (c config) flatten(prefix string, m map[string]any) {
	for key, value := range m {
		key = normalizeKey(key)
		if prefix != "" {
			key = prefix + "-" + key
		}

		if nested, ok := value.(map[string]any); ok {
			c.flatten(key, nested)

			continue
		}

		c[key] = flagValue(value)
	}
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.TrimSpace(key), "_", "-")
}

// flagValue converts a decoded YAML value to one kong can decode.
func flagValue(value any) any {
	switch v := value.(type) {
	case nil, bool, string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = fmt.Sprint(flagValue(item))
		}

		return items
	default:
		return fmt.Sprint(v)
	}
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	// Not found; kong uses the default.
	return nil, nil
}
