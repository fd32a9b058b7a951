package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/thenexthub/Codira-sub015/log"
)

// DeclareKey is the reserved top-level settings key mapping macro names to
// kind names.
const DeclareKey = "$declare"

// globalCache stores decoded settings documents keyed by source hash.
var globalCache sync.Map

// state tracks decoding of one cached source.
type state struct {
	once     sync.Once
	settings *Settings
	err      error
}

// Option configures settings reads.
type Option func(*options)

type options struct {
	logger log.Logger
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func applyOptions(opts ...Option) options {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Settings is a decoded settings document. Documents are shared through the
// read cache and must not be modified.
type Settings struct {
	// Declarations maps macro names to the kinds named under DeclareKey.
	Declarations map[string]Kind
	// Values maps settings keys to a string or a []string.
	Values map[string]any
}

// Declare declares every macro named in the document's declarations.
func (s *Settings) Declare(ns *Namespace) error {
	for _, name := range sortedKeys(s.Declarations) {
		if _, err := ns.Declare(s.Declarations[name], name); err != nil {
			return err
		}
	}

	return nil
}

// Table declares the document's macros in ns and parses its values.
func (s *Settings) Table(ns *Namespace, opts ...TableOption) (*Table, error) {
	if err := s.Declare(ns); err != nil {
		return nil, err
	}

	return ns.ParseTable(s.Values, opts...)
}

// ReadSettings reads a YAML or JSON settings document from r. Each value
// must be a string, a number, a boolean (rendered YES or NO), null (the
// empty string) or a sequence of such scalars. Documents are cached by the
// hash of their content.
func ReadSettings(ctx context.Context, r io.Reader, opts ...Option) (*Settings, error) {
	o := applyOptions(opts...)

	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	o.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return decodeSettingsCached(ctx, data, o)
}

func decodeSettingsCached(ctx context.Context, data []byte, o options) (*Settings, error) {
	sourceHash := xxh3.Hash(data)
	sourceKey := strconv.FormatUint(sourceHash, 36)

	value, cacheHit := globalCache.LoadOrStore(sourceKey, new(state))
	entry := value.(*state)

	o.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.Bool("cache_hit", cacheHit),
	)

	entry.once.Do(func() {
		entry.settings, entry.err = decodeSettings(data)
		if entry.err != nil {
			entry.err = WrapError(entry.err).With(slog.Int("source_length", len(data)))
		}
	})

	return entry.settings, entry.err
}

// ClearCache removes all cached settings documents.
func ClearCache() {
	globalCache.Clear()
}

func decodeSettings(data []byte) (*Settings, error) {
	var doc map[string]any

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ErrSettingsFormat.Wrap(err)
	}

	s := &Settings{
		Declarations: map[string]Kind{},
		Values:       make(map[string]any, len(doc)),
	}

	for key, raw := range doc {
		if key == DeclareKey {
			if err := s.decodeDeclarations(raw); err != nil {
				return nil, err
			}

			continue
		}

		v, ok := settingValue(raw)
		if !ok {
			return nil, ErrInconsistentDefinition.With(
				slog.String("key", key),
				slog.String("value_type", resultTypeName(raw)),
			)
		}

		s.Values[key] = v
	}

	return s, nil
}

func (s *Settings) decodeDeclarations(raw any) error {
	decls, ok := raw.(map[string]any)
	if !ok {
		return ErrSettingsFormat.With(
			slog.String("key", DeclareKey),
			slog.String("value_type", resultTypeName(raw)),
		)
	}

	for name, kindName := range decls {
		str, ok := kindName.(string)
		if !ok {
			return ErrUnknownKind.With(slog.String("name", name))
		}

		kind, err := ParseKind(str)
		if err != nil {
			return err
		}

		s.Declarations[name] = kind
	}

	return nil
}

// settingValue converts a decoded YAML value to a string or []string.
func settingValue(raw any) (any, bool) {
	if items, ok := raw.([]any); ok {
		out := make([]string, len(items))

		for i, item := range items {
			str, ok := scalarString(item)
			if !ok {
				return nil, false
			}

			out[i] = str
		}

		return out, true
	}

	return scalarString(raw)
}

func scalarString(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case bool:
		return FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	default:
		return "", false
	}
}
