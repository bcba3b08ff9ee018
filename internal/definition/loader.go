package definition

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"hintbind/hint"
	"hintbind/internal/version"
	"hintbind/marker"
	"hintbind/primitive"
)

// Format is the encoding of a definition document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension; anything that is not
// .toml is read as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}

	return FormatYAML
}

// ErrUnsupportedVersion is returned for documents whose `requires`
// constraint the library version does not meet.
var ErrUnsupportedVersion = errors.New("unsupported library version")

// LoadFile loads and parses a definition file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file %s: %w", path, err)
	}

	f, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// Parse decodes a document, applies defaults and checks the version
// constraint.
func Parse(data []byte, format Format) (*File, error) {
	var f File

	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("failed to parse definition TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse definition YAML: %w", err)
		}
	}

	applyDefaults(&f)

	ok, err := version.Satisfies(f.Requires)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%w: document requires %q, library is %s",
			ErrUnsupportedVersion, f.Requires, version.Version)
	}

	return &f, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = "1"
	}

	for i := range f.Targets {
		t := &f.Targets[i]
		if t.Kind == "" {
			t.Kind = hint.KindModule.String()
		}

		for j := range t.Fields {
			fd := &t.Fields[j]
			if fd.Type == "" {
				fd.Type = primitive.KindAny.String()
			}

			if fd.Default != nil {
				fd.Optional = true
			}
		}
	}
}

// Marshal serializes a definition document.
func Marshal(f *File, format Format) ([]byte, error) {
	if format == FormatTOML {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(f); err != nil {
			return nil, err
		}

		return buf.Bytes(), nil
	}

	return yaml.Marshal(f)
}

// WriteFile writes a definition document, choosing the format from the
// extension.
func WriteFile(f *File, path string) error {
	data, err := Marshal(f, FormatOf(path))
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write definition file %s: %w", path, err)
	}

	return nil
}

var targetKinds = map[string]hint.TargetKind{
	"struct":   hint.KindStruct,
	"function": hint.KindFunction,
	"module":   hint.KindModule,
}

// Build builds the declared targets, resolving marker specs against
// registry (marker.Default() when nil). Errors of all fields are joined.
func (f *File) Build(registry *marker.Registry) ([]*hint.Target, error) {
	if registry == nil {
		registry = marker.Default()
	}

	var (
		targets []*hint.Target
		errs    []error
	)

	for _, td := range f.Targets {
		t, err := td.target(registry)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		targets = append(targets, t)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return targets, nil
}

func (td TargetDef) target(registry *marker.Registry) (*hint.Target, error) {
	kind, ok := targetKinds[td.Kind]
	if !ok {
		return nil, fmt.Errorf("target %q: unknown kind %q", td.Name, td.Kind)
	}

	var errs []error

	hints := make([]hint.Hint, 0, len(td.Fields))

	for _, fd := range td.Fields {
		h, err := fd.hint(registry)
		if err != nil {
			errs = append(errs, fmt.Errorf("target %q: field %q: %w", td.Name, fd.Name, err))
			continue
		}

		hints = append(hints, h)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return hint.NewTarget(td.Name, kind, hints...)
}

func (fd FieldDef) hint(registry *marker.Registry) (hint.Hint, error) {
	kind, ok := primitive.ParseKind(fd.Type)
	if !ok {
		return hint.Hint{}, fmt.Errorf("unknown type %q", fd.Type)
	}

	markers, err := registry.Parse(fd.Marks.Joined())
	if err != nil {
		return hint.Hint{}, err
	}

	meta := make([]any, len(markers))
	for i, m := range markers {
		meta[i] = m
	}

	h := hint.Declared(fd.Name, kind, meta...)
	h.Optional = fd.Optional

	if fd.Default != nil {
		h = h.WithDefault(fd.Default)
	}

	return h, nil
}

// Load reads every file and registers its targets into one registry
// source. ctx is checked between files.
func Load(ctx context.Context, registry *marker.Registry, paths ...string) (*hint.Registry, error) {
	source := hint.NewRegistry()

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f, err := LoadFile(path)
		if err != nil {
			return nil, err
		}

		targets, err := f.Build(registry)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		if err := source.Add(targets...); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	return source, nil
}
