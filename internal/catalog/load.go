package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// ErrUnknownFormat is returned when a catalog file extension is neither
// .json nor .toml.
var ErrUnknownFormat = errors.New("unknown catalog format")

// Format identifies a catalog file encoding.
type Format string

// Supported catalog encodings.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// file is the on-disk shape shared by both encodings.
type file struct {
	Modules []Module `json:"modules" toml:"modules"`
}

var validate = validator.New()

// Parse decodes and validates a catalog document.
func Parse(data []byte, format Format) ([]Module, error) {
	var f file
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing catalog JSON: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing catalog TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	for i, m := range f.Modules {
		if err := validate.Struct(m); err != nil {
			name := m.ID
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("module %s: %w", name, err)
		}
	}
	return f.Modules, nil
}

// ReadFile reads and validates the modules in a catalog file without
// de-duplicating them.
func ReadFile(path string) ([]Module, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data, format)
}

// Load reads a catalog file into a Catalog.
func Load(path string) (*Catalog, error) {
	modules, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(modules), nil
}

// Encode writes modules in the requested encoding.
func Encode(modules []Module, format Format) ([]byte, error) {
	f := file{Modules: modules}
	switch format {
	case FormatJSON:
		return json.MarshalIndent(f, "", "  ")
	case FormatTOML:
		return toml.Marshal(f)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
