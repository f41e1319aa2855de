package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported config extension %q (want .yaml, .yml or .cue)", filepath.Ext(path))
	}
}

// Load reads a configuration file onto Default() and validates it.
func Load(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, format, path)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data onto Default() and validates the result. name is used
// in CUE positions.
func Parse(data []byte, format Format, name string) (Config, error) {
	cfg := Default()

	switch format {
	case FormatYAML:
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, err
		}
	case FormatCUE:
		if err := decodeCUE(data, name, &cfg); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("unknown config format %q", format)
	}

	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeYAML decodes with strict field checking.
func decodeYAML(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty file: defaults only.
			return nil
		}
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

// decodeCUE evaluates a CUE document. The document may be a bare struct or
// carry its settings under a top-level "sortviz" field.
func decodeCUE(data []byte, name string, cfg *Config) error {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return formatCUEError(err)
	}
	if nested := v.LookupPath(cue.ParsePath("sortviz")); nested.Exists() {
		v = nested
	}
	if err := v.Decode(cfg); err != nil {
		return formatCUEError(err)
	}
	return nil
}
