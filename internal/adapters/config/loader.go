// Package config loads protanno.yaml and applies environment overrides.
package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PROTANNO_"

// Loader implements ports.ConfigLoader. Precedence from low to high is the
// built-in defaults, the YAML file and the environment.
type Loader struct {
	// Environ replaces the process environment when set.
	Environ map[string]string
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a Loader reading the process environment.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the file at path, overlays the environment and validates the result.
// A missing file yields the defaults. Unknown keys are rejected.
func (l *Loader) Load(path string) (domain.Settings, error) {
	file := fromSettings(domain.DefaultSettings())

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return domain.Settings{}, classify(zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path))
		default:
			if err := decode(data, &file); err != nil {
				return domain.Settings{}, classify(zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path))
			}
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if l.Environ != nil {
		opts.Environment = l.Environ
	}
	if err := env.ParseWithOptions(&file, opts); err != nil {
		return domain.Settings{}, classify(zerr.Wrap(err, domain.ErrEnvParseFailed.Error()))
	}

	settings := file.settings()
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

func decode(data []byte, file *File) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(file)
}

func classify(err error) error {
	return domain.Classify(domain.KindConfiguration, err)
}
