package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/blueprint/internal/ctxlog"
)

const (
	// ProjectFile is looked up from the working directory upwards.
	ProjectFile = "blueprint.yaml"
	// EnvPrefix prefixes every environment override, e.g. BLUEPRINT_WORKERS.
	EnvPrefix = "BLUEPRINT"
)

// Load builds the settings. When file is empty the project file is searched
// for from dir upwards and a missing one is not an error; a file named
// explicitly must exist.
func Load(ctx context.Context, file, dir string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)
	settings := Default()

	if file == "" {
		file = FindProjectFile(dir)
	} else if _, err := os.Stat(file); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	if file != "" {
		if err := settings.mergeFile(file); err != nil {
			return nil, err
		}
		logger.Debug("Loaded project config.", "path", file)
	} else {
		logger.Debug("No project config found.", "dir", dir)
	}

	if err := envconfig.Process(EnvPrefix, settings); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// FindProjectFile returns the closest ProjectFile at or above dir, or "".
func FindProjectFile(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ProjectFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// mergeFile overlays the keys present in a YAML file. Unknown keys are an
// error so typos do not pass silently.
func (s *Settings) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, p := range s.Paths {
		if !filepath.IsAbs(p) {
			s.Paths[i] = filepath.Join(base, p)
		}
	}
	s.File = path
	return nil
}
