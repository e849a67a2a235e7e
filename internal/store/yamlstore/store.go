// Package yamlstore keeps draw state as one YAML file per category.
package yamlstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/bolillero/internal/draw"
	"github.com/xtding233/bolillero/internal/store"
)

const categoriesFile = "categories.yaml"

// Store reads and writes <dir>/<key>.yaml and <dir>/categories.yaml.
type Store struct {
	dir string
}

var _ store.Store = (*Store)(nil)

type categoriesDoc struct {
	Categories []store.CategoryDefinition `yaml:"categories"`
}

// Open creates dir if needed.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) statePath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid category key %q", key)
	}
	if key+".yaml" == categoriesFile {
		return "", fmt.Errorf("category key %q is reserved", key)
	}
	return filepath.Join(s.dir, key+".yaml"), nil
}

func (s *Store) LoadDrawState(ctx context.Context, key string) (draw.Config, error) {
	if err := ctx.Err(); err != nil {
		return draw.Config{}, err
	}
	path, err := s.statePath(key)
	if err != nil {
		return draw.Config{}, err
	}
	var cfg draw.Config
	if err := readYAML(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return draw.Config{}, store.ErrNotFound
		}
		return draw.Config{}, err
	}
	if cfg.Key == "" {
		cfg.Key = key
	}
	return cfg, nil
}

func (s *Store) SaveDrawState(ctx context.Context, cfg draw.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.statePath(cfg.Key)
	if err != nil {
		return err
	}
	return writeYAML(path, cfg)
}

// LoadCategoryDefinitions returns nil, nil when no categories file exists.
func (s *Store) LoadCategoryDefinitions(ctx context.Context) ([]store.CategoryDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var doc categoriesDoc
	if err := readYAML(filepath.Join(s.dir, categoriesFile), &doc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return doc.Categories, nil
}

// SaveCategoryDefinitions replaces the categories file.
func (s *Store) SaveCategoryDefinitions(ctx context.Context, defs []store.CategoryDefinition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeYAML(filepath.Join(s.dir, categoriesFile), categoriesDoc{Categories: defs})
}

func readYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// writeYAML replaces path atomically: readers see the old or the new file, never a partial one.
func writeYAML(path string, v any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
