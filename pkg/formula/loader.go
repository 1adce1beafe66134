package formula

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrNoPaths = errors.New("at least one formula path is required")

// Config configures where formula set files are loaded from.
type Config struct {
	// Paths are files or directories to scan for set files.
	Paths []string `yaml:"paths" default:"[\"formulas\"]"`
}

// Validate checks the config.
func (c *Config) Validate() error {
	if len(c.Paths) == 0 {
		return ErrNoPaths
	}
	return nil
}

// SetFile is one YAML formula set on disk.
type SetFile struct {
	Set      string     `yaml:"set"`
	Formulas []*Formula `yaml:"formulas"`
}

// Discover walks the configured paths and returns every YAML set file in
// sorted order. A path may be a single file or a directory tree.
func Discover(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(p))
			if ext == ".yaml" || ext == ".yml" {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadFile reads and decodes one set file.
func LoadFile(path string) (*SetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var set SetFile
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &set, nil
}

// Load discovers set files under the configured paths and builds a store
// from every formula they declare. Later files override earlier keys.
func Load(cfg *Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	files, err := Discover(cfg.Paths)
	if err != nil {
		return nil, err
	}

	store := NewStore()
	for _, file := range files {
		set, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		for _, f := range set.Formulas {
			if err := store.Add(f); err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
		}
	}
	return store, nil
}
