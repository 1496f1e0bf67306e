// Package manifest handles wsc.toml project configuration and the
// declaration files handed to the allocator.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/wsc/storage"
	"github.com/chazu/wsc/workshop"
)

// FileName is the name of the project configuration file.
const FileName = "wsc.toml"

// Config represents a wsc.toml project configuration.
type Config struct {
	Project Project       `toml:"project"`
	Target  Target        `toml:"target"`
	Reserve []Reservation `toml:"reserve"`

	// Dir is the directory containing the wsc.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name string `toml:"name"`
}

// Target holds the limits of the workshop version being compiled for.
// Zero values take the storage defaults.
type Target struct {
	PoolCapacity   int `toml:"pool-capacity"`
	MaxArrayLength int `toml:"max-array-length"`
	MaxNameLength  int `toml:"max-name-length"`
}

// Reservation keeps an id or a name out of allocation, for variables
// managed outside the compiler.
type Reservation struct {
	Class string `toml:"class"`
	ID    *int   `toml:"id"`
	Name  string `toml:"name"`
}

// Load parses the wsc.toml file in the given directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses a configuration file at an explicit path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	for i, r := range c.Reserve {
		if _, err := workshop.ParseClass(r.Class); err != nil {
			return nil, fmt.Errorf("%s: reserve %d: %w", path, i+1, err)
		}
		if r.ID == nil && r.Name == "" {
			return nil, fmt.Errorf("%s: reserve %d: needs an id or a name", path, i+1)
		}
	}

	return &c, nil
}

// FindAndLoad walks up from startDir to find a wsc.toml file, then loads
// and returns it. Returns nil if no configuration is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Limits returns the allocator limits for the target.
func (c *Config) Limits() storage.Limits {
	return storage.Limits{
		PoolCapacity:   c.Target.PoolCapacity,
		MaxArrayLength: c.Target.MaxArrayLength,
		MaxNameLength:  c.Target.MaxNameLength,
	}
}

// Apply registers the configured reservations with an allocator.
func (c *Config) Apply(a *storage.Allocator) error {
	var errs []error
	for _, r := range c.Reserve {
		class, err := workshop.ParseClass(r.Class)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if r.Name != "" {
			a.ReserveName(r.Name, class)
		}
		if r.ID != nil {
			if err := a.Reserve(*r.ID, class); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", FileName, err))
			}
		}
	}
	return errors.Join(errs...)
}
