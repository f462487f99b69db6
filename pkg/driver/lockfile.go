package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LockFileName is written next to package.yml by `loft deps install`.
const LockFileName = "package.lock"

// Lockfile pins each dependency to the exact source that was installed.
type Lockfile struct {
	Version int                   `yaml:"version"`
	Entries map[string]*LockedDep `yaml:"dependencies"`
}

// LockedDep records where a dependency came from and the revision installed.
type LockedDep struct {
	Version  string `yaml:"version,omitempty"`
	Git      string `yaml:"git,omitempty"`
	Revision string `yaml:"revision,omitempty"`
	Path     string `yaml:"path,omitempty"`
}

const lockfileVersion = 1

// NewLockfile returns an empty lockfile at the current format version.
func NewLockfile() *Lockfile {
	return &Lockfile{Version: lockfileVersion, Entries: make(map[string]*LockedDep)}
}

// LoadLockfile reads package.lock from the project root. A missing file is
// not an error; it yields an empty lockfile.
func LoadLockfile(projectDir string) (*Lockfile, error) {
	path := filepath.Join(projectDir, LockFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewLockfile(), nil
		}
		return nil, fmt.Errorf("lockfile: read %s: %w", path, err)
	}
	var lock Lockfile
	if err := yaml.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", path, err)
	}
	if lock.Entries == nil {
		lock.Entries = make(map[string]*LockedDep)
	}
	if lock.Version == 0 {
		lock.Version = lockfileVersion
	}
	return &lock, nil
}

// Save writes the lockfile to the project root. Map keys marshal in sorted
// order, so saves are deterministic.
func (l *Lockfile) Save(projectDir string) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("lockfile: encode: %w", err)
	}
	path := filepath.Join(projectDir, LockFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", path, err)
	}
	return nil
}
