package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the project manifest looked up by `loft run` and
// `loft deps`.
const ManifestFileName = "package.yml"

// LibsDirName is the directory installed dependencies live in, relative to
// the project root.
const LibsDirName = ".lflibs"

// Manifest is the parsed contents of package.yml.
type Manifest struct {
	Path         string
	Name         string
	Version      string
	Entrypoint   string
	Features     []string
	Permissions  []string
	Dependencies map[string]*DependencySpec
}

// DependencySpec describes one dependency. Exactly one source (version, git,
// or path) must be set.
type DependencySpec struct {
	Version string
	Git     string
	Rev     string
	Tag     string
	Branch  string
	Path    string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

var ErrManifestNotFound = errors.New("manifest: " + ManifestFileName + " not found")

// LoadManifest parses package.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks from startDir toward the filesystem root looking for
// package.yml.
func FindManifest(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", startDir, err)
	}
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return LoadManifest(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrManifestNotFound
		}
		dir = parent
	}
}

// Dir returns the project root directory, the one holding the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// EntrypointPath resolves the entrypoint relative to the project root.
func (m *Manifest) EntrypointPath() string {
	return filepath.Join(m.Dir(), m.Entrypoint)
}

// LibsDir returns the installed-dependency directory for this project.
func (m *Manifest) LibsDir() string {
	return filepath.Join(m.Dir(), LibsDirName)
}

// ResolveDependencyDir locates an installed dependency by name, preferring a
// versioned directory (`name@version`) over a plain `name` directory.
func (m *Manifest) ResolveDependencyDir(name string) (string, bool) {
	libs := m.LibsDir()
	entries, err := os.ReadDir(libs)
	if err != nil {
		return "", false
	}
	plain := ""
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirName := entry.Name()
		if strings.HasPrefix(dirName, name+"@") {
			return filepath.Join(libs, dirName), true
		}
		if dirName == name {
			plain = filepath.Join(libs, dirName)
		}
	}
	if plain != "" {
		return plain, true
	}
	return "", false
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.Entrypoint == "" {
		errs.Issues = append(errs.Issues, "entrypoint must be provided")
	}
	if m.Version != "" && !isValidVersion(m.Version) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("invalid version %q", m.Version))
	}
	for _, perm := range m.Permissions {
		switch perm {
		case "read", "write", "net", "exec", "all":
		default:
			errs.Issues = append(errs.Issues, fmt.Sprintf("unknown permission %q", perm))
		}
	}

	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		dep := m.Dependencies[name]
		if dep == nil {
			continue
		}
		for _, issue := range dep.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: %s", name, issue))
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (d *DependencySpec) validate() []string {
	var errs []string
	sources := 0
	if d.Version != "" {
		sources++
	}
	if d.Git != "" {
		sources++
	}
	if d.Path != "" {
		sources++
	}
	if sources == 0 {
		errs = append(errs, "must specify version, git, or path")
	}
	if sources > 1 {
		errs = append(errs, "version, git, and path are mutually exclusive")
	}
	refs := 0
	if d.Rev != "" {
		refs++
	}
	if d.Tag != "" {
		refs++
	}
	if d.Branch != "" {
		refs++
	}
	if refs > 0 && d.Git == "" {
		errs = append(errs, "rev, tag, and branch apply only to git dependencies")
	}
	if refs > 1 {
		errs = append(errs, "rev, tag, and branch are mutually exclusive")
	}
	if d.Version != "" && !isValidVersion(d.Version) {
		errs = append(errs, fmt.Sprintf("invalid version %q", d.Version))
	}
	return errs
}

var versionPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+){0,2}([0-9A-Za-z\-\+\.]*)?$`)

func isValidVersion(input string) bool {
	s := strings.TrimSpace(input)
	if s == "*" {
		return true
	}
	return versionPattern.MatchString(s)
}

type manifestFile struct {
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	Entrypoint   string        `yaml:"entrypoint"`
	Features     []string      `yaml:"features"`
	Permissions  []string      `yaml:"permissions"`
	Dependencies dependencyMap `yaml:"dependencies"`
}

func (mf manifestFile) toManifest(path string) *Manifest {
	return &Manifest{
		Path:         path,
		Name:         strings.TrimSpace(mf.Name),
		Version:      strings.TrimSpace(mf.Version),
		Entrypoint:   strings.TrimSpace(mf.Entrypoint),
		Features:     cleanList(mf.Features),
		Permissions:  cleanList(mf.Permissions),
		Dependencies: map[string]*DependencySpec(mf.Dependencies),
	}
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

type dependencyMap map[string]*DependencySpec

// UnmarshalYAML accepts either the shorthand `name: "1.2.3"` or a mapping
// with git/path sources.
func (dm *dependencyMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		*dm = make(dependencyMap)
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: dependencies must be a mapping")
	}
	result := make(dependencyMap, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: dependency names must be non-empty")
		}
		var dep DependencySpec
		if err := dep.unmarshalYAML(valNode); err != nil {
			return fmt.Errorf("manifest: dependency %q: %w", key, err)
		}
		result[key] = &dep
	}
	*dm = result
	return nil
}

func (d *DependencySpec) unmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*d = DependencySpec{Version: strings.TrimSpace(value.Value)}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Version string `yaml:"version"`
			Git     string `yaml:"git"`
			Rev     string `yaml:"rev"`
			Tag     string `yaml:"tag"`
			Branch  string `yaml:"branch"`
			Path    string `yaml:"path"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*d = DependencySpec{
			Version: strings.TrimSpace(raw.Version),
			Git:     strings.TrimSpace(raw.Git),
			Rev:     strings.TrimSpace(raw.Rev),
			Tag:     strings.TrimSpace(raw.Tag),
			Branch:  strings.TrimSpace(raw.Branch),
			Path:    strings.TrimSpace(raw.Path),
		}
		return nil
	case yaml.AliasNode:
		return d.unmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected string or mapping, found %s", value.ShortTag())
	}
}
