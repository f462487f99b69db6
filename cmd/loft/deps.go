package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"loft/interpreter-go/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "loft deps requires a subcommand (install, update)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "loft deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall(nil, false)
	case "update":
		return runDepsInstall(args[1:], true)
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

// runDepsInstall installs the manifest's dependencies into .lflibs and
// records what it did in package.lock. In update mode, locked revisions are
// refetched; target names restrict the refresh to those dependencies.
func runDepsInstall(targets []string, update bool) int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve working directory: %v\n", err)
		return 1
	}
	manifest, err := driver.FindManifest(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to locate %s: %v\n", driver.ManifestFileName, err)
		return 1
	}

	lock, err := driver.LoadLockfile(manifest.Dir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	refreshSet := make(map[string]struct{}, len(targets))
	for _, name := range targets {
		if _, ok := manifest.Dependencies[name]; !ok {
			fmt.Fprintf(os.Stderr, "dependency %q not declared in manifest\n", name)
			return 1
		}
		refreshSet[name] = struct{}{}
	}

	installer := &dependencyInstaller{
		manifest:   manifest,
		lock:       lock,
		refresh:    refreshSet,
		refreshAll: update && len(targets) == 0,
	}
	if err := installer.Install(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}
	for _, line := range installer.logs {
		fmt.Fprintln(os.Stdout, line)
	}

	if installer.changed {
		if err := lock.Save(manifest.Dir()); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "Updated %s\n", driver.LockFileName)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date\n", driver.LockFileName)
	}
	return 0
}

type dependencyInstaller struct {
	manifest   *driver.Manifest
	lock       *driver.Lockfile
	refresh    map[string]struct{}
	refreshAll bool
	logs       []string
	changed    bool
}

func (d *dependencyInstaller) Install() error {
	names := make([]string, 0, len(d.manifest.Dependencies))
	for name := range d.manifest.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := d.manifest.Dependencies[name]
		if spec == nil {
			return fmt.Errorf("dependency %q has no descriptor", name)
		}
		_, targeted := d.refresh[name]
		entry, err := d.installDependency(name, spec, d.refreshAll || targeted)
		if err != nil {
			return err
		}
		if existing, ok := d.lock.Entries[name]; !ok || *existing != *entry {
			d.changed = true
		}
		d.lock.Entries[name] = entry
	}

	// Drop lock entries for dependencies no longer in the manifest.
	for name := range d.lock.Entries {
		if _, ok := d.manifest.Dependencies[name]; !ok {
			delete(d.lock.Entries, name)
			d.changed = true
		}
	}
	return nil
}

func (d *dependencyInstaller) installDependency(name string, spec *driver.DependencySpec, forced bool) (*driver.LockedDep, error) {
	switch {
	case spec.Path != "":
		return d.installPathDependency(name, spec)
	case spec.Git != "":
		return d.installGitDependency(name, spec, forced)
	case spec.Version != "":
		return d.installRegistryDependency(name, spec)
	default:
		return nil, fmt.Errorf("dependency %q: unsupported descriptor", name)
	}
}

// installPathDependency copies a local directory into .lflibs/<name>.
func (d *dependencyInstaller) installPathDependency(name string, spec *driver.DependencySpec) (*driver.LockedDep, error) {
	src := spec.Path
	if !filepath.IsAbs(src) {
		src = filepath.Join(d.manifest.Dir(), src)
	}
	abs, err := filepath.Abs(src)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: resolve path %q: %w", name, spec.Path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: stat %s: %w", name, abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dependency %q: expected directory at %s", name, abs)
	}

	target := filepath.Join(d.manifest.LibsDir(), name)
	if err := copyOrSyncDir(abs, target); err != nil {
		return nil, fmt.Errorf("dependency %q: copy %s: %w", name, abs, err)
	}
	d.logs = append(d.logs, fmt.Sprintf("linked %s (%s)", name, abs))
	return &driver.LockedDep{Path: abs}, nil
}

// installGitDependency clones the repository and checks out the requested
// revision under .lflibs/<name>@<version>.
func (d *dependencyInstaller) installGitDependency(name string, spec *driver.DependencySpec, forced bool) (*driver.LockedDep, error) {
	url := strings.TrimSpace(spec.Git)
	revision, descriptor := gitRevisionFromSpec(spec)

	// A lock entry pinned to an existing checkout is reused unless the
	// caller asked for a refresh.
	if !forced {
		if locked, ok := d.lock.Entries[name]; ok && locked.Git == url && locked.Revision != "" {
			dir := filepath.Join(d.manifest.LibsDir(), name+"@"+sanitizePathSegment(locked.Version))
			if dirExists(dir) {
				d.logs = append(d.logs, fmt.Sprintf("using %s %s (locked)", name, locked.Version))
				return locked, nil
			}
		}
	}

	if err := os.MkdirAll(d.manifest.LibsDir(), 0o755); err != nil {
		return nil, err
	}
	tmpDir, err := os.MkdirTemp(d.manifest.LibsDir(), "git-fetch-*")
	if err != nil {
		return nil, err
	}
	// PlainClone wants the directory to not exist yet.
	if err := os.RemoveAll(tmpDir); err != nil {
		return nil, err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{
		URL:               url,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("git checkout %s: %w", revision, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	target := filepath.Join(d.manifest.LibsDir(), name+"@"+sanitizePathSegment(version))
	if err := os.RemoveAll(target); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, err
	}
	if err := os.Rename(tmpDir, target); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, err
	}

	d.logs = append(d.logs, fmt.Sprintf("fetched %s %s from %s", name, version, url))
	return &driver.LockedDep{Version: version, Git: url, Revision: hash.String()}, nil
}

// installRegistryDependency copies a versioned package from the local
// registry directory (LOFT_REGISTRY or ~/.loft/registry) into .lflibs.
func (d *dependencyInstaller) installRegistryDependency(name string, spec *driver.DependencySpec) (*driver.LockedDep, error) {
	registryDir := strings.TrimSpace(os.Getenv("LOFT_REGISTRY"))
	if registryDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("dependency %q: resolve user home: %w", name, err)
		}
		registryDir = filepath.Join(home, ".loft", "registry")
	}

	src := filepath.Join(registryDir, name, spec.Version)
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %s@%s not found in %s: %w", name, name, spec.Version, registryDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dependency %q: expected directory at %s", name, src)
	}

	target := filepath.Join(d.manifest.LibsDir(), name+"@"+sanitizePathSegment(spec.Version))
	if err := copyOrSyncDir(src, target); err != nil {
		return nil, fmt.Errorf("dependency %q: copy %s: %w", name, src, err)
	}
	d.logs = append(d.logs, fmt.Sprintf("installed %s %s", name, spec.Version))
	return &driver.LockedDep{Version: spec.Version}, nil
}

// gitRevisionFromSpec picks the revision to resolve. Manifest validation
// guarantees at most one of rev/tag/branch; none means HEAD.
func gitRevisionFromSpec(spec *driver.DependencySpec) (plumbing.Revision, string) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/heads/" + branch), branch
	}
	return plumbing.Revision("HEAD"), ""
}

func gitPinnedVersion(descriptor, commit string) string {
	if descriptor == "" {
		if len(commit) > 12 {
			return commit[:12]
		}
		return commit
	}
	return descriptor
}

// copyOrSyncDir mirrors src into dst, removing files that no longer exist in
// the source.
func copyOrSyncDir(src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	if dstEntries, err := os.ReadDir(dst); err == nil {
		for _, entry := range dstEntries {
			stale := true
			for _, srcEntry := range entries {
				if srcEntry.Name() == entry.Name() {
					stale = false
					break
				}
			}
			if stale {
				if err := os.RemoveAll(filepath.Join(dst, entry.Name())); err != nil {
					return err
				}
			}
		}
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := copyOrSyncDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		data, err := os.ReadFile(srcPath)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dstPath, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "head"
	}
	return b.String()
}
