package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
name: demo
version: 1.2.3
entrypoint: src/main.lf
features:
  - fs
permissions:
  - read
  - net
dependencies:
  strutil: "0.3.1"
  vendored:
    path: ../vendored
  upstream:
    git: https://example.com/upstream.git
    tag: v2.0.0
`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Name != "demo" || m.Version != "1.2.3" {
		t.Fatalf("manifest = %#v", m)
	}
	if m.EntrypointPath() != filepath.Join(dir, "src/main.lf") {
		t.Fatalf("entrypoint = %s", m.EntrypointPath())
	}
	if len(m.Features) != 1 || m.Features[0] != "fs" {
		t.Fatalf("features = %v", m.Features)
	}
	if m.Dependencies["strutil"].Version != "0.3.1" {
		t.Fatalf("shorthand dependency = %#v", m.Dependencies["strutil"])
	}
	if m.Dependencies["vendored"].Path != "../vendored" {
		t.Fatalf("path dependency = %#v", m.Dependencies["vendored"])
	}
	up := m.Dependencies["upstream"]
	if up.Git != "https://example.com/upstream.git" || up.Tag != "v2.0.0" {
		t.Fatalf("git dependency = %#v", up)
	}
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
name: demo
entrypoint: main.lf
entry_point: oops.lf
`)
	if _, err := LoadManifest(path); err == nil {
		t.Fatalf("unknown field accepted")
	}
}

func TestManifestValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "missing name and entrypoint",
			content: "version: 1.0.0\n",
			want:    "name must be provided",
		},
		{
			name: "bad permission",
			content: `
name: demo
entrypoint: main.lf
permissions:
  - sudo
`,
			want: `unknown permission "sudo"`,
		},
		{
			name: "bad version",
			content: `
name: demo
version: not-a-version
entrypoint: main.lf
`,
			want: `invalid version "not-a-version"`,
		},
		{
			name: "dependency without source",
			content: `
name: demo
entrypoint: main.lf
dependencies:
  ghost: {}
`,
			want: "dependencies.ghost: must specify version, git, or path",
		},
		{
			name: "dependency with two sources",
			content: `
name: demo
entrypoint: main.lf
dependencies:
  both:
    version: 1.0.0
    path: ../both
`,
			want: "version, git, and path are mutually exclusive",
		},
		{
			name: "ref without git",
			content: `
name: demo
entrypoint: main.lf
dependencies:
  pinned:
    version: 1.0.0
    tag: v1
`,
			want: "rev, tag, and branch apply only to git dependencies",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tc.content)
			_, err := LoadManifest(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want %q", err, tc.want)
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
		})
	}
}

func TestVersionPattern(t *testing.T) {
	valid := []string{"1", "1.2", "1.2.3", "0.1.0-beta.2", "*"}
	for _, v := range valid {
		if !isValidVersion(v) {
			t.Fatalf("isValidVersion(%q) = false", v)
		}
	}
	invalid := []string{"abc", "v1.2.3", ""}
	for _, v := range invalid {
		if isValidVersion(v) {
			t.Fatalf("isValidVersion(%q) = true", v)
		}
	}
}

func TestFindManifestWalksParents(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "name: demo\nentrypoint: main.lf\n")
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m, err := FindManifest(nested)
	if err != nil {
		t.Fatalf("FindManifest: %v", err)
	}
	if m.Dir() != root {
		t.Fatalf("manifest dir = %s, want %s", m.Dir(), root)
	}
}

func TestFindManifestNotFound(t *testing.T) {
	_, err := FindManifest(t.TempDir())
	if !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("error = %v, want ErrManifestNotFound", err)
	}
}

func TestResolveDependencyDirPrefersVersioned(t *testing.T) {
	root := t.TempDir()
	path := writeManifest(t, root, "name: demo\nentrypoint: main.lf\n")
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}

	libs := m.LibsDir()
	for _, name := range []string{"strutil", "strutil@0.3.1", "plainlib"} {
		if err := os.MkdirAll(filepath.Join(libs, name), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	dir, ok := m.ResolveDependencyDir("strutil")
	if !ok || dir != filepath.Join(libs, "strutil@0.3.1") {
		t.Fatalf("ResolveDependencyDir(strutil) = %q, %v", dir, ok)
	}
	dir, ok = m.ResolveDependencyDir("plainlib")
	if !ok || dir != filepath.Join(libs, "plainlib") {
		t.Fatalf("ResolveDependencyDir(plainlib) = %q, %v", dir, ok)
	}
	if _, ok := m.ResolveDependencyDir("missing"); ok {
		t.Fatalf("ResolveDependencyDir(missing) found something")
	}
}
