package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadLockfileMissingFile(t *testing.T) {
	lock, err := LoadLockfile(t.TempDir())
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if lock.Version != lockfileVersion || len(lock.Entries) != 0 {
		t.Fatalf("empty lockfile = %#v", lock)
	}
}

func TestLockfileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lock := NewLockfile()
	lock.Entries["strutil"] = &LockedDep{Version: "0.3.1"}
	lock.Entries["upstream"] = &LockedDep{
		Version:  "v2.0.0",
		Git:      "https://example.com/upstream.git",
		Revision: "0123456789abcdef0123456789abcdef01234567",
	}
	lock.Entries["vendored"] = &LockedDep{Path: "/abs/vendored"}

	if err := lock.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadLockfile(dir)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if loaded.Version != lockfileVersion {
		t.Fatalf("version = %d, want %d", loaded.Version, lockfileVersion)
	}
	if len(loaded.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(loaded.Entries))
	}
	if *loaded.Entries["strutil"] != (LockedDep{Version: "0.3.1"}) {
		t.Fatalf("strutil = %#v", loaded.Entries["strutil"])
	}
	up := loaded.Entries["upstream"]
	if up.Git != "https://example.com/upstream.git" || up.Revision == "" {
		t.Fatalf("upstream = %#v", up)
	}
	if loaded.Entries["vendored"].Path != "/abs/vendored" {
		t.Fatalf("vendored = %#v", loaded.Entries["vendored"])
	}
}

func TestLockfileSaveOmitsEmptyFields(t *testing.T) {
	dir := t.TempDir()
	lock := NewLockfile()
	lock.Entries["strutil"] = &LockedDep{Version: "0.3.1"}
	if err := lock.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, LockFileName))
	if err != nil {
		t.Fatalf("read lockfile: %v", err)
	}
	text := string(data)
	for _, field := range []string{"git:", "revision:", "path:"} {
		if strings.Contains(text, field) {
			t.Fatalf("lockfile contains empty field %q:\n%s", field, text)
		}
	}
}
