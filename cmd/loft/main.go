package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"loft/interpreter-go/pkg/driver"
	"loft/interpreter-go/pkg/interpreter"
	"loft/interpreter-go/pkg/parser"
	"loft/interpreter-go/pkg/runtime"
)

const cliToolVersion = "loft 0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return runREPL()
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(args[1:])
	case "repl":
		return runREPL()
	case "deps":
		return runDeps(args[1:])
	default:
		return runEntry(args)
	}
}

// runEntry executes a script. With no argument the manifest's entrypoint
// runs; with a path argument the file runs directly, picking up a manifest
// from the file's directory when one exists.
func runEntry(args []string) int {
	var allowAll bool
	var features []string
	var paths []string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--allow-all":
			allowAll = true
		case args[i] == "--feature":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--feature requires a name")
				return 1
			}
			i++
			features = append(features, args[i])
		case strings.HasPrefix(args[i], "--feature="):
			features = append(features, strings.TrimPrefix(args[i], "--feature="))
		case strings.HasPrefix(args[i], "-"):
			fmt.Fprintf(os.Stderr, "unknown flag %q\n", args[i])
			return 1
		default:
			paths = append(paths, args[i])
		}
	}
	if len(paths) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(paths[1:], " "))
		return 1
	}

	var entry string
	var manifest *driver.Manifest
	if len(paths) == 1 {
		entry = paths[0]
		if abs, err := filepath.Abs(entry); err == nil {
			if m, err := driver.FindManifest(filepath.Dir(abs)); err == nil {
				manifest = m
			} else if !errors.Is(err, driver.ErrManifestNotFound) {
				fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
				return 1
			}
		}
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "resolve working directory: %v\n", err)
			return 1
		}
		m, err := driver.FindManifest(cwd)
		if err != nil {
			if errors.Is(err, driver.ErrManifestNotFound) {
				fmt.Fprintln(os.Stderr, "loft run requires a source file or a package.yml with an entrypoint")
			} else {
				fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
			}
			return 1
		}
		manifest = m
		entry = m.EntrypointPath()
	}

	return executeEntry(entry, manifest, features, allowAll)
}

func executeEntry(entry string, manifest *driver.Manifest, extraFeatures []string, allowAll bool) int {
	source, err := os.ReadFile(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", entry, err)
		return 1
	}

	features := extraFeatures
	if manifest != nil {
		features = append(append([]string(nil), manifest.Features...), extraFeatures...)
	}

	interp := interpreter.WithSource(entry, string(source)).WithFeatures(features)
	applyPermissions(interp.Permissions(), manifest, allowAll)
	interp.WithSearchPaths(collectSearchPaths(manifest))

	program, err := parser.Parse(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", entry, err)
		return 1
	}
	if _, err := interp.EvaluateProgram(program); err != nil {
		reportRuntimeError(err)
		return 1
	}
	return 0
}

// applyPermissions grants the capabilities listed in the manifest. Without a
// manifest only --allow-all can open host access.
func applyPermissions(perms *runtime.PermissionContext, manifest *driver.Manifest, allowAll bool) {
	if allowAll {
		perms.AllowAll()
		return
	}
	if manifest == nil {
		return
	}
	for _, name := range manifest.Permissions {
		switch name {
		case "all":
			perms.AllowAll()
		case "read":
			perms.Grant(runtime.CapabilityRead)
		case "write":
			perms.Grant(runtime.CapabilityWrite)
		case "net":
			perms.Grant(runtime.CapabilityNetwork)
		case "exec":
			perms.Grant(runtime.CapabilityExec)
		}
	}
}

// collectSearchPaths returns the roots bare imports resolve against: the
// project directory, then each installed dependency under .lflibs. Dependency
// roots prefer their src/ directory when present.
func collectSearchPaths(manifest *driver.Manifest) []string {
	if manifest == nil {
		return nil
	}
	paths := []string{manifest.Dir()}
	for name := range manifest.Dependencies {
		dir, ok := manifest.ResolveDependencyDir(name)
		if !ok {
			continue
		}
		if src := filepath.Join(dir, "src"); dirExists(src) {
			paths = append(paths, src)
			continue
		}
		paths = append(paths, dir)
	}
	return paths
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// reportRuntimeError renders a diagnostic. Errors carrying a source span get
// a line/column prefix plus a caret snippet.
func reportRuntimeError(err error) {
	var rerr *runtime.Error
	if !errors.As(err, &rerr) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if !rerr.HasSpan || rerr.Source == "" {
		if rerr.Path != "" {
			fmt.Fprintf(os.Stderr, "%s: error: %s\n", rerr.Path, rerr.Message)
		} else {
			fmt.Fprintf(os.Stderr, "error: %s\n", rerr.Message)
		}
		return
	}

	line, col, text := locateSpan(rerr.Source, rerr.Position)
	fmt.Fprintf(os.Stderr, "%s:%d:%d: error: %s\n", rerr.Path, line, col, rerr.Message)
	fmt.Fprintf(os.Stderr, "  %s\n", text)
	width := rerr.Length
	if width < 1 {
		width = 1
	}
	fmt.Fprintf(os.Stderr, "  %s%s\n", strings.Repeat(" ", col-1), strings.Repeat("^", width))
}

// locateSpan converts a byte offset into a 1-based line/column pair and
// returns the text of that line.
func locateSpan(source string, offset int) (int, int, string) {
	if offset > len(source) {
		offset = len(source)
	}
	line := 1
	lineStart := 0
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	lineEnd := len(source)
	if idx := strings.IndexByte(source[lineStart:], '\n'); idx >= 0 {
		lineEnd = lineStart + idx
	}
	return line, offset - lineStart + 1, source[lineStart:lineEnd]
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  loft                      start the REPL")
	fmt.Fprintln(os.Stderr, "  loft run [file.lf]        run a script, or the manifest entrypoint")
	fmt.Fprintln(os.Stderr, "  loft <file.lf>            shorthand for loft run")
	fmt.Fprintln(os.Stderr, "  loft deps install         install dependencies into .lflibs")
	fmt.Fprintln(os.Stderr, "  loft deps update [name]   refresh installed dependencies")
	fmt.Fprintln(os.Stderr, "  loft version              print the CLI version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags for run:")
	fmt.Fprintln(os.Stderr, "  --feature <name>          enable a feature gate")
	fmt.Fprintln(os.Stderr, "  --allow-all               grant every host capability")
}
