package interpreter

import (
	"os"
	"path/filepath"
	"strings"

	"loft/interpreter-go/pkg/ast"
	"loft/interpreter-go/pkg/parser"
	"loft/interpreter-go/pkg/runtime"
)

const sourceExt = ".lf"

// evaluateImport resolves, loads, and binds a module. The exports of a path
// are cached on the root evaluator; repeated imports of the same path reuse
// the cache and never re-execute the module.
func (i *Interpreter) evaluateImport(s *ast.ImportDeclaration) (runtime.Value, error) {
	if len(s.Path) == 0 {
		return nil, i.error("import path is empty")
	}
	moduleID := strings.Join(s.Path, "/")
	if exports, ok := i.moduleCache[moduleID]; ok {
		i.env.Set(moduleName(s.Path), &runtime.ModuleValue{Name: moduleName(s.Path), Exports: exports})
		return runtime.UnitValue{}, nil
	}

	filePath, err := i.resolveModulePath(s.Path)
	if err != nil {
		return nil, err
	}
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, i.error("cannot read module '%s': %v", moduleID, err)
	}
	program, err := parser.Parse(string(source))
	if err != nil {
		return nil, i.error("cannot parse module '%s': %v", moduleID, err)
	}

	// The module runs in an isolated child evaluator that inherits only the
	// enabled feature set. Its cache is shared so diamond imports load once.
	child := newInterpreter(filePath, string(source), i.featureList())
	child.moduleCache = i.moduleCache
	child.searchPaths = i.searchPaths
	if _, err := child.EvaluateProgram(program); err != nil {
		return nil, err
	}

	i.moduleCache[moduleID] = child.exports
	name := moduleName(s.Path)
	i.env.Set(name, &runtime.ModuleValue{Name: name, Exports: child.exports})
	return runtime.UnitValue{}, nil
}

// resolveModulePath turns an import path into a file path. Relative imports
// resolve against the importing file's directory, trying `<p>.lf` then
// `<p>/mod.lf`; bare names resolve against the working directory.
func (i *Interpreter) resolveModulePath(path []string) (string, error) {
	joined := filepath.Join(path...)
	if strings.HasPrefix(path[0], ".") {
		base := "."
		if i.sourcePath != "" {
			base = filepath.Dir(i.sourcePath)
		}
		direct := filepath.Join(base, joined+sourceExt)
		if fileExists(direct) {
			return direct, nil
		}
		nested := filepath.Join(base, joined, "mod"+sourceExt)
		if fileExists(nested) {
			return nested, nil
		}
		return "", i.error("module '%s' not found (tried '%s' and '%s')",
			strings.Join(path, "/"), direct, nested)
	}
	tried := make([]string, 0, 2+2*len(i.searchPaths))
	direct := joined + sourceExt
	if fileExists(direct) {
		return direct, nil
	}
	tried = append(tried, direct)
	nested := filepath.Join(joined, "mod"+sourceExt)
	if fileExists(nested) {
		return nested, nil
	}
	tried = append(tried, nested)
	for _, root := range i.searchPaths {
		candidate := filepath.Join(root, joined+sourceExt)
		if fileExists(candidate) {
			return candidate, nil
		}
		tried = append(tried, candidate)
		candidate = filepath.Join(root, joined, "mod"+sourceExt)
		if fileExists(candidate) {
			return candidate, nil
		}
		tried = append(tried, candidate)
	}
	return "", i.error("module '%s' not found (tried %s)",
		strings.Join(path, "/"), strings.Join(tried, ", "))
}

func moduleName(path []string) string {
	return strings.TrimLeft(path[len(path)-1], "./")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
