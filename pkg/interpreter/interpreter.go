package interpreter

import (
	"fmt"

	"loft/interpreter-go/pkg/ast"
	"loft/interpreter-go/pkg/runtime"
)

// Interpreter drives evaluation of Loft AST nodes. One instance owns one
// environment stack plus the trait, impl, and enum registries; module imports
// run in isolated child instances.
type Interpreter struct {
	env        *runtime.Environment
	sourcePath string
	sourceCode string

	// traits: trait name -> ordered method signatures.
	traits map[string][]*ast.TraitMethod
	// implMethods: type name -> method name -> registered body.
	implMethods map[string]map[string]*implMethod
	// enums: enum name -> declared variants, in source order.
	enums map[string][]*ast.EnumVariantDecl

	// moduleCache is shared down the import tree from the root evaluator.
	moduleCache map[string]map[string]runtime.Value
	exports     map[string]runtime.Value
	features    map[string]struct{}
	// searchPaths are extra roots bare import names resolve against,
	// typically the project root and installed dependency directories.
	searchPaths []string

	random      *runtime.RandomSource
	permissions *runtime.PermissionContext

	// taskQueue holds spawned promises still pending; whatever the program
	// never awaited is settled when it finishes.
	taskQueue []*runtime.PromiseValue
}

// implMethod is one registered impl-block method.
type implMethod struct {
	Params     []*ast.Parameter
	ReturnType ast.TypeExpression
	Body       ast.Statement
	TraitName  string // empty for inherent methods
	IsAsync    bool
}

// returnSignal unwinds statement evaluation back to the enclosing call.
type returnSignal struct {
	value runtime.Value
}

func (returnSignal) Error() string { return "return outside function" }

// breakSignal and continueSignal unwind to the enclosing loop.
type breakSignal struct{}

func (breakSignal) Error() string { return "break outside loop" }

type continueSignal struct{}

func (continueSignal) Error() string { return "continue outside loop" }

// New returns an interpreter with the standard builtins bound in its root
// scope and the stdlib operator traits registered.
func New() *Interpreter {
	return newInterpreter("", "", nil)
}

// WithSource returns an interpreter whose diagnostics carry the given source
// path and text.
func WithSource(path, source string) *Interpreter {
	return newInterpreter(path, source, nil)
}

func newInterpreter(path, source string, features []string) *Interpreter {
	i := &Interpreter{
		env:         runtime.NewEnvironment(),
		sourcePath:  path,
		sourceCode:  source,
		traits:      stdlibTraits(),
		implMethods: make(map[string]map[string]*implMethod),
		enums:       make(map[string][]*ast.EnumVariantDecl),
		moduleCache: make(map[string]map[string]runtime.Value),
		exports:     make(map[string]runtime.Value),
		features:    make(map[string]struct{}),
		random:      runtime.NewRandomSource(defaultRandomSeed()),
		permissions: runtime.NewPermissionContext(),
	}
	for _, f := range features {
		i.features[f] = struct{}{}
	}
	registerBuiltins(i)
	return i
}

// WithFeatures rebinds builtins with the given feature set enabled. Gated
// builtins outside the set disappear from the root scope.
func (i *Interpreter) WithFeatures(features []string) *Interpreter {
	i.features = make(map[string]struct{}, len(features))
	for _, f := range features {
		i.features[f] = struct{}{}
	}
	i.env = runtime.NewEnvironment()
	registerBuiltins(i)
	return i
}

// WithSearchPaths sets the roots bare import names resolve against, in
// priority order.
func (i *Interpreter) WithSearchPaths(paths []string) *Interpreter {
	i.searchPaths = append([]string(nil), paths...)
	return i
}

// Environment exposes the evaluator's scope stack.
func (i *Interpreter) Environment() *runtime.Environment {
	return i.env
}

// Permissions exposes the capability table the stdlib builtins consult.
func (i *Interpreter) Permissions() *runtime.PermissionContext {
	return i.permissions
}

// Random exposes the explicit RNG state used by the random builtin.
func (i *Interpreter) Random() *runtime.RandomSource {
	return i.random
}

// Exports returns the names this program marked for export.
func (i *Interpreter) Exports() map[string]runtime.Value {
	return i.exports
}

// FeatureEnabled reports whether a named feature is on.
func (i *Interpreter) FeatureEnabled(name string) bool {
	_, ok := i.features[name]
	return ok
}

func (i *Interpreter) featureList() []string {
	out := make([]string, 0, len(i.features))
	for f := range i.features {
		out = append(out, f)
	}
	return out
}

// EvaluateProgram executes statements in order and returns the last value.
func (i *Interpreter) EvaluateProgram(program *ast.Program) (runtime.Value, error) {
	var last runtime.Value = runtime.UnitValue{}
	for _, stmt := range program.Body {
		val, err := i.evaluateStatement(stmt)
		if err != nil {
			if _, ok := err.(returnSignal); ok {
				return nil, i.error("return outside function")
			}
			if _, ok := err.(breakSignal); ok {
				return nil, i.error("break outside loop")
			}
			if _, ok := err.(continueSignal); ok {
				return nil, i.error("continue outside loop")
			}
			return nil, err
		}
		last = val
	}
	i.drainTasks()
	return last, nil
}

func (i *Interpreter) enqueueTask(p *runtime.PromiseValue) {
	i.taskQueue = append(i.taskQueue, p)
}

// drainTasks settles every spawned promise still pending once the program
// body finishes. A failing task becomes a rejection on its promise, not a
// program error.
func (i *Interpreter) drainTasks() {
	for len(i.taskQueue) > 0 {
		p := i.taskQueue[0]
		i.taskQueue = i.taskQueue[1:]
		p.SettleRejecting(i.callValue)
	}
}

// EvaluateExpression evaluates a single expression against the current
// environment.
func (i *Interpreter) EvaluateExpression(expr ast.Expression) (runtime.Value, error) {
	return i.evaluateExpression(expr)
}

// checkGated evaluates a `gated` attribute against the enabled feature set.
// Non-gated attributes pass. Supported argument forms: bare feature names and
// all(...)/any(...)/not(...) combinators.
func (i *Interpreter) checkGated(attr *ast.Attribute) bool {
	if attr == nil || attr.Name != "gated" {
		return true
	}
	for _, arg := range attr.Args {
		if !i.evalGated(arg) {
			return false
		}
	}
	return true
}

func (i *Interpreter) evalGated(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.Identifier:
		return i.FeatureEnabled(e.Name)
	case *ast.CallExpression:
		ident, ok := e.Callee.(*ast.Identifier)
		if !ok {
			return false
		}
		switch ident.Name {
		case "all":
			for _, arg := range e.Arguments {
				if !i.evalGated(arg) {
					return false
				}
			}
			return true
		case "any":
			for _, arg := range e.Arguments {
				if i.evalGated(arg) {
					return true
				}
			}
			return false
		case "not":
			return len(e.Arguments) > 0 && !i.evalGated(e.Arguments[0])
		default:
			return false
		}
	default:
		return false
	}
}

// error builds a diagnostic, attaching source context when available.
func (i *Interpreter) error(format string, args ...any) *runtime.Error {
	msg := fmt.Sprintf(format, args...)
	if i.sourcePath != "" && i.sourceCode != "" {
		return runtime.NewErrorWithContext(msg, i.sourcePath, i.sourceCode)
	}
	return runtime.NewError(msg)
}

// stdlibTraits registers the operator trait signatures every evaluator starts
// with. `Self` marks the receiver; `any` accepts every implementation type.
func stdlibTraits() map[string][]*ast.TraitMethod {
	selfParam := func() *ast.Parameter { return ast.Param("self", ast.Ty("Self")) }
	otherParams := func() []*ast.Parameter {
		return []*ast.Parameter{selfParam(), ast.Param("other", ast.Ty("any"))}
	}
	binary := func(name string) *ast.TraitMethod {
		return ast.Sig(name, otherParams(), ast.Ty("any"))
	}
	comparison := func(name string) *ast.TraitMethod {
		return ast.Sig(name, otherParams(), ast.Ty("bool"))
	}

	traits := map[string][]*ast.TraitMethod{
		"Printable": {ast.Sig("print", []*ast.Parameter{selfParam()}, ast.Ty("str"))},
		"Add":       {binary("add")},
		"Sub":       {binary("sub")},
		"Mul":       {binary("mul")},
		"Div":       {binary("div")},
		"BitAnd":    {binary("bit_and")},
		"BitOr":     {binary("bit_or")},
		"BitXor":    {binary("bit_xor")},
		"Shl":       {binary("shl")},
		"Shr":       {binary("shr")},
		"Index": {ast.Sig("index",
			[]*ast.Parameter{selfParam(), ast.Param("index", ast.Ty("any"))},
			ast.Ty("any"))},
		"Ord": {
			comparison("gt"), comparison("ge"),
			comparison("lt"), comparison("le"),
			comparison("eq"), comparison("ne"),
		},
	}
	return traits
}

// binopMethodNames maps operators to the impl method consulted when the left
// operand is a struct.
var binopMethodNames = map[string]string{
	"+":  "add",
	"-":  "sub",
	"*":  "mul",
	"/":  "div",
	"&":  "bit_and",
	"|":  "bit_or",
	"^":  "bit_xor",
	"<<": "shl",
	">>": "shr",
	">":  "gt",
	">=": "ge",
	"<":  "lt",
	"<=": "le",
	"==": "eq",
	"!=": "ne",
}

// lookupImplMethod finds a registered impl method for a type.
func (i *Interpreter) lookupImplMethod(typeName, methodName string) (*implMethod, bool) {
	bucket, ok := i.implMethods[typeName]
	if !ok {
		return nil, false
	}
	m, ok := bucket[methodName]
	return m, ok
}
