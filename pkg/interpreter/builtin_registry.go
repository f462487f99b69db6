package interpreter

import (
	"time"

	"loft/interpreter-go/pkg/runtime"
)

// builtinEntry pairs a namespace constructor with the feature that gates it.
// An empty feature means always registered.
type builtinEntry struct {
	name    string
	feature string
	build   func() *runtime.BuiltinStruct
}

// builtinCatalogue is consulted once per evaluator construction. This is the
// explicit replacement for attribute-scanned registration: adding a builtin
// means adding a row here.
var builtinCatalogue = []builtinEntry{
	{name: "term", build: termBuiltin},
	{name: "math", build: mathBuiltin},
	{name: "json", build: jsonBuiltin},
	{name: "time", build: timeBuiltin},
	{name: "random", build: randomBuiltin},
	{name: "object", build: objectBuiltin},
	{name: "test", build: testBuiltin},
	{name: "encoding", build: encodingBuiltin},
	{name: "Promise", build: promiseBuiltin},
	{name: "fs", feature: "fs", build: fsBuiltin},
	{name: "web", feature: "net", build: webBuiltin},
}

// registerBuiltins binds every applicable builtin namespace into the root
// scope of a fresh evaluator.
func registerBuiltins(i *Interpreter) {
	for _, entry := range builtinCatalogue {
		if entry.feature != "" && !i.FeatureEnabled(entry.feature) {
			continue
		}
		i.env.Set(entry.name, &runtime.BuiltinValue{Struct: entry.build()})
	}
}

func defaultRandomSeed() int64 {
	return time.Now().UnixNano()
}

// Argument helpers shared by the builtin namespaces.

func wantArgs(name string, args []runtime.Value, n int) error {
	if len(args) != n {
		return runtime.NewError(name + ": wrong number of arguments")
	}
	return nil
}

func wantNumber(name string, v runtime.Value) (runtime.NumberValue, error) {
	num, ok := v.(runtime.NumberValue)
	if !ok {
		return runtime.NumberValue{}, runtime.NewError(name + ": expected a number, got " + runtime.TypeName(v))
	}
	return num, nil
}

func wantString(name string, v runtime.Value) (runtime.StringValue, error) {
	str, ok := v.(runtime.StringValue)
	if !ok {
		return runtime.StringValue{}, runtime.NewError(name + ": expected a string, got " + runtime.TypeName(v))
	}
	return str, nil
}

func wantArray(name string, v runtime.Value) (*runtime.ArrayValue, error) {
	arr, ok := v.(*runtime.ArrayValue)
	if !ok {
		return nil, runtime.NewError(name + ": expected an array, got " + runtime.TypeName(v))
	}
	return arr, nil
}

func wantInt(name string, v runtime.Value) (int64, error) {
	num, err := wantNumber(name, v)
	if err != nil {
		return 0, err
	}
	if !num.Val.IsInteger() {
		return 0, runtime.NewError(name + ": expected an integer")
	}
	return num.Val.IntPart(), nil
}
