package interpreter

import (
	"testing"

	"loft/interpreter-go/pkg/ast"
	"loft/interpreter-go/pkg/runtime"
)

// evalIn runs statements against an existing evaluator and fails the test on
// any evaluation error.
func evalIn(t *testing.T, interp *Interpreter, stmts ...ast.Statement) runtime.Value {
	t.Helper()
	val, err := interp.EvaluateProgram(ast.Prog(stmts...))
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	return val
}

// eval runs statements in a fresh evaluator.
func eval(t *testing.T, stmts ...ast.Statement) runtime.Value {
	t.Helper()
	return evalIn(t, New(), stmts...)
}

// evalErr runs statements in a fresh evaluator and returns the expected
// evaluation error.
func evalErr(t *testing.T, stmts ...ast.Statement) error {
	t.Helper()
	_, err := New().EvaluateProgram(ast.Prog(stmts...))
	if err == nil {
		t.Fatalf("expected an evaluation error")
	}
	return err
}

func getVar(t *testing.T, interp *Interpreter, name string) runtime.Value {
	t.Helper()
	val, ok := interp.Environment().Get(name)
	if !ok {
		t.Fatalf("variable %q not bound", name)
	}
	return val
}

func wantNum(t *testing.T, val runtime.Value, expected int64) {
	t.Helper()
	if !runtime.ValuesEqual(val, runtime.NumberFromInt(expected)) {
		t.Fatalf("got %s, want %d", runtime.DefaultString(val), expected)
	}
}

func wantStr(t *testing.T, val runtime.Value, expected string) {
	t.Helper()
	str, ok := val.(runtime.StringValue)
	if !ok {
		t.Fatalf("got %T, want string %q", val, expected)
	}
	if str.Val != expected {
		t.Fatalf("got %q, want %q", str.Val, expected)
	}
}
