package interpreter

import (
	"strings"
	"testing"

	"loft/interpreter-go/pkg/ast"
	"loft/interpreter-go/pkg/runtime"
)

func TestFunctionCallAndReturn(t *testing.T) {
	val := eval(t,
		ast.Fn("add", []*ast.Parameter{ast.Param("a", nil), ast.Param("b", nil)},
			ast.Block(ast.Ret(ast.Bin("+", ast.ID("a"), ast.ID("b"))))),
		ast.ExprStmt(ast.Call(ast.ID("add"), ast.Num(2), ast.Num(3))),
	)
	wantNum(t, val, 5)
}

func TestReturnUnwindsFromLoop(t *testing.T) {
	val := eval(t,
		ast.Fn("firstEven", []*ast.Parameter{ast.Param("items", nil)}, ast.Block(
			ast.For("n", ast.ID("items"), ast.Block(
				ast.If(ast.Bin("==", ast.Bin("%", ast.ID("n"), ast.Num(2)), ast.Num(0)),
					ast.Ret(ast.ID("n")), nil),
			)),
			ast.Ret(ast.Num(-1)),
		)),
		ast.ExprStmt(ast.Call(ast.ID("firstEven"), ast.Arr(ast.Num(3), ast.Num(8), ast.Num(5)))),
	)
	wantNum(t, val, 8)
}

func TestFunctionWithoutReturnYieldsLastValue(t *testing.T) {
	val := eval(t,
		ast.Fn("f", nil, ast.Block(ast.ExprStmt(ast.Num(7)))),
		ast.ExprStmt(ast.Call(ast.ID("f"))),
	)
	wantNum(t, val, 7)
}

func TestFunctionArityError(t *testing.T) {
	err := evalErr(t,
		ast.Fn("pair", []*ast.Parameter{ast.Param("a", nil), ast.Param("b", nil)},
			ast.Block(ast.Ret(ast.ID("a")))),
		ast.ExprStmt(ast.Call(ast.ID("pair"), ast.Num(1))),
	)
	if !strings.Contains(err.Error(), "function 'pair' expects 2 arguments, got 1") {
		t.Fatalf("error = %v", err)
	}
}

func TestFunctionSeesCurrentGlobals(t *testing.T) {
	// Functions are not closures: they read the environment at call time.
	val := eval(t,
		ast.LetMut("x", ast.Num(1)),
		ast.Fn("readX", nil, ast.Block(ast.Ret(ast.ID("x")))),
		ast.Assign("x", ast.Num(99)),
		ast.ExprStmt(ast.Call(ast.ID("readX"))),
	)
	wantNum(t, val, 99)
}

func TestClosureCapturesSnapshot(t *testing.T) {
	val := eval(t,
		ast.LetMut("x", ast.Num(5)),
		ast.Let("f", ast.Lam(nil, ast.ID("x"))),
		ast.Assign("x", ast.Num(100)),
		ast.ExprStmt(ast.Call(ast.ID("f"))),
	)
	wantNum(t, val, 5)
}

func TestClosureParamsShadowCaptured(t *testing.T) {
	val := eval(t,
		ast.Let("x", ast.Num(1)),
		ast.Let("f", ast.Lam(
			[]*ast.LambdaParameter{ast.LamParam("x")},
			ast.Bin("+", ast.ID("x"), ast.Num(10)))),
		ast.ExprStmt(ast.Call(ast.ID("f"), ast.Num(5))),
	)
	wantNum(t, val, 15)
}

func TestClosureArityError(t *testing.T) {
	err := evalErr(t,
		ast.Let("f", ast.Lam(
			[]*ast.LambdaParameter{ast.LamParam("a"), ast.LamParam("b")},
			ast.ID("a"))),
		ast.ExprStmt(ast.Call(ast.ID("f"), ast.Num(1))),
	)
	if !strings.Contains(err.Error(), "closure expects 2 arguments, got 1") {
		t.Fatalf("error = %v", err)
	}
}

func TestCallingNonCallableError(t *testing.T) {
	err := evalErr(t, ast.ExprStmt(ast.Call(ast.Num(3))))
	if !strings.Contains(err.Error(), "cannot call a value of type 'num'") {
		t.Fatalf("error = %v", err)
	}
}

func TestAsyncFunctionRunsEagerly(t *testing.T) {
	interp := New()
	evalIn(t, interp,
		ast.LetMut("ran", ast.Bool(false)),
		ast.AsyncFn("task", nil, ast.Block(
			ast.Assign("ran", ast.Bool(true)),
			ast.Ret(ast.Num(42)),
		)),
		ast.Let("p", ast.Call(ast.ID("task"))),
	)

	// The body executed before any await.
	if !runtime.IsTruthy(getVar(t, interp, "ran")) {
		t.Fatalf("async body did not run at call time")
	}
	if _, ok := getVar(t, interp, "p").(*runtime.PromiseValue); !ok {
		t.Fatalf("async call = %T, want promise", getVar(t, interp, "p"))
	}

	val := evalIn(t, interp, ast.ExprStmt(ast.Await(ast.ID("p"))))
	wantNum(t, val, 42)
}

func TestAsyncAndLazyExpressionsWrap(t *testing.T) {
	val := eval(t, ast.ExprStmt(ast.Await(ast.Async(ast.Num(7)))))
	wantNum(t, val, 7)

	val = eval(t, ast.ExprStmt(ast.Await(ast.Lazy(ast.Num(8)))))
	wantNum(t, val, 8)
}

func TestAwaitNonPromiseError(t *testing.T) {
	err := evalErr(t, ast.ExprStmt(ast.Await(ast.Num(1))))
	if !strings.Contains(err.Error(), "cannot await a value of type 'num'") {
		t.Fatalf("error = %v", err)
	}
}

func TestExportedFunction(t *testing.T) {
	interp := New()
	fn := ast.Fn("helper", nil, ast.Block(ast.Ret(ast.Num(1))))
	fn.IsExported = true
	evalIn(t, interp, fn,
		ast.Fn("private", nil, ast.Block(ast.Ret(ast.Num(2)))))

	if _, ok := interp.Exports()["helper"]; !ok {
		t.Fatalf("exported function missing from exports")
	}
	if _, ok := interp.Exports()["private"]; ok {
		t.Fatalf("non-exported function leaked into exports")
	}
}

func TestBreakInsideCalledFunctionIsAnError(t *testing.T) {
	_, err := New().EvaluateProgram(ast.Prog(
		ast.Fn("stop", nil, ast.Block(&ast.BreakStatement{})),
		ast.LetMut("n", ast.Num(0)),
		ast.While(ast.Bin("<", ast.ID("n"), ast.Num(3)), ast.Block(
			ast.ExprStmt(ast.Call(ast.ID("stop"))),
			ast.Assign("n", ast.Bin("+", ast.ID("n"), ast.Num(1))),
		)),
	))
	if err == nil || !strings.Contains(err.Error(), "break outside loop") {
		t.Fatalf("error = %v", err)
	}
}

func TestContinueInsideClosureIsAnError(t *testing.T) {
	_, err := New().EvaluateProgram(ast.Prog(
		ast.Let("skip", ast.Lam(nil, ast.BlockExpr(&ast.ContinueStatement{}))),
		ast.For("x", ast.Arr(ast.Num(1), ast.Num(2)), ast.Block(
			ast.ExprStmt(ast.Call(ast.ID("skip"))),
		)),
	))
	if err == nil || !strings.Contains(err.Error(), "continue outside loop") {
		t.Fatalf("error = %v", err)
	}
}

func TestBreakInsideMethodIsAnError(t *testing.T) {
	_, err := New().EvaluateProgram(ast.Prog(
		ast.Impl("Box", "",
			ast.Fn("halt", []*ast.Parameter{ast.Param("self", nil)},
				ast.Block(&ast.BreakStatement{}))),
		ast.Let("b", ast.Lit("Box", ast.LitField("x", ast.Num(1)))),
		ast.For("i", ast.Arr(ast.Num(1)), ast.Block(
			ast.ExprStmt(ast.Call(ast.Field(ast.ID("b"), "halt"))),
		)),
	))
	if err == nil || !strings.Contains(err.Error(), "break outside loop") {
		t.Fatalf("error = %v", err)
	}
}
