package interpreter

import (
	"strings"
	"testing"

	"loft/interpreter-go/pkg/ast"
	"loft/interpreter-go/pkg/runtime"
)

func builtinCall(ns, method string, args ...ast.Expression) ast.Expression {
	return ast.Call(ast.Field(ast.ID(ns), method), args...)
}

func TestMathBuiltins(t *testing.T) {
	wantNum(t, eval(t, ast.ExprStmt(builtinCall("math", "abs", ast.Unary("-", ast.Num(5))))), 5)
	wantNum(t, eval(t, ast.ExprStmt(builtinCall("math", "sqrt", ast.Num(9)))), 3)
	wantNum(t, eval(t, ast.ExprStmt(builtinCall("math", "pow", ast.Num(2), ast.Num(10)))), 1024)
	wantNum(t, eval(t, ast.ExprStmt(builtinCall("math", "min", ast.Num(3), ast.Num(1), ast.Num(2)))), 1)
	wantNum(t, eval(t, ast.ExprStmt(builtinCall("math", "max", ast.Num(3), ast.Num(7), ast.Num(2)))), 7)

	val := eval(t, ast.ExprStmt(ast.Bin(">", ast.Field(ast.ID("math"), "pi"), ast.Num(3))))
	if b, ok := val.(runtime.BooleanValue); !ok || !b.Val {
		t.Fatalf("math.pi > 3 = %v", val)
	}
}

func TestMathSqrtNegativeError(t *testing.T) {
	err := evalErr(t, ast.ExprStmt(builtinCall("math", "sqrt", ast.Unary("-", ast.Num(4)))))
	if !strings.Contains(err.Error(), "math.sqrt: negative argument") {
		t.Fatalf("error = %v", err)
	}
}

func TestJSONStringifySortsKeys(t *testing.T) {
	val := eval(t, ast.ExprStmt(builtinCall("json", "stringify",
		ast.Lit("object",
			ast.LitField("b", ast.Arr(ast.Num(1), ast.Bool(true))),
			ast.LitField("a", ast.Str("x"))))))
	wantStr(t, val, `{"a":"x","b":[1,true]}`)
}

func TestJSONParse(t *testing.T) {
	interp := New()
	evalIn(t, interp,
		ast.Let("doc", builtinCall("json", "parse",
			ast.Str(`{"s":"hi","arr":[2,null],"half":0.5}`))),
		ast.Let("s", ast.Field(ast.ID("doc"), "s")),
		ast.Let("nothing", ast.Index(ast.Field(ast.ID("doc"), "arr"), ast.Num(1))),
		ast.Let("whole", ast.Bin("*", ast.Field(ast.ID("doc"), "half"), ast.Num(2))),
	)
	wantStr(t, getVar(t, interp, "s"), "hi")
	if _, ok := getVar(t, interp, "nothing").(runtime.UnitValue); !ok {
		t.Fatalf("null = %#v, want unit", getVar(t, interp, "nothing"))
	}
	wantNum(t, getVar(t, interp, "whole"), 1)
}

func TestJSONParseError(t *testing.T) {
	err := evalErr(t, ast.ExprStmt(builtinCall("json", "parse", ast.Str("{nope"))))
	if !strings.Contains(err.Error(), "json.parse:") {
		t.Fatalf("error = %v", err)
	}
}

func TestObjectKeysSorted(t *testing.T) {
	interp := New()
	evalIn(t, interp,
		ast.Let("o", ast.Lit("object",
			ast.LitField("zeta", ast.Num(1)),
			ast.LitField("alpha", ast.Num(2)))),
		ast.Let("keys", builtinCall("object", "keys", ast.ID("o"))),
	)
	keys, ok := getVar(t, interp, "keys").(*runtime.ArrayValue)
	if !ok || len(keys.Elements) != 2 {
		t.Fatalf("keys = %#v", getVar(t, interp, "keys"))
	}
	wantStr(t, keys.Elements[0], "alpha")
	wantStr(t, keys.Elements[1], "zeta")
}

func TestObjectSetReturnsNewStruct(t *testing.T) {
	interp := New()
	evalIn(t, interp,
		ast.Let("o", ast.Lit("object", ast.LitField("x", ast.Num(1)))),
		ast.Let("o2", builtinCall("object", "set", ast.ID("o"), ast.Str("x"), ast.Num(9))),
	)
	original := getVar(t, interp, "o").(*runtime.StructValue)
	updated := getVar(t, interp, "o2").(*runtime.StructValue)
	wantNum(t, original.Fields["x"], 1)
	wantNum(t, updated.Fields["x"], 9)
}

func TestObjectHas(t *testing.T) {
	val := eval(t,
		ast.Let("o", ast.Lit("object", ast.LitField("x", ast.Num(1)))),
		ast.ExprStmt(builtinCall("object", "has", ast.ID("o"), ast.Str("y"))),
	)
	if b, ok := val.(runtime.BooleanValue); !ok || b.Val {
		t.Fatalf("has missing key = %v, want false", val)
	}
}

func TestRandomSeedIsDeterministic(t *testing.T) {
	interp := New()
	evalIn(t, interp,
		ast.ExprStmt(builtinCall("random", "seed", ast.Num(7))),
		ast.Let("a", builtinCall("random", "int", ast.Num(1000000))),
		ast.ExprStmt(builtinCall("random", "seed", ast.Num(7))),
		ast.Let("b", builtinCall("random", "int", ast.Num(1000000))),
	)
	if !runtime.ValuesEqual(getVar(t, interp, "a"), getVar(t, interp, "b")) {
		t.Fatalf("same seed gave %v then %v",
			getVar(t, interp, "a"), getVar(t, interp, "b"))
	}
}

func TestRandomIntBoundError(t *testing.T) {
	err := evalErr(t, ast.ExprStmt(builtinCall("random", "int", ast.Num(0))))
	if !strings.Contains(err.Error(), "random.int: bound must be positive") {
		t.Fatalf("error = %v", err)
	}
}

func TestAssertBuiltins(t *testing.T) {
	eval(t, ast.ExprStmt(builtinCall("test", "assert", ast.Bool(true))))
	eval(t, ast.ExprStmt(builtinCall("test", "assert_eq", ast.Num(2), ast.Num(2))))

	err := evalErr(t, ast.ExprStmt(builtinCall("test", "assert", ast.Bool(false), ast.Str("boom"))))
	if !strings.Contains(err.Error(), "assertion failed: boom") {
		t.Fatalf("error = %v", err)
	}
	err = evalErr(t, ast.ExprStmt(builtinCall("test", "assert_eq", ast.Num(1), ast.Num(2))))
	if !strings.Contains(err.Error(), "assertion failed: 1 != 2") {
		t.Fatalf("error = %v", err)
	}
}

func TestStringMethods(t *testing.T) {
	method := func(recv string, name string, args ...ast.Expression) ast.Expression {
		return ast.Call(ast.Field(ast.Str(recv), name), args...)
	}

	wantStr(t, eval(t, ast.ExprStmt(method("abc", "upper"))), "ABC")
	wantStr(t, eval(t, ast.ExprStmt(method("  hi  ", "trim"))), "hi")
	wantStr(t, eval(t, ast.ExprStmt(method("héllo", "slice", ast.Num(1), ast.Num(3)))), "él")
	wantNum(t, eval(t, ast.ExprStmt(method(" 42 ", "to_num"))), 42)
	wantNum(t, eval(t, ast.ExprStmt(method("héllo", "index_of", ast.Str("llo")))), 2)
	wantNum(t, eval(t, ast.ExprStmt(method("héllo", "len"))), 5)
	wantStr(t, eval(t, ast.ExprStmt(method("ab", "repeat", ast.Num(3)))), "ababab")

	parts := eval(t, ast.ExprStmt(method("a,b,c", "split", ast.Str(","))))
	arr, ok := parts.(*runtime.ArrayValue)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("split = %#v", parts)
	}
	wantStr(t, arr.Elements[1], "b")
}

func TestStringToNumParseError(t *testing.T) {
	err := evalErr(t, ast.ExprStmt(ast.Call(ast.Field(ast.Str("nope"), "to_num"))))
	if !strings.Contains(err.Error(), "cannot parse 'nope' as a number") {
		t.Fatalf("error = %v", err)
	}
}

func TestArrayPushLeavesReceiverUnchanged(t *testing.T) {
	interp := New()
	evalIn(t, interp,
		ast.Let("a", ast.Arr(ast.Num(1))),
		ast.Let("b", ast.Call(ast.Field(ast.ID("a"), "push"), ast.Num(2))),
	)
	a := getVar(t, interp, "a").(*runtime.ArrayValue)
	b := getVar(t, interp, "b").(*runtime.ArrayValue)
	if len(a.Elements) != 1 || len(b.Elements) != 2 {
		t.Fatalf("push mutated receiver: a=%d b=%d", len(a.Elements), len(b.Elements))
	}
}

func TestArrayHigherOrderMethods(t *testing.T) {
	double := ast.Lam([]*ast.LambdaParameter{ast.LamParam("n")},
		ast.Bin("*", ast.ID("n"), ast.Num(2)))
	isOdd := ast.Lam([]*ast.LambdaParameter{ast.LamParam("n")},
		ast.Bin("==", ast.Bin("%", ast.ID("n"), ast.Num(2)), ast.Num(1)))
	add := ast.Lam(
		[]*ast.LambdaParameter{ast.LamParam("acc"), ast.LamParam("n")},
		ast.Bin("+", ast.ID("acc"), ast.ID("n")))
	nums := ast.Arr(ast.Num(1), ast.Num(2), ast.Num(3))

	mapped := eval(t, ast.ExprStmt(ast.Call(ast.Field(nums, "map"), double)))
	arr := mapped.(*runtime.ArrayValue)
	wantNum(t, arr.Elements[2], 6)

	filtered := eval(t, ast.ExprStmt(ast.Call(ast.Field(nums, "filter"), isOdd)))
	arr = filtered.(*runtime.ArrayValue)
	if len(arr.Elements) != 2 {
		t.Fatalf("filter kept %d elements, want 2", len(arr.Elements))
	}

	wantNum(t, eval(t, ast.ExprStmt(
		ast.Call(ast.Field(nums, "reduce"), add, ast.Num(10)))), 16)
}

func TestArrayJoinStringifies(t *testing.T) {
	val := eval(t, ast.ExprStmt(ast.Call(
		ast.Field(ast.Arr(ast.Num(1), ast.Str("x"), ast.Bool(true)), "join"),
		ast.Str("-"))))
	wantStr(t, val, "1-x-true")
}

func TestFsBuiltinIsFeatureGated(t *testing.T) {
	err := evalErr(t, ast.ExprStmt(ast.ID("fs")))
	if !strings.Contains(err.Error(), "variable not found: fs") {
		t.Fatalf("error = %v", err)
	}

	interp := New().WithFeatures([]string{"fs"})
	interp.Permissions().AllowAll()
	evalIn(t, interp, ast.Let("present", ast.ID("fs")))
	if _, ok := getVar(t, interp, "present").(*runtime.BuiltinValue); !ok {
		t.Fatalf("fs = %T, want builtin", getVar(t, interp, "present"))
	}
}

func TestFsReadWriteRoundTrip(t *testing.T) {
	path := t.TempDir() + "/note.txt"
	interp := New().WithFeatures([]string{"fs"})
	interp.Permissions().AllowAll()
	evalIn(t, interp,
		ast.ExprStmt(builtinCall("fs", "write_file", ast.Str(path), ast.Str("hello"))),
		ast.Let("back", builtinCall("fs", "read_file", ast.Str(path))),
	)
	wantStr(t, getVar(t, interp, "back"), "hello")
}

func TestFsRequiresPermission(t *testing.T) {
	interp := New().WithFeatures([]string{"fs"})
	prog := ast.Prog(ast.ExprStmt(builtinCall("fs", "read_file", ast.Str("/etc/hosts"))))
	if _, err := interp.EvaluateProgram(prog); err == nil {
		t.Fatalf("read without permission succeeded")
	}
}

func TestEncodingBase64RoundTrip(t *testing.T) {
	val := eval(t, ast.ExprStmt(builtinCall("encoding", "base64_encode", ast.Str("hello"))))
	wantStr(t, val, "aGVsbG8=")

	val = eval(t, ast.ExprStmt(builtinCall("encoding", "base64_decode", ast.Str("aGVsbG8="))))
	wantStr(t, val, "hello")
}

func TestEncodingBase64DecodeError(t *testing.T) {
	err := evalErr(t, ast.ExprStmt(builtinCall("encoding", "base64_decode", ast.Str("!!!"))))
	if !strings.Contains(err.Error(), "encoding.base64_decode: invalid base64") {
		t.Fatalf("error = %v", err)
	}
}

func TestEncodingURLRoundTrip(t *testing.T) {
	val := eval(t, ast.ExprStmt(builtinCall("encoding", "url_encode", ast.Str("a b&c"))))
	wantStr(t, val, "a+b%26c")

	val = eval(t, ast.ExprStmt(builtinCall("encoding", "url_decode", ast.Str("a+b%26c"))))
	wantStr(t, val, "a b&c")
}

func TestEncodingBytesRoundTrip(t *testing.T) {
	val := eval(t, ast.ExprStmt(builtinCall("encoding", "to_bytes", ast.Str("hi"))))
	arr, ok := val.(*runtime.ArrayValue)
	if !ok || len(arr.Elements) != 2 {
		t.Fatalf("to_bytes = %v", val)
	}
	wantNum(t, arr.Elements[0], 104)
	wantNum(t, arr.Elements[1], 105)

	val = eval(t, ast.ExprStmt(builtinCall("encoding", "from_bytes",
		ast.Arr(ast.Num(104), ast.Num(105)))))
	wantStr(t, val, "hi")
}

func TestEncodingFromBytesRangeError(t *testing.T) {
	err := evalErr(t, ast.ExprStmt(builtinCall("encoding", "from_bytes", ast.Arr(ast.Num(300)))))
	if !strings.Contains(err.Error(), "encoding.from_bytes: byte value out of range") {
		t.Fatalf("error = %v", err)
	}
}

func TestWebBuiltinIsFeatureGated(t *testing.T) {
	err := evalErr(t, ast.ExprStmt(ast.ID("web")))
	if !strings.Contains(err.Error(), "variable not found: web") {
		t.Fatalf("error = %v", err)
	}

	interp := New().WithFeatures([]string{"net"})
	evalIn(t, interp, ast.Let("present", ast.ID("web")))
	if _, ok := getVar(t, interp, "present").(*runtime.BuiltinValue); !ok {
		t.Fatalf("web = %T, want builtin", getVar(t, interp, "present"))
	}
}

func TestWebRequiresPermission(t *testing.T) {
	interp := New().WithFeatures([]string{"net"})
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.ExprStmt(builtinCall("web", "get", ast.Str("http://127.0.0.1:9/"))),
	))
	if err == nil || !strings.Contains(err.Error(), "requires the 'net' capability") {
		t.Fatalf("error = %v", err)
	}
}

func TestWebRejectsInvalidURL(t *testing.T) {
	interp := New().WithFeatures([]string{"net"})
	interp.Permissions().AllowAll()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.ExprStmt(builtinCall("web", "get", ast.Str("not a url"))),
	))
	if err == nil || !strings.Contains(err.Error(), "web.get: invalid url") {
		t.Fatalf("error = %v", err)
	}
}
