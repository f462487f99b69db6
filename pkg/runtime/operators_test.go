package runtime

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func num(v int64) NumberValue    { return NumberFromInt(v) }
func str(v string) StringValue   { return StringValue{Val: v} }
func boolean(v bool) BooleanValue { return BooleanValue{Val: v} }

func TestArithmetic(t *testing.T) {
	cases := []struct {
		op       string
		left     int64
		right    int64
		expected string
	}{
		{"+", 2, 3, "5"},
		{"-", 10, 4, "6"},
		{"*", 6, 7, "42"},
		{"%", 10, 3, "1"},
		{"&", 6, 3, "2"},
		{"|", 6, 3, "7"},
		{"^", 6, 3, "5"},
		{"<<", 1, 4, "16"},
		{">>", 16, 2, "4"},
	}
	for _, tc := range cases {
		got, err := ApplyBinary(tc.op, num(tc.left), num(tc.right))
		if err != nil {
			t.Fatalf("%d %s %d: %v", tc.left, tc.op, tc.right, err)
		}
		n, ok := got.(NumberValue)
		if !ok {
			t.Fatalf("%d %s %d returned %T", tc.left, tc.op, tc.right, got)
		}
		if n.Val.String() != tc.expected {
			t.Fatalf("%d %s %d = %s, want %s", tc.left, tc.op, tc.right, n.Val.String(), tc.expected)
		}
	}
}

func TestDivisionKeepsPrecision(t *testing.T) {
	got, err := ApplyBinary("/", num(1), num(4))
	if err != nil {
		t.Fatalf("1 / 4: %v", err)
	}
	want := decimal.RequireFromString("0.25")
	if !got.(NumberValue).Val.Equal(want) {
		t.Fatalf("1 / 4 = %s, want 0.25", got.(NumberValue).Val)
	}
}

func TestDivisionByZero(t *testing.T) {
	if _, err := ApplyBinary("/", num(1), num(0)); err == nil {
		t.Fatalf("expected division by zero error")
	}
	if _, err := ApplyBinary("%", num(1), num(0)); err == nil {
		t.Fatalf("expected remainder by zero error")
	}
}

func TestStringConcatenation(t *testing.T) {
	got, err := ApplyBinary("+", str("ab"), str("cd"))
	if err != nil {
		t.Fatalf("string concat: %v", err)
	}
	if got.(StringValue).Val != "abcd" {
		t.Fatalf("concat = %q", got.(StringValue).Val)
	}

	// String on the left coerces the right operand.
	got, err = ApplyBinary("+", str("n="), num(3))
	if err != nil {
		t.Fatalf("string + number: %v", err)
	}
	if got.(StringValue).Val != "n=3" {
		t.Fatalf("coerced concat = %q", got.(StringValue).Val)
	}

	// A number on the left never coerces.
	if _, err := ApplyBinary("+", num(3), str("x")); err == nil {
		t.Fatalf("number + string should fail")
	}
}

func TestComparisons(t *testing.T) {
	gt, err := ApplyBinary(">", num(3), num(2))
	if err != nil {
		t.Fatalf("3 > 2: %v", err)
	}
	if !gt.(BooleanValue).Val {
		t.Fatalf("3 > 2 = false")
	}

	eq, err := ApplyBinary("==", str("a"), str("a"))
	if err != nil {
		t.Fatalf("eq: %v", err)
	}
	if !eq.(BooleanValue).Val {
		t.Fatalf("\"a\" == \"a\" = false")
	}

	ne, err := ApplyBinary("!=", num(1), str("1"))
	if err != nil {
		t.Fatalf("ne: %v", err)
	}
	if !ne.(BooleanValue).Val {
		t.Fatalf("values of different kinds compare equal")
	}

	if _, err := ApplyBinary("<", str("a"), str("b")); err == nil {
		t.Fatalf("ordering strings should fail")
	}
}

func TestIndexArray(t *testing.T) {
	arr := &ArrayValue{Elements: []Value{num(10), num(20), num(30)}}
	got, err := ApplyIndex(arr, num(1))
	if err != nil {
		t.Fatalf("arr[1]: %v", err)
	}
	if !ValuesEqual(got, num(20)) {
		t.Fatalf("arr[1] = %s", DefaultString(got))
	}

	if _, err := ApplyIndex(arr, num(3)); err == nil {
		t.Fatalf("expected out of bounds error")
	}
	if _, err := ApplyIndex(arr, num(-1)); err == nil {
		t.Fatalf("expected negative index error")
	}
	if _, err := ApplyIndex(arr, str("0")); err == nil {
		t.Fatalf("expected non-numeric index error")
	}
}

func TestIndexStringByRune(t *testing.T) {
	got, err := ApplyIndex(str("héllo"), num(1))
	if err != nil {
		t.Fatalf("string index: %v", err)
	}
	if got.(StringValue).Val != "é" {
		t.Fatalf("indexed %q, want é", got.(StringValue).Val)
	}
}

func TestIndexStructByKey(t *testing.T) {
	s := &StructValue{Name: "Point", Fields: map[string]Value{"x": num(1)}}
	got, err := ApplyIndex(s, str("x"))
	if err != nil {
		t.Fatalf("struct index: %v", err)
	}
	if !ValuesEqual(got, num(1)) {
		t.Fatalf("s[\"x\"] = %s", DefaultString(got))
	}

	_, err = ApplyIndex(s, str("y"))
	if err == nil || !strings.Contains(err.Error(), "property 'y'") {
		t.Fatalf("missing key error = %v", err)
	}
}

func TestTruthiness(t *testing.T) {
	truthy := []Value{num(1), str("x"), boolean(true), &ArrayValue{Elements: []Value{num(1)}}}
	for _, v := range truthy {
		if !IsTruthy(v) {
			t.Fatalf("%s should be truthy", TypeName(v))
		}
	}
	falsy := []Value{num(0), str(""), boolean(false), UnitValue{}, &ArrayValue{}}
	for _, v := range falsy {
		if IsTruthy(v) {
			t.Fatalf("%s should be falsy", TypeName(v))
		}
	}
}

func TestValuesEqualDeep(t *testing.T) {
	a := &ArrayValue{Elements: []Value{num(1), str("x")}}
	b := &ArrayValue{Elements: []Value{num(1), str("x")}}
	if !ValuesEqual(a, b) {
		t.Fatalf("equal arrays compare unequal")
	}

	s1 := &StructValue{Name: "P", Fields: map[string]Value{"x": num(1)}}
	s2 := &StructValue{Name: "P", Fields: map[string]Value{"x": num(1)}}
	s3 := &StructValue{Name: "P", Fields: map[string]Value{"x": num(2)}}
	if !ValuesEqual(s1, s2) {
		t.Fatalf("equal structs compare unequal")
	}
	if ValuesEqual(s1, s3) {
		t.Fatalf("different structs compare equal")
	}
}
