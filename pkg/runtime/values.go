package runtime

import (
	"fmt"

	"github.com/shopspring/decimal"

	"loft/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindUnit Kind = iota
	KindNumber
	KindString
	KindBoolean
	KindArray
	KindFunction
	KindClosure
	KindStruct
	KindBuiltin
	KindBuiltinFn
	KindBoundMethod
	KindUserMethod
	KindPromise
	KindEnumVariant
	KindEnumConstructor
	KindModule
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindNumber:
		return "num"
	case KindString:
		return "str"
	case KindBoolean:
		return "bool"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindClosure:
		return "closure"
	case KindStruct:
		return "struct"
	case KindBuiltin:
		return "builtin"
	case KindBuiltinFn:
		return "builtin_function"
	case KindBoundMethod:
		return "method"
	case KindUserMethod:
		return "method"
	case KindPromise:
		return "promise"
	case KindEnumVariant:
		return "enum_variant"
	case KindEnumConstructor:
		return "enum_constructor"
	case KindModule:
		return "module"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type UnitValue struct{}

func (UnitValue) Kind() Kind { return KindUnit }

// NumberValue is an exact decimal, never a binary float.
type NumberValue struct {
	Val decimal.Decimal
}

func (NumberValue) Kind() Kind { return KindNumber }

func NumberFromInt(v int64) NumberValue {
	return NumberValue{Val: decimal.NewFromInt(v)}
}

type StringValue struct {
	Val string
}

func (StringValue) Kind() Kind { return KindString }

type BooleanValue struct {
	Val bool
}

func (BooleanValue) Kind() Kind { return KindBoolean }

//-----------------------------------------------------------------------------
// Collections
//-----------------------------------------------------------------------------

// ArrayValue has value semantics: operations that "modify" an array return a
// fresh ArrayValue and leave the receiver untouched.
type ArrayValue struct {
	Elements []Value
}

func (*ArrayValue) Kind() Kind { return KindArray }

// CloneElements copies the element slice so callers can extend it without
// aliasing the receiver.
func (v *ArrayValue) CloneElements(extra int) []Value {
	out := make([]Value, len(v.Elements), len(v.Elements)+extra)
	copy(out, v.Elements)
	return out
}

//-----------------------------------------------------------------------------
// Callables
//-----------------------------------------------------------------------------

// FunctionParam is a declared parameter with its type label.
type FunctionParam struct {
	Name string
	Type string
}

// FunctionValue is a named function. It does not capture its defining
// environment; free names resolve at call time.
type FunctionValue struct {
	Name    string
	Params  []FunctionParam
	Body    ast.Statement
	IsAsync bool
}

func (*FunctionValue) Kind() Kind { return KindFunction }

// ClosureValue captures a frozen snapshot of every binding visible at
// creation time. Later mutations of the enclosing scopes are invisible here.
type ClosureValue struct {
	Params     []*ast.LambdaParameter
	ReturnType ast.TypeExpression
	Body       ast.Expression
	Captured   map[string]Value
}

func (*ClosureValue) Kind() Kind { return KindClosure }

// UserMethodValue binds a struct receiver to an impl-block method body.
type UserMethodValue struct {
	Receiver   Value
	MethodName string
	Params     []*ast.Parameter
	ReturnType ast.TypeExpression
	Body       ast.Statement
}

func (*UserMethodValue) Kind() Kind { return KindUserMethod }

//-----------------------------------------------------------------------------
// Structs and builtins
//-----------------------------------------------------------------------------

type StructValue struct {
	Name   string
	Fields map[string]Value
}

func (*StructValue) Kind() Kind { return KindStruct }

// CloneFields copies the field map so callers can rebuild a struct without
// mutating the receiver.
func (v *StructValue) CloneFields() map[string]Value {
	out := make(map[string]Value, len(v.Fields))
	for k, val := range v.Fields {
		out[k] = val
	}
	return out
}

// NativeCallContext carries the interpreter-held state native code may need.
// Call re-enters the evaluator so native methods can invoke user callables;
// EnqueueTask places a pending promise on the evaluator's task list.
type NativeCallContext struct {
	Env         *Environment
	Random      *RandomSource
	Permissions *PermissionContext
	Stringify   func(Value) (string, error)
	Call        func(callee Value, args []Value) (Value, error)
	EnqueueTask func(*PromiseValue)
}

// NativeFunc is a free native function.
type NativeFunc func(*NativeCallContext, []Value) (Value, error)

// NativeMethod is a native function bound to a receiver at dispatch time.
type NativeMethod func(*NativeCallContext, Value, []Value) (Value, error)

// BuiltinStruct is a native namespace: a field map plus a method table,
// exposed to programs under a well-known name (term, math, json, ...).
type BuiltinStruct struct {
	Name    string
	Fields  map[string]Value
	Methods map[string]NativeMethod
}

func NewBuiltinStruct(name string) *BuiltinStruct {
	return &BuiltinStruct{
		Name:    name,
		Fields:  make(map[string]Value),
		Methods: make(map[string]NativeMethod),
	}
}

func (b *BuiltinStruct) AddField(name string, value Value) {
	b.Fields[name] = value
}

func (b *BuiltinStruct) AddMethod(name string, method NativeMethod) {
	b.Methods[name] = method
}

type BuiltinValue struct {
	Struct *BuiltinStruct
}

func (*BuiltinValue) Kind() Kind { return KindBuiltin }

type BuiltinFnValue struct {
	Name string
	Impl NativeFunc
}

func (*BuiltinFnValue) Kind() Kind { return KindBuiltinFn }

// BoundMethodValue pairs a receiver with a native method.
type BoundMethodValue struct {
	Receiver   Value
	MethodName string
	Method     NativeMethod
}

func (*BoundMethodValue) Kind() Kind { return KindBoundMethod }

//-----------------------------------------------------------------------------
// Promises, enums, modules
//-----------------------------------------------------------------------------

// PromiseValue is either settled or pending. Async and lazy expressions run
// to completion before the wrapper exists, so they always produce a settled
// promise; a spawned promise stores its callable and runs it on first demand.
type PromiseValue struct {
	Result   Value
	Rejected bool
	Task     Value // pending callable; nil once settled
}

func (*PromiseValue) Kind() Kind { return KindPromise }

func ResolvedPromise(v Value) *PromiseValue { return &PromiseValue{Result: v} }

func RejectedPromise(v Value) *PromiseValue { return &PromiseValue{Result: v, Rejected: true} }

func PendingPromise(task Value) *PromiseValue { return &PromiseValue{Task: task} }

// Pending reports whether the promise still holds an unrun task.
func (p *PromiseValue) Pending() bool { return p.Task != nil }

// Settle runs a pending task through call and caches the result; settled
// promises are left untouched. A task error propagates to the caller.
func (p *PromiseValue) Settle(call func(callee Value, args []Value) (Value, error)) error {
	if p.Task == nil {
		return nil
	}
	result, err := call(p.Task, nil)
	if err != nil {
		return err
	}
	p.Task = nil
	p.Result = result
	return nil
}

// SettleRejecting is Settle with task failures recorded as a rejection
// carrying the error text instead of propagating.
func (p *PromiseValue) SettleRejecting(call func(callee Value, args []Value) (Value, error)) {
	if err := p.Settle(call); err != nil {
		p.Task = nil
		p.Rejected = true
		p.Result = StringValue{Val: err.Error()}
	}
}

type EnumVariantValue struct {
	EnumName    string
	VariantName string
	Values      []Value
}

func (*EnumVariantValue) Kind() Kind { return KindEnumVariant }

// EnumConstructorValue is the callable that builds a tuple variant.
type EnumConstructorValue struct {
	EnumName    string
	VariantName string
	Arity       int
}

func (*EnumConstructorValue) Kind() Kind { return KindEnumConstructor }

type ModuleValue struct {
	Name    string
	Exports map[string]Value
}

func (*ModuleValue) Kind() Kind { return KindModule }

//-----------------------------------------------------------------------------
// Shared semantics
//-----------------------------------------------------------------------------

// IsTruthy follows the language's truthiness rules: Unit, false, zero, the
// empty string, and the empty array are falsy; everything else is truthy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case UnitValue:
		return false
	case BooleanValue:
		return val.Val
	case NumberValue:
		return !val.Val.IsZero()
	case StringValue:
		return val.Val != ""
	case *ArrayValue:
		return len(val.Elements) > 0
	case nil:
		return false
	default:
		return true
	}
}

// ValuesEqual is structural equality. Values of different kinds are unequal,
// never an error; callables compare by identity-adjacent metadata.
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case UnitValue:
		_, ok := b.(UnitValue)
		return ok
	case NumberValue:
		bv, ok := b.(NumberValue)
		return ok && av.Val.Equal(bv.Val)
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.Val == bv.Val
	case BooleanValue:
		bv, ok := b.(BooleanValue)
		return ok && av.Val == bv.Val
	case *ArrayValue:
		bv, ok := b.(*ArrayValue)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for idx := range av.Elements {
			if !ValuesEqual(av.Elements[idx], bv.Elements[idx]) {
				return false
			}
		}
		return true
	case *FunctionValue:
		bv, ok := b.(*FunctionValue)
		return ok && av.Name == bv.Name && av.IsAsync == bv.IsAsync && len(av.Params) == len(bv.Params)
	case *ClosureValue:
		bv, ok := b.(*ClosureValue)
		return ok && av == bv
	case *StructValue:
		bv, ok := b.(*StructValue)
		if !ok || av.Name != bv.Name || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for name, val := range av.Fields {
			other, present := bv.Fields[name]
			if !present || !ValuesEqual(val, other) {
				return false
			}
		}
		return true
	case *BuiltinValue:
		bv, ok := b.(*BuiltinValue)
		return ok && av.Struct != nil && bv.Struct != nil && av.Struct.Name == bv.Struct.Name
	case *BoundMethodValue:
		bv, ok := b.(*BoundMethodValue)
		return ok && av.MethodName == bv.MethodName && ValuesEqual(av.Receiver, bv.Receiver)
	case *UserMethodValue:
		bv, ok := b.(*UserMethodValue)
		return ok && av.MethodName == bv.MethodName && ValuesEqual(av.Receiver, bv.Receiver)
	case *PromiseValue:
		bv, ok := b.(*PromiseValue)
		return ok && av == bv
	case *EnumVariantValue:
		bv, ok := b.(*EnumVariantValue)
		if !ok || av.EnumName != bv.EnumName || av.VariantName != bv.VariantName || len(av.Values) != len(bv.Values) {
			return false
		}
		for idx := range av.Values {
			if !ValuesEqual(av.Values[idx], bv.Values[idx]) {
				return false
			}
		}
		return true
	case *EnumConstructorValue:
		bv, ok := b.(*EnumConstructorValue)
		return ok && av.EnumName == bv.EnumName && av.VariantName == bv.VariantName && av.Arity == bv.Arity
	case *ModuleValue:
		bv, ok := b.(*ModuleValue)
		return ok && av.Name == bv.Name
	default:
		return false
	}
}

// TypeName is the runtime type label used in operator and call errors.
func TypeName(v Value) string {
	switch val := v.(type) {
	case UnitValue:
		return "unit"
	case NumberValue:
		return "num"
	case StringValue:
		return "str"
	case BooleanValue:
		return "bool"
	case *ArrayValue:
		return "array"
	case *FunctionValue:
		return "function"
	case *ClosureValue:
		return "closure"
	case *StructValue:
		return val.Name
	case *BuiltinValue:
		if val.Struct != nil {
			return val.Struct.Name
		}
		return "builtin"
	case *BuiltinFnValue:
		return "builtin_function"
	case *BoundMethodValue:
		return "method"
	case *UserMethodValue:
		return "method"
	case *PromiseValue:
		return "promise"
	case *EnumVariantValue:
		return val.EnumName
	case *EnumConstructorValue:
		return val.EnumName + "_constructor"
	case *ModuleValue:
		return "module_" + val.Name
	default:
		return "unknown"
	}
}
