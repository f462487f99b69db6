package interpreter

import (
	"loft/interpreter-go/pkg/runtime"
)

// testBuiltin gives scripts lightweight assertions. Failures surface as
// ordinary evaluator errors.
func testBuiltin() *runtime.BuiltinStruct {
	b := runtime.NewBuiltinStruct("test")
	b.AddMethod("assert", func(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) < 1 || len(args) > 2 {
			return nil, runtime.NewError("test.assert: wrong number of arguments")
		}
		if runtime.IsTruthy(args[0]) {
			return runtime.UnitValue{}, nil
		}
		msg := "assertion failed"
		if len(args) == 2 {
			text, err := ctx.Stringify(args[1])
			if err != nil {
				return nil, err
			}
			msg = "assertion failed: " + text
		}
		return nil, runtime.NewError(msg)
	})
	b.AddMethod("assert_eq", func(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("test.assert_eq", args, 2); err != nil {
			return nil, err
		}
		if runtime.ValuesEqual(args[0], args[1]) {
			return runtime.UnitValue{}, nil
		}
		left, err := ctx.Stringify(args[0])
		if err != nil {
			return nil, err
		}
		right, err := ctx.Stringify(args[1])
		if err != nil {
			return nil, err
		}
		return nil, runtime.NewError("assertion failed: " + left + " != " + right)
	})
	return b
}
