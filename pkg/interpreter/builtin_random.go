package interpreter

import (
	"github.com/shopspring/decimal"

	"loft/interpreter-go/pkg/runtime"
)

// randomBuiltin draws from the evaluator's RandomSource, never from a global
// generator, so seeded runs are reproducible.
func randomBuiltin() *runtime.BuiltinStruct {
	b := runtime.NewBuiltinStruct("random")
	b.AddMethod("float", func(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("random.float", args, 0); err != nil {
			return nil, err
		}
		return runtime.NumberValue{Val: decimal.NewFromFloat(ctx.Random.Float64())}, nil
	})
	b.AddMethod("int", func(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("random.int", args, 1); err != nil {
			return nil, err
		}
		n, err := wantInt("random.int", args[0])
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return nil, runtime.NewError("random.int: bound must be positive")
		}
		return runtime.NumberFromInt(ctx.Random.IntN(n)), nil
	})
	b.AddMethod("seed", func(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("random.seed", args, 1); err != nil {
			return nil, err
		}
		seed, err := wantInt("random.seed", args[0])
		if err != nil {
			return nil, err
		}
		ctx.Random.Reseed(seed)
		return runtime.UnitValue{}, nil
	})
	return b
}
