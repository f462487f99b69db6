package interpreter

import (
	"math"

	"github.com/shopspring/decimal"

	"loft/interpreter-go/pkg/runtime"
)

func mathBuiltin() *runtime.BuiltinStruct {
	b := runtime.NewBuiltinStruct("math")
	b.AddField("pi", runtime.NumberValue{Val: decimal.NewFromFloat(math.Pi)})

	unary := func(name string, f func(decimal.Decimal) decimal.Decimal) {
		b.AddMethod(name, func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			if err := wantArgs("math."+name, args, 1); err != nil {
				return nil, err
			}
			num, err := wantNumber("math."+name, args[0])
			if err != nil {
				return nil, err
			}
			return runtime.NumberValue{Val: f(num.Val)}, nil
		})
	}
	unary("abs", func(d decimal.Decimal) decimal.Decimal { return d.Abs() })
	unary("floor", func(d decimal.Decimal) decimal.Decimal { return d.Floor() })
	unary("ceil", func(d decimal.Decimal) decimal.Decimal { return d.Ceil() })
	unary("round", func(d decimal.Decimal) decimal.Decimal { return d.Round(0) })

	b.AddMethod("sqrt", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("math.sqrt", args, 1); err != nil {
			return nil, err
		}
		num, err := wantNumber("math.sqrt", args[0])
		if err != nil {
			return nil, err
		}
		if num.Val.IsNegative() {
			return nil, runtime.NewError("math.sqrt: negative argument")
		}
		f, _ := num.Val.Float64()
		return runtime.NumberValue{Val: decimal.NewFromFloat(math.Sqrt(f))}, nil
	})
	b.AddMethod("pow", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("math.pow", args, 2); err != nil {
			return nil, err
		}
		base, err := wantNumber("math.pow", args[0])
		if err != nil {
			return nil, err
		}
		exp, err := wantNumber("math.pow", args[1])
		if err != nil {
			return nil, err
		}
		return runtime.NumberValue{Val: base.Val.Pow(exp.Val)}, nil
	})
	b.AddMethod("min", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return mathExtremum("math.min", args, func(a, b decimal.Decimal) bool { return a.LessThan(b) })
	})
	b.AddMethod("max", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return mathExtremum("math.max", args, func(a, b decimal.Decimal) bool { return a.GreaterThan(b) })
	})
	return b
}

func mathExtremum(name string, args []runtime.Value, better func(a, b decimal.Decimal) bool) (runtime.Value, error) {
	if len(args) == 0 {
		return nil, runtime.NewError(name + ": wrong number of arguments")
	}
	best, err := wantNumber(name, args[0])
	if err != nil {
		return nil, err
	}
	result := best.Val
	for _, arg := range args[1:] {
		num, err := wantNumber(name, arg)
		if err != nil {
			return nil, err
		}
		if better(num.Val, result) {
			result = num.Val
		}
	}
	return runtime.NumberValue{Val: result}, nil
}
