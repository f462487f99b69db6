package interpreter

import (
	"loft/interpreter-go/pkg/runtime"
)

// promiseBuiltin is the combinator namespace over the eager promise model.
// Pending promises are settled through ctx.Call the first time a combinator
// or an await demands their value.
func promiseBuiltin() *runtime.BuiltinStruct {
	b := runtime.NewBuiltinStruct("Promise")
	b.AddMethod("resolve", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.ResolvedPromise(optionalArg(args)), nil
	})
	b.AddMethod("reject", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		val := optionalArg(args)
		// Rejection values travel as Result.Err so `?` can propagate them.
		if variant, ok := val.(*runtime.EnumVariantValue); !ok || variant.VariantName != "Err" {
			val = &runtime.EnumVariantValue{
				EnumName:    "Result",
				VariantName: "Err",
				Values:      []runtime.Value{val},
			}
		}
		return runtime.RejectedPromise(val), nil
	})
	b.AddMethod("spawn", func(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("Promise.spawn", args, 1); err != nil {
			return nil, err
		}
		p := runtime.PendingPromise(args[0])
		ctx.EnqueueTask(p)
		return p, nil
	})
	b.AddMethod("all", promiseAll)
	b.AddMethod("any", promiseAny)
	b.AddMethod("allSettled", promiseAllSettled)
	b.AddMethod("race", promiseRace)
	return b
}

func optionalArg(args []runtime.Value) runtime.Value {
	if len(args) == 0 {
		return runtime.UnitValue{}
	}
	return args[0]
}

// promiseAll settles every element and resolves with the array of results.
// The first rejection aborts; non-promise elements count as resolved values.
func promiseAll(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.ResolvedPromise(&runtime.ArrayValue{}), nil
	}
	arr, err := wantArray("Promise.all", args[0])
	if err != nil {
		return nil, err
	}
	results := make([]runtime.Value, 0, len(arr.Elements))
	for _, el := range arr.Elements {
		p, ok := el.(*runtime.PromiseValue)
		if !ok {
			results = append(results, el)
			continue
		}
		if err := p.Settle(ctx.Call); err != nil {
			return nil, err
		}
		if p.Rejected {
			return nil, runtime.NewError("Promise.all: rejected: " + runtime.DefaultString(p.Result))
		}
		results = append(results, p.Result)
	}
	return runtime.ResolvedPromise(&runtime.ArrayValue{Elements: results}), nil
}

// promiseAny returns the first promise that settles resolved, skipping
// rejections. Task errors during settling become rejections, never program
// errors.
func promiseAny(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return nil, runtime.NewError("Promise.any: expected an array of promises")
	}
	arr, err := wantArray("Promise.any", args[0])
	if err != nil {
		return nil, err
	}
	if len(arr.Elements) == 0 {
		return nil, runtime.NewError("Promise.any: called with an empty array")
	}
	for _, el := range arr.Elements {
		p, ok := el.(*runtime.PromiseValue)
		if !ok {
			return runtime.ResolvedPromise(el), nil
		}
		p.SettleRejecting(ctx.Call)
		if !p.Rejected {
			return p, nil
		}
	}
	return nil, runtime.NewError("Promise.any: all promises rejected")
}

// promiseAllSettled never rejects: every element becomes a
// PromiseSettledResult struct with a status of "fulfilled" or "rejected".
func promiseAllSettled(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.ResolvedPromise(&runtime.ArrayValue{}), nil
	}
	arr, err := wantArray("Promise.allSettled", args[0])
	if err != nil {
		return nil, err
	}
	results := make([]runtime.Value, 0, len(arr.Elements))
	for _, el := range arr.Elements {
		status, value := "fulfilled", el
		if p, ok := el.(*runtime.PromiseValue); ok {
			p.SettleRejecting(ctx.Call)
			value = p.Result
			if p.Rejected {
				status = "rejected"
			}
		}
		fields := map[string]runtime.Value{
			"status": runtime.StringValue{Val: status},
		}
		if status == "fulfilled" {
			fields["value"] = value
		} else {
			fields["reason"] = value
		}
		results = append(results, &runtime.StructValue{Name: "PromiseSettledResult", Fields: fields})
	}
	return runtime.ResolvedPromise(&runtime.ArrayValue{Elements: results}), nil
}

// promiseRace reduces to "settle the first element" because every promise in
// this model resolves eagerly on demand.
func promiseRace(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return nil, runtime.NewError("Promise.race: expected an array of promises")
	}
	arr, err := wantArray("Promise.race", args[0])
	if err != nil {
		return nil, err
	}
	if len(arr.Elements) == 0 {
		return runtime.UnitValue{}, nil
	}
	first := arr.Elements[0]
	p, ok := first.(*runtime.PromiseValue)
	if !ok {
		return runtime.ResolvedPromise(first), nil
	}
	if err := p.Settle(ctx.Call); err != nil {
		return nil, err
	}
	return p, nil
}
