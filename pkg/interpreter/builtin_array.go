package interpreter

import (
	"strings"

	"loft/interpreter-go/pkg/runtime"
)

// arrayMethods is the method table field access consults on array receivers.
// Arrays are value types: every "mutating" method returns a fresh array and
// leaves the receiver untouched.
var arrayMethods = map[string]runtime.NativeMethod{
	"len": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("array.len", args, 0); err != nil {
			return nil, err
		}
		arr := recv.(*runtime.ArrayValue)
		return runtime.NumberFromInt(int64(len(arr.Elements))), nil
	},
	"push": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("array.push", args, 1); err != nil {
			return nil, err
		}
		arr := recv.(*runtime.ArrayValue)
		elements := arr.CloneElements(1)
		elements = append(elements, args[0])
		return &runtime.ArrayValue{Elements: elements}, nil
	},
	"pop": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("array.pop", args, 0); err != nil {
			return nil, err
		}
		arr := recv.(*runtime.ArrayValue)
		if len(arr.Elements) == 0 {
			return nil, runtime.NewError("array.pop: empty array")
		}
		elements := arr.CloneElements(0)
		return &runtime.ArrayValue{Elements: elements[:len(elements)-1]}, nil
	},
	"first": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("array.first", args, 0); err != nil {
			return nil, err
		}
		arr := recv.(*runtime.ArrayValue)
		if len(arr.Elements) == 0 {
			return nil, runtime.NewError("array.first: empty array")
		}
		return arr.Elements[0], nil
	},
	"last": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("array.last", args, 0); err != nil {
			return nil, err
		}
		arr := recv.(*runtime.ArrayValue)
		if len(arr.Elements) == 0 {
			return nil, runtime.NewError("array.last: empty array")
		}
		return arr.Elements[len(arr.Elements)-1], nil
	},
	"set": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("array.set", args, 2); err != nil {
			return nil, err
		}
		arr := recv.(*runtime.ArrayValue)
		idx, err := wantInt("array.set", args[0])
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= int64(len(arr.Elements)) {
			return nil, runtime.NewError("array.set: index out of bounds")
		}
		elements := arr.CloneElements(0)
		elements[idx] = args[1]
		return &runtime.ArrayValue{Elements: elements}, nil
	},
	"contains": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("array.contains", args, 1); err != nil {
			return nil, err
		}
		arr := recv.(*runtime.ArrayValue)
		for _, el := range arr.Elements {
			if runtime.ValuesEqual(el, args[0]) {
				return runtime.BooleanValue{Val: true}, nil
			}
		}
		return runtime.BooleanValue{Val: false}, nil
	},
	"index_of": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("array.index_of", args, 1); err != nil {
			return nil, err
		}
		arr := recv.(*runtime.ArrayValue)
		for idx, el := range arr.Elements {
			if runtime.ValuesEqual(el, args[0]) {
				return runtime.NumberFromInt(int64(idx)), nil
			}
		}
		return runtime.NumberFromInt(-1), nil
	},
	"concat": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("array.concat", args, 1); err != nil {
			return nil, err
		}
		arr := recv.(*runtime.ArrayValue)
		other, err := wantArray("array.concat", args[0])
		if err != nil {
			return nil, err
		}
		elements := arr.CloneElements(len(other.Elements))
		elements = append(elements, other.Elements...)
		return &runtime.ArrayValue{Elements: elements}, nil
	},
	"reverse": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("array.reverse", args, 0); err != nil {
			return nil, err
		}
		arr := recv.(*runtime.ArrayValue)
		elements := make([]runtime.Value, len(arr.Elements))
		for idx, el := range arr.Elements {
			elements[len(arr.Elements)-1-idx] = el
		}
		return &runtime.ArrayValue{Elements: elements}, nil
	},
	"slice": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("array.slice", args, 2); err != nil {
			return nil, err
		}
		arr := recv.(*runtime.ArrayValue)
		from, err := wantInt("array.slice", args[0])
		if err != nil {
			return nil, err
		}
		to, err := wantInt("array.slice", args[1])
		if err != nil {
			return nil, err
		}
		n := int64(len(arr.Elements))
		if from < 0 || to > n || from > to {
			return nil, runtime.NewError("array.slice: range out of bounds")
		}
		elements := make([]runtime.Value, to-from)
		copy(elements, arr.Elements[from:to])
		return &runtime.ArrayValue{Elements: elements}, nil
	},
	"join": func(ctx *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("array.join", args, 1); err != nil {
			return nil, err
		}
		arr := recv.(*runtime.ArrayValue)
		sep, err := wantString("array.join", args[0])
		if err != nil {
			return nil, err
		}
		parts := make([]string, len(arr.Elements))
		for idx, el := range arr.Elements {
			text, err := ctx.Stringify(el)
			if err != nil {
				return nil, err
			}
			parts[idx] = text
		}
		return runtime.StringValue{Val: strings.Join(parts, sep.Val)}, nil
	},
	"map": func(ctx *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("array.map", args, 1); err != nil {
			return nil, err
		}
		arr := recv.(*runtime.ArrayValue)
		elements := make([]runtime.Value, len(arr.Elements))
		for idx, el := range arr.Elements {
			mapped, err := ctx.Call(args[0], []runtime.Value{el})
			if err != nil {
				return nil, err
			}
			elements[idx] = mapped
		}
		return &runtime.ArrayValue{Elements: elements}, nil
	},
	"filter": func(ctx *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("array.filter", args, 1); err != nil {
			return nil, err
		}
		arr := recv.(*runtime.ArrayValue)
		var elements []runtime.Value
		for _, el := range arr.Elements {
			keep, err := ctx.Call(args[0], []runtime.Value{el})
			if err != nil {
				return nil, err
			}
			if runtime.IsTruthy(keep) {
				elements = append(elements, el)
			}
		}
		return &runtime.ArrayValue{Elements: elements}, nil
	},
	"each": func(ctx *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("array.each", args, 1); err != nil {
			return nil, err
		}
		arr := recv.(*runtime.ArrayValue)
		for _, el := range arr.Elements {
			if _, err := ctx.Call(args[0], []runtime.Value{el}); err != nil {
				return nil, err
			}
		}
		return runtime.UnitValue{}, nil
	},
	"reduce": func(ctx *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("array.reduce", args, 2); err != nil {
			return nil, err
		}
		arr := recv.(*runtime.ArrayValue)
		acc := args[1]
		for _, el := range arr.Elements {
			next, err := ctx.Call(args[0], []runtime.Value{acc, el})
			if err != nil {
				return nil, err
			}
			acc = next
		}
		return acc, nil
	},
}
