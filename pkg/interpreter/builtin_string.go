package interpreter

import (
	"strings"

	"github.com/shopspring/decimal"

	"loft/interpreter-go/pkg/runtime"
)

// stringMethods is the method table field access consults on string
// receivers. Indexing and lengths are rune-based.
var stringMethods = map[string]runtime.NativeMethod{
	"len": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("string.len", args, 0); err != nil {
			return nil, err
		}
		str := recv.(runtime.StringValue)
		return runtime.NumberFromInt(int64(len([]rune(str.Val)))), nil
	},
	"upper": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("string.upper", args, 0); err != nil {
			return nil, err
		}
		str := recv.(runtime.StringValue)
		return runtime.StringValue{Val: strings.ToUpper(str.Val)}, nil
	},
	"lower": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("string.lower", args, 0); err != nil {
			return nil, err
		}
		str := recv.(runtime.StringValue)
		return runtime.StringValue{Val: strings.ToLower(str.Val)}, nil
	},
	"trim": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("string.trim", args, 0); err != nil {
			return nil, err
		}
		str := recv.(runtime.StringValue)
		return runtime.StringValue{Val: strings.TrimSpace(str.Val)}, nil
	},
	"contains": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("string.contains", args, 1); err != nil {
			return nil, err
		}
		str := recv.(runtime.StringValue)
		needle, err := wantString("string.contains", args[0])
		if err != nil {
			return nil, err
		}
		return runtime.BooleanValue{Val: strings.Contains(str.Val, needle.Val)}, nil
	},
	"starts_with": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("string.starts_with", args, 1); err != nil {
			return nil, err
		}
		str := recv.(runtime.StringValue)
		prefix, err := wantString("string.starts_with", args[0])
		if err != nil {
			return nil, err
		}
		return runtime.BooleanValue{Val: strings.HasPrefix(str.Val, prefix.Val)}, nil
	},
	"ends_with": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("string.ends_with", args, 1); err != nil {
			return nil, err
		}
		str := recv.(runtime.StringValue)
		suffix, err := wantString("string.ends_with", args[0])
		if err != nil {
			return nil, err
		}
		return runtime.BooleanValue{Val: strings.HasSuffix(str.Val, suffix.Val)}, nil
	},
	"replace": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("string.replace", args, 2); err != nil {
			return nil, err
		}
		str := recv.(runtime.StringValue)
		old, err := wantString("string.replace", args[0])
		if err != nil {
			return nil, err
		}
		repl, err := wantString("string.replace", args[1])
		if err != nil {
			return nil, err
		}
		return runtime.StringValue{Val: strings.ReplaceAll(str.Val, old.Val, repl.Val)}, nil
	},
	"split": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("string.split", args, 1); err != nil {
			return nil, err
		}
		str := recv.(runtime.StringValue)
		sep, err := wantString("string.split", args[0])
		if err != nil {
			return nil, err
		}
		parts := strings.Split(str.Val, sep.Val)
		elements := make([]runtime.Value, len(parts))
		for idx, part := range parts {
			elements[idx] = runtime.StringValue{Val: part}
		}
		return &runtime.ArrayValue{Elements: elements}, nil
	},
	"chars": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("string.chars", args, 0); err != nil {
			return nil, err
		}
		str := recv.(runtime.StringValue)
		runes := []rune(str.Val)
		elements := make([]runtime.Value, len(runes))
		for idx, r := range runes {
			elements[idx] = runtime.StringValue{Val: string(r)}
		}
		return &runtime.ArrayValue{Elements: elements}, nil
	},
	"repeat": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("string.repeat", args, 1); err != nil {
			return nil, err
		}
		str := recv.(runtime.StringValue)
		n, err := wantInt("string.repeat", args[0])
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, runtime.NewError("string.repeat: negative count")
		}
		return runtime.StringValue{Val: strings.Repeat(str.Val, int(n))}, nil
	},
	"index_of": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("string.index_of", args, 1); err != nil {
			return nil, err
		}
		str := recv.(runtime.StringValue)
		needle, err := wantString("string.index_of", args[0])
		if err != nil {
			return nil, err
		}
		byteIdx := strings.Index(str.Val, needle.Val)
		if byteIdx < 0 {
			return runtime.NumberFromInt(-1), nil
		}
		return runtime.NumberFromInt(int64(len([]rune(str.Val[:byteIdx])))), nil
	},
	"slice": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("string.slice", args, 2); err != nil {
			return nil, err
		}
		str := recv.(runtime.StringValue)
		from, err := wantInt("string.slice", args[0])
		if err != nil {
			return nil, err
		}
		to, err := wantInt("string.slice", args[1])
		if err != nil {
			return nil, err
		}
		runes := []rune(str.Val)
		n := int64(len(runes))
		if from < 0 || to > n || from > to {
			return nil, runtime.NewError("string.slice: range out of bounds")
		}
		return runtime.StringValue{Val: string(runes[from:to])}, nil
	},
	"to_num": func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("string.to_num", args, 0); err != nil {
			return nil, err
		}
		str := recv.(runtime.StringValue)
		d, err := decimal.NewFromString(strings.TrimSpace(str.Val))
		if err != nil {
			return nil, runtime.NewError("string.to_num: cannot parse '" + str.Val + "' as a number")
		}
		return runtime.NumberValue{Val: d}, nil
	},
}
