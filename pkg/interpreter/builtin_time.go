package interpreter

import (
	"time"

	"loft/interpreter-go/pkg/runtime"
)

func timeBuiltin() *runtime.BuiltinStruct {
	b := runtime.NewBuiltinStruct("time")
	b.AddMethod("now", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("time.now", args, 0); err != nil {
			return nil, err
		}
		return runtime.NumberFromInt(time.Now().UnixMilli()), nil
	})
	b.AddMethod("unix", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("time.unix", args, 0); err != nil {
			return nil, err
		}
		return runtime.NumberFromInt(time.Now().Unix()), nil
	})
	b.AddMethod("iso", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("time.iso", args, 0); err != nil {
			return nil, err
		}
		return runtime.StringValue{Val: time.Now().UTC().Format(time.RFC3339)}, nil
	})
	b.AddMethod("sleep", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("time.sleep", args, 1); err != nil {
			return nil, err
		}
		ms, err := wantInt("time.sleep", args[0])
		if err != nil {
			return nil, err
		}
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return runtime.UnitValue{}, nil
	})
	return b
}
