package interpreter

import (
	"os"

	"loft/interpreter-go/pkg/runtime"
)

// fsBuiltin is gated behind the "fs" feature and consults the permission
// context before touching the host filesystem.
func fsBuiltin() *runtime.BuiltinStruct {
	b := runtime.NewBuiltinStruct("fs")
	b.AddMethod("read_file", func(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("fs.read_file", args, 1); err != nil {
			return nil, err
		}
		path, err := wantString("fs.read_file", args[0])
		if err != nil {
			return nil, err
		}
		if err := ctx.Permissions.Require(runtime.CapabilityRead, path.Val); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path.Val)
		if err != nil {
			return nil, runtime.NewError("fs.read_file: " + err.Error())
		}
		return runtime.StringValue{Val: string(data)}, nil
	})
	b.AddMethod("write_file", func(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("fs.write_file", args, 2); err != nil {
			return nil, err
		}
		path, err := wantString("fs.write_file", args[0])
		if err != nil {
			return nil, err
		}
		content, err := wantString("fs.write_file", args[1])
		if err != nil {
			return nil, err
		}
		if err := ctx.Permissions.Require(runtime.CapabilityWrite, path.Val); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path.Val, []byte(content.Val), 0o644); err != nil {
			return nil, runtime.NewError("fs.write_file: " + err.Error())
		}
		return runtime.UnitValue{}, nil
	})
	b.AddMethod("exists", func(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("fs.exists", args, 1); err != nil {
			return nil, err
		}
		path, err := wantString("fs.exists", args[0])
		if err != nil {
			return nil, err
		}
		if err := ctx.Permissions.Require(runtime.CapabilityRead, path.Val); err != nil {
			return nil, err
		}
		_, statErr := os.Stat(path.Val)
		return runtime.BooleanValue{Val: statErr == nil}, nil
	})
	return b
}
