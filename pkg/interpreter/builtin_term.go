package interpreter

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"loft/interpreter-go/pkg/runtime"
)

// termBuiltin is the terminal namespace: print, println, input.
func termBuiltin() *runtime.BuiltinStruct {
	b := runtime.NewBuiltinStruct("term")
	b.AddMethod("print", func(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		text, err := joinStringified(ctx, args)
		if err != nil {
			return nil, err
		}
		fmt.Fprint(os.Stdout, text)
		return runtime.UnitValue{}, nil
	})
	b.AddMethod("println", func(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		text, err := joinStringified(ctx, args)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(os.Stdout, text)
		return runtime.UnitValue{}, nil
	})
	b.AddMethod("input", func(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) > 1 {
			return nil, runtime.NewError("term.input: wrong number of arguments")
		}
		if len(args) == 1 {
			prompt, err := ctx.Stringify(args[0])
			if err != nil {
				return nil, err
			}
			fmt.Fprint(os.Stdout, prompt)
		}
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return nil, runtime.NewError("term.input: " + err.Error())
		}
		return runtime.StringValue{Val: strings.TrimRight(line, "\r\n")}, nil
	})
	return b
}

func joinStringified(ctx *runtime.NativeCallContext, args []runtime.Value) (string, error) {
	parts := make([]string, len(args))
	for idx, arg := range args {
		text, err := ctx.Stringify(arg)
		if err != nil {
			return "", err
		}
		parts[idx] = text
	}
	return strings.Join(parts, " "), nil
}
