package interpreter

import (
	"encoding/base64"
	"net/url"
	"unicode/utf8"

	"loft/interpreter-go/pkg/runtime"
)

// encodingBuiltin covers the transport-adjacent string codecs: base64, URL
// escaping, and byte-array conversion.
func encodingBuiltin() *runtime.BuiltinStruct {
	b := runtime.NewBuiltinStruct("encoding")
	b.AddMethod("base64_encode", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		str, err := oneStringArg("encoding.base64_encode", args)
		if err != nil {
			return nil, err
		}
		return runtime.StringValue{Val: base64.StdEncoding.EncodeToString([]byte(str))}, nil
	})
	b.AddMethod("base64_decode", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		str, err := oneStringArg("encoding.base64_decode", args)
		if err != nil {
			return nil, err
		}
		decoded, err := base64.StdEncoding.DecodeString(str)
		if err != nil {
			return nil, runtime.NewError("encoding.base64_decode: invalid base64: " + err.Error())
		}
		if !utf8.Valid(decoded) {
			return nil, runtime.NewError("encoding.base64_decode: decoded data is not valid UTF-8")
		}
		return runtime.StringValue{Val: string(decoded)}, nil
	})
	b.AddMethod("url_encode", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		str, err := oneStringArg("encoding.url_encode", args)
		if err != nil {
			return nil, err
		}
		return runtime.StringValue{Val: url.QueryEscape(str)}, nil
	})
	b.AddMethod("url_decode", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		str, err := oneStringArg("encoding.url_decode", args)
		if err != nil {
			return nil, err
		}
		decoded, err := url.QueryUnescape(str)
		if err != nil {
			return nil, runtime.NewError("encoding.url_decode: " + err.Error())
		}
		return runtime.StringValue{Val: decoded}, nil
	})
	b.AddMethod("to_bytes", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		str, err := oneStringArg("encoding.to_bytes", args)
		if err != nil {
			return nil, err
		}
		bytes := []byte(str)
		out := make([]runtime.Value, len(bytes))
		for idx, bt := range bytes {
			out[idx] = runtime.NumberFromInt(int64(bt))
		}
		return &runtime.ArrayValue{Elements: out}, nil
	})
	b.AddMethod("from_bytes", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("encoding.from_bytes", args, 1); err != nil {
			return nil, err
		}
		arr, err := wantArray("encoding.from_bytes", args[0])
		if err != nil {
			return nil, err
		}
		bytes := make([]byte, len(arr.Elements))
		for idx, el := range arr.Elements {
			n, err := wantInt("encoding.from_bytes", el)
			if err != nil {
				return nil, err
			}
			if n < 0 || n > 255 {
				return nil, runtime.NewError("encoding.from_bytes: byte value out of range")
			}
			bytes[idx] = byte(n)
		}
		if !utf8.Valid(bytes) {
			return nil, runtime.NewError("encoding.from_bytes: bytes are not valid UTF-8")
		}
		return runtime.StringValue{Val: string(bytes)}, nil
	})
	return b
}

func oneStringArg(name string, args []runtime.Value) (string, error) {
	if err := wantArgs(name, args, 1); err != nil {
		return "", err
	}
	str, err := wantString(name, args[0])
	if err != nil {
		return "", err
	}
	return str.Val, nil
}
