package interpreter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"loft/interpreter-go/pkg/runtime"
)

// jsonBuiltin maps JSON documents to runtime values: objects become structs
// named "object", arrays become arrays, numbers stay exact decimals.
func jsonBuiltin() *runtime.BuiltinStruct {
	b := runtime.NewBuiltinStruct("json")
	b.AddMethod("parse", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("json.parse", args, 1); err != nil {
			return nil, err
		}
		text, err := wantString("json.parse", args[0])
		if err != nil {
			return nil, err
		}
		dec := json.NewDecoder(bytes.NewReader([]byte(text.Val)))
		dec.UseNumber()
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, runtime.NewError("json.parse: " + err.Error())
		}
		return jsonToValue(raw)
	})
	b.AddMethod("stringify", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("json.stringify", args, 1); err != nil {
			return nil, err
		}
		var sb strings.Builder
		if err := valueToJSON(&sb, args[0]); err != nil {
			return nil, err
		}
		return runtime.StringValue{Val: sb.String()}, nil
	})
	return b
}

func jsonToValue(raw any) (runtime.Value, error) {
	switch v := raw.(type) {
	case nil:
		return runtime.UnitValue{}, nil
	case bool:
		return runtime.BooleanValue{Val: v}, nil
	case string:
		return runtime.StringValue{Val: v}, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return nil, runtime.NewError("json.parse: bad number " + v.String())
		}
		return runtime.NumberValue{Val: d}, nil
	case []any:
		elements := make([]runtime.Value, len(v))
		for idx, el := range v {
			value, err := jsonToValue(el)
			if err != nil {
				return nil, err
			}
			elements[idx] = value
		}
		return &runtime.ArrayValue{Elements: elements}, nil
	case map[string]any:
		fields := make(map[string]runtime.Value, len(v))
		for key, el := range v {
			value, err := jsonToValue(el)
			if err != nil {
				return nil, err
			}
			fields[key] = value
		}
		return &runtime.StructValue{Name: "object", Fields: fields}, nil
	default:
		return nil, runtime.NewError(fmt.Sprintf("json.parse: unsupported value %T", raw))
	}
}

func valueToJSON(sb *strings.Builder, v runtime.Value) error {
	switch val := v.(type) {
	case runtime.UnitValue:
		sb.WriteString("null")
	case runtime.BooleanValue:
		if val.Val {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case runtime.NumberValue:
		sb.WriteString(val.Val.String())
	case runtime.StringValue:
		encoded, err := json.Marshal(val.Val)
		if err != nil {
			return runtime.NewError("json.stringify: " + err.Error())
		}
		sb.Write(encoded)
	case *runtime.ArrayValue:
		sb.WriteByte('[')
		for idx, el := range val.Elements {
			if idx > 0 {
				sb.WriteByte(',')
			}
			if err := valueToJSON(sb, el); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case *runtime.StructValue:
		keys := make([]string, 0, len(val.Fields))
		for key := range val.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for idx, key := range keys {
			if idx > 0 {
				sb.WriteByte(',')
			}
			encoded, err := json.Marshal(key)
			if err != nil {
				return runtime.NewError("json.stringify: " + err.Error())
			}
			sb.Write(encoded)
			sb.WriteByte(':')
			if err := valueToJSON(sb, val.Fields[key]); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	default:
		return runtime.NewError("json.stringify: cannot serialize a value of type '" + runtime.TypeName(v) + "'")
	}
	return nil
}
