package interpreter

import (
	"sort"

	"loft/interpreter-go/pkg/runtime"
)

// objectBuiltin inspects struct values. Keys come back sorted so programs
// see a stable order.
func objectBuiltin() *runtime.BuiltinStruct {
	b := runtime.NewBuiltinStruct("object")
	b.AddMethod("keys", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("object.keys", args, 1); err != nil {
			return nil, err
		}
		structVal, err := wantStruct("object.keys", args[0])
		if err != nil {
			return nil, err
		}
		keys := sortedFieldNames(structVal)
		elements := make([]runtime.Value, len(keys))
		for idx, key := range keys {
			elements[idx] = runtime.StringValue{Val: key}
		}
		return &runtime.ArrayValue{Elements: elements}, nil
	})
	b.AddMethod("values", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("object.values", args, 1); err != nil {
			return nil, err
		}
		structVal, err := wantStruct("object.values", args[0])
		if err != nil {
			return nil, err
		}
		keys := sortedFieldNames(structVal)
		elements := make([]runtime.Value, len(keys))
		for idx, key := range keys {
			elements[idx] = structVal.Fields[key]
		}
		return &runtime.ArrayValue{Elements: elements}, nil
	})
	b.AddMethod("has", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("object.has", args, 2); err != nil {
			return nil, err
		}
		structVal, err := wantStruct("object.has", args[0])
		if err != nil {
			return nil, err
		}
		key, err := wantString("object.has", args[1])
		if err != nil {
			return nil, err
		}
		_, present := structVal.Fields[key.Val]
		return runtime.BooleanValue{Val: present}, nil
	})
	b.AddMethod("set", func(_ *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := wantArgs("object.set", args, 3); err != nil {
			return nil, err
		}
		structVal, err := wantStruct("object.set", args[0])
		if err != nil {
			return nil, err
		}
		key, err := wantString("object.set", args[1])
		if err != nil {
			return nil, err
		}
		fields := structVal.CloneFields()
		fields[key.Val] = args[2]
		return &runtime.StructValue{Name: structVal.Name, Fields: fields}, nil
	})
	return b
}

func wantStruct(name string, v runtime.Value) (*runtime.StructValue, error) {
	structVal, ok := v.(*runtime.StructValue)
	if !ok {
		return nil, runtime.NewError(name + ": expected a struct, got " + runtime.TypeName(v))
	}
	return structVal, nil
}

func sortedFieldNames(s *runtime.StructValue) []string {
	keys := make([]string, 0, len(s.Fields))
	for key := range s.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
