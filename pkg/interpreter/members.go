package interpreter

import (
	"loft/interpreter-go/pkg/ast"
	"loft/interpreter-go/pkg/runtime"
)

// evaluateFieldAccess resolves `object.field`. Enum namespace access is
// checked before the object expression is evaluated, so `Color.Red` works
// even when no variable named Color exists.
func (i *Interpreter) evaluateFieldAccess(e *ast.FieldAccessExpression) (runtime.Value, error) {
	if ident, ok := e.Object.(*ast.Identifier); ok {
		if value, found, err := i.resolveEnumMember(ident.Name, e.Field); found || err != nil {
			return value, err
		}
	}
	object, err := i.evaluateExpression(e.Object)
	if err != nil {
		return nil, err
	}
	return i.resolveMember(object, e.Field)
}

func (i *Interpreter) resolveEnumMember(enumName, member string) (runtime.Value, bool, error) {
	variants, ok := i.enums[enumName]
	if !ok {
		return nil, false, nil
	}
	for _, variant := range variants {
		if variant.Name != member {
			continue
		}
		if len(variant.Fields) == 0 {
			return &runtime.EnumVariantValue{EnumName: enumName, VariantName: member}, true, nil
		}
		return &runtime.EnumConstructorValue{
			EnumName:    enumName,
			VariantName: member,
			Arity:       len(variant.Fields),
		}, true, nil
	}
	return nil, false, i.error("enum '%s' has no variant '%s'", enumName, member)
}

// resolveMember is the per-kind member dispatch: builtin namespaces expose
// fields then methods, structs expose fields then impl methods, arrays and
// strings expose their stdlib method tables, modules expose exports.
func (i *Interpreter) resolveMember(object runtime.Value, member string) (runtime.Value, error) {
	switch obj := object.(type) {
	case *runtime.BuiltinValue:
		if value, ok := obj.Struct.Fields[member]; ok {
			return value, nil
		}
		if method, ok := obj.Struct.Methods[member]; ok {
			return &runtime.BoundMethodValue{Receiver: obj, MethodName: member, Method: method}, nil
		}
		return nil, i.error("builtin '%s' has no member '%s'", obj.Struct.Name, member)
	case *runtime.StructValue:
		if value, ok := obj.Fields[member]; ok {
			return value, nil
		}
		if method, ok := i.lookupImplMethod(obj.Name, member); ok {
			return &runtime.UserMethodValue{
				Receiver:   obj,
				MethodName: member,
				Params:     method.Params,
				ReturnType: method.ReturnType,
				Body:       method.Body,
			}, nil
		}
		return nil, i.error("struct '%s' has no field or method '%s'", obj.Name, member)
	case *runtime.ArrayValue:
		if method, ok := arrayMethods[member]; ok {
			return &runtime.BoundMethodValue{Receiver: obj, MethodName: member, Method: method}, nil
		}
		return nil, i.error("array has no method '%s'", member)
	case runtime.StringValue:
		if method, ok := stringMethods[member]; ok {
			return &runtime.BoundMethodValue{Receiver: obj, MethodName: member, Method: method}, nil
		}
		return nil, i.error("string has no method '%s'", member)
	case *runtime.ModuleValue:
		if value, ok := obj.Exports[member]; ok {
			return value, nil
		}
		return nil, i.error("module '%s' does not export '%s'", obj.Name, member)
	case *runtime.EnumVariantValue:
		return nil, i.error("enum variant '%s.%s' has no member '%s'",
			obj.EnumName, obj.VariantName, member)
	default:
		return nil, i.error("cannot access member '%s' on a value of type '%s'",
			member, runtime.TypeName(object))
	}
}

// stringify renders a value for template interpolation and printing. Structs
// with a user to_string impl use it; everything else uses the default form.
func (i *Interpreter) stringify(value runtime.Value) (string, error) {
	if structVal, ok := value.(*runtime.StructValue); ok {
		if method, found := i.lookupImplMethod(structVal.Name, "to_string"); found {
			result, err := i.callImplMethod(structVal, "to_string", method, nil)
			if err != nil {
				return "", err
			}
			if str, isStr := result.(runtime.StringValue); isStr {
				return str.Val, nil
			}
			return "", i.error("to_string impl for '%s' must return a string, got '%s'",
				structVal.Name, runtime.TypeName(result))
		}
	}
	return runtime.DefaultString(value), nil
}
