package runtime

import (
	"fmt"
	"strings"
)

// DefaultString renders a value without consulting user to_string impls.
// The evaluator layers impl dispatch on top of this for structs.
func DefaultString(v Value) string {
	switch val := v.(type) {
	case UnitValue:
		return "()"
	case NumberValue:
		return val.Val.String()
	case StringValue:
		return val.Val
	case BooleanValue:
		return fmt.Sprintf("%t", val.Val)
	case *ArrayValue:
		items := make([]string, 0, len(val.Elements))
		for _, el := range val.Elements {
			items = append(items, DefaultString(el))
		}
		return "[" + strings.Join(items, ", ") + "]"
	case *FunctionValue:
		return fmt.Sprintf("<function %s>", val.Name)
	case *ClosureValue:
		return fmt.Sprintf("<closure with %d params>", len(val.Params))
	case *StructValue:
		return fmt.Sprintf("<struct %s>", val.Name)
	case *BuiltinValue:
		if val.Struct != nil {
			return fmt.Sprintf("<builtin %s>", val.Struct.Name)
		}
		return "<builtin>"
	case *BuiltinFnValue:
		return "<builtin function>"
	case *BoundMethodValue:
		return fmt.Sprintf("<bound method %s>", val.MethodName)
	case *UserMethodValue:
		return fmt.Sprintf("<method %s>", val.MethodName)
	case *PromiseValue:
		if val.Pending() {
			return "<promise pending>"
		}
		return fmt.Sprintf("<promise %s>", DefaultString(val.Result))
	case *EnumVariantValue:
		// Option and Result render without the enum prefix.
		bare := val.EnumName == "Option" || val.EnumName == "Result"
		if len(val.Values) == 0 {
			if bare {
				return val.VariantName
			}
			return fmt.Sprintf("%s.%s", val.EnumName, val.VariantName)
		}
		items := make([]string, 0, len(val.Values))
		for _, el := range val.Values {
			items = append(items, DefaultString(el))
		}
		if bare {
			return fmt.Sprintf("%s(%s)", val.VariantName, strings.Join(items, ", "))
		}
		return fmt.Sprintf("%s.%s(%s)", val.EnumName, val.VariantName, strings.Join(items, ", "))
	case *EnumConstructorValue:
		return fmt.Sprintf("%s.%s", val.EnumName, val.VariantName)
	case *ModuleValue:
		return fmt.Sprintf("<module %s>", val.Name)
	default:
		return "<unknown>"
	}
}
