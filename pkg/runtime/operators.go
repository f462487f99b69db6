package runtime

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ApplyBinary dispatches a binary operator over primitive operand kinds:
// decimal arithmetic, string concatenation, comparisons, and bitwise ops.
// Struct operands with user impls never reach here; the evaluator intercepts
// them first.
func ApplyBinary(op string, left, right Value) (Value, error) {
	switch op {
	case "+":
		return applyAdd(left, right)
	case "-":
		return applyNumeric(op, left, right, func(l, r decimal.Decimal) (Value, error) {
			return NumberValue{Val: l.Sub(r)}, nil
		}, "Cannot subtract %s and %s")
	case "*":
		return applyNumeric(op, left, right, func(l, r decimal.Decimal) (Value, error) {
			return NumberValue{Val: l.Mul(r)}, nil
		}, "Cannot multiply %s and %s")
	case "/":
		return applyNumeric(op, left, right, func(l, r decimal.Decimal) (Value, error) {
			if r.IsZero() {
				return nil, NewError("Division by zero")
			}
			return NumberValue{Val: l.Div(r)}, nil
		}, "Cannot divide %s by %s")
	case "%":
		return applyNumeric(op, left, right, func(l, r decimal.Decimal) (Value, error) {
			if r.IsZero() {
				return nil, NewError("Division by zero")
			}
			return NumberValue{Val: l.Mod(r)}, nil
		}, "Cannot take remainder of %s and %s")
	case "&", "|", "^", "<<", ">>":
		return applyBitwise(op, left, right)
	case ">", ">=", "<", "<=":
		return applyComparison(op, left, right)
	case "==":
		return BooleanValue{Val: ValuesEqual(left, right)}, nil
	case "!=":
		return BooleanValue{Val: !ValuesEqual(left, right)}, nil
	default:
		return nil, NewError(fmt.Sprintf("Unknown operator: %s", op))
	}
}

func applyAdd(left, right Value) (Value, error) {
	switch l := left.(type) {
	case NumberValue:
		if r, ok := right.(NumberValue); ok {
			return NumberValue{Val: l.Val.Add(r.Val)}, nil
		}
	case StringValue:
		if r, ok := right.(StringValue); ok {
			return StringValue{Val: l.Val + r.Val}, nil
		}
		// String + any coerces the right-hand side to its default rendering.
		return StringValue{Val: l.Val + DefaultString(right)}, nil
	}
	return nil, NewError(fmt.Sprintf("Cannot add %s and %s", TypeName(left), TypeName(right)))
}

func applyNumeric(op string, left, right Value, f func(l, r decimal.Decimal) (Value, error), msg string) (Value, error) {
	l, lok := left.(NumberValue)
	r, rok := right.(NumberValue)
	if !lok || !rok {
		return nil, NewError(fmt.Sprintf(msg, TypeName(left), TypeName(right)))
	}
	return f(l.Val, r.Val)
}

func applyBitwise(op string, left, right Value) (Value, error) {
	l, lok := left.(NumberValue)
	r, rok := right.(NumberValue)
	if !lok || !rok {
		return nil, NewError(fmt.Sprintf("Cannot apply '%s' to %s and %s", op, TypeName(left), TypeName(right)))
	}
	// Operands are truncated toward zero before the integer operation.
	li := l.Val.IntPart()
	ri := r.Val.IntPart()
	switch op {
	case "&":
		return NumberFromInt(li & ri), nil
	case "|":
		return NumberFromInt(li | ri), nil
	case "^":
		return NumberFromInt(li ^ ri), nil
	case "<<", ">>":
		if ri < 0 {
			return nil, NewError("Right operand of shift must be a non-negative integer")
		}
		if op == "<<" {
			return NumberFromInt(li << uint(ri)), nil
		}
		return NumberFromInt(li >> uint(ri)), nil
	}
	return nil, NewError(fmt.Sprintf("Unknown operator: %s", op))
}

func applyComparison(op string, left, right Value) (Value, error) {
	l, lok := left.(NumberValue)
	r, rok := right.(NumberValue)
	if !lok || !rok {
		return nil, NewError(fmt.Sprintf("Cannot compare %s %s %s", TypeName(left), op, TypeName(right)))
	}
	cmp := l.Val.Cmp(r.Val)
	switch op {
	case ">":
		return BooleanValue{Val: cmp > 0}, nil
	case ">=":
		return BooleanValue{Val: cmp >= 0}, nil
	case "<":
		return BooleanValue{Val: cmp < 0}, nil
	case "<=":
		return BooleanValue{Val: cmp <= 0}, nil
	}
	return nil, NewError(fmt.Sprintf("Unknown operator: %s", op))
}

// ApplyIndex dispatches bracket indexing over primitive kinds: arrays and
// strings by number, structs by string key. Struct `index` impls are handled
// by the evaluator before this is consulted.
func ApplyIndex(base, index Value) (Value, error) {
	switch b := base.(type) {
	case *ArrayValue:
		n, ok := index.(NumberValue)
		if !ok {
			return nil, NewError("Array index must be a number")
		}
		idx, err := nonNegativeIndex(n)
		if err != nil {
			return nil, err
		}
		if idx >= len(b.Elements) {
			return nil, NewError(fmt.Sprintf("Array index %d out of bounds", idx))
		}
		return b.Elements[idx], nil
	case StringValue:
		n, ok := index.(NumberValue)
		if !ok {
			return nil, NewError("String index must be a number")
		}
		idx, err := nonNegativeIndex(n)
		if err != nil {
			return nil, err
		}
		runes := []rune(b.Val)
		if idx >= len(runes) {
			return nil, NewError(fmt.Sprintf("String index %d out of bounds", idx))
		}
		return StringValue{Val: string(runes[idx])}, nil
	case *StructValue:
		key, ok := index.(StringValue)
		if !ok {
			return nil, NewError("Object index must be a string")
		}
		val, present := b.Fields[key.Val]
		if !present {
			return nil, NewError(fmt.Sprintf("Object does not have property '%s'", key.Val))
		}
		return val, nil
	default:
		return nil, NewError(fmt.Sprintf("Cannot index value of type %s", TypeName(base)))
	}
}

func nonNegativeIndex(n NumberValue) (int, error) {
	if !n.Val.IsInteger() || n.Val.Sign() < 0 {
		return 0, NewError("Index must be a non-negative integer")
	}
	return int(n.Val.IntPart()), nil
}
