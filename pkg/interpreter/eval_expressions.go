package interpreter

import (
	"strings"

	"loft/interpreter-go/pkg/ast"
	"loft/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(expr ast.Expression) (runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return runtime.NumberValue{Val: e.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: e.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BooleanValue{Val: e.Value}, nil
	case *ast.Identifier:
		value, ok := i.env.Get(e.Name)
		if !ok {
			return nil, i.error("variable not found: %s", e.Name)
		}
		return value, nil
	case *ast.BinaryExpression:
		return i.evaluateBinary(e)
	case *ast.UnaryExpression:
		return i.evaluateUnary(e)
	case *ast.CallExpression:
		return i.evaluateCall(e)
	case *ast.FieldAccessExpression:
		return i.evaluateFieldAccess(e)
	case *ast.ArrayLiteral:
		elements := make([]runtime.Value, len(e.Elements))
		for idx, el := range e.Elements {
			value, err := i.evaluateExpression(el)
			if err != nil {
				return nil, err
			}
			elements[idx] = value
		}
		return &runtime.ArrayValue{Elements: elements}, nil
	case *ast.StructLiteral:
		fields := make(map[string]runtime.Value, len(e.Fields))
		for _, f := range e.Fields {
			value, err := i.evaluateExpression(f.Value)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = value
		}
		return &runtime.StructValue{Name: e.Name, Fields: fields}, nil
	case *ast.IndexExpression:
		return i.evaluateIndex(e)
	case *ast.LambdaExpression:
		return &runtime.ClosureValue{
			Params:     e.Params,
			ReturnType: e.ReturnType,
			Body:       e.Body,
			Captured:   i.env.CaptureAll(),
		}, nil
	case *ast.BlockExpression:
		return i.evaluateBlock(e.Body)
	case *ast.AsyncExpression:
		value, err := i.evaluateExpression(e.Expression)
		if err != nil {
			return nil, err
		}
		return &runtime.PromiseValue{Result: value}, nil
	case *ast.LazyExpression:
		value, err := i.evaluateExpression(e.Expression)
		if err != nil {
			return nil, err
		}
		return &runtime.PromiseValue{Result: value}, nil
	case *ast.AwaitExpression:
		value, err := i.evaluateExpression(e.Expression)
		if err != nil {
			return nil, err
		}
		promise, ok := value.(*runtime.PromiseValue)
		if !ok {
			return nil, i.error("cannot await a value of type '%s'", runtime.TypeName(value))
		}
		if err := promise.Settle(i.callValue); err != nil {
			return nil, err
		}
		return promise.Result, nil
	case *ast.TemplateLiteral:
		return i.evaluateTemplate(e)
	case *ast.MatchExpression:
		return i.evaluateMatchExpression(e)
	case *ast.TryExpression:
		return i.evaluateTry(e)
	default:
		return nil, i.error("unsupported expression: %s", expr.NodeType())
	}
}

// evaluateBinary dispatches user impl methods when the left operand is a
// struct, falling back to the builtin operator semantics.
func (i *Interpreter) evaluateBinary(e *ast.BinaryExpression) (runtime.Value, error) {
	left, err := i.evaluateExpression(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(e.Right)
	if err != nil {
		return nil, err
	}
	if structVal, ok := left.(*runtime.StructValue); ok {
		if methodName, known := binopMethodNames[e.Operator]; known {
			if method, found := i.lookupImplMethod(structVal.Name, methodName); found {
				return i.callImplMethod(structVal, methodName, method, []runtime.Value{right})
			}
		}
	}
	result, err := runtime.ApplyBinary(e.Operator, left, right)
	if err != nil {
		return nil, i.error("%s (left: %s, right: %s)",
			err.Error(), runtime.TypeName(left), runtime.TypeName(right))
	}
	return result, nil
}

func (i *Interpreter) evaluateUnary(e *ast.UnaryExpression) (runtime.Value, error) {
	operand, err := i.evaluateExpression(e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case "-":
		num, ok := operand.(runtime.NumberValue)
		if !ok {
			return nil, i.error("cannot negate a value of type '%s'", runtime.TypeName(operand))
		}
		return runtime.NumberValue{Val: num.Val.Neg()}, nil
	case "!":
		return runtime.BooleanValue{Val: !runtime.IsTruthy(operand)}, nil
	default:
		return nil, i.error("unsupported unary operator '%s'", e.Operator)
	}
}

func (i *Interpreter) evaluateCall(e *ast.CallExpression) (runtime.Value, error) {
	callee, err := i.evaluateExpression(e.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, len(e.Arguments))
	for idx, arg := range e.Arguments {
		value, err := i.evaluateExpression(arg)
		if err != nil {
			return nil, err
		}
		args[idx] = value
	}
	return i.callValue(callee, args)
}

// callValue dispatches a call on any callable value kind.
func (i *Interpreter) callValue(callee runtime.Value, args []runtime.Value) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.FunctionValue:
		return i.callFunction(fn, args)
	case *runtime.ClosureValue:
		return i.callClosure(fn, args)
	case *runtime.BuiltinFnValue:
		return fn.Impl(i.nativeContext(), args)
	case *runtime.BoundMethodValue:
		return fn.Method(i.nativeContext(), fn.Receiver, args)
	case *runtime.UserMethodValue:
		return i.callUserMethod(fn, args)
	case *runtime.EnumConstructorValue:
		if len(args) != fn.Arity {
			return nil, i.error("variant '%s.%s' expects %d arguments, got %d",
				fn.EnumName, fn.VariantName, fn.Arity, len(args))
		}
		return &runtime.EnumVariantValue{
			EnumName:    fn.EnumName,
			VariantName: fn.VariantName,
			Values:      args,
		}, nil
	case *runtime.BuiltinValue:
		return nil, i.error("builtin '%s' is not callable; call one of its methods", fn.Struct.Name)
	default:
		return nil, i.error("cannot call a value of type '%s'", runtime.TypeName(callee))
	}
}

// finishCall normalizes control-flow signals escaping a call body: a return
// becomes the call's value, while break and continue are errors because loops
// do not span call boundaries.
func (i *Interpreter) finishCall(result runtime.Value, err error) (runtime.Value, error) {
	if err == nil {
		return result, nil
	}
	if ret, ok := err.(returnSignal); ok {
		return ret.value, nil
	}
	if _, ok := err.(breakSignal); ok {
		return nil, i.error("break outside loop")
	}
	if _, ok := err.(continueSignal); ok {
		return nil, i.error("continue outside loop")
	}
	return nil, err
}

func (i *Interpreter) callFunction(fn *runtime.FunctionValue, args []runtime.Value) (runtime.Value, error) {
	if len(args) != len(fn.Params) {
		return nil, i.error("function '%s' expects %d arguments, got %d",
			fn.Name, len(fn.Params), len(args))
	}
	i.env.PushScope()
	for idx, p := range fn.Params {
		i.env.Set(p.Name, args[idx])
	}
	result, err := i.evaluateStatement(fn.Body)
	i.env.PopScope()
	result, err = i.finishCall(result, err)
	if err != nil {
		return nil, err
	}
	if fn.IsAsync {
		return &runtime.PromiseValue{Result: result}, nil
	}
	return result, nil
}

// callClosure restores the captured snapshot before binding parameters so
// parameter names shadow captured ones.
func (i *Interpreter) callClosure(fn *runtime.ClosureValue, args []runtime.Value) (runtime.Value, error) {
	if len(args) != len(fn.Params) {
		return nil, i.error("closure expects %d arguments, got %d", len(fn.Params), len(args))
	}
	i.env.PushScope()
	for name, value := range fn.Captured {
		i.env.Set(name, value)
	}
	for idx, p := range fn.Params {
		i.env.Set(p.Name, args[idx])
	}
	result, err := i.evaluateExpression(fn.Body)
	i.env.PopScope()
	return i.finishCall(result, err)
}

func (i *Interpreter) callUserMethod(fn *runtime.UserMethodValue, args []runtime.Value) (runtime.Value, error) {
	declared := len(fn.Params) - 1 // first parameter is the receiver
	if len(args) != declared {
		return nil, i.error("method '%s' expects %d arguments, got %d",
			fn.MethodName, declared, len(args))
	}
	i.env.PushScope()
	i.env.Set(fn.Params[0].Name, fn.Receiver)
	for idx, p := range fn.Params[1:] {
		i.env.Set(p.Name, args[idx])
	}
	result, err := i.evaluateStatement(fn.Body)
	i.env.PopScope()
	return i.finishCall(result, err)
}

// callImplMethod invokes a registry method directly, for operator and
// stringification dispatch where no UserMethodValue has been materialized.
func (i *Interpreter) callImplMethod(receiver runtime.Value, name string, m *implMethod, args []runtime.Value) (runtime.Value, error) {
	if len(m.Params) == 0 {
		return nil, i.error("method '%s' has no receiver parameter", name)
	}
	declared := len(m.Params) - 1
	if len(args) != declared {
		return nil, i.error("method '%s' expects %d arguments, got %d", name, declared, len(args))
	}
	i.env.PushScope()
	i.env.Set(m.Params[0].Name, receiver)
	for idx, p := range m.Params[1:] {
		i.env.Set(p.Name, args[idx])
	}
	result, err := i.evaluateStatement(m.Body)
	i.env.PopScope()
	result, err = i.finishCall(result, err)
	if err != nil {
		return nil, err
	}
	if m.IsAsync {
		return &runtime.PromiseValue{Result: result}, nil
	}
	return result, nil
}

// evaluateIndex prefers a user `index` impl on struct bases, otherwise the
// builtin index semantics apply.
func (i *Interpreter) evaluateIndex(e *ast.IndexExpression) (runtime.Value, error) {
	base, err := i.evaluateExpression(e.Object)
	if err != nil {
		return nil, err
	}
	index, err := i.evaluateExpression(e.Index)
	if err != nil {
		return nil, err
	}
	if structVal, ok := base.(*runtime.StructValue); ok {
		if method, found := i.lookupImplMethod(structVal.Name, "index"); found {
			return i.callImplMethod(structVal, "index", method, []runtime.Value{index})
		}
	}
	result, err := runtime.ApplyIndex(base, index)
	if err != nil {
		return nil, i.error("%s", err.Error())
	}
	return result, nil
}

func (i *Interpreter) evaluateTemplate(e *ast.TemplateLiteral) (runtime.Value, error) {
	var sb strings.Builder
	for _, part := range e.Parts {
		if part.Expression == nil {
			sb.WriteString(part.Text)
			continue
		}
		value, err := i.evaluateExpression(part.Expression)
		if err != nil {
			return nil, err
		}
		text, err := i.stringify(value)
		if err != nil {
			return nil, err
		}
		sb.WriteString(text)
	}
	return runtime.StringValue{Val: sb.String()}, nil
}

func (i *Interpreter) evaluateMatchExpression(e *ast.MatchExpression) (runtime.Value, error) {
	subject, err := i.evaluateExpression(e.Subject)
	if err != nil {
		return nil, err
	}
	for _, arm := range e.Arms {
		bindings, matched, err := i.matchPattern(arm.Pattern, subject)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}
		i.env.PushScope()
		for name, value := range bindings {
			i.env.Set(name, value)
		}
		result, err := i.evaluateExpression(arm.Body)
		i.env.PopScope()
		return result, err
	}
	return nil, i.error("no match arm matched value of type '%s'", runtime.TypeName(subject))
}

// evaluateTry implements the `?` operator. Variants whose name contains "err"
// propagate unchanged; "ok" and "some" variants unwrap their payload. Every
// other value passes through.
func (i *Interpreter) evaluateTry(e *ast.TryExpression) (runtime.Value, error) {
	value, err := i.evaluateExpression(e.Expression)
	if err != nil {
		return nil, err
	}
	variant, ok := value.(*runtime.EnumVariantValue)
	if !ok {
		return value, nil
	}
	name := strings.ToLower(variant.VariantName)
	switch {
	case strings.Contains(name, "err"):
		return variant, nil
	case strings.Contains(name, "ok"), strings.Contains(name, "some"):
		switch len(variant.Values) {
		case 0:
			return runtime.UnitValue{}, nil
		case 1:
			return variant.Values[0], nil
		default:
			return &runtime.ArrayValue{Elements: variant.Values}, nil
		}
	default:
		return variant, nil
	}
}

func (i *Interpreter) nativeContext() *runtime.NativeCallContext {
	return &runtime.NativeCallContext{
		Env:         i.env,
		Random:      i.random,
		Permissions: i.permissions,
		Stringify:   i.stringify,
		Call:        i.callValue,
		EnqueueTask: i.enqueueTask,
	}
}
