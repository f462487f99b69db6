package interpreter

import (
	"strings"

	"loft/interpreter-go/pkg/ast"
	"loft/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateStatement(stmt ast.Statement) (runtime.Value, error) {
	switch s := stmt.(type) {
	case *ast.ImportDeclaration:
		return i.evaluateImport(s)
	case *ast.VariableDeclaration:
		return i.evaluateVariableDeclaration(s)
	case *ast.ConstDeclaration:
		value, err := i.evaluateExpression(s.Value)
		if err != nil {
			return nil, err
		}
		i.env.Set(s.Name, value)
		return runtime.UnitValue{}, nil
	case *ast.FunctionDeclaration:
		return i.evaluateFunctionDeclaration(s)
	case *ast.AttributedStatement:
		if !i.checkGated(s.Attr) {
			return runtime.UnitValue{}, nil
		}
		return i.evaluateStatement(s.Statement)
	case *ast.StructDeclaration:
		// Pure type declaration, nothing to execute.
		return runtime.UnitValue{}, nil
	case *ast.TraitDeclaration:
		i.traits[s.Name] = s.Methods
		return runtime.UnitValue{}, nil
	case *ast.ImplBlock:
		return i.evaluateImplBlock(s)
	case *ast.EnumDeclaration:
		return i.evaluateEnumDeclaration(s)
	case *ast.AssignStatement:
		value, err := i.evaluateExpression(s.Value)
		if err != nil {
			return nil, err
		}
		i.env.Update(s.Name, value)
		return runtime.UnitValue{}, nil
	case *ast.IfStatement:
		return i.evaluateIf(s)
	case *ast.WhileStatement:
		return i.evaluateWhile(s)
	case *ast.ForStatement:
		return i.evaluateFor(s)
	case *ast.MatchStatement:
		return i.evaluateMatchStatement(s)
	case *ast.ReturnStatement:
		var value runtime.Value = runtime.UnitValue{}
		if s.Value != nil {
			v, err := i.evaluateExpression(s.Value)
			if err != nil {
				return nil, err
			}
			value = v
		}
		return nil, returnSignal{value: value}
	case *ast.BreakStatement:
		return nil, breakSignal{}
	case *ast.ContinueStatement:
		return nil, continueSignal{}
	case *ast.ExpressionStatement:
		return i.evaluateExpression(s.Expression)
	case *ast.BlockStatement:
		return i.evaluateBlock(s.Body)
	default:
		return nil, i.error("unsupported statement: %s", stmt.NodeType())
	}
}

func (i *Interpreter) evaluateVariableDeclaration(s *ast.VariableDeclaration) (runtime.Value, error) {
	var value runtime.Value = runtime.UnitValue{}
	if s.Value != nil {
		v, err := i.evaluateExpression(s.Value)
		if err != nil {
			return nil, err
		}
		value = v
	}
	i.env.Set(s.Name, value)
	return runtime.UnitValue{}, nil
}

func (i *Interpreter) evaluateFunctionDeclaration(s *ast.FunctionDeclaration) (runtime.Value, error) {
	params := make([]runtime.FunctionParam, len(s.Params))
	for idx, p := range s.Params {
		params[idx] = runtime.FunctionParam{Name: p.Name, Type: typeLabel(p.Type)}
	}
	fn := &runtime.FunctionValue{
		Name:    s.Name,
		Params:  params,
		Body:    s.Body,
		IsAsync: s.IsAsync,
	}
	i.env.Set(s.Name, fn)
	if s.IsExported {
		i.exports[s.Name] = fn
	}
	return runtime.UnitValue{}, nil
}

// evaluateImplBlock validates trait conformance before any method becomes
// callable. A trait-qualified impl must supply every required method with an
// exactly matching parameter count; parameter and return types must match the
// trait signature structurally unless the trait declares `any`. A missing
// implementation return type is accepted when the trait returns void or unit.
func (i *Interpreter) evaluateImplBlock(s *ast.ImplBlock) (runtime.Value, error) {
	if s.TraitName != "" {
		required, ok := i.traits[s.TraitName]
		if !ok {
			return nil, i.error("trait '%s' is not defined", s.TraitName)
		}
		if err := i.checkConformance(s, required); err != nil {
			return nil, err
		}
	}
	bucket, ok := i.implMethods[s.TypeName]
	if !ok {
		bucket = make(map[string]*implMethod)
		i.implMethods[s.TypeName] = bucket
	}
	for _, m := range s.Methods {
		bucket[m.Name] = &implMethod{
			Params:     m.Params,
			ReturnType: m.ReturnType,
			Body:       m.Body,
			TraitName:  s.TraitName,
			IsAsync:    m.IsAsync,
		}
	}
	return runtime.UnitValue{}, nil
}

func (i *Interpreter) checkConformance(s *ast.ImplBlock, required []*ast.TraitMethod) error {
	impls := make(map[string]*ast.FunctionDeclaration, len(s.Methods))
	for _, m := range s.Methods {
		impls[m.Name] = m
	}
	for _, sig := range required {
		impl, ok := impls[sig.Name]
		if !ok {
			if sig.Body != nil {
				continue // default body satisfies the requirement
			}
			return i.error("impl of trait '%s' for '%s' is missing method '%s'",
				s.TraitName, s.TypeName, sig.Name)
		}
		if len(impl.Params) != len(sig.Params) {
			return i.error("method '%s' of trait '%s' expects %d parameters, impl for '%s' has %d",
				sig.Name, s.TraitName, len(sig.Params), s.TypeName, len(impl.Params))
		}
		for idx, want := range sig.Params {
			if isAnyType(want.Type) || isSelfType(want.Type) {
				continue
			}
			if !ast.TypesEqual(want.Type, impl.Params[idx].Type) {
				return i.error("method '%s' of trait '%s': parameter '%s' type does not match the trait signature",
					sig.Name, s.TraitName, impl.Params[idx].Name)
			}
		}
		if isAnyType(sig.ReturnType) {
			continue
		}
		if impl.ReturnType == nil {
			if isUnitReturn(sig.ReturnType) {
				continue
			}
			return i.error("method '%s' of trait '%s': impl omits the return type required by the trait",
				sig.Name, s.TraitName)
		}
		if !ast.TypesEqual(sig.ReturnType, impl.ReturnType) {
			return i.error("method '%s' of trait '%s': return type does not match the trait signature",
				sig.Name, s.TraitName)
		}
	}
	return nil
}

func isAnyType(t ast.TypeExpression) bool { return ast.IsNamed(t, "any") }

func isSelfType(t ast.TypeExpression) bool { return ast.IsNamed(t, "Self") }

func isUnitReturn(t ast.TypeExpression) bool {
	return t == nil || ast.IsNamed(t, "void") || ast.IsNamed(t, "unit")
}

func (i *Interpreter) evaluateEnumDeclaration(s *ast.EnumDeclaration) (runtime.Value, error) {
	i.enums[s.Name] = s.Variants
	for _, variant := range s.Variants {
		qualified := s.Name + "." + variant.Name
		if len(variant.Fields) == 0 {
			i.env.Set(qualified, &runtime.EnumVariantValue{
				EnumName:    s.Name,
				VariantName: variant.Name,
			})
		} else {
			i.env.Set(qualified, &runtime.EnumConstructorValue{
				EnumName:    s.Name,
				VariantName: variant.Name,
				Arity:       len(variant.Fields),
			})
		}
	}
	return runtime.UnitValue{}, nil
}

func (i *Interpreter) evaluateIf(s *ast.IfStatement) (runtime.Value, error) {
	cond, err := i.evaluateExpression(s.Condition)
	if err != nil {
		return nil, err
	}
	if runtime.IsTruthy(cond) {
		return i.evaluateStatement(s.Then)
	}
	if s.Else != nil {
		return i.evaluateStatement(s.Else)
	}
	return runtime.UnitValue{}, nil
}

func (i *Interpreter) evaluateWhile(s *ast.WhileStatement) (runtime.Value, error) {
	var last runtime.Value = runtime.UnitValue{}
	for {
		cond, err := i.evaluateExpression(s.Condition)
		if err != nil {
			return nil, err
		}
		if !runtime.IsTruthy(cond) {
			return last, nil
		}
		value, err := i.evaluateStatement(s.Body)
		if err != nil {
			if _, ok := err.(breakSignal); ok {
				return last, nil
			}
			if _, ok := err.(continueSignal); ok {
				continue
			}
			return nil, err
		}
		last = value
	}
}

// evaluateFor iterates arrays element by element and strings rune by rune.
// The loop variable lives in a scope pushed per iteration.
func (i *Interpreter) evaluateFor(s *ast.ForStatement) (runtime.Value, error) {
	iterable, err := i.evaluateExpression(s.Iterable)
	if err != nil {
		return nil, err
	}
	var items []runtime.Value
	switch it := iterable.(type) {
	case *runtime.ArrayValue:
		items = it.Elements
	case runtime.StringValue:
		for _, r := range it.Val {
			items = append(items, runtime.StringValue{Val: string(r)})
		}
	default:
		return nil, i.error("cannot iterate over a value of type '%s'", runtime.TypeName(iterable))
	}
	var last runtime.Value = runtime.UnitValue{}
	for _, item := range items {
		i.env.PushScope()
		i.env.Set(s.Var, item)
		value, err := i.evaluateStatement(s.Body)
		i.env.PopScope()
		if err != nil {
			if _, ok := err.(breakSignal); ok {
				return last, nil
			}
			if _, ok := err.(continueSignal); ok {
				continue
			}
			return nil, err
		}
		last = value
	}
	return last, nil
}

func (i *Interpreter) evaluateMatchStatement(s *ast.MatchStatement) (runtime.Value, error) {
	subject, err := i.evaluateExpression(s.Subject)
	if err != nil {
		return nil, err
	}
	for _, arm := range s.Arms {
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
		result, err := i.evaluateStatement(arm.Body)
		i.env.PopScope()
		return result, err
	}
	return nil, i.error("no match arm matched value of type '%s'", runtime.TypeName(subject))
}

func (i *Interpreter) evaluateBlock(body []ast.Statement) (runtime.Value, error) {
	i.env.PushScope()
	defer i.env.PopScope()
	var last runtime.Value = runtime.UnitValue{}
	for _, stmt := range body {
		value, err := i.evaluateStatement(stmt)
		if err != nil {
			return nil, err
		}
		last = value
	}
	return last, nil
}

// typeLabel flattens a type annotation to the string label stored on
// FunctionParam. Untyped parameters get "any".
func typeLabel(t ast.TypeExpression) string {
	switch tt := t.(type) {
	case nil:
		return "any"
	case *ast.NamedType:
		return tt.Name
	case *ast.GenericType:
		parts := make([]string, len(tt.TypeArgs))
		for idx, arg := range tt.TypeArgs {
			parts[idx] = typeLabel(arg)
		}
		return tt.Base + "<" + strings.Join(parts, ", ") + ">"
	case *ast.FunctionType:
		parts := make([]string, len(tt.Params))
		for idx, arg := range tt.Params {
			parts[idx] = typeLabel(arg)
		}
		return "fn(" + strings.Join(parts, ", ") + ") -> " + typeLabel(tt.ReturnType)
	default:
		return "any"
	}
}
