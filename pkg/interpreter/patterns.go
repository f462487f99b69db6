package interpreter

import (
	"loft/interpreter-go/pkg/ast"
	"loft/interpreter-go/pkg/runtime"
)

// matchPattern matches a pattern expression against a value. On success it
// returns the bindings the pattern captured; bindings is nil when the pattern
// binds nothing. An unsupported pattern form is an error, not a non-match.
func (i *Interpreter) matchPattern(pattern ast.Expression, value runtime.Value) (map[string]runtime.Value, bool, error) {
	switch p := pattern.(type) {
	case *ast.NumberLiteral:
		num, ok := value.(runtime.NumberValue)
		return nil, ok && num.Val.Equal(p.Value), nil
	case *ast.StringLiteral:
		str, ok := value.(runtime.StringValue)
		return nil, ok && str.Val == p.Value, nil
	case *ast.BooleanLiteral:
		b, ok := value.(runtime.BooleanValue)
		return nil, ok && b.Val == p.Value, nil
	case *ast.Identifier:
		return i.matchIdentifierPattern(p, value)
	case *ast.FieldAccessExpression:
		return i.matchUnitVariantPattern(p, value)
	case *ast.CallExpression:
		return i.matchTupleVariantPattern(p, value)
	default:
		return nil, false, i.error("unsupported pattern: %s", pattern.NodeType())
	}
}

// matchIdentifierPattern treats `_` as a wildcard and any name already bound
// to an enum variant as a literal equality pattern. Everything else binds.
func (i *Interpreter) matchIdentifierPattern(p *ast.Identifier, value runtime.Value) (map[string]runtime.Value, bool, error) {
	if p.Name == "_" {
		return nil, true, nil
	}
	if existing, ok := i.env.Get(p.Name); ok {
		if variant, isVariant := existing.(*runtime.EnumVariantValue); isVariant {
			return nil, runtime.ValuesEqual(variant, value), nil
		}
	}
	return map[string]runtime.Value{p.Name: value}, true, nil
}

func (i *Interpreter) matchUnitVariantPattern(p *ast.FieldAccessExpression, value runtime.Value) (map[string]runtime.Value, bool, error) {
	enumIdent, ok := p.Object.(*ast.Identifier)
	if !ok {
		return nil, false, i.error("unsupported pattern: %s", p.NodeType())
	}
	variant, ok := value.(*runtime.EnumVariantValue)
	if !ok {
		return nil, false, nil
	}
	matched := variant.EnumName == enumIdent.Name &&
		variant.VariantName == p.Field &&
		len(variant.Values) == 0
	return nil, matched, nil
}

func (i *Interpreter) matchTupleVariantPattern(p *ast.CallExpression, value runtime.Value) (map[string]runtime.Value, bool, error) {
	access, ok := p.Callee.(*ast.FieldAccessExpression)
	if !ok {
		return nil, false, i.error("unsupported pattern: %s", p.NodeType())
	}
	enumIdent, ok := access.Object.(*ast.Identifier)
	if !ok {
		return nil, false, i.error("unsupported pattern: %s", p.NodeType())
	}
	variant, ok := value.(*runtime.EnumVariantValue)
	if !ok {
		return nil, false, nil
	}
	if variant.EnumName != enumIdent.Name ||
		variant.VariantName != access.Field ||
		len(variant.Values) != len(p.Arguments) {
		return nil, false, nil
	}
	bindings := make(map[string]runtime.Value)
	for idx, sub := range p.Arguments {
		subBindings, matched, err := i.matchPattern(sub, variant.Values[idx])
		if err != nil {
			return nil, false, err
		}
		if !matched {
			return nil, false, nil
		}
		for name, v := range subBindings {
			bindings[name] = v
		}
	}
	return bindings, true, nil
}
