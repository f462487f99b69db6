package ast

import "github.com/shopspring/decimal"

// Constructor helpers keep hand-built trees (tests, REPL experiments) terse.

func Num(v int64) *NumberLiteral {
	return &NumberLiteral{Value: decimal.NewFromInt(v)}
}

func Dec(v decimal.Decimal) *NumberLiteral {
	return &NumberLiteral{Value: v}
}

func Str(v string) *StringLiteral { return &StringLiteral{Value: v} }

func Bool(v bool) *BooleanLiteral { return &BooleanLiteral{Value: v} }

func ID(name string) *Identifier { return &Identifier{Name: name} }

func Bin(op string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{Operator: op, Left: left, Right: right}
}

func Unary(op string, operand Expression) *UnaryExpression {
	return &UnaryExpression{Operator: op, Operand: operand}
}

func Call(callee Expression, args ...Expression) *CallExpression {
	return &CallExpression{Callee: callee, Arguments: args}
}

func Field(object Expression, field string) *FieldAccessExpression {
	return &FieldAccessExpression{Object: object, Field: field}
}

func Arr(elements ...Expression) *ArrayLiteral {
	return &ArrayLiteral{Elements: elements}
}

func Index(object, index Expression) *IndexExpression {
	return &IndexExpression{Object: object, Index: index}
}

func LitField(name string, value Expression) *StructLiteralField {
	return &StructLiteralField{Name: name, Value: value}
}

func Lit(name string, fields ...*StructLiteralField) *StructLiteral {
	return &StructLiteral{Name: name, Fields: fields}
}

func LamParam(name string) *LambdaParameter { return &LambdaParameter{Name: name} }

func Lam(params []*LambdaParameter, body Expression) *LambdaExpression {
	return &LambdaExpression{Params: params, Body: body}
}

func BlockExpr(body ...Statement) *BlockExpression { return &BlockExpression{Body: body} }

func Await(e Expression) *AwaitExpression { return &AwaitExpression{Expression: e} }

func Async(e Expression) *AsyncExpression { return &AsyncExpression{Expression: e} }

func Lazy(e Expression) *LazyExpression { return &LazyExpression{Expression: e} }

func Text(s string) *TemplatePart { return &TemplatePart{Text: s} }

func Embed(e Expression) *TemplatePart { return &TemplatePart{Expression: e} }

func Template(parts ...*TemplatePart) *TemplateLiteral { return &TemplateLiteral{Parts: parts} }

func ExprArm(pattern Expression, body Expression) *MatchExpressionArm {
	return &MatchExpressionArm{Pattern: pattern, Body: body}
}

func MatchExpr(subject Expression, arms ...*MatchExpressionArm) *MatchExpression {
	return &MatchExpression{Subject: subject, Arms: arms}
}

func Try(e Expression) *TryExpression { return &TryExpression{Expression: e} }

func Ty(name string) *NamedType { return &NamedType{Name: name} }

func Import(path ...string) *ImportDeclaration { return &ImportDeclaration{Path: path} }

func Let(name string, value Expression) *VariableDeclaration {
	return &VariableDeclaration{Name: name, Value: value}
}

func LetMut(name string, value Expression) *VariableDeclaration {
	return &VariableDeclaration{Name: name, Mutable: true, Value: value}
}

func Const(name string, value Expression) *ConstDeclaration {
	return &ConstDeclaration{Name: name, Value: value}
}

func Param(name string, t TypeExpression) *Parameter { return &Parameter{Name: name, Type: t} }

func Fn(name string, params []*Parameter, body Statement) *FunctionDeclaration {
	return &FunctionDeclaration{Name: name, Params: params, Body: body}
}

func AsyncFn(name string, params []*Parameter, body Statement) *FunctionDeclaration {
	return &FunctionDeclaration{Name: name, Params: params, Body: body, IsAsync: true}
}

func Attr(name string, args ...Expression) *Attribute { return &Attribute{Name: name, Args: args} }

func Attributed(attr *Attribute, stmt Statement) *AttributedStatement {
	return &AttributedStatement{Attr: attr, Statement: stmt}
}

func FieldDef(name string, t TypeExpression) *StructField {
	return &StructField{Name: name, Type: t}
}

func StructDef(name string, fields ...*StructField) *StructDeclaration {
	return &StructDeclaration{Name: name, Fields: fields}
}

func Sig(name string, params []*Parameter, ret TypeExpression) *TraitMethod {
	return &TraitMethod{Name: name, Params: params, ReturnType: ret}
}

func DefaultSig(name string, params []*Parameter, ret TypeExpression, body Statement) *TraitMethod {
	return &TraitMethod{Name: name, Params: params, ReturnType: ret, Body: body}
}

func Trait(name string, methods ...*TraitMethod) *TraitDeclaration {
	return &TraitDeclaration{Name: name, Methods: methods}
}

func Impl(typeName, traitName string, methods ...*FunctionDeclaration) *ImplBlock {
	return &ImplBlock{TypeName: typeName, TraitName: traitName, Methods: methods}
}

func UnitVariant(name string) *EnumVariantDecl { return &EnumVariantDecl{Name: name} }

func TupleVariant(name string, fields ...TypeExpression) *EnumVariantDecl {
	return &EnumVariantDecl{Name: name, Fields: fields}
}

func Enum(name string, variants ...*EnumVariantDecl) *EnumDeclaration {
	return &EnumDeclaration{Name: name, Variants: variants}
}

func Assign(name string, value Expression) *AssignStatement {
	return &AssignStatement{Name: name, Value: value}
}

func If(cond Expression, then, els Statement) *IfStatement {
	return &IfStatement{Condition: cond, Then: then, Else: els}
}

func While(cond Expression, body Statement) *WhileStatement {
	return &WhileStatement{Condition: cond, Body: body}
}

func For(name string, iterable Expression, body Statement) *ForStatement {
	return &ForStatement{Var: name, Iterable: iterable, Body: body}
}

func StmtArm(pattern Expression, body Statement) *MatchStatementArm {
	return &MatchStatementArm{Pattern: pattern, Body: body}
}

func Match(subject Expression, arms ...*MatchStatementArm) *MatchStatement {
	return &MatchStatement{Subject: subject, Arms: arms}
}

func Ret(value Expression) *ReturnStatement { return &ReturnStatement{Value: value} }

func ExprStmt(e Expression) *ExpressionStatement { return &ExpressionStatement{Expression: e} }

func Block(body ...Statement) *BlockStatement { return &BlockStatement{Body: body} }

func Prog(body ...Statement) *Program { return &Program{Body: body} }
