package ast

import "github.com/shopspring/decimal"

// Node is the shared behaviour for all AST nodes.
type Node interface {
	NodeType() string
}

// Statement nodes are executed for effect and yield a value.
type Statement interface {
	Node
	statementNode()
}

// Expression nodes evaluate to a value.
type Expression interface {
	Node
	expressionNode()
}

//-----------------------------------------------------------------------------
// Types
//-----------------------------------------------------------------------------

// TypeExpression is the closed set of type annotations the language carries.
type TypeExpression interface {
	Node
	typeExpressionNode()
}

type NamedType struct {
	Name string
}

func (*NamedType) NodeType() string    { return "NamedType" }
func (*NamedType) typeExpressionNode() {}

type GenericType struct {
	Base     string
	TypeArgs []TypeExpression
}

func (*GenericType) NodeType() string    { return "GenericType" }
func (*GenericType) typeExpressionNode() {}

type FunctionType struct {
	Params     []TypeExpression
	ReturnType TypeExpression
}

func (*FunctionType) NodeType() string    { return "FunctionType" }
func (*FunctionType) typeExpressionNode() {}

// TypesEqual reports structural equality of two type annotations. A nil
// annotation only equals another nil annotation.
func TypesEqual(a, b TypeExpression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch at := a.(type) {
	case *NamedType:
		bt, ok := b.(*NamedType)
		return ok && at.Name == bt.Name
	case *GenericType:
		bt, ok := b.(*GenericType)
		if !ok || at.Base != bt.Base || len(at.TypeArgs) != len(bt.TypeArgs) {
			return false
		}
		for idx := range at.TypeArgs {
			if !TypesEqual(at.TypeArgs[idx], bt.TypeArgs[idx]) {
				return false
			}
		}
		return true
	case *FunctionType:
		bt, ok := b.(*FunctionType)
		if !ok || len(at.Params) != len(bt.Params) {
			return false
		}
		for idx := range at.Params {
			if !TypesEqual(at.Params[idx], bt.Params[idx]) {
				return false
			}
		}
		return TypesEqual(at.ReturnType, bt.ReturnType)
	default:
		return false
	}
}

// IsNamed reports whether t is a named type with the given name.
func IsNamed(t TypeExpression, name string) bool {
	nt, ok := t.(*NamedType)
	return ok && nt.Name == name
}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

type NumberLiteral struct {
	Value decimal.Decimal
}

func (*NumberLiteral) NodeType() string { return "NumberLiteral" }
func (*NumberLiteral) expressionNode()  {}

type StringLiteral struct {
	Value string
}

func (*StringLiteral) NodeType() string { return "StringLiteral" }
func (*StringLiteral) expressionNode()  {}

type BooleanLiteral struct {
	Value bool
}

func (*BooleanLiteral) NodeType() string { return "BooleanLiteral" }
func (*BooleanLiteral) expressionNode()  {}

type Identifier struct {
	Name string
}

func (*Identifier) NodeType() string { return "Identifier" }
func (*Identifier) expressionNode()  {}

type BinaryExpression struct {
	Operator string
	Left     Expression
	Right    Expression
}

func (*BinaryExpression) NodeType() string { return "BinaryExpression" }
func (*BinaryExpression) expressionNode()  {}

type UnaryExpression struct {
	Operator string
	Operand  Expression
}

func (*UnaryExpression) NodeType() string { return "UnaryExpression" }
func (*UnaryExpression) expressionNode()  {}

type CallExpression struct {
	Callee    Expression
	Arguments []Expression
}

func (*CallExpression) NodeType() string { return "CallExpression" }
func (*CallExpression) expressionNode()  {}

type FieldAccessExpression struct {
	Object Expression
	Field  string
}

func (*FieldAccessExpression) NodeType() string { return "FieldAccessExpression" }
func (*FieldAccessExpression) expressionNode()  {}

type ArrayLiteral struct {
	Elements []Expression
}

func (*ArrayLiteral) NodeType() string { return "ArrayLiteral" }
func (*ArrayLiteral) expressionNode()  {}

type StructLiteralField struct {
	Name  string
	Value Expression
}

type StructLiteral struct {
	Name   string
	Fields []*StructLiteralField
}

func (*StructLiteral) NodeType() string { return "StructLiteral" }
func (*StructLiteral) expressionNode()  {}

type IndexExpression struct {
	Object Expression
	Index  Expression
}

func (*IndexExpression) NodeType() string { return "IndexExpression" }
func (*IndexExpression) expressionNode()  {}

// LambdaParameter is a closure parameter with an optional type annotation.
type LambdaParameter struct {
	Name string
	Type TypeExpression
}

type LambdaExpression struct {
	Params     []*LambdaParameter
	ReturnType TypeExpression
	Body       Expression
}

func (*LambdaExpression) NodeType() string { return "LambdaExpression" }
func (*LambdaExpression) expressionNode()  {}

type BlockExpression struct {
	Body []Statement
}

func (*BlockExpression) NodeType() string { return "BlockExpression" }
func (*BlockExpression) expressionNode()  {}

type AwaitExpression struct {
	Expression Expression
}

func (*AwaitExpression) NodeType() string { return "AwaitExpression" }
func (*AwaitExpression) expressionNode()  {}

// AsyncExpression evaluates its operand eagerly and wraps it in a promise.
type AsyncExpression struct {
	Expression Expression
}

func (*AsyncExpression) NodeType() string { return "AsyncExpression" }
func (*AsyncExpression) expressionNode()  {}

type LazyExpression struct {
	Expression Expression
}

func (*LazyExpression) NodeType() string { return "LazyExpression" }
func (*LazyExpression) expressionNode()  {}

// TemplatePart is either literal text or an embedded expression.
type TemplatePart struct {
	Text       string
	Expression Expression
}

type TemplateLiteral struct {
	Parts []*TemplatePart
}

func (*TemplateLiteral) NodeType() string { return "TemplateLiteral" }
func (*TemplateLiteral) expressionNode()  {}

// MatchExpressionArm pairs a pattern with an expression body.
type MatchExpressionArm struct {
	Pattern Expression
	Body    Expression
}

type MatchExpression struct {
	Subject Expression
	Arms    []*MatchExpressionArm
}

func (*MatchExpression) NodeType() string { return "MatchExpression" }
func (*MatchExpression) expressionNode()  {}

// TryExpression is the `?` propagation operator.
type TryExpression struct {
	Expression Expression
}

func (*TryExpression) NodeType() string { return "TryExpression" }
func (*TryExpression) expressionNode()  {}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

type ImportDeclaration struct {
	Path []string
}

func (*ImportDeclaration) NodeType() string { return "ImportDeclaration" }
func (*ImportDeclaration) statementNode()   {}

type VariableDeclaration struct {
	Name    string
	Type    TypeExpression
	Mutable bool
	Value   Expression // nil binds Unit
}

func (*VariableDeclaration) NodeType() string { return "VariableDeclaration" }
func (*VariableDeclaration) statementNode()   {}

type ConstDeclaration struct {
	Name  string
	Type  TypeExpression
	Value Expression
}

func (*ConstDeclaration) NodeType() string { return "ConstDeclaration" }
func (*ConstDeclaration) statementNode()   {}

// Parameter is a typed function or method parameter.
type Parameter struct {
	Name string
	Type TypeExpression
}

type FunctionDeclaration struct {
	Name       string
	TypeParams []string
	Params     []*Parameter
	ReturnType TypeExpression
	Body       Statement
	IsAsync    bool
	IsExported bool
}

func (*FunctionDeclaration) NodeType() string { return "FunctionDeclaration" }
func (*FunctionDeclaration) statementNode()   {}

// Attribute is a `@name(args...)` annotation on a statement.
type Attribute struct {
	Name string
	Args []Expression
}

type AttributedStatement struct {
	Attr      *Attribute
	Statement Statement
}

func (*AttributedStatement) NodeType() string { return "AttributedStatement" }
func (*AttributedStatement) statementNode()   {}

type StructField struct {
	Name string
	Type TypeExpression
}

type StructDeclaration struct {
	Name   string
	Fields []*StructField
}

func (*StructDeclaration) NodeType() string { return "StructDeclaration" }
func (*StructDeclaration) statementNode()   {}

// TraitMethod is a required signature, optionally carrying a default body.
type TraitMethod struct {
	Name       string
	Params     []*Parameter
	ReturnType TypeExpression
	Body       Statement // nil for bare signatures
}

type TraitDeclaration struct {
	Name    string
	Methods []*TraitMethod
}

func (*TraitDeclaration) NodeType() string { return "TraitDeclaration" }
func (*TraitDeclaration) statementNode()   {}

type ImplBlock struct {
	TypeName  string
	TraitName string // empty for inherent impls
	Methods   []*FunctionDeclaration
}

func (*ImplBlock) NodeType() string { return "ImplBlock" }
func (*ImplBlock) statementNode()   {}

// EnumVariantDecl declares one variant; Fields is nil for unit variants.
type EnumVariantDecl struct {
	Name   string
	Fields []TypeExpression
}

type EnumDeclaration struct {
	Name     string
	Variants []*EnumVariantDecl
}

func (*EnumDeclaration) NodeType() string { return "EnumDeclaration" }
func (*EnumDeclaration) statementNode()   {}

type AssignStatement struct {
	Name  string
	Value Expression
}

func (*AssignStatement) NodeType() string { return "AssignStatement" }
func (*AssignStatement) statementNode()   {}

type IfStatement struct {
	Condition Expression
	Then      Statement
	Else      Statement // nil when absent
}

func (*IfStatement) NodeType() string { return "IfStatement" }
func (*IfStatement) statementNode()   {}

type WhileStatement struct {
	Condition Expression
	Body      Statement
}

func (*WhileStatement) NodeType() string { return "WhileStatement" }
func (*WhileStatement) statementNode()   {}

type ForStatement struct {
	Var      string
	Iterable Expression
	Body     Statement
}

func (*ForStatement) NodeType() string { return "ForStatement" }
func (*ForStatement) statementNode()   {}

// MatchStatementArm pairs a pattern with a statement body.
type MatchStatementArm struct {
	Pattern Expression
	Body    Statement
}

type MatchStatement struct {
	Subject Expression
	Arms    []*MatchStatementArm
}

func (*MatchStatement) NodeType() string { return "MatchStatement" }
func (*MatchStatement) statementNode()   {}

type ReturnStatement struct {
	Value Expression // nil returns Unit
}

func (*ReturnStatement) NodeType() string { return "ReturnStatement" }
func (*ReturnStatement) statementNode()   {}

type BreakStatement struct{}

func (*BreakStatement) NodeType() string { return "BreakStatement" }
func (*BreakStatement) statementNode()   {}

type ContinueStatement struct{}

func (*ContinueStatement) NodeType() string { return "ContinueStatement" }
func (*ContinueStatement) statementNode()   {}

type ExpressionStatement struct {
	Expression Expression
}

func (*ExpressionStatement) NodeType() string { return "ExpressionStatement" }
func (*ExpressionStatement) statementNode()   {}

type BlockStatement struct {
	Body []Statement
}

func (*BlockStatement) NodeType() string { return "BlockStatement" }
func (*BlockStatement) statementNode()   {}

// Program is a parsed source file.
type Program struct {
	Body []Statement
}

func (*Program) NodeType() string { return "Program" }
