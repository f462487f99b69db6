package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"loft/interpreter-go/pkg/ast"
)

// Parser is a recursive-descent parser over the token stream. Expression
// parsing is precedence-climbing; patterns and match subjects use restricted
// sub-grammars so `{` is never mistaken for a struct literal there.
type Parser struct {
	src    string
	tokens []Token
	pos    int
}

// Parse parses a whole source file into a program.
func Parse(source string) (*ast.Program, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &Parser{src: source, tokens: tokens}
	program := &ast.Program{}
	for !p.atEOF() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Body = append(program.Body, stmt)
	}
	return program, nil
}

// ParseExpressionSource parses a single expression, for REPL input.
func ParseExpressionSource(source string) (ast.Expression, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &Parser{src: source, tokens: tokens}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.atEOF() {
		return nil, p.errorf("unexpected %s after expression", p.peek())
	}
	return expr, nil
}

//-----------------------------------------------------------------------------
// Token helpers
//-----------------------------------------------------------------------------

func (p *Parser) peek() Token { return p.tokens[p.pos] }

func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+offset]
}

func (p *Parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) atEOF() bool { return p.peek().Type == EOF }

func (p *Parser) isPunct(text string) bool {
	tok := p.peek()
	return tok.Type == PUNCT && tok.Text == text
}

func (p *Parser) isOp(text string) bool {
	tok := p.peek()
	return tok.Type == OP && tok.Text == text
}

func (p *Parser) isKeyword(text string) bool {
	tok := p.peek()
	return tok.Type == KEYWORD && tok.Text == text
}

func (p *Parser) expectPunct(text string) error {
	if !p.isPunct(text) {
		return p.errorf("expected '%s' but got %s", text, p.peek())
	}
	p.next()
	return nil
}

func (p *Parser) expectOp(text string) error {
	if !p.isOp(text) {
		return p.errorf("expected '%s' but got %s", text, p.peek())
	}
	p.next()
	return nil
}

func (p *Parser) expectKeyword(text string) error {
	if !p.isKeyword(text) {
		return p.errorf("expected '%s' but got %s", text, p.peek())
	}
	p.next()
	return nil
}

func (p *Parser) expectIdent(what string) (string, error) {
	tok := p.peek()
	if tok.Type != IDENT {
		return "", p.errorf("expected %s but got %s", what, tok)
	}
	p.next()
	return tok.Text, nil
}

func (p *Parser) maybeSemicolon() {
	if p.isPunct(";") {
		p.next()
	}
}

func (p *Parser) errorf(format string, args ...any) error {
	line, col := 1, 1
	for idx := 0; idx < p.peek().Pos && idx < len(p.src); idx++ {
		if p.src[idx] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return fmt.Errorf("%d:%d: %s", line, col, fmt.Sprintf(format, args...))
}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

func (p *Parser) parseStatement() (ast.Statement, error) {
	tok := p.peek()
	switch {
	case tok.Type == PUNCT && tok.Text == "#":
		return p.parseAttributedStatement()
	case tok.Type == KEYWORD:
		switch tok.Text {
		case "let":
			return p.parseVarDecl(false)
		case "mut":
			p.next()
			return p.parseVarDecl(true)
		case "const":
			return p.parseConstDecl()
		case "fn":
			return p.parseFunctionDecl(false, false)
		case "teach":
			p.next()
			return p.parseFunctionDecl(false, true)
		case "async":
			if p.peekAt(1).Type == KEYWORD && p.peekAt(1).Text == "fn" {
				p.next()
				return p.parseFunctionDecl(true, false)
			}
			return p.parseExpressionStatement()
		case "def":
			return p.parseStructDecl()
		case "enum":
			return p.parseEnumDecl()
		case "trait":
			return p.parseTraitDecl()
		case "impl":
			return p.parseImplBlock()
		case "learn":
			return p.parseImport()
		case "if":
			return p.parseIf()
		case "while":
			return p.parseWhile()
		case "for":
			return p.parseFor()
		case "match":
			return p.parseMatchStatement()
		case "return":
			return p.parseReturn()
		case "break":
			p.next()
			p.maybeSemicolon()
			return &ast.BreakStatement{}, nil
		case "continue":
			p.next()
			p.maybeSemicolon()
			return &ast.ContinueStatement{}, nil
		}
		return p.parseExpressionStatement()
	case tok.Type == PUNCT && tok.Text == "{":
		body, err := p.parseBlockBody()
		if err != nil {
			return nil, err
		}
		return &ast.BlockStatement{Body: body}, nil
	case tok.Type == IDENT && p.peekAt(1).Type == OP && p.peekAt(1).Text == "=":
		name := p.next().Text
		p.next() // '='
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		p.maybeSemicolon()
		return &ast.AssignStatement{Name: name, Value: value}, nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.maybeSemicolon()
	return &ast.ExpressionStatement{Expression: expr}, nil
}

// parseAttributedStatement parses `#[name(args...)] stmt`.
func (p *Parser) parseAttributedStatement() (ast.Statement, error) {
	p.next() // '#'
	if err := p.expectPunct("["); err != nil {
		return nil, err
	}
	name, err := p.expectIdent("attribute name")
	if err != nil {
		return nil, err
	}
	var args []ast.Expression
	if p.isPunct("(") {
		p.next()
		for !p.isPunct(")") {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.isPunct(",") {
				p.next()
			}
		}
		p.next() // ')'
	}
	if err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.AttributedStatement{
		Attr:      &ast.Attribute{Name: name, Args: args},
		Statement: stmt,
	}, nil
}

func (p *Parser) parseVarDecl(mutable bool) (ast.Statement, error) {
	if err := p.expectKeyword("let"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent("variable name")
	if err != nil {
		return nil, err
	}
	var declType ast.TypeExpression
	if p.isPunct(":") {
		p.next()
		declType, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	var value ast.Expression
	if p.isOp("=") {
		p.next()
		value, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	p.maybeSemicolon()
	return &ast.VariableDeclaration{Name: name, Type: declType, Mutable: mutable, Value: value}, nil
}

func (p *Parser) parseConstDecl() (ast.Statement, error) {
	p.next() // 'const'
	name, err := p.expectIdent("constant name")
	if err != nil {
		return nil, err
	}
	var declType ast.TypeExpression
	if p.isPunct(":") {
		p.next()
		declType, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectOp("="); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.maybeSemicolon()
	return &ast.ConstDeclaration{Name: name, Type: declType, Value: value}, nil
}

func (p *Parser) parseFunctionDecl(isAsync, isExported bool) (*ast.FunctionDeclaration, error) {
	if err := p.expectKeyword("fn"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent("function name")
	if err != nil {
		return nil, err
	}
	var typeParams []string
	if p.isOp("<") {
		p.next()
		for {
			param, err := p.expectIdent("type parameter")
			if err != nil {
				return nil, err
			}
			typeParams = append(typeParams, param)
			if p.isPunct(",") {
				p.next()
				continue
			}
			if err := p.expectOp(">"); err != nil {
				return nil, err
			}
			break
		}
	}
	params, err := p.parseParameterList()
	if err != nil {
		return nil, err
	}
	var returnType ast.TypeExpression
	if p.isOp("->") {
		p.next()
		returnType, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDeclaration{
		Name:       name,
		TypeParams: typeParams,
		Params:     params,
		ReturnType: returnType,
		Body:       &ast.BlockStatement{Body: body},
		IsAsync:    isAsync,
		IsExported: isExported,
	}, nil
}

// parseParameterList parses `(name: Type, ...)`. A bare `self` needs no
// annotation and gets the Self placeholder type.
func (p *Parser) parseParameterList() ([]*ast.Parameter, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var params []*ast.Parameter
	for !p.isPunct(")") {
		name, err := p.expectIdent("parameter name")
		if err != nil {
			return nil, err
		}
		var paramType ast.TypeExpression
		if p.isPunct(":") {
			p.next()
			paramType, err = p.parseType()
			if err != nil {
				return nil, err
			}
		} else if name == "self" {
			paramType = &ast.NamedType{Name: "Self"}
		} else {
			return nil, p.errorf("expected ':' after parameter '%s'", name)
		}
		params = append(params, &ast.Parameter{Name: name, Type: paramType})
		if p.isPunct(",") {
			p.next()
		}
	}
	p.next() // ')'
	return params, nil
}

func (p *Parser) parseStructDecl() (ast.Statement, error) {
	p.next() // 'def'
	name, err := p.expectIdent("struct name")
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var fields []*ast.StructField
	for !p.isPunct("}") {
		fieldName, err := p.expectIdent("field name")
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		fieldType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, &ast.StructField{Name: fieldName, Type: fieldType})
		if p.isPunct(",") {
			p.next()
		}
	}
	p.next() // '}'
	return &ast.StructDeclaration{Name: name, Fields: fields}, nil
}

func (p *Parser) parseEnumDecl() (ast.Statement, error) {
	p.next() // 'enum'
	name, err := p.expectIdent("enum name")
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var variants []*ast.EnumVariantDecl
	for !p.isPunct("}") {
		variantName, err := p.expectIdent("variant name")
		if err != nil {
			return nil, err
		}
		var fields []ast.TypeExpression
		if p.isPunct("(") {
			p.next()
			for !p.isPunct(")") {
				fieldType, err := p.parseType()
				if err != nil {
					return nil, err
				}
				fields = append(fields, fieldType)
				if p.isPunct(",") {
					p.next()
				}
			}
			p.next() // ')'
		}
		variants = append(variants, &ast.EnumVariantDecl{Name: variantName, Fields: fields})
		if p.isPunct(",") {
			p.next()
		}
	}
	p.next() // '}'
	return &ast.EnumDeclaration{Name: name, Variants: variants}, nil
}

func (p *Parser) parseTraitDecl() (ast.Statement, error) {
	p.next() // 'trait'
	name, err := p.expectIdent("trait name")
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var methods []*ast.TraitMethod
	for !p.isPunct("}") {
		if err := p.expectKeyword("fn"); err != nil {
			return nil, err
		}
		methodName, err := p.expectIdent("method name")
		if err != nil {
			return nil, err
		}
		params, err := p.parseParameterList()
		if err != nil {
			return nil, err
		}
		var returnType ast.TypeExpression
		if p.isOp("->") {
			p.next()
			returnType, err = p.parseType()
			if err != nil {
				return nil, err
			}
		}
		var body ast.Statement
		if p.isPunct("{") {
			stmts, err := p.parseBlockBody()
			if err != nil {
				return nil, err
			}
			body = &ast.BlockStatement{Body: stmts}
		} else {
			p.maybeSemicolon()
		}
		methods = append(methods, &ast.TraitMethod{
			Name:       methodName,
			Params:     params,
			ReturnType: returnType,
			Body:       body,
		})
	}
	p.next() // '}'
	return &ast.TraitDeclaration{Name: name, Methods: methods}, nil
}

// parseImplBlock parses `impl Type { ... }` or `impl Trait for Type { ... }`.
func (p *Parser) parseImplBlock() (ast.Statement, error) {
	p.next() // 'impl'
	first, err := p.expectIdent("type or trait name")
	if err != nil {
		return nil, err
	}
	traitName, typeName := "", first
	if p.isKeyword("for") {
		p.next()
		typeName, err = p.expectIdent("type name")
		if err != nil {
			return nil, err
		}
		traitName = first
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var methods []*ast.FunctionDeclaration
	for !p.isPunct("}") {
		isAsync := false
		if p.isKeyword("async") {
			p.next()
			isAsync = true
		}
		method, err := p.parseFunctionDecl(isAsync, false)
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}
	p.next() // '}'
	return &ast.ImplBlock{TypeName: typeName, TraitName: traitName, Methods: methods}, nil
}

// parseImport parses `learn "path::to::module"`.
func (p *Parser) parseImport() (ast.Statement, error) {
	p.next() // 'learn'
	tok := p.peek()
	if tok.Type != STRING {
		return nil, p.errorf("expected module path string but got %s", tok)
	}
	p.next()
	path := strings.Split(tok.Text, "::")
	if len(path) == 0 || path[0] == "" {
		return nil, p.errorf("import path cannot be empty")
	}
	p.maybeSemicolon()
	return &ast.ImportDeclaration{Path: path}, nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	p.next() // 'if'
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var els ast.Statement
	if p.isKeyword("else") {
		p.next()
		els, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStatement{Condition: condition, Then: then, Else: els}, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	p.next() // 'while'
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Condition: condition, Body: body}, nil
}

func (p *Parser) parseFor() (ast.Statement, error) {
	p.next() // 'for'
	name, err := p.expectIdent("loop variable")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	iterable, err := p.parseNoStructExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	return &ast.ForStatement{Var: name, Iterable: iterable, Body: &ast.BlockStatement{Body: body}}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	p.next() // 'return'
	var value ast.Expression
	if !p.isPunct(";") && !p.isPunct("}") && !p.atEOF() {
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		value = v
	}
	p.maybeSemicolon()
	return &ast.ReturnStatement{Value: value}, nil
}

func (p *Parser) parseMatchStatement() (ast.Statement, error) {
	p.next() // 'match'
	subject, err := p.parseNoStructExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var arms []*ast.MatchStatementArm
	for !p.isPunct("}") {
		pattern, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp("=>"); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		arms = append(arms, &ast.MatchStatementArm{Pattern: pattern, Body: body})
		if p.isPunct(",") {
			p.next()
		}
	}
	p.next() // '}'
	return &ast.MatchStatement{Subject: subject, Arms: arms}, nil
}

func (p *Parser) parseBlockBody() ([]ast.Statement, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var statements []ast.Statement
	for !p.isPunct("}") {
		if p.atEOF() {
			return nil, p.errorf("unexpected end of input in block")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	p.next() // '}'
	return statements, nil
}

//-----------------------------------------------------------------------------
// Types
//-----------------------------------------------------------------------------

func (p *Parser) parseType() (ast.TypeExpression, error) {
	name, err := p.expectIdent("type name")
	if err != nil {
		return nil, err
	}
	if !p.isOp("<") {
		return &ast.NamedType{Name: name}, nil
	}
	p.next()
	var args []ast.TypeExpression
	for {
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.isPunct(",") {
			p.next()
			continue
		}
		if err := p.expectOp(">"); err != nil {
			return nil, err
		}
		break
	}
	return &ast.GenericType{Base: name, TypeArgs: args}, nil
}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

func precedence(op string) int {
	switch op {
	case "||":
		return 1
	case "&&":
		return 2
	case "==", "!=":
		return 3
	case "<", "<=", ">", ">=":
		return 4
	case "|":
		return 5
	case "^":
		return 6
	case "&":
		return 7
	case "<<", ">>":
		return 8
	case "+", "-":
		return 9
	case "*", "/", "%":
		return 10
	default:
		return 0
	}
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseBinary(0, true)
}

// parseNoStructExpression parses an expression where a trailing `{` belongs
// to the enclosing construct (match and for headers), not a struct literal.
func (p *Parser) parseNoStructExpression() (ast.Expression, error) {
	return p.parseBinary(0, false)
}

func (p *Parser) parseBinary(minPrec int, structOK bool) (ast.Expression, error) {
	left, err := p.parseUnary(structOK)
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Type != OP {
			break
		}
		prec := precedence(tok.Text)
		if prec == 0 || prec < minPrec {
			break
		}
		p.next()
		right, err := p.parseBinary(prec+1, structOK)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Operator: tok.Text, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary(structOK bool) (ast.Expression, error) {
	if p.isOp("-") || p.isOp("!") {
		op := p.next().Text
		operand, err := p.parseUnary(structOK)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Operator: op, Operand: operand}, nil
	}
	primary, err := p.parsePrimary(structOK)
	if err != nil {
		return nil, err
	}
	return p.parsePostfix(primary, structOK)
}

func (p *Parser) parsePrimary(structOK bool) (ast.Expression, error) {
	tok := p.peek()
	switch tok.Type {
	case NUMBER:
		p.next()
		value, err := decimal.NewFromString(tok.Text)
		if err != nil {
			return nil, p.errorf("invalid number literal '%s'", tok.Text)
		}
		return &ast.NumberLiteral{Value: value}, nil
	case STRING:
		p.next()
		return &ast.StringLiteral{Value: tok.Text}, nil
	case TEMPLATE_START:
		return p.parseTemplate()
	case KEYWORD:
		switch tok.Text {
		case "true":
			p.next()
			return &ast.BooleanLiteral{Value: true}, nil
		case "false":
			p.next()
			return &ast.BooleanLiteral{Value: false}, nil
		case "await":
			p.next()
			inner, err := p.parseUnary(structOK)
			if err != nil {
				return nil, err
			}
			return &ast.AwaitExpression{Expression: inner}, nil
		case "async":
			p.next()
			inner, err := p.parseUnary(structOK)
			if err != nil {
				return nil, err
			}
			return &ast.AsyncExpression{Expression: inner}, nil
		case "lazy":
			p.next()
			inner, err := p.parseUnary(structOK)
			if err != nil {
				return nil, err
			}
			return &ast.LazyExpression{Expression: inner}, nil
		case "match":
			return p.parseMatchExpression()
		}
		return nil, p.errorf("unexpected %s in expression", tok)
	case IDENT:
		p.next()
		if p.isOp("=>") {
			p.next()
			return p.parseLambdaBody([]*ast.LambdaParameter{{Name: tok.Text}})
		}
		return &ast.Identifier{Name: tok.Text}, nil
	case PUNCT:
		switch tok.Text {
		case "(":
			if p.looksLikeLambda() {
				return p.parseLambda()
			}
			p.next()
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return expr, nil
		case "[":
			p.next()
			var elements []ast.Expression
			for !p.isPunct("]") {
				el, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				elements = append(elements, el)
				if p.isPunct(",") {
					p.next()
				}
			}
			p.next() // ']'
			return &ast.ArrayLiteral{Elements: elements}, nil
		case "{":
			body, err := p.parseBlockBody()
			if err != nil {
				return nil, err
			}
			return &ast.BlockExpression{Body: body}, nil
		}
	}
	return nil, p.errorf("unexpected %s in expression", tok)
}

func (p *Parser) parsePostfix(expr ast.Expression, structOK bool) (ast.Expression, error) {
	for {
		switch {
		case p.isPunct("("):
			p.next()
			var args []ast.Expression
			for !p.isPunct(")") {
				arg, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.isPunct(",") {
					p.next()
				}
			}
			p.next() // ')'
			expr = &ast.CallExpression{Callee: expr, Arguments: args}
		case p.isOp("."):
			p.next()
			field, err := p.expectIdent("field name")
			if err != nil {
				return nil, err
			}
			expr = &ast.FieldAccessExpression{Object: expr, Field: field}
		case p.isPunct("["):
			p.next()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpression{Object: expr, Index: index}
		case p.isOp("?"):
			p.next()
			expr = &ast.TryExpression{Expression: expr}
		case structOK && p.isPunct("{"):
			ident, ok := expr.(*ast.Identifier)
			if !ok {
				return expr, nil
			}
			literal, err := p.parseStructLiteral(ident.Name)
			if err != nil {
				return nil, err
			}
			expr = literal
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseStructLiteral(name string) (ast.Expression, error) {
	p.next() // '{'
	var fields []*ast.StructLiteralField
	for !p.isPunct("}") {
		fieldName, err := p.expectIdent("field name")
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		fields = append(fields, &ast.StructLiteralField{Name: fieldName, Value: value})
		if p.isPunct(",") {
			p.next()
		}
	}
	p.next() // '}'
	return &ast.StructLiteral{Name: name, Fields: fields}, nil
}

func (p *Parser) parseTemplate() (ast.Expression, error) {
	p.next() // TEMPLATE_START
	var parts []*ast.TemplatePart
	for {
		tok := p.peek()
		switch tok.Type {
		case TEMPLATE_TEXT:
			p.next()
			parts = append(parts, &ast.TemplatePart{Text: tok.Text})
		case TEMPLATE_EXPR_START:
			p.next()
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if p.peek().Type != TEMPLATE_EXPR_END {
				return nil, p.errorf("expected '}' after template expression but got %s", p.peek())
			}
			p.next()
			parts = append(parts, &ast.TemplatePart{Expression: expr})
		case TEMPLATE_END:
			p.next()
			return &ast.TemplateLiteral{Parts: parts}, nil
		default:
			return nil, p.errorf("unexpected %s in template literal", tok)
		}
	}
}

func (p *Parser) parseMatchExpression() (ast.Expression, error) {
	p.next() // 'match'
	subject, err := p.parseNoStructExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var arms []*ast.MatchExpressionArm
	for !p.isPunct("}") {
		pattern, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp("=>"); err != nil {
			return nil, err
		}
		body, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		arms = append(arms, &ast.MatchExpressionArm{Pattern: pattern, Body: body})
		if p.isPunct(",") {
			p.next()
		}
	}
	p.next() // '}'
	return &ast.MatchExpression{Subject: subject, Arms: arms}, nil
}

// parsePattern accepts the restricted pattern grammar: literals, identifiers,
// EnumName.Variant access, and EnumName.Variant(subpatterns).
func (p *Parser) parsePattern() (ast.Expression, error) {
	expr, err := p.parsePatternPrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isOp("."):
			p.next()
			field, err := p.expectIdent("field name")
			if err != nil {
				return nil, err
			}
			expr = &ast.FieldAccessExpression{Object: expr, Field: field}
		case p.isPunct("("):
			p.next()
			var args []ast.Expression
			for !p.isPunct(")") {
				sub, err := p.parsePattern()
				if err != nil {
					return nil, err
				}
				args = append(args, sub)
				if p.isPunct(",") {
					p.next()
				}
			}
			p.next() // ')'
			expr = &ast.CallExpression{Callee: expr, Arguments: args}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePatternPrimary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Type {
	case NUMBER:
		p.next()
		value, err := decimal.NewFromString(tok.Text)
		if err != nil {
			return nil, p.errorf("invalid number literal '%s'", tok.Text)
		}
		return &ast.NumberLiteral{Value: value}, nil
	case STRING:
		p.next()
		return &ast.StringLiteral{Value: tok.Text}, nil
	case IDENT:
		p.next()
		return &ast.Identifier{Name: tok.Text}, nil
	case KEYWORD:
		if tok.Text == "true" || tok.Text == "false" {
			p.next()
			return &ast.BooleanLiteral{Value: tok.Text == "true"}, nil
		}
	case OP:
		if tok.Text == "-" {
			p.next()
			num := p.peek()
			if num.Type != NUMBER {
				return nil, p.errorf("expected number after '-' in pattern but got %s", num)
			}
			p.next()
			value, err := decimal.NewFromString(num.Text)
			if err != nil {
				return nil, p.errorf("invalid number literal '%s'", num.Text)
			}
			return &ast.NumberLiteral{Value: value.Neg()}, nil
		}
	case PUNCT:
		if tok.Text == "(" {
			p.next()
			inner, err := p.parsePattern()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return inner, nil
		}
	}
	return nil, p.errorf("unexpected %s in pattern", tok)
}

// looksLikeLambda scans ahead from an opening '(' for the `) =>` signature.
func (p *Parser) looksLikeLambda() bool {
	depth := 0
	for idx := p.pos; idx < len(p.tokens); idx++ {
		tok := p.tokens[idx]
		if tok.Type != PUNCT {
			continue
		}
		switch tok.Text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				next := p.tokens[idx+1]
				return next.Type == OP && next.Text == "=>"
			}
		}
	}
	return false
}

func (p *Parser) parseLambda() (ast.Expression, error) {
	p.next() // '('
	var params []*ast.LambdaParameter
	for !p.isPunct(")") {
		name, err := p.expectIdent("parameter name")
		if err != nil {
			return nil, err
		}
		var paramType ast.TypeExpression
		if p.isPunct(":") {
			p.next()
			paramType, err = p.parseType()
			if err != nil {
				return nil, err
			}
		}
		params = append(params, &ast.LambdaParameter{Name: name, Type: paramType})
		if p.isPunct(",") {
			p.next()
		}
	}
	p.next() // ')'
	if err := p.expectOp("=>"); err != nil {
		return nil, err
	}
	return p.parseLambdaBody(params)
}

func (p *Parser) parseLambdaBody(params []*ast.LambdaParameter) (ast.Expression, error) {
	var body ast.Expression
	if p.isPunct("{") {
		stmts, err := p.parseBlockBody()
		if err != nil {
			return nil, err
		}
		body = &ast.BlockExpression{Body: stmts}
	} else {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		body = expr
	}
	return &ast.LambdaExpression{Params: params, Body: body}, nil
}
