package parser

import (
	"strings"
	"testing"

	"loft/interpreter-go/pkg/ast"
)

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	return program
}

func parseOneExpr(t *testing.T, source string) ast.Expression {
	t.Helper()
	program := parse(t, source)
	if len(program.Body) != 1 {
		t.Fatalf("got %d statements, want 1", len(program.Body))
	}
	stmt, ok := program.Body[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement = %T, want expression statement", program.Body[0])
	}
	return stmt.Expression
}

func TestParseDeclarations(t *testing.T) {
	program := parse(t, `
let x: num = 1
mut let y = 2
const LIMIT = 100
y = x
`)
	if len(program.Body) != 4 {
		t.Fatalf("got %d statements, want 4", len(program.Body))
	}
	decl := program.Body[0].(*ast.VariableDeclaration)
	if decl.Name != "x" || decl.Mutable || decl.Type == nil {
		t.Fatalf("let decl = %#v", decl)
	}
	mutDecl := program.Body[1].(*ast.VariableDeclaration)
	if !mutDecl.Mutable {
		t.Fatalf("mut let parsed as immutable")
	}
	constDecl := program.Body[2].(*ast.ConstDeclaration)
	if constDecl.Name != "LIMIT" {
		t.Fatalf("const decl = %#v", constDecl)
	}
	assign := program.Body[3].(*ast.AssignStatement)
	if assign.Name != "y" {
		t.Fatalf("assign = %#v", assign)
	}
}

func TestParsePrecedence(t *testing.T) {
	expr := parseOneExpr(t, "1 + 2 * 3")
	add, ok := expr.(*ast.BinaryExpression)
	if !ok || add.Operator != "+" {
		t.Fatalf("root = %#v, want '+'", expr)
	}
	mul, ok := add.Right.(*ast.BinaryExpression)
	if !ok || mul.Operator != "*" {
		t.Fatalf("right = %#v, want '*'", add.Right)
	}

	expr = parseOneExpr(t, "(1 + 2) * 3")
	mul, ok = expr.(*ast.BinaryExpression)
	if !ok || mul.Operator != "*" {
		t.Fatalf("root = %#v, want '*'", expr)
	}

	expr = parseOneExpr(t, "a || b && c")
	or, ok := expr.(*ast.BinaryExpression)
	if !ok || or.Operator != "||" {
		t.Fatalf("root = %#v, want '||'", expr)
	}
	if and, ok := or.Right.(*ast.BinaryExpression); !ok || and.Operator != "&&" {
		t.Fatalf("right = %#v, want '&&'", or.Right)
	}
}

func TestParseUnary(t *testing.T) {
	expr := parseOneExpr(t, "-x + !y")
	add := expr.(*ast.BinaryExpression)
	if neg, ok := add.Left.(*ast.UnaryExpression); !ok || neg.Operator != "-" {
		t.Fatalf("left = %#v", add.Left)
	}
	if not, ok := add.Right.(*ast.UnaryExpression); !ok || not.Operator != "!" {
		t.Fatalf("right = %#v", add.Right)
	}
}

func TestParsePostfixChain(t *testing.T) {
	expr := parseOneExpr(t, "a.b[0](1)?")
	try, ok := expr.(*ast.TryExpression)
	if !ok {
		t.Fatalf("root = %#v, want try", expr)
	}
	call, ok := try.Expression.(*ast.CallExpression)
	if !ok || len(call.Arguments) != 1 {
		t.Fatalf("inner = %#v, want call", try.Expression)
	}
	index, ok := call.Callee.(*ast.IndexExpression)
	if !ok {
		t.Fatalf("callee = %#v, want index", call.Callee)
	}
	access, ok := index.Object.(*ast.FieldAccessExpression)
	if !ok || access.Field != "b" {
		t.Fatalf("object = %#v, want field access", index.Object)
	}
}

func TestParseLambdas(t *testing.T) {
	expr := parseOneExpr(t, "x => x + 1")
	lam, ok := expr.(*ast.LambdaExpression)
	if !ok || len(lam.Params) != 1 || lam.Params[0].Name != "x" {
		t.Fatalf("bare lambda = %#v", expr)
	}

	expr = parseOneExpr(t, "(a, b) => a + b")
	lam, ok = expr.(*ast.LambdaExpression)
	if !ok || len(lam.Params) != 2 || lam.Params[1].Name != "b" {
		t.Fatalf("paren lambda = %#v", expr)
	}

	expr = parseOneExpr(t, "() => 1")
	lam, ok = expr.(*ast.LambdaExpression)
	if !ok || len(lam.Params) != 0 {
		t.Fatalf("nullary lambda = %#v", expr)
	}
}

func TestParenExprIsNotLambda(t *testing.T) {
	expr := parseOneExpr(t, "(a + b) * 2")
	if _, ok := expr.(*ast.BinaryExpression); !ok {
		t.Fatalf("parenthesized expression = %#v", expr)
	}
}

func TestParseFunctionDecls(t *testing.T) {
	program := parse(t, `
fn add(a: num, b: num) -> num {
  return a + b
}
teach fn shared() {
  return 1
}
async fn bg(n: num) {
  return n
}
`)
	add := program.Body[0].(*ast.FunctionDeclaration)
	if add.Name != "add" || len(add.Params) != 2 || add.ReturnType == nil || add.IsExported {
		t.Fatalf("fn = %#v", add)
	}
	shared := program.Body[1].(*ast.FunctionDeclaration)
	if !shared.IsExported {
		t.Fatalf("teach fn not marked as exported")
	}
	bg := program.Body[2].(*ast.FunctionDeclaration)
	if !bg.IsAsync {
		t.Fatalf("async fn not marked as async")
	}
}

func TestParseParameterRequiresType(t *testing.T) {
	_, err := Parse("fn f(a) { }")
	if err == nil || !strings.Contains(err.Error(), "expected ':' after parameter 'a'") {
		t.Fatalf("error = %v", err)
	}
}

func TestSelfParameterNeedsNoAnnotation(t *testing.T) {
	program := parse(t, `
impl Vec {
  fn len(self) {
    return 0
  }
}
`)
	impl := program.Body[0].(*ast.ImplBlock)
	self := impl.Methods[0].Params[0]
	if !ast.IsNamed(self.Type, "Self") {
		t.Fatalf("self parameter type = %#v, want Self", self.Type)
	}
}

func TestParseStructEnumTrait(t *testing.T) {
	program := parse(t, `
def Point {
  x: num,
  y: num
}
enum Color {
  Red,
  RGB(num, num, num)
}
trait Show {
  fn show(self) -> str
  fn debug(self) {
    return "?"
  }
}
`)
	def := program.Body[0].(*ast.StructDeclaration)
	if def.Name != "Point" || len(def.Fields) != 2 {
		t.Fatalf("struct decl = %#v", def)
	}
	enum := program.Body[1].(*ast.EnumDeclaration)
	if len(enum.Variants) != 2 || len(enum.Variants[1].Fields) != 3 {
		t.Fatalf("enum decl = %#v", enum)
	}
	trait := program.Body[2].(*ast.TraitDeclaration)
	if len(trait.Methods) != 2 {
		t.Fatalf("trait decl = %#v", trait)
	}
	if trait.Methods[0].Body != nil {
		t.Fatalf("signature-only method has a body")
	}
	if trait.Methods[1].Body == nil {
		t.Fatalf("default method lost its body")
	}
}

func TestParseImplForms(t *testing.T) {
	program := parse(t, `
impl Vec {
  fn len(self) {
    return 0
  }
}
impl Show for Vec {
  fn show(self) -> str {
    return "vec"
  }
}
`)
	inherent := program.Body[0].(*ast.ImplBlock)
	if inherent.TypeName != "Vec" || inherent.TraitName != "" {
		t.Fatalf("inherent impl = %#v", inherent)
	}
	qualified := program.Body[1].(*ast.ImplBlock)
	if qualified.TypeName != "Vec" || qualified.TraitName != "Show" {
		t.Fatalf("trait impl = %#v", qualified)
	}
}

func TestParseImport(t *testing.T) {
	program := parse(t, `learn "utils::strings"`)
	imp := program.Body[0].(*ast.ImportDeclaration)
	if len(imp.Path) != 2 || imp.Path[0] != "utils" || imp.Path[1] != "strings" {
		t.Fatalf("import path = %#v", imp.Path)
	}
}

func TestParseStructLiteral(t *testing.T) {
	expr := parseOneExpr(t, "Point { x: 1, y: 2 }")
	lit, ok := expr.(*ast.StructLiteral)
	if !ok || lit.Name != "Point" || len(lit.Fields) != 2 {
		t.Fatalf("struct literal = %#v", expr)
	}
}

func TestMatchSubjectIsNotStructLiteral(t *testing.T) {
	program := parse(t, `
match p {
  1 => "one",
  _ => "rest"
}
`)
	m := program.Body[0].(*ast.MatchStatement)
	if _, ok := m.Subject.(*ast.Identifier); !ok {
		t.Fatalf("subject = %#v, want identifier", m.Subject)
	}
	if len(m.Arms) != 2 {
		t.Fatalf("got %d arms, want 2", len(m.Arms))
	}
}

func TestForIterableIsNotStructLiteral(t *testing.T) {
	program := parse(t, `
for item in items {
  item
}
`)
	loop := program.Body[0].(*ast.ForStatement)
	if _, ok := loop.Iterable.(*ast.Identifier); !ok {
		t.Fatalf("iterable = %#v, want identifier", loop.Iterable)
	}
}

func TestParseMatchExpressionPatterns(t *testing.T) {
	program := parse(t, `let r = match c {
  Color.Red => 1,
  Color.RGB(r, g, b) => r,
  -3 => 2,
  _ => 0
}`)
	decl := program.Body[0].(*ast.VariableDeclaration)
	m := decl.Value.(*ast.MatchExpression)
	if len(m.Arms) != 4 {
		t.Fatalf("got %d arms, want 4", len(m.Arms))
	}
	if _, ok := m.Arms[0].Pattern.(*ast.FieldAccessExpression); !ok {
		t.Fatalf("unit variant pattern = %#v", m.Arms[0].Pattern)
	}
	tuple, ok := m.Arms[1].Pattern.(*ast.CallExpression)
	if !ok || len(tuple.Arguments) != 3 {
		t.Fatalf("tuple variant pattern = %#v", m.Arms[1].Pattern)
	}
	neg, ok := m.Arms[2].Pattern.(*ast.NumberLiteral)
	if !ok || !neg.Value.IsNegative() {
		t.Fatalf("negative pattern = %#v", m.Arms[2].Pattern)
	}
}

func TestParseTemplateLiteral(t *testing.T) {
	expr := parseOneExpr(t, "`n=${x + 1}!`")
	tpl := expr.(*ast.TemplateLiteral)
	if len(tpl.Parts) != 3 {
		t.Fatalf("got %d parts, want 3", len(tpl.Parts))
	}
	if tpl.Parts[0].Text != "n=" || tpl.Parts[0].Expression != nil {
		t.Fatalf("part 0 = %#v", tpl.Parts[0])
	}
	if tpl.Parts[1].Expression == nil {
		t.Fatalf("part 1 lost its expression")
	}
	if tpl.Parts[2].Text != "!" {
		t.Fatalf("part 2 = %#v", tpl.Parts[2])
	}
}

func TestParseAttributedStatement(t *testing.T) {
	program := parse(t, `
#[gated(all("net", "fs"))]
fn guarded() {
  return 1
}
`)
	attributed := program.Body[0].(*ast.AttributedStatement)
	if attributed.Attr.Name != "gated" || len(attributed.Attr.Args) != 1 {
		t.Fatalf("attribute = %#v", attributed.Attr)
	}
	if _, ok := attributed.Statement.(*ast.FunctionDeclaration); !ok {
		t.Fatalf("attributed statement = %#v", attributed.Statement)
	}
}

func TestParseGenericType(t *testing.T) {
	program := parse(t, "let xs: Array<num> = [1]")
	decl := program.Body[0].(*ast.VariableDeclaration)
	generic, ok := decl.Type.(*ast.GenericType)
	if !ok || generic.Base != "Array" || len(generic.TypeArgs) != 1 {
		t.Fatalf("type = %#v", decl.Type)
	}
}

func TestParseErrorCarriesPosition(t *testing.T) {
	_, err := Parse("let x =\n  let")
	if err == nil || !strings.HasPrefix(err.Error(), "2:3:") {
		t.Fatalf("error = %v", err)
	}
}

func TestParseExpressionSourceRejectsTrailingInput(t *testing.T) {
	if _, err := ParseExpressionSource("1 + 2"); err != nil {
		t.Fatalf("ParseExpressionSource: %v", err)
	}
	_, err := ParseExpressionSource("1 2")
	if err == nil || !strings.Contains(err.Error(), "unexpected") {
		t.Fatalf("error = %v", err)
	}
}

func TestParseUnclosedBlockMentionsEOF(t *testing.T) {
	_, err := Parse("fn f() {\n  1")
	if err == nil || !strings.Contains(err.Error(), "unexpected end of input in block") {
		t.Fatalf("error = %v", err)
	}
}
