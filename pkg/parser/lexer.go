package parser

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType represents the kind of token.
type TokenType int

const (
	EOF TokenType = iota
	IDENT
	KEYWORD
	NUMBER
	STRING
	OP
	PUNCT

	// Template literal tokens. A template becomes
	// TEMPLATE_START (TEMPLATE_TEXT | TEMPLATE_EXPR_START ... TEMPLATE_EXPR_END)* TEMPLATE_END.
	TEMPLATE_START
	TEMPLATE_TEXT
	TEMPLATE_EXPR_START
	TEMPLATE_EXPR_END
	TEMPLATE_END
)

func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case IDENT:
		return "identifier"
	case KEYWORD:
		return "keyword"
	case NUMBER:
		return "number"
	case STRING:
		return "string"
	case OP:
		return "operator"
	case PUNCT:
		return "punctuation"
	case TEMPLATE_START, TEMPLATE_END:
		return "'`'"
	case TEMPLATE_TEXT:
		return "template text"
	case TEMPLATE_EXPR_START:
		return "'${'"
	case TEMPLATE_EXPR_END:
		return "'}'"
	default:
		return fmt.Sprintf("token(%d)", int(t))
	}
}

// Token is a lexical token with its raw or decoded text and byte offset.
type Token struct {
	Type TokenType
	Text string
	Pos  int
}

func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "EOF"
	case STRING:
		return fmt.Sprintf("string %q", t.Text)
	case TEMPLATE_TEXT:
		return fmt.Sprintf("template text %q", t.Text)
	default:
		if t.Text != "" {
			return fmt.Sprintf("'%s'", t.Text)
		}
		return t.Type.String()
	}
}

var keywords = map[string]bool{
	"let": true, "const": true, "fn": true, "if": true, "else": true,
	"while": true, "for": true, "in": true, "return": true, "break": true,
	"continue": true, "match": true, "def": true, "enum": true, "impl": true,
	"trait": true, "async": true, "await": true, "lazy": true, "mut": true,
	"true": true, "false": true, "learn": true, "teach": true,
}

// twoCharOps are matched before single-character operators.
var twoCharOps = []string{"=>", "->", "==", "!=", "<=", ">=", "&&", "||", "<<", ">>"}

const singleOps = "+-*/%=<>&|^!?."

const puncts = "(){}[],:;#"

type lexMode int

const (
	modeNormal lexMode = iota
	modeTemplate     // between backticks, reading literal text
	modeTemplateExpr // inside ${...}
)

// Lexer turns source text into tokens. Template literals are lexed with a
// mode stack so expressions may nest templates and vice versa.
type Lexer struct {
	src     []rune
	pos     int
	modes   []lexMode
	depths  []int // brace nesting per open template expression
	pending []Token
}

func NewLexer(source string) *Lexer {
	return &Lexer{src: []rune(source), modes: []lexMode{modeNormal}}
}

// Tokenize lexes the whole input. The returned slice always ends with EOF.
func Tokenize(source string) ([]Token, error) {
	lx := NewLexer(source)
	var tokens []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) mode() lexMode { return l.modes[len(l.modes)-1] }

func (l *Lexer) pushMode(m lexMode) { l.modes = append(l.modes, m) }

func (l *Lexer) popMode() { l.modes = l.modes[:len(l.modes)-1] }

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

func (l *Lexer) peek() rune {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	return r
}

func (l *Lexer) errorf(pos int, format string, args ...any) error {
	line, col := l.lineCol(pos)
	return fmt.Errorf("%d:%d: %s", line, col, fmt.Sprintf(format, args...))
}

func (l *Lexer) lineCol(pos int) (int, int) {
	line, col := 1, 1
	for idx := 0; idx < pos && idx < len(l.src); idx++ {
		if l.src[idx] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// Next returns the next token, honoring the current template mode.
func (l *Lexer) Next() (Token, error) {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok, nil
	}
	if l.mode() == modeTemplate {
		return l.nextTemplate()
	}
	if err := l.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}
	if l.eof() {
		return Token{Type: EOF, Pos: l.pos}, nil
	}

	start := l.pos
	ch := l.peek()

	if l.mode() == modeTemplateExpr && ch == '}' && l.depths[len(l.depths)-1] == 0 {
		l.advance()
		l.depths = l.depths[:len(l.depths)-1]
		l.popMode()
		return Token{Type: TEMPLATE_EXPR_END, Text: "}", Pos: start}, nil
	}

	switch {
	case ch == '`':
		l.advance()
		l.pushMode(modeTemplate)
		return Token{Type: TEMPLATE_START, Text: "`", Pos: start}, nil
	case ch == '"':
		return l.readString()
	case unicode.IsDigit(ch):
		return l.readNumber()
	case isIdentStart(ch):
		return l.readIdent()
	}

	two := string(ch) + string(l.peekAt(1))
	for _, op := range twoCharOps {
		if two == op {
			l.pos += 2
			return Token{Type: OP, Text: op, Pos: start}, nil
		}
	}
	if strings.ContainsRune(singleOps, ch) {
		l.advance()
		return Token{Type: OP, Text: string(ch), Pos: start}, nil
	}
	if strings.ContainsRune(puncts, ch) {
		l.advance()
		if l.mode() == modeTemplateExpr {
			if ch == '{' {
				l.depths[len(l.depths)-1]++
			} else if ch == '}' {
				l.depths[len(l.depths)-1]--
			}
		}
		return Token{Type: PUNCT, Text: string(ch), Pos: start}, nil
	}
	return Token{}, l.errorf(start, "unexpected character '%c'", ch)
}

// nextTemplate reads template text up to the next interpolation or the
// closing backtick.
func (l *Lexer) nextTemplate() (Token, error) {
	start := l.pos
	var text strings.Builder
	for {
		if l.eof() {
			return Token{}, l.errorf(start, "unterminated template literal")
		}
		ch := l.peek()
		if ch == '`' {
			l.advance()
			l.popMode()
			end := Token{Type: TEMPLATE_END, Text: "`", Pos: l.pos - 1}
			if text.Len() > 0 {
				l.pending = append(l.pending, end)
				return Token{Type: TEMPLATE_TEXT, Text: text.String(), Pos: start}, nil
			}
			return end, nil
		}
		if ch == '$' && l.peekAt(1) == '{' {
			l.pos += 2
			l.pushMode(modeTemplateExpr)
			l.depths = append(l.depths, 0)
			exprStart := Token{Type: TEMPLATE_EXPR_START, Text: "${", Pos: l.pos - 2}
			if text.Len() > 0 {
				l.pending = append(l.pending, exprStart)
				return Token{Type: TEMPLATE_TEXT, Text: text.String(), Pos: start}, nil
			}
			return exprStart, nil
		}
		if ch == '\\' {
			l.advance()
			if l.eof() {
				return Token{}, l.errorf(start, "unterminated template literal")
			}
			text.WriteRune(unescape(l.advance()))
			continue
		}
		text.WriteRune(l.advance())
	}
}

func (l *Lexer) readString() (Token, error) {
	start := l.pos
	l.advance() // opening quote
	var text strings.Builder
	for {
		if l.eof() {
			return Token{}, l.errorf(start, "unterminated string literal")
		}
		ch := l.advance()
		if ch == '"' {
			return Token{Type: STRING, Text: text.String(), Pos: start}, nil
		}
		if ch == '\\' {
			if l.eof() {
				return Token{}, l.errorf(start, "unterminated string literal")
			}
			text.WriteRune(unescape(l.advance()))
			continue
		}
		text.WriteRune(ch)
	}
}

func (l *Lexer) readNumber() (Token, error) {
	start := l.pos
	seenDot := false
	for !l.eof() {
		ch := l.peek()
		if ch == '.' && !seenDot && unicode.IsDigit(l.peekAt(1)) {
			seenDot = true
			l.advance()
			continue
		}
		if !unicode.IsDigit(ch) && ch != '_' {
			break
		}
		l.advance()
	}
	text := strings.ReplaceAll(string(l.src[start:l.pos]), "_", "")
	return Token{Type: NUMBER, Text: text, Pos: start}, nil
}

func (l *Lexer) readIdent() (Token, error) {
	start := l.pos
	for !l.eof() && isIdentPart(l.peek()) {
		l.advance()
	}
	text := string(l.src[start:l.pos])
	if keywords[text] {
		return Token{Type: KEYWORD, Text: text, Pos: start}, nil
	}
	return Token{Type: IDENT, Text: text, Pos: start}, nil
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for !l.eof() {
		ch := l.peek()
		if unicode.IsSpace(ch) {
			l.advance()
			continue
		}
		if ch == '/' && l.peekAt(1) == '/' {
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		if ch == '/' && l.peekAt(1) == '*' {
			start := l.pos
			l.pos += 2
			for {
				if l.eof() {
					return l.errorf(start, "unterminated block comment")
				}
				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.pos += 2
					break
				}
				l.advance()
			}
			continue
		}
		return nil
	}
	return nil
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func unescape(ch rune) rune {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return ch
	}
}
