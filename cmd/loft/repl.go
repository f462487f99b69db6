package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"loft/interpreter-go/pkg/interpreter"
	"loft/interpreter-go/pkg/parser"
	"loft/interpreter-go/pkg/runtime"
)

const (
	historyFile = ".loft_history"
	promptMain  = "loft> "
	promptCont  = "  ... "
	banner      = "Loft REPL. Ctrl+C cancels input, Ctrl+D exits. Type :help for commands."
	helpText    = `
REPL commands:
  :help            Show this help
  :quit / :exit    Exit the REPL
  :load <file>     Load and execute a file into the current session
  :reset           Reset the session (fresh globals)
`
)

func runREPL() int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	interp := newSessionInterpreter()

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if done := handleReplCommand(&interp, trimmed); done {
				break
			}
			ln.AppendHistory(trimmed)
			continue
		}

		val, err := evalSnippet(interp, code)
		if err != nil {
			reportRuntimeError(err)
			continue
		}
		if _, isUnit := val.(runtime.UnitValue); !isUnit && val != nil {
			fmt.Println(runtime.DefaultString(val))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return 0
}

// newSessionInterpreter grants every capability; the REPL is an interactive
// trusted context.
func newSessionInterpreter() *interpreter.Interpreter {
	interp := interpreter.New()
	interp.Permissions().AllowAll()
	return interp
}

// evalSnippet runs one REPL input against the persistent session. Bare
// expressions evaluate directly so their value prints; anything else runs as
// a program and yields the last statement's value.
func evalSnippet(interp *interpreter.Interpreter, code string) (runtime.Value, error) {
	if expr, err := parser.ParseExpressionSource(code); err == nil {
		return interp.EvaluateExpression(expr)
	}
	program, err := parser.Parse(code)
	if err != nil {
		return nil, err
	}
	return interp.EvaluateProgram(program)
}

func handleReplCommand(interp **interpreter.Interpreter, line string) (exit bool) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ":help":
		fmt.Print(helpText)
	case ":quit", ":exit":
		return true
	case ":reset":
		*interp = newSessionInterpreter()
		fmt.Println("session reset.")
	case ":load":
		if len(fields) < 2 {
			fmt.Println("usage: :load <file>")
			return false
		}
		path := fields[1]
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("cannot read %s: %v\n", path, err)
			return false
		}
		val, err := evalSnippet(*interp, string(src))
		if err != nil {
			reportRuntimeError(err)
			return false
		}
		if _, isUnit := val.(runtime.UnitValue); !isUnit && val != nil {
			fmt.Println(runtime.DefaultString(val))
		}
	default:
		fmt.Println("unknown command. Type :help for help.")
	}
	return false
}

// readByParseProbe accumulates lines until the buffer parses as a complete
// program, or the parse error no longer looks like truncated input.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the current input.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, perr := parser.Parse(src); perr == nil {
			return src, true
		} else if looksIncomplete(perr) {
			continue
		}
		// A real syntax error; hand it back so the caller can report it.
		return src, true
	}
}

// looksIncomplete classifies parse errors that likely mean more input is
// coming: the parser ran into end of input or an unterminated literal.
func looksIncomplete(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "got EOF") || strings.Contains(msg, "unterminated")
}
