package runtime

// Environment is an ordered stack of lexical scope frames. Lookups walk the
// frames innermost-to-outermost; the outermost frame is never popped.
type Environment struct {
	scopes []map[string]Value
}

// NewEnvironment creates an environment with a single root scope.
func NewEnvironment() *Environment {
	return &Environment{scopes: []map[string]Value{make(map[string]Value)}}
}

// PushScope opens a new innermost frame.
func (e *Environment) PushScope() {
	e.scopes = append(e.scopes, make(map[string]Value))
}

// PopScope discards the innermost frame. It never pops the root scope.
func (e *Environment) PopScope() {
	if len(e.scopes) > 1 {
		e.scopes = e.scopes[:len(e.scopes)-1]
	}
}

// Depth reports the number of open frames.
func (e *Environment) Depth() int {
	return len(e.scopes)
}

// Set inserts or overwrites a binding in the innermost frame only.
func (e *Environment) Set(name string, value Value) {
	e.scopes[len(e.scopes)-1][name] = value
}

// Get retrieves the innermost binding for name.
func (e *Environment) Get(name string) (Value, bool) {
	for idx := len(e.scopes) - 1; idx >= 0; idx-- {
		if v, ok := e.scopes[idx][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Update mutates the innermost frame that already binds name. When no frame
// binds it, the name is created in the innermost frame: assignment to an
// undeclared name is permitted and never fails.
func (e *Environment) Update(name string, value Value) {
	for idx := len(e.scopes) - 1; idx >= 0; idx-- {
		if _, ok := e.scopes[idx][name]; ok {
			e.scopes[idx][name] = value
			return
		}
	}
	e.Set(name, value)
}

// CaptureAll flattens every visible binding into one map, inner frames
// shadowing outer ones. Used to freeze a closure's environment.
func (e *Environment) CaptureAll() map[string]Value {
	captured := make(map[string]Value)
	for _, scope := range e.scopes {
		for name, value := range scope {
			captured[name] = value
		}
	}
	return captured
}
