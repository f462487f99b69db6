package runtime

// Error is the structured diagnostic every core operation can fail with.
// The core only constructs these; rendering (snippets, carets, colour) is the
// host's job.
type Error struct {
	Message string
	Path    string
	Source  string
	// Position/Length select a byte span in Source when HasSpan is true.
	Position int
	Length   int
	HasSpan  bool
}

func (e *Error) Error() string { return e.Message }

// NewError creates a diagnostic with no source context.
func NewError(message string) *Error {
	return &Error{Message: message}
}

// NewErrorWithSpan creates a diagnostic pointing at a byte range of source.
func NewErrorWithSpan(message, path, source string, position, length int) *Error {
	return &Error{
		Message:  message,
		Path:     path,
		Source:   source,
		Position: position,
		Length:   length,
		HasSpan:  true,
	}
}

// NewErrorWithContext creates a diagnostic that carries the source text but
// no specific span.
func NewErrorWithContext(message, path, source string) *Error {
	return &Error{Message: message, Path: path, Source: source}
}
