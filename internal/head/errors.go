package head

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every codec package. Callers match with errors.Is.
var (
	ErrUnsupportedVersion   = errors.New("unsupported pack format")
	ErrInvalidRarity        = errors.New("invalid rarity")
	ErrInvalidIdentifier    = errors.New("invalid identifier")
	ErrMalformedDialectText = errors.New("malformed dialect text")
	ErrUnsupportedFeature   = errors.New("ambiguous or unsupported feature")
)

// TextError attaches the offending raw text (and line, when the input is
// line based) to one of the sentinel errors above.
type TextError struct {
	// Op names the operation that failed, e.g. "decode legacy fragment".
	Op string
	// Text is the raw input that could not be processed.
	Text string
	// Line is the 0-based line number, or -1 when not applicable.
	Line int
	// Err is the underlying cause. It wraps a sentinel.
	Err error
}

func (e *TextError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("%s: line %d: %v: %q", e.Op, e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("%s: %v: %q", e.Op, e.Err, e.Text)
}

func (e *TextError) Unwrap() error { return e.Err }

// Errorf builds a TextError whose cause wraps sentinel with a formatted detail.
func Errorf(op, text string, sentinel error, format string, args ...any) *TextError {
	return &TextError{
		Op:   op,
		Text: text,
		Line: -1,
		Err:  fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)),
	}
}

// AtLine returns a copy of err tagged with a line number. Errors that are not
// TextErrors are wrapped in one.
func AtLine(err error, line int, text string) error {
	var te *TextError
	if errors.As(err, &te) {
		tagged := *te
		tagged.Line = line
		tagged.Text = text
		return &tagged
	}
	return &TextError{Op: "decode line", Text: text, Line: line, Err: err}
}
