package report

import (
	"fmt"
	"sort"
	"strings"
)

// TextSpan represents a range or "span" of source text.  It is used to specify
// erroneous or otherwise significant source text in an extended Go file.  The
// line and column numbers are zero-indexed.  The starting position is the
// position of the first character in the span and the ending column is one
// past the last character in the span.
type TextSpan struct {
	// The line and column beginning the text span.
	StartLine, StartCol int

	// The line and column ending the text span.
	EndLine, EndCol int
}

// NewSpanOver returns a new text span which spans over and between the two
// given text spans.
func NewSpanOver(start, end *TextSpan) *TextSpan {
	return &TextSpan{
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

func (ts *TextSpan) String() string {
	return fmt.Sprintf("%d:%d", ts.StartLine+1, ts.StartCol+1)
}

// -----------------------------------------------------------------------------

// LocalCompileError is a compilation error that occurs in a context in which
// the file is known by the error handler and thus doesn't need to be passed
// along with the error.
type LocalCompileError struct {
	// The error message.
	Message string

	// The span over which the error occurs.
	Span *TextSpan
}

func (lce *LocalCompileError) Error() string {
	if lce.Span == nil {
		return lce.Message
	}

	return lce.Span.String() + ": " + lce.Message
}

// Raise creates a new local compile error.
func Raise(span *TextSpan, msg string, args ...interface{}) *LocalCompileError {
	return &LocalCompileError{Message: fmt.Sprintf(msg, args...), Span: span}
}

// ErrorList is a list of local compile errors.  It is returned by the front
// end and the expander so that every problem in a file is reported at once.
type ErrorList []*LocalCompileError

// Add appends a new error to the list.
func (el *ErrorList) Add(span *TextSpan, msg string, args ...interface{}) {
	*el = append(*el, Raise(span, msg, args...))
}

// Sort orders the list by source position.  Errors without a span sort first.
func (el ErrorList) Sort() {
	sort.SliceStable(el, func(i, j int) bool {
		a, b := el[i].Span, el[j].Span
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		case a.StartLine != b.StartLine:
			return a.StartLine < b.StartLine
		default:
			return a.StartCol < b.StartCol
		}
	})
}

// Err returns the list as an error, or nil if it is empty.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}

	return el
}

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	}

	msgs := make([]string, len(el))
	for i, lce := range el {
		msgs[i] = lce.Error()
	}

	return strings.Join(msgs, "\n")
}
