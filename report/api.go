package report

import (
	"fmt"
	"os"
)

// -----------------------------------------------------------------------------
// NOTE: All report functions will only display if the appropriate log level is
// set.  Most report functions will simply fail silently if below their
// appropriate log level.

// CompileError reports a compilation error: ie. erroneous input code.  The
// absPath is the absolute path to the erroneous source file.  The reprPath is
// the representative path to the erroneous source file: the path displayed to
// the user.  The span may be nil in which case no position information will be
// printed.
func (r *Reporter) CompileError(absPath, reprPath string, span *TextSpan, message string, args ...interface{}) {
	r.m.Lock()
	defer r.m.Unlock()

	r.errorCount++

	if r.logLevel > LogLevelSilent {
		r.displayCompileMessage(true, absPath, reprPath, span, fmt.Sprintf(message, args...))
	}
}

// CompileWarning reports a compilation warning.  The arguments are of the same
// form as those to CompileError.
func (r *Reporter) CompileWarning(absPath, reprPath string, span *TextSpan, message string, args ...interface{}) {
	r.m.Lock()
	defer r.m.Unlock()

	r.warningCount++

	if r.logLevel >= LogLevelWarn {
		r.displayCompileMessage(false, absPath, reprPath, span, fmt.Sprintf(message, args...))
	}
}

// StdError reports a non-fatal, standard Go error.
func (r *Reporter) StdError(reprPath string, err error) {
	r.m.Lock()
	defer r.m.Unlock()

	r.errorCount++

	if r.logLevel > LogLevelSilent {
		r.displayStdError(reprPath, err)
	}
}

// Info displays an informational message.  It is only shown in verbose mode.
func (r *Reporter) Info(tag, msg string) {
	r.m.Lock()
	defer r.m.Unlock()

	if r.logLevel == LogLevelVerbose {
		r.displayInfo(tag, msg)
	}
}

// -----------------------------------------------------------------------------

// ReportCompileError reports a compilation error to the global reporter.
func ReportCompileError(absPath, reprPath string, span *TextSpan, message string, args ...interface{}) {
	rep.CompileError(absPath, reprPath, span, message, args...)
}

// ReportCompileWarning reports a compilation warning to the global reporter.
func ReportCompileWarning(absPath, reprPath string, span *TextSpan, message string, args ...interface{}) {
	rep.CompileWarning(absPath, reprPath, span, message, args...)
}

// ReportStdError reports a non-fatal, standard Go error.
func ReportStdError(reprPath string, err error) {
	rep.StdError(reprPath, err)
}

// ReportInfo displays an informational message in verbose mode.
func ReportInfo(tag, msg string) {
	rep.Info(tag, msg)
}

// ReportICE reports an internal compiler error.  These are errors that
// specifically result for a bug or unexpected condition occurring within the
// tool: they are not intended to ever happen.  These errors are always
// displayed regardless of log level.
func ReportICE(message string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.displayICE(fmt.Sprintf(message, args...))

	os.Exit(-1)
}

// ReportFatal reports a fatal error.  These are errors that should cause all
// work to stop immediately.  However, they are expected errors that generally
// result from invalid configuration of some form: an unreadable config file,
// a missing input path, etc.
func ReportFatal(message string, args ...interface{}) {
	if rep.logLevel > LogLevelSilent {
		rep.m.Lock()
		defer rep.m.Unlock()

		rep.displayFatal(fmt.Sprintf(message, args...))
	}

	os.Exit(1)
}

// ReportErrorList reports every error of an error list against a file.
func ReportErrorList(absPath, reprPath string, el ErrorList) {
	for _, lce := range el {
		rep.CompileError(absPath, reprPath, lce.Span, "%s", lce.Message)
	}
}

// -----------------------------------------------------------------------------

// AnyErrors returns whether or not any errors were detected.
func AnyErrors() bool {
	return rep.ErrorCount() > 0
}

// ShouldProceed indicates whether or not there have been any errors that
// should cause work to stop at the current phase.
func ShouldProceed() bool {
	return !AnyErrors()
}

// ResetCounts clears the error and warning counts of the global reporter.
func ResetCounts() {
	rep.ResetCounts()
}

// -----------------------------------------------------------------------------

// CatchErrors catches any errors thrown by a `panic` during a stage of
// expansion.  In effect, this handler determines when any errors
// "unrecoverable" within a given subsection of the tool should stop bubbling.
// NB: This function must ALWAYS be deferred.
func CatchErrors(absPath, reprPath string) {
	if x := recover(); x != nil {
		switch v := x.(type) {
		case *LocalCompileError:
			ReportCompileError(absPath, reprPath, v.Span, "%s", v.Message)
		case ErrorList:
			ReportErrorList(absPath, reprPath, v)
		case error:
			ReportStdError(reprPath, v)
		default:
			ReportICE("%v", x)
		}
	}
}

// -----------------------------------------------------------------------------
// Below are all the "aesthetic" reporting functions that will only run if the
// log level is to verbose.  These provide additional information about the
// expansion process to the user so as to make the tool more friendly.

// ReportHeader reports the header displayed before any work begins.
func ReportHeader(mode string, fileCount int) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel == LogLevelVerbose {
		rep.displayHeader(mode, fileCount)
	}
}

// ReportBeginPhase reports the beginning of a phase of work.
func ReportBeginPhase(phase string) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel == LogLevelVerbose && rep.interactive {
		rep.displayBeginPhase(phase)
	}
}

// ReportEndPhase reports the end of the current phase.
func ReportEndPhase() {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.displayEndPhase(rep.errorCount == 0)
}

// ReportFinished reports the concluding message: the number of files written
// and the error and warning counts.
func ReportFinished(written int) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel == LogLevelVerbose {
		rep.displayFinished(written)
	}
}
