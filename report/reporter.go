package report

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/xyproto/env/v2"
)

// Reporter is responsible for reporting errors, warnings, and other kinds of
// messages to the user during program execution.  The reporter respects the set
// log level and is synchronized: its methods can be safely called from multiple
// goroutines.
type Reporter struct {
	// The mutex used to synchonize different error method calls.
	m *sync.Mutex

	// The selected log level of the reporter.  This must be one of the
	// enumerated log levels below.
	logLevel int

	// The writer all messages are displayed to.
	out io.Writer

	// Whether the output is an interactive terminal: phase spinners are only
	// shown when it is.
	interactive bool

	errorCount, warningCount int
}

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays only warnings and errors to the user.
	LogLevelVerbose        // Displays all messages to the user (default).
)

// LogLevelFromName converts a log level name into its enumerated value.  The
// boolean is false if the name is not a known log level.
func LogLevelFromName(name string) (int, bool) {
	switch name {
	case "silent":
		return LogLevelSilent, true
	case "error":
		return LogLevelError, true
	case "warn":
		return LogLevelWarn, true
	case "verbose":
		return LogLevelVerbose, true
	}

	return LogLevelVerbose, false
}

// NewReporter creates a new reporter writing to out.
func NewReporter(out io.Writer, logLevel int) *Reporter {
	return &Reporter{
		m:        &sync.Mutex{},
		logLevel: logLevel,
		out:      out,
	}
}

// rep is the global reporter instance.
var rep = NewReporter(os.Stdout, LogLevelVerbose)

// InitReporter initializes the global error reporter to the given log level,
// writing to standard out.  Colors are disabled when standard out is not a
// terminal or when NO_COLOR is set.
func InitReporter(logLevel int) {
	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !interactive || env.Str("NO_COLOR") != "" {
		pterm.DisableColor()
	}

	r := NewReporter(os.Stdout, logLevel)
	r.interactive = interactive
	SetReporter(r)
}

// SetReporter replaces the global reporter.  It is primarily used to redirect
// output in tests.
func SetReporter(r *Reporter) {
	rep = r
}

// ErrorCount returns the number of errors reported so far.
func (r *Reporter) ErrorCount() int {
	r.m.Lock()
	defer r.m.Unlock()

	return r.errorCount
}

// WarningCount returns the number of warnings reported so far.
func (r *Reporter) WarningCount() int {
	r.m.Lock()
	defer r.m.Unlock()

	return r.warningCount
}

// ResetCounts clears the error and warning counts.  The watcher uses this
// between rebuilds.
func (r *Reporter) ResetCounts() {
	r.m.Lock()
	defer r.m.Unlock()

	r.errorCount = 0
	r.warningCount = 0
}
