package report

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/sanchopanca/for-else/common"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = pterm.FgLightCyan
	InfoStyleBG    = pterm.NewStyle(pterm.BgLightCyan, pterm.FgBlack)
)

// tabWidth is the number of columns a tab is displayed as.
const tabWidth = 4

// displayICE displays an internal compiler error message.
func (r *Reporter) displayICE(message string) {
	fmt.Fprint(r.out, "\n", ErrorStyleBG.Sprint("Internal Error"), " ", ErrorColorFG.Sprint(message), "\n")
	fmt.Fprint(r.out, InfoColorFG.Sprint(icePostlude), "\n\n")
}

const icePostlude = `This error was not supposed to happen: it is likely a bug in forelse.
Please open an issue on GitHub: github.com/sanchopanca/for-else`

// displayFatal displays a fatal error message.
func (r *Reporter) displayFatal(message string) {
	fmt.Fprint(r.out, ErrorStyleBG.Sprint("Fatal Error"), " ", ErrorColorFG.Sprint(message), "\n\n")
}

// displayInfo displays a tagged informational message.
func (r *Reporter) displayInfo(tag, msg string) {
	fmt.Fprint(r.out, InfoStyleBG.Sprint(tag), " ", InfoColorFG.Sprint(msg), "\n")
}

// displayCompileMessage displays a compilation error or warning.
func (r *Reporter) displayCompileMessage(isError bool, absPath, reprPath string, span *TextSpan, message string) {
	var label string
	if isError {
		label = ErrorColorFG.Sprint("error")
	} else {
		label = WarnColorFG.Sprint("warning")
	}

	if span == nil {
		fmt.Fprintf(r.out, "%s: %s: %s\n\n", reprPath, label, message)
	} else {
		fmt.Fprintf(r.out, "%s:%d:%d: %s: %s\n\n", reprPath, span.StartLine+1, span.StartCol+1, label, message)
		r.displaySourceText(absPath, span, isError)
	}
}

// displayStdError displays a standard Go error.
func (r *Reporter) displayStdError(reprPath string, err error) {
	fmt.Fprintf(r.out, "%s: %s: %s\n\n", reprPath, ErrorColorFG.Sprint("error"), err)
}

// -----------------------------------------------------------------------------

// displaySourceText displays a segment of source text defined by a text span.
// If the file can no longer be read (eg. it was removed while watching), the
// excerpt is silently skipped.
func (r *Reporter) displaySourceText(absPath string, span *TextSpan, isError bool) {
	file, err := os.Open(absPath)
	if err != nil {
		return
	}
	defer file.Close()

	// Collect all the source lines containing the given source text.  Columns
	// are byte offsets so they are converted to display columns before tabs
	// are expanded.
	var lines []string
	startCol, endCol := span.StartCol, span.EndCol
	sc := bufio.NewScanner(file)
	for ln := 0; sc.Scan(); ln++ {
		if span.StartLine <= ln && ln <= span.EndLine {
			text := sc.Text()
			if ln == span.StartLine {
				startCol = displayColumn(text, span.StartCol)
			}
			if ln == span.EndLine {
				endCol = displayColumn(text, span.EndCol)
			}

			lines = append(lines, strings.ReplaceAll(text, "\t", strings.Repeat(" ", tabWidth)))
		}
	}

	if sc.Err() != nil || len(lines) == 0 {
		return
	}

	// Calculate the minimum line indentation.
	minIndent := math.MaxInt
	for _, line := range lines {
		lineIndent := len(line) - len(strings.TrimLeft(line, " "))
		if lineIndent < minIndent {
			minIndent = lineIndent
		}
	}

	// Calculate the maximum line number length and use it to build a padding
	// format string for line numbers.
	maxLineNumLen := len(strconv.Itoa(span.EndLine + 1))
	lineNumFmtStr := "%-" + strconv.Itoa(maxLineNumLen) + "v | "

	caretColor := ErrorColorFG
	if !isError {
		caretColor = WarnColorFG
	}

	for i, line := range lines {
		// Print the line number and the line itself (trimmed).
		fmt.Fprint(r.out, InfoColorFG.Sprintf(lineNumFmtStr, i+span.StartLine+1))
		fmt.Fprintln(r.out, line[minIndent:])

		// The carets begin at the start column on the first line and at the
		// indentation on every other line.  They run to the end of the line on
		// every line but the last.
		caretStart := minIndent
		if i == 0 {
			caretStart = startCol
		}

		caretEnd := len(line)
		if i == len(lines)-1 {
			caretEnd = endCol
		}

		caretCount := caretEnd - caretStart
		if caretCount < 1 {
			caretCount = 1
		}

		fmt.Fprint(r.out, strings.Repeat(" ", maxLineNumLen), " | ")
		fmt.Fprint(r.out, strings.Repeat(" ", max(caretStart-minIndent, 0)))
		fmt.Fprintln(r.out, caretColor.Sprint(strings.Repeat("^", caretCount)))
	}

	fmt.Fprintln(r.out)
}

// displayColumn converts a byte column into a display column with tabs
// expanded.
func displayColumn(line string, col int) int {
	if col > len(line) {
		col = len(line)
	}

	return col + strings.Count(line[:col], "\t")*(tabWidth-1)
}

// -----------------------------------------------------------------------------

// displayHeader displays the tool information before starting work.
func (r *Reporter) displayHeader(mode string, fileCount int) {
	fmt.Fprint(r.out, "forelse ", InfoColorFG.Sprint("v"+common.ForElseVersion))
	fmt.Fprint(r.out, " -- ", mode, ": ")

	if fileCount == 1 {
		fmt.Fprintln(r.out, InfoColorFG.Sprint("1 file"))
	} else {
		fmt.Fprintln(r.out, InfoColorFG.Sprintf("%d files", fileCount))
	}
}

// phaseSpinner stores the current phase spinner.
var phaseSpinner *pterm.SpinnerPrinter
var currentPhase string
var phaseStartTime time.Time

const maxPhaseLength = len("Expanding")

// displayBeginPhase displays the beginning of a phase.
func (r *Reporter) displayBeginPhase(phase string) {
	currentPhase = phase
	phaseText := phase + "..." + strings.Repeat(" ", max(maxPhaseLength-len(phase), 0)+2)
	phaseSpinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(InfoColorFG))

	phaseSpinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: SuccessStyleBG,
			Text:  "Done",
		},
	}

	phaseSpinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: ErrorStyleBG,
			Text:  "Fail",
		},
	}

	phaseSpinner.Start(phaseText)
	phaseStartTime = time.Now()
}

// displayEndPhase displays the end of a phase.
func (r *Reporter) displayEndPhase(success bool) {
	if phaseSpinner != nil {
		padding := strings.Repeat(" ", max(maxPhaseLength-len(currentPhase), 0)+2)
		if success {
			phaseSpinner.Success(
				currentPhase+padding,
				fmt.Sprintf("(%.3fs)", time.Since(phaseStartTime).Seconds()),
			)
		} else {
			phaseSpinner.Fail(currentPhase + padding)
		}

		phaseSpinner = nil
	}
}

// displayFinished displays the concluding message.
func (r *Reporter) displayFinished(written int) {
	fmt.Fprintln(r.out)

	if r.errorCount == 0 {
		fmt.Fprint(r.out, SuccessColorFG.Sprint("All done! "))
	} else {
		fmt.Fprint(r.out, ErrorColorFG.Sprint("Oh no! "))
	}

	fmt.Fprint(r.out, "(")
	fmt.Fprint(r.out, countString(written, "file", "written", InfoColorFG), ", ")
	fmt.Fprint(r.out, countString(r.errorCount, "error", "", ErrorColorFG), ", ")
	fmt.Fprint(r.out, countString(r.warningCount, "warning", "", WarnColorFG))
	fmt.Fprintln(r.out, ")")
}

// countString formats a count with a pluralized noun.  Nonzero counts are
// displayed in the given color; zero is always displayed as a success.
func countString(n int, noun, suffix string, color pterm.Color) string {
	if n != 1 {
		noun += "s"
	}

	if suffix != "" {
		noun += " " + suffix
	}

	if n == 0 {
		return SuccessColorFG.Sprint(0) + " " + noun
	}

	return color.Sprint(n) + " " + noun
}
