package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"dubmix/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 18
	statusIndent     = "  "
)

var statusStyles = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

// checkLine is one row of the check report. hint is printed underneath
// when the row is not OK.
type checkLine struct {
	label   string
	kind    statusKind
	message string
	hint    string
}

func infoLine(label, message string) checkLine {
	return checkLine{label: label, kind: statusInfo, message: message}
}

// resultLine maps a preflight result onto a report row. Optional binaries
// that are missing pass but show as warnings.
func resultLine(r preflight.Result) checkLine {
	line := checkLine{label: r.Name, kind: statusOK, message: r.Detail, hint: r.Hint}
	switch {
	case !r.Passed:
		line.kind = statusError
	case strings.Contains(r.Detail, "not found"):
		line.kind = statusWarn
	default:
		line.hint = ""
	}
	return line
}

func (l checkLine) render(colorize bool) []string {
	style := statusStyles[l.kind]
	status := "[" + style.label + "]"
	if l.message != "" {
		status += " " + l.message
	}
	lines := []string{fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, l.label+":", status)}
	if l.hint != "" {
		lines = append(lines, statusIndent+strings.Repeat(" ", statusLabelWidth+1)+"hint: "+l.hint)
	}
	if colorize {
		for i := range lines {
			lines[i] = style.color + lines[i] + ansiReset
		}
	}
	return lines
}

// checkReport accumulates titled sections of check rows.
type checkReport struct {
	colorize bool
	lines    []string
}

func (r *checkReport) section(title string) {
	if len(r.lines) > 0 {
		r.lines = append(r.lines, "")
	}
	header := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	if r.colorize {
		header = ansiBlue + header + ansiReset
	}
	r.lines = append(r.lines, header)
}

func (r *checkReport) add(lines ...checkLine) {
	for _, line := range lines {
		r.lines = append(r.lines, line.render(r.colorize)...)
	}
}

func (r *checkReport) String() string {
	return strings.Join(r.lines, "\n")
}

// shouldColorize reports whether writer is an interactive terminal.
func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
