// Package output renders CLI output: colored worker status lines, platform
// listings and service tables.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/jpalmerr/freeboost"
	"github.com/jpalmerr/freeboost/internal/catalog"
)

// Printer writes formatted output to the terminal.
//
// Printer is safe for concurrent use; each call writes whole lines.
type Printer struct {
	mu        sync.Mutex
	out       io.Writer
	err       io.Writer
	useColors bool
}

// ResolveColors reports whether to use colors. noColor comes from the
// --no-color flag; NO_COLOR and TERM=dumb also turn colors off.
func ResolveColors(noColor bool) bool {
	if noColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// NewPrinter creates a printer writing to out and err.
func NewPrinter(out, err io.Writer, useColors bool) *Printer {
	return &Printer{
		out:       out,
		err:       err,
		useColors: useColors,
	}
}

// Info prints an informational message
func (p *Printer) Info(format string, args ...any) {
	p.line(p.out, color.FgCyan, "", format, args...)
}

// Success prints a success message
func (p *Printer) Success(format string, args ...any) {
	p.line(p.out, color.FgGreen, "", format, args...)
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...any) {
	p.line(p.err, color.FgYellow, "[WARN] ", format, args...)
}

// Error prints an error message
func (p *Printer) Error(format string, args ...any) {
	p.line(p.err, color.FgRed, "[ERROR] ", format, args...)
}

// Header prints a section header
func (p *Printer) Header(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.useColors {
		color.New(color.FgCyan, color.Bold).Fprintf(p.out, "\n%s\n", title)
		return
	}
	fmt.Fprintf(p.out, "\n%s\n", title)
}

// Platforms prints the platform list shown before the platform prompt.
func (p *Printer) Platforms(platforms []catalog.Platform) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pl := range platforms {
		name := pl.Name
		if p.useColors {
			name = color.GreenString(name)
		}
		fmt.Fprintf(p.out, "  - %s (%s)\n", name, pl.ID)
	}
}

// Status prints one line for a worker state change. Idle states are not
// printed.
func (p *Printer) Status(s freeboost.Status) {
	var (
		tag  string
		attr color.Attribute
		text string
	)

	switch s.State {
	case freeboost.StateSubmitting:
		tag, attr, text = "[TRY]", color.FgCyan, "→  "+s.Link
	case freeboost.StateSucceeded:
		tag, attr, text = "[OK]", color.FgGreen, s.Message
	case freeboost.StateSoftFailed:
		tag, attr, text = "[NOK]", color.FgYellow, s.Message
	case freeboost.StateHardFailed:
		tag, attr, text = "[FAIL]", color.FgRed, s.Message
		if s.StatusCode != 0 {
			tag = fmt.Sprintf("[HTTP %d]", s.StatusCode)
		}
	case freeboost.StateSleeping:
		tag, attr, text = "[SLEEP]", color.FgBlue, fmt.Sprintf("%s until %s", s.Sleep.Round(time.Second), s.NextAttemptAt.Format(time.TimeOnly))
	case freeboost.StateSkipped:
		tag, attr, text = "[SKIP]", color.FgRed, "unavailable"
	case freeboost.StateStopped:
		tag, attr, text = "[STOP]", color.FgWhite, "stopped"
	default:
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.useColors {
		tag = color.New(attr).Sprint(tag)
	}
	fmt.Fprintf(p.out, "%s %s  %s\n", tag, s.Service, text)
}

func (p *Printer) line(w io.Writer, attr color.Attribute, plainPrefix, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.useColors {
		color.New(attr).Fprintf(w, format+"\n", args...)
		return
	}
	fmt.Fprintf(w, plainPrefix+format+"\n", args...)
}
