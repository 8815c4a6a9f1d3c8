// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package contract

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

func (o Outcome) color() *color.Color {
	switch o {
	case Pass:
		return green
	case Fail:
		return red
	case ObservedDefect:
		return yellow
	case Resolved:
		return cyan
	default:
		return faint
	}
}

// Write prints one line per step followed by a summary line.  Colors
// follow color.NoColor.
func (r Report) Write(w io.Writer) error {
	counts := make(map[Outcome]int)
	for _, result := range r.Results {
		counts[result.Outcome]++
		label := result.Outcome.color().Sprintf("%-15s", result.Outcome)
		_, err := fmt.Fprintf(w, "%s  %-20s  %s\n", label, result.Step, result.Detail)
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d passed, %d failed, %d observed defects, %d resolved, %d skipped\n",
		counts[Pass], counts[Fail], counts[ObservedDefect], counts[Resolved], counts[Skipped])
	return err
}
