// Package report renders user-facing session output and interprets
// execution outcomes returned by the network.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

type Reporter interface {
	Info(format string, args ...any)
	Success(format string, args ...any)
	Failure(format string, args ...any)
	Detail(label, value string)
}

// Console writes to a terminal stream. Color is disabled when NoColor is set
// or the writer is not a TTY, as decided by fatih/color.
type Console struct {
	w       io.Writer
	info    *color.Color
	success *color.Color
	failure *color.Color
	label   *color.Color
}

func NewConsole(w io.Writer, noColor bool) *Console {
	c := &Console{
		w:       w,
		info:    color.New(color.Reset),
		success: color.New(color.FgGreen, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
		label:   color.New(color.FgHiBlack),
	}
	if noColor {
		for _, col := range []*color.Color{c.info, c.success, c.failure, c.label} {
			col.DisableColor()
		}
	}
	return c
}

func (c *Console) Info(format string, args ...any) {
	_, _ = c.info.Fprintf(c.w, format+"\n", args...)
}

func (c *Console) Success(format string, args ...any) {
	_, _ = c.success.Fprintf(c.w, format+"\n", args...)
}

func (c *Console) Failure(format string, args ...any) {
	_, _ = c.failure.Fprintf(c.w, format+"\n", args...)
}

func (c *Console) Detail(label, value string) {
	_, _ = c.label.Fprintf(c.w, "%s: ", label)
	_, _ = fmt.Fprintln(c.w, value)
}

// Line is one recorded report call.
type Line struct {
	Kind string
	Text string
}

// Recorder keeps every report call in order.
type Recorder struct {
	Lines []Line
}

func (r *Recorder) Info(format string, args ...any) { r.add("info", fmt.Sprintf(format, args...)) }

func (r *Recorder) Success(format string, args ...any) {
	r.add("success", fmt.Sprintf(format, args...))
}

func (r *Recorder) Failure(format string, args ...any) {
	r.add("failure", fmt.Sprintf(format, args...))
}

func (r *Recorder) Detail(label, value string) { r.add("detail", label+": "+value) }

func (r *Recorder) add(kind, text string) { r.Lines = append(r.Lines, Line{Kind: kind, Text: text}) }

// Text joins all recorded lines of the given kinds, or every line when no
// kind is given.
func (r *Recorder) Text(kinds ...string) string {
	var out string
	for _, line := range r.Lines {
		if len(kinds) > 0 && !contains(kinds, line.Kind) {
			continue
		}
		out += line.Text + "\n"
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
