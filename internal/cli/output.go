package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

type palette struct {
	ok    func(a ...interface{}) string
	warn  func(a ...interface{}) string
	fail  func(a ...interface{}) string
	label func(a ...interface{}) string
	dim   func(a ...interface{}) string
}

// newPalette colours output only when w is a terminal.
func newPalette(w io.Writer) palette {
	enabled := writerIsTerminal(w)
	mk := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		ok:    mk(color.FgGreen, color.Bold),
		warn:  mk(color.FgYellow),
		fail:  mk(color.FgHiRed, color.Bold),
		label: mk(color.FgBlue),
		dim:   mk(color.FgHiBlack),
	}
}

type field struct {
	label string
	value string
}

// writeFields prints label/value pairs with the values in one column.
func writeFields(w io.Writer, p palette, fields []field) {
	width := 0
	for _, f := range fields {
		if n := runewidth.StringWidth(f.label); n > width {
			width = n
		}
	}
	for _, f := range fields {
		pad := strings.Repeat(" ", width-runewidth.StringWidth(f.label))
		fmt.Fprintf(w, "%s%s  %s\n", p.label(f.label), pad, f.value)
	}
}
