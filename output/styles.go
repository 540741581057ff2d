// Package output provides terminal styling for reports and catalogue listings.
package output

import (
	"io"

	"github.com/muesli/termenv"
)

// ANSI palette indices.
const (
	red     = "1"
	yellow  = "3"
	magenta = "5"
	cyan    = "6"
)

// Styles colors text for one writer. Writers that are not terminals get the
// text back unchanged.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates a new Styles instance for the given writer.
func NewStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w),
	}
}

func (s *Styles) color(text, code string) termenv.Style {
	return s.output.String(text).Foreground(s.output.Color(code))
}

// Reason styles a reason code.
func (s *Styles) Reason(text string) string {
	return s.color(text, yellow).String()
}

// Rate styles a tax rate or other money value.
func (s *Styles) Rate(text string) string {
	return s.color(text, magenta).String()
}

// Code styles an HSN or SAC code.
func (s *Styles) Code(text string) string {
	return s.color(text, cyan).String()
}

// Keyword styles headings and stage names.
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

// Dim styles secondary information such as tree guides and empty cells.
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Timing dims fast stages and colors slow ones red.
func (s *Styles) Timing(text string, slow bool) string {
	if slow {
		return s.color(text, red).String()
	}
	return s.Dim(text)
}

// Profile reports the color profile detected for the writer.
func (s *Styles) Profile() termenv.Profile {
	return s.output.Profile
}
