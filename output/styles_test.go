package output

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/muesli/termenv"
)

func TestStylesKeepText(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	tests := []struct {
		name   string
		render func(string) string
		text   string
	}{
		{"reason", styles.Reason, "Sales Return"},
		{"rate", styles.Rate, "18%"},
		{"code", styles.Code, "997113"},
		{"keyword", styles.Keyword, "check"},
		{"dim", styles.Dim, "├─ "},
		{"timing fast", func(s string) string { return styles.Timing(s, false) }, "3ms"},
		{"timing slow", func(s string) string { return styles.Timing(s, true) }, "1.20s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.render(tt.text), tt.text)
		})
	}
}

// A bytes.Buffer is not a terminal, so styling collapses to plain text.
func TestStylesPlainWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	assert.Equal(t, termenv.Ascii, styles.Profile())
	assert.Equal(t, "Sales Return", styles.Reason("Sales Return"))
	assert.Equal(t, "18%", styles.Rate("18%"))
}
