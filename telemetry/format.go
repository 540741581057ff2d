package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/robinvdvleuten/creditnote/output"
)

// slowStage marks stages that are highlighted in reports.
const slowStage = 50 * time.Millisecond

// formatTree writes a stage and its children:
//
//	check note.json: 4ms
//	├─ rules.evaluate: 1ms
//	└─ validate.save: 2ms
//	   └─ validate.hsn: 1ms
func formatTree(w io.Writer, root *stage, stylesValue interface{}) {
	styles, _ := stylesValue.(*output.Styles)

	name := root.name
	if styles != nil {
		name = styles.Keyword(name)
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", name, formatDuration(root.duration()))

	for i, child := range root.children {
		formatStage(w, child, "", i == len(root.children)-1, styles)
	}
}

func formatStage(w io.Writer, s *stage, prefix string, last bool, styles *output.Styles) {
	branch, extension := "├─ ", "│  "
	if last {
		branch, extension = "└─ ", "   "
	}

	timing := formatDuration(s.duration())
	tree := prefix + branch
	if styles != nil {
		tree = styles.Dim(tree)
		timing = styles.Timing(timing, s.duration() >= slowStage)
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", tree, s.name, timing)

	for i, child := range s.children {
		formatStage(w, child, prefix+extension, i == len(s.children)-1, styles)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
