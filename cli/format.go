package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// Status is the verdict of one validation run.
type Status string

const (
	StatusPassed   Status = "passed"
	StatusRejected Status = "rejected"
	StatusAborted  Status = "aborted"
)

// ExitCode maps the status to the process exit code.
func (s Status) ExitCode() int {
	switch s {
	case StatusRejected:
		return ExitRejected
	case StatusAborted:
		return ExitAborted
	}
	return 0
}

// Report is the outcome of one validation run as shown to the user.
type Report struct {
	Subject  string   `json:"subject"`
	Status   Status   `json:"status"`
	Reason   string   `json:"reason,omitempty"`
	Problems []string `json:"problems,omitempty"`
}

// Formatter renders reports. Verdicts go to stdout, problems to stderr.
type Formatter interface {
	Format(stdout, stderr io.Writer, r Report) error
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "", "text":
		return TextFormatter{}, nil
	case "json":
		return JSONFormatter{Indent: "  "}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", name)
}

// TextFormatter prints reports for a terminal.
type TextFormatter struct{}

func (TextFormatter) Format(stdout, stderr io.Writer, r Report) error {
	switch r.Status {
	case StatusPassed:
		printSuccess(stdout, r.Subject+" passed")
	case StatusAborted:
		printError(stderr, r.Reason)
	default:
		for _, msg := range r.Problems {
			printProblem(stderr, msg)
		}
		_, _ = fmt.Fprintln(stderr)
		printError(stderr, fmt.Sprintf("%s failed: %d problem(s) found", r.Subject, len(r.Problems)))
	}
	return nil
}

// JSONFormatter writes each report as one JSON document to stdout.
type JSONFormatter struct {
	Indent string
}

func (f JSONFormatter) Format(stdout, _ io.Writer, r Report) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", f.Indent)
	return enc.Encode(r)
}
