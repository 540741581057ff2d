package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/robinvdvleuten/creditnote/validation"
)

// Reporter prints validation results and maps them to command results.
type Reporter struct {
	Stdout    io.Writer
	Stderr    io.Writer
	Formatter Formatter
}

// Report prints the outcome of one validation. msgs are the problems
// collected in preview mode; err is the error the validator returned.
func (r *Reporter) Report(subject string, msgs []string, err error) CommandResult {
	report := Report{Subject: subject}

	var abort *validation.AbortError
	var rejected *validation.ValidationError

	switch {
	case errors.As(err, &abort):
		report.Status = StatusAborted
		report.Reason = abort.Reason
	case errors.As(err, &rejected):
		msgs = rejected.Messages
	case err != nil:
		return Failure(err)
	}

	if report.Status == "" {
		report.Problems = validation.FilterErrors(msgs)
		report.Status = StatusPassed
		if len(report.Problems) > 0 {
			report.Status = StatusRejected
		}
	}

	formatter := r.Formatter
	if formatter == nil {
		formatter = TextFormatter{}
	}
	if err := formatter.Format(r.Stdout, r.Stderr, report); err != nil {
		return Failure(fmt.Errorf("failed to write report: %w", err))
	}
	if report.Status == StatusPassed {
		return Success()
	}
	return Rejected(report.Status.ExitCode())
}

// step is one validator run of a multi-step command.
type step struct {
	name string
	run  func(preview bool) ([]string, error)
}

// runSteps runs steps in order. In preview mode every step runs and all
// problems are reported together; an abort still stops the run. Otherwise the
// first failing step stops the run.
func (r *Reporter) runSteps(subject string, preview bool, steps []step) CommandResult {
	var collected []string
	for _, s := range steps {
		msgs, err := s.run(preview)
		if err != nil {
			return r.Report(subject, collected, wrapStep(s.name, err))
		}
		collected = append(collected, msgs...)
	}
	return r.Report(subject, collected, nil)
}

func wrapStep(name string, err error) error {
	var abort *validation.AbortError
	var rejected *validation.ValidationError
	if errors.As(err, &abort) || errors.As(err, &rejected) {
		return err
	}
	return fmt.Errorf("%s: %w", name, err)
}
