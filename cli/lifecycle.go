package cli

import (
	"errors"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/creditnote/loader"
	"github.com/robinvdvleuten/creditnote/mutation"
	"github.com/robinvdvleuten/creditnote/store/memory"
	"github.com/robinvdvleuten/creditnote/validation"
)

// bundleRun is a loaded bundle with the session and service to validate it.
type bundleRun struct {
	sess     *session
	bundle   *loader.Bundle
	svc      *mutation.Service
	reporter *Reporter
}

// openBundle loads file and prepares a service over its documents. The
// returned result is non-zero when loading failed and has been reported.
func openBundle(ctx *kong.Context, globals *Globals, file *BundleFile, name string) (*bundleRun, CommandResult) {
	if err := file.EnsureContents(); err != nil {
		return nil, Failure(err)
	}
	sess, err := globals.open(ctx.Stderr, name)
	if err != nil {
		return nil, Failure(err)
	}

	loaded, err := file.Load(sess.ctx)
	if err != nil {
		sess.close()
		printError(ctx.Stderr, err.Error())
		return nil, Rejected(ExitAborted)
	}
	if loaded.Bundle.Note == nil {
		sess.close()
		printError(ctx.Stderr, "bundle has no note")
		return nil, Rejected(ExitAborted)
	}

	return &bundleRun{
		sess:     sess,
		bundle:   loaded.Bundle,
		svc:      sess.service(memory.FromBundle(loaded.Bundle)),
		reporter: sess.reporter(ctx.Stdout),
	}, Success()
}

type EditCmd struct {
	File    BundleFile `help:"Fixture bundle with note and oldNote (use '-' for stdin)." arg:"" optional:""`
	Preview bool       `help:"Report every problem." short:"p"`
}

func (cmd *EditCmd) Run(ctx *kong.Context, globals *Globals) error {
	run, result := openBundle(ctx, globals, &cmd.File, "edit")
	if run == nil {
		return result.AsError()
	}
	defer run.sess.close()

	if run.bundle.OldNote == nil {
		printError(ctx.Stderr, "bundle has no oldNote")
		return Rejected(ExitAborted).AsError()
	}

	out, err := run.svc.ValidateOnEdit(run.sess.ctx, mutation.EditInput{Old: run.bundle.OldNote, New: run.bundle.Note}, cmd.Preview)
	return run.reporter.Report("edit "+noteLabel(run.bundle), out.Errors, err).AsError()
}

type CancelCmd struct {
	File    BundleFile `help:"Fixture bundle (use '-' for stdin)." arg:"" optional:""`
	Preview bool       `help:"Report every problem." short:"p"`
}

func (cmd *CancelCmd) Run(ctx *kong.Context, globals *Globals) error {
	run, result := openBundle(ctx, globals, &cmd.File, "cancel")
	if run == nil {
		return result.AsError()
	}
	defer run.sess.close()

	out, err := run.svc.ValidateOnCancel(run.sess.ctx, run.bundle.Note, cmd.Preview)
	return run.reporter.Report("cancel "+noteLabel(run.bundle), out.Errors, err).AsError()
}

type ReverseCmd struct {
	File     BundleFile `help:"Fixture bundle whose note is the reversal source (use '-' for stdin)." arg:"" optional:""`
	Contract string     `help:"Contract of the reversing debit note (defaults to the bundle contract)."`
}

func (cmd *ReverseCmd) Run(ctx *kong.Context, globals *Globals) error {
	run, result := openBundle(ctx, globals, &cmd.File, "reverse")
	if run == nil {
		return result.AsError()
	}
	defer run.sess.close()

	contractID := cmd.Contract
	if contractID == "" && run.bundle.Contract != nil {
		contractID = run.bundle.Contract.ID
	}

	err := run.svc.ValidateReversalSource(run.sess.ctx, run.bundle.Note, contractID)
	return run.reporter.Report("reversal source "+noteLabel(run.bundle), nil, err).AsError()
}

type MandateCmd struct {
	File     BundleFile `help:"Fixture bundle whose note is persisted (use '-' for stdin)." arg:"" optional:""`
	Override bool       `help:"Apply the book closure override without prompting."`
}

func (cmd *MandateCmd) Run(ctx *kong.Context, globals *Globals) error {
	run, result := openBundle(ctx, globals, &cmd.File, "mandate")
	if run == nil {
		return result.AsError()
	}
	defer run.sess.close()

	in := mutation.MandateInput{NoteID: run.bundle.Note.ID, BookClosureOverride: cmd.Override}
	err := run.svc.ValidateEInvoicingMandate(run.sess.ctx, in)

	var abort *validation.AbortError
	if errors.As(err, &abort) && !cmd.Override {
		printError(ctx.Stderr, abort.Reason)
		confirmed, promptErr := promptYesNo("Apply the book closure override?")
		if promptErr != nil {
			return promptErr
		}
		if confirmed {
			in.BookClosureOverride = true
			err = run.svc.ValidateEInvoicingMandate(run.sess.ctx, in)
		}
	}

	return run.reporter.Report("e-invoicing mandate "+noteLabel(run.bundle), nil, err).AsError()
}

type ReferenceCmd struct {
	File    BundleFile `help:"Fixture bundle (use '-' for stdin)." arg:"" optional:""`
	Number  string     `help:"Reference number to check (defaults to the note's)."`
	Preview bool       `help:"Report the problem instead of failing." short:"p"`
}

func (cmd *ReferenceCmd) Run(ctx *kong.Context, globals *Globals) error {
	run, result := openBundle(ctx, globals, &cmd.File, "reference")
	if run == nil {
		return result.AsError()
	}
	defer run.sess.close()

	n := run.bundle.Note
	number := cmd.Number
	if number == "" {
		number = n.ReferenceDocumentNumber
	}

	check, err := run.svc.ValidateReferenceNumber(run.sess.ctx, mutation.ReferenceInput{
		NoteID:          n.ID,
		CustomerID:      n.CustomerID,
		ReferenceNumber: number,
	}, cmd.Preview)

	var msgs []string
	if err == nil && !check.Valid {
		msgs = append(msgs, check.Errors[mutation.ReferenceErrorKey])
	}
	return run.reporter.Report(fmt.Sprintf("reference %q", number), msgs, err).AsError()
}

type ScheduleCmd struct {
	File     BundleFile `help:"Fixture bundle with a schedule (use '-' for stdin)." arg:"" optional:""`
	Editable bool       `help:"Also check the schedule still covers the note's payments."`
	Preview  bool       `help:"Report every problem." short:"p"`
}

func (cmd *ScheduleCmd) Run(ctx *kong.Context, globals *Globals) error {
	run, result := openBundle(ctx, globals, &cmd.File, "schedule")
	if run == nil {
		return result.AsError()
	}
	defer run.sess.close()

	b := run.bundle
	steps := []step{
		{"schedule", func(preview bool) ([]string, error) {
			out, err := run.svc.ValidatePaymentSchedule(run.sess.ctx, b.Schedule, b.Note, preview)
			return out.Errors, err
		}},
	}
	if cmd.Editable {
		steps = append(steps, step{"editable", func(preview bool) ([]string, error) {
			out, err := run.svc.ValidatePaymentScheduleEditable(run.sess.ctx, mutation.ScheduleEditInput{
				Note:     b.Note,
				Schedule: b.Schedule,
			}, preview)
			return out.Errors, err
		}})
	}
	if b.Invoice != nil {
		steps = append(steps, step{"amount", func(preview bool) ([]string, error) {
			out, err := run.svc.ValidateAmount(run.sess.ctx, b.Note, b.Invoice, preview)
			return out.Errors, err
		}})
	}

	return run.reporter.runSteps("schedule "+noteLabel(b), cmd.Preview, steps).AsError()
}

type SubmitCmd struct {
	File    BundleFile `help:"Fixture bundle (use '-' for stdin)." arg:"" optional:""`
	Edit    bool       `help:"The submission follows an edit." short:"e"`
	Preview bool       `help:"Report every problem." short:"p"`
}

func (cmd *SubmitCmd) Run(ctx *kong.Context, globals *Globals) error {
	run, result := openBundle(ctx, globals, &cmd.File, "submit")
	if run == nil {
		return result.AsError()
	}
	defer run.sess.close()

	out, err := run.svc.ValidateForEInvoicingSubmission(run.sess.ctx, run.bundle.Note, cmd.Edit, cmd.Preview)
	return run.reporter.Report("e-invoicing submission "+noteLabel(run.bundle), out.Errors, err).AsError()
}
