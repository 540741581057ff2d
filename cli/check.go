package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/creditnote/loader"
	"github.com/robinvdvleuten/creditnote/mutation"
	"github.com/robinvdvleuten/creditnote/rules"
	"github.com/robinvdvleuten/creditnote/store/memory"
)

type CheckCmd struct {
	File    BundleFile `help:"Fixture bundle (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Preview bool       `help:"Report every problem instead of stopping at the first failing validator." short:"p"`
	Edit    bool       `help:"Validate as an edit of the bundle's old note." short:"e"`
	Watch   bool       `help:"Re-run the check whenever the bundle or one of its includes changes." short:"w"`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	if cmd.Watch {
		if cmd.File.IsStdin() {
			return fmt.Errorf("--watch needs a bundle file")
		}
		return cmd.watch(ctx, globals)
	}

	result, _ := cmd.check(ctx, globals)
	return result.AsError()
}

// check runs one validation pass and returns the files it read.
func (cmd *CheckCmd) check(ctx *kong.Context, globals *Globals) (CommandResult, []string) {
	sess, err := globals.open(ctx.Stderr, fmt.Sprintf("check %s", filepath.Base(cmd.File.Filename)))
	if err != nil {
		return Failure(err), nil
	}
	defer sess.close()

	loaded, err := cmd.File.Load(sess.ctx)
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return Rejected(ExitAborted), nil
	}
	files := append([]string{loaded.Root}, loaded.Includes...)

	b := loaded.Bundle
	if b.Note == nil {
		printError(ctx.Stderr, "bundle has no note")
		return Rejected(ExitAborted), files
	}

	reporter := sess.reporter(ctx.Stdout)
	svc := sess.service(memory.FromBundle(b))
	return reporter.runSteps("check "+noteLabel(b), cmd.Preview, checkSteps(sess.ctx, svc, b, cmd.Edit)), files
}

// checkSteps lists the validators a save runs, in order.
func checkSteps(ctx context.Context, svc *mutation.Service, b *loader.Bundle, isEdit bool) []step {
	isEdit = isEdit && b.OldNote != nil
	input := rules.Input{
		Note:      b.Note,
		Invoice:   b.Invoice,
		DebitNote: b.DebitNote,
		Contract:  b.Contract,
		IsEdit:    isEdit,
		OldNote:   b.OldNote,
	}

	steps := []step{
		{"reason", func(preview bool) ([]string, error) {
			out, err := svc.EvaluateReason(ctx, input, preview)
			return out.Errors, err
		}},
		{"save", func(preview bool) ([]string, error) {
			save := mutation.SaveInput{
				Note:              b.Note,
				IsEdit:            isEdit,
				Invoice:           b.Invoice,
				ReversedDebitNote: b.DebitNote,
				Contract:          b.Contract,
			}
			if isEdit {
				save.OldNote = b.OldNote
			}
			out, err := svc.ValidateOnSave(ctx, save, preview)
			return out.Errors, err
		}},
	}

	if isEdit {
		steps = append(steps, step{"edit", func(preview bool) ([]string, error) {
			out, err := svc.ValidateOnEdit(ctx, mutation.EditInput{Old: b.OldNote, New: b.Note}, preview)
			return out.Errors, err
		}})
	}
	if b.Note.ReferenceDocumentNumber != "" {
		steps = append(steps, step{"reference", referenceStep(ctx, svc, b)})
	}
	if len(b.Schedule) > 0 {
		steps = append(steps, step{"schedule", func(preview bool) ([]string, error) {
			out, err := svc.ValidatePaymentSchedule(ctx, b.Schedule, b.Note, preview)
			return out.Errors, err
		}})
	}
	if b.Invoice != nil {
		steps = append(steps, step{"amount", func(preview bool) ([]string, error) {
			out, err := svc.ValidateAmount(ctx, b.Note, b.Invoice, preview)
			return out.Errors, err
		}})
	}
	return steps
}

func referenceStep(ctx context.Context, svc *mutation.Service, b *loader.Bundle) func(bool) ([]string, error) {
	return func(preview bool) ([]string, error) {
		check, err := svc.ValidateReferenceNumber(ctx, mutation.ReferenceInput{
			NoteID:          b.Note.ID,
			CustomerID:      b.Note.CustomerID,
			ReferenceNumber: b.Note.ReferenceDocumentNumber,
		}, preview)
		if err != nil || check.Valid {
			return nil, err
		}
		return []string{check.Errors[mutation.ReferenceErrorKey]}, nil
	}
}

func (cmd *CheckCmd) watch(ctx *kong.Context, globals *Globals) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, files := cmd.check(ctx, globals)
	if len(files) == 0 {
		files = []string{cmd.File.AbsoluteFilename()}
	}
	printInfof(ctx.Stdout, "Watching %s", pathStyle.Render(cmd.File.AbsoluteFilename()))

	return watchFiles(runCtx, files, ctx.Stderr, func() []string {
		printInfof(ctx.Stdout, "Change detected, re-checking")
		_, next := cmd.check(ctx, globals)
		return next
	})
}

func noteLabel(b *loader.Bundle) string {
	switch {
	case b.Note.NoteNumber != "":
		return b.Note.NoteNumber
	case b.Note.ID != "":
		return b.Note.ID
	}
	return "note"
}
