package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/creditnote/output"
	"github.com/robinvdvleuten/creditnote/reason"
)

type ReasonsCmd struct {
	Codes []string `help:"Only show these reasons." arg:"" optional:""`
	Dump  bool     `help:"Print the full descriptors."`
}

func (cmd *ReasonsCmd) Run(ctx *kong.Context, globals *Globals) error {
	sess, err := globals.open(ctx.Stderr, "reasons")
	if err != nil {
		return err
	}
	defer sess.close()

	codes := cmd.Codes
	if len(codes) == 0 {
		codes = sess.registry.Codes()
	}

	descriptors := make([]reason.Metadata, 0, len(codes))
	for _, code := range codes {
		meta, err := sess.registry.Lookup(code)
		if err != nil {
			return err
		}
		descriptors = append(descriptors, meta)
	}

	if cmd.Dump {
		printer := repr.New(ctx.Stdout, repr.Indent("  "), repr.OmitEmpty(true))
		for _, meta := range descriptors {
			printer.Println(meta)
		}
		return nil
	}

	writeReasonTable(ctx.Stdout, descriptors)
	return nil
}

var reasonColumns = []string{"REASON", "ITEMS FROM", "TAX RATES", "HSN/SAC", "EDITABLE"}

const emptyCell = "-"

func writeReasonTable(w io.Writer, descriptors []reason.Metadata) {
	rows := make([][]string, 0, len(descriptors))
	for _, meta := range descriptors {
		rows = append(rows, []string{
			meta.Code,
			string(meta.ItemsFrom),
			formatRates(meta.TaxRates),
			formatCodes(meta.HSNSACCodes),
			strings.Join(meta.UserEditable, ", "),
		})
	}

	widths := make([]int, len(reasonColumns))
	for i, col := range reasonColumns {
		widths[i] = runewidth.StringWidth(col)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	styles := output.NewStyles(w)
	plain := func(s string) string { return s }
	header := []func(string) string{styles.Keyword, styles.Keyword, styles.Keyword, styles.Keyword, styles.Keyword}
	columns := []func(string) string{styles.Reason, plain, styles.Rate, styles.Code, plain}

	writeRow(w, widths, reasonColumns, header, styles.Dim)
	for _, row := range rows {
		writeRow(w, widths, row, columns, styles.Dim)
	}
}

// writeRow measures cells before styling them so escape sequences do not
// count towards the column width.
func writeRow(w io.Writer, widths []int, cells []string, styles []func(string) string, dim func(string) string) {
	var b strings.Builder
	for i, cell := range cells {
		style := styles[i]
		if cell == emptyCell {
			style = dim
		}
		b.WriteString(style(cell))

		if i < len(cells)-1 {
			pad := widths[i] - runewidth.StringWidth(cell) + 2
			b.WriteString(strings.Repeat(" ", pad))
		}
	}
	_, _ = fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
}

func formatRates(rates reason.Optional[[]decimal.Decimal]) string {
	values, ok := rates.Get()
	if !ok {
		return emptyCell
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, v.String()+"%")
	}
	return strings.Join(parts, ", ")
}

func formatCodes(codes reason.Optional[[]string]) string {
	values, ok := codes.Get()
	if !ok || len(values) == 0 {
		return emptyCell
	}
	return strings.Join(values, ", ")
}
