// Package cli implements the creditnote command-line interface: lifecycle
// validators run against fixture bundles, plus reason catalogue inspection.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/robinvdvleuten/creditnote/loader"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"
	bulletSymbol  = "•"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		successStyle.Render(successSymbol),
		message,
	)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		errorStyle.Render(errorSymbol),
		errorStyle.Render(message),
	)
}

func printProblem(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "  %s %s\n",
		errorStyle.Render(bulletSymbol),
		message,
	)
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	formatted := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(w, "%s %s\n",
		infoStyle.Render(infoSymbol),
		formatted,
	)
}

// promptYesNo prompts the user with a yes/no question.
// Returns false if stdin is not a terminal.
func promptYesNo(question string) (bool, error) {
	if !isTerminal() {
		return false, nil
	}

	var confirm bool

	form := huh.NewConfirm().
		Title(question).
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	return confirm, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

const stdinName = "<stdin>"

// BundleFile accepts either a fixture bundle path or "-" for stdin.
// For stdin: Filename="<stdin>", Contents populated.
// For files: Filename set, Contents nil (read by loader).
type BundleFile struct {
	Filename string
	Contents []byte
}

// Decode implements kong.MapperValue.
func (f *BundleFile) Decode(ctx *kong.DecodeContext) error {
	var filename string
	if err := ctx.Scan.PopValueInto("filename", &filename); err != nil {
		return err
	}

	if filename == "-" || filename == "" {
		return f.readStdin()
	}

	if _, err := os.Stat(filename); err != nil {
		return err
	}
	f.Filename = filename
	f.Contents = nil

	return nil
}

// EnsureContents populates Contents from stdin if Filename is empty.
func (f *BundleFile) EnsureContents() error {
	if f.Filename == "" {
		return f.readStdin()
	}
	return nil
}

func (f *BundleFile) readStdin() error {
	contents, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read from stdin: %w", err)
	}
	f.Filename = stdinName
	f.Contents = contents
	return nil
}

// IsStdin reports whether the bundle was read from stdin.
func (f *BundleFile) IsStdin() bool {
	return f.Filename == stdinName
}

// AbsoluteFilename returns the absolute path, or "<stdin>" for stdin.
func (f *BundleFile) AbsoluteFilename() string {
	if f.IsStdin() {
		return f.Filename
	}
	absPath, err := filepath.Abs(f.Filename)
	if err != nil {
		return f.Filename
	}
	return absPath
}

// Load reads the bundle, following includes for files.
func (f *BundleFile) Load(ctx context.Context) (*loader.Result, error) {
	if f.IsStdin() {
		b, err := loader.LoadBytes(f.Contents)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", stdinName, err)
		}
		return &loader.Result{Bundle: b, Root: stdinName}, nil
	}
	return loader.New(loader.WithFollowIncludes()).Load(ctx, f.Filename)
}
