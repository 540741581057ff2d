package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
)

const waiverBundle = `{
  "note": {
    "_id": "cn-1",
    "noteNumber": "CN-1",
    "reason": "Interest Waiver",
    "noteDate": "2024-03-15T00:00:00Z",
    "isIntegratedTax": true,
    "items": [{
      "itemCode": "INT-WAIVER",
      "itemName": "Interest Waiver",
      "quantity": "1",
      "unitRate": "100",
      "unit": "NOS",
      "itemSacCode": "997113",
      "igst": "18",
      "taxSchemaVersion": 2
    }]
  }
}`

func writeBundle(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.json")
	assert.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

// runCLI parses args and runs the selected command with captured output.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var cli Commands
	var stdout, stderr bytes.Buffer

	parser, err := kong.New(&cli,
		kong.Name("creditnote"),
		kong.Writers(&stdout, &stderr),
		kong.Exit(func(int) { t.Fatalf("unexpected exit") }),
		kong.Bind(&cli.Globals),
	)
	assert.NoError(t, err)

	ctx, err := parser.Parse(args)
	assert.NoError(t, err)

	err = ctx.Run()
	return stdout.String(), stderr.String(), err
}

func exitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode()
	}
	return -1
}

func TestCancelCmd(t *testing.T) {
	path := writeBundle(t, waiverBundle)

	stdout, _, err := runCLI(t, "cancel", path)
	assert.NoError(t, err)
	assert.Contains(t, stdout, "cancel CN-1 passed")
}

func TestCheckCmdAbortsWithoutReason(t *testing.T) {
	path := writeBundle(t, strings.Replace(waiverBundle, `"reason": "Interest Waiver",`, "", 1))

	_, stderr, err := runCLI(t, "check", path)
	assert.Equal(t, ExitAborted, exitCode(err))
	assert.Contains(t, stderr, "Reason")
}

func TestCheckCmdRejectsUnknownFields(t *testing.T) {
	path := writeBundle(t, `{"ledger": []}`)

	_, stderr, err := runCLI(t, "check", path)
	assert.Equal(t, ExitAborted, exitCode(err))
	assert.Contains(t, stderr, "ledger")
}

func TestEditCmdRequiresOldNote(t *testing.T) {
	path := writeBundle(t, waiverBundle)

	_, stderr, err := runCLI(t, "edit", path)
	assert.Equal(t, ExitAborted, exitCode(err))
	assert.Contains(t, stderr, "bundle has no oldNote")
}

func TestReasonsCmd(t *testing.T) {
	t.Run("Table", func(t *testing.T) {
		stdout, _, err := runCLI(t, "reasons")
		assert.NoError(t, err)
		assert.Contains(t, stdout, "REASON")
		assert.Contains(t, stdout, "Interest Waiver")
	})

	t.Run("Filtered", func(t *testing.T) {
		stdout, _, err := runCLI(t, "reasons", "Interest Waiver")
		assert.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		assert.Equal(t, 2, len(lines))
		assert.Contains(t, lines[1], "997113")
	})

	t.Run("Dump", func(t *testing.T) {
		stdout, _, err := runCLI(t, "reasons", "--dump", "Interest Waiver")
		assert.NoError(t, err)
		assert.Contains(t, stdout, "reason.Metadata{")
		assert.Contains(t, stdout, `Code: "Interest Waiver"`)
	})

	t.Run("UnknownReason", func(t *testing.T) {
		_, _, err := runCLI(t, "reasons", "Bogus")
		assert.Error(t, err)
	})
}

func TestTelemetryReport(t *testing.T) {
	path := writeBundle(t, waiverBundle)

	_, stderr, err := runCLI(t, "--telemetry", "cancel", path)
	assert.NoError(t, err)
	assert.Contains(t, stderr, "cancel")
}

func TestWatchFiles(t *testing.T) {
	path := writeBundle(t, waiverBundle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stderr bytes.Buffer
	reloaded := make(chan struct{}, 1)
	var once sync.Once
	done := make(chan error, 1)

	go func() {
		done <- watchFiles(ctx, []string{path}, &stderr, func() []string {
			once.Do(func() { reloaded <- struct{}{} })
			return nil
		})
	}()

	// Give the watcher time to register before touching the file.
	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, os.WriteFile(path, []byte(waiverBundle+"\n"), 0o600))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("reload was not called after the file changed")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestJSONFormat(t *testing.T) {
	path := writeBundle(t, waiverBundle)

	stdout, _, err := runCLI(t, "--format", "json", "cancel", path)
	assert.NoError(t, err)
	assert.Contains(t, stdout, `"status": "passed"`)
	assert.Contains(t, stdout, `"subject": "cancel CN-1"`)
}
