package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/danpilch/winmem/pkg/output"
	"github.com/danpilch/winmem/pkg/use"
)

func newTestApp() (*app, *bytes.Buffer) {
	var out bytes.Buffer
	a := newApp()
	a.stdout = &out
	a.stderr = &bytes.Buffer{}
	return a, &out
}

func run(a *app, args ...string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	defer a.close()
	return root.ExecuteContext(context.Background())
}

func exitCode(err error) int {
	if err == nil {
		return use.ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return -1
}

func TestSetup_FlagsOverrideConfig(t *testing.T) {
	t.Setenv("WINMEM_FORMAT", "tsv")
	t.Setenv("WINMEM_WORKERS", "6")
	t.Setenv("WINMEM_BASELINE_DIR", t.TempDir())

	a, _ := newTestApp()
	if err := run(a, "--format", "json", "--timeout", "3s", "baseline", "list"); err != nil {
		t.Fatal(err)
	}

	if a.cfg.Format != "json" || a.format != output.FormatJSON {
		t.Errorf("format = %q, want the flag value json", a.cfg.Format)
	}
	if a.cfg.Workers != 6 {
		t.Errorf("workers = %d, want the environment value 6", a.cfg.Workers)
	}
	if a.cfg.Timeout.Duration != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", a.cfg.Timeout.Duration)
	}
}

func TestSetup_InvalidConfigIsToolError(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"--format", "xml", "baseline", "list"}},
		{"zero workers", []string{"--workers", "0", "baseline", "list"}},
		{"missing config file", []string{"--config", "does-not-exist.json", "baseline", "list"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, _ := newTestApp()
			if code := exitCode(run(a, tc.args...)); code != use.ExitToolError {
				t.Errorf("exit code = %d, want %d", code, use.ExitToolError)
			}
		})
	}
}

func TestBaselineList_Empty(t *testing.T) {
	t.Setenv("WINMEM_BASELINE_DIR", t.TempDir())
	a, out := newTestApp()
	if err := run(a, "baseline", "list"); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "No baselines saved.\n" {
		t.Errorf("output = %q", got)
	}
}

func TestBaselineCompare_MissingBaseline(t *testing.T) {
	t.Setenv("WINMEM_BASELINE_DIR", t.TempDir())
	a, _ := newTestApp()
	if code := exitCode(run(a, "baseline", "compare", "nope")); code != use.ExitToolError {
		t.Errorf("exit code = %d, want %d", code, use.ExitToolError)
	}
}

func TestServiceCmd_RejectsUnknownAction(t *testing.T) {
	a, _ := newTestApp()
	err := run(a, "service", "explode")
	if err == nil {
		t.Fatal("expected an error for an unknown action")
	}
	if code := exitCode(err); code != -1 {
		t.Errorf("argument error was wrapped with exit code %d", code)
	}
}

func TestProgressFor(t *testing.T) {
	a, _ := newTestApp()
	a.format = output.FormatJSON
	if _, ok := a.progressFor("x").(noProgress); !ok {
		t.Error("json output should not show a spinner")
	}

	called := false
	restore := newSpinner
	defer func() { newSpinner = restore }()
	newSpinner = func(_ io.Writer, suffix string) progress {
		called = suffix == "Reading..."
		return noProgress{}
	}
	a.format = output.FormatTable
	got, err := withProgress(a, "Reading...", func() (int, error) { return 7, nil })
	if err != nil || got != 7 || !called {
		t.Errorf("withProgress() = %d, %v; spinner created = %v", got, err, called)
	}
}

func TestExitError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&exitError{code: use.ExitCritical, err: cause})
	if !errors.Is(err, cause) || err.Error() != "boom" {
		t.Errorf("exitError = %v", err)
	}
	if got := (&exitError{code: 2}).Error(); got != "exit status 2" {
		t.Errorf("Error() = %q", got)
	}
}

func TestCheckCmd_SingleCollector(t *testing.T) {
	a, out := newTestApp()
	err := run(a, "--format", "json", "check", "--collector", "Memory")
	if code := exitCode(err); code == -1 {
		t.Fatalf("check --collector Memory: %v", err)
	}

	var doc struct {
		Checks []use.Check `json:"checks"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out.String())
	}
	if len(doc.Checks) == 0 {
		t.Fatal("no checks rendered")
	}
	for _, c := range doc.Checks {
		if c.Resource != "Memory" {
			t.Errorf("check from %q rendered, want Memory only", c.Resource)
		}
	}
}

func TestCheckCmd_UnknownCollector(t *testing.T) {
	a, _ := newTestApp()
	err := run(a, "check", "--collector", "Swap")
	if code := exitCode(err); code != use.ExitToolError {
		t.Fatalf("exit code = %d, want %d", code, use.ExitToolError)
	}
	if !strings.Contains(err.Error(), "Memory, Commit, Processes") {
		t.Errorf("error = %v, want the known collector names", err)
	}
}
