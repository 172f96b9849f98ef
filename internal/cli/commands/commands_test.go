package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wheelhouse-labs/wheelhouse/internal/cli/config"
	"github.com/wheelhouse-labs/wheelhouse/internal/cli/testutil"

	_ "github.com/wheelhouse-labs/wheelhouse/pkg/lint/rules"
)

// loadTestConfig points the current configuration at dir with an
// in-memory state store and the given output mode.
func loadTestConfig(t *testing.T, dir, outputMode string) {
	t.Helper()
	config.ResetConfig()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("project-dir", "", "")
	flags.String("state", "", "")
	flags.String("output", "", "")
	if err := flags.Parse([]string{
		"--project-dir", dir,
		"--state", ":memory:",
		"--output", outputMode,
	}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if _, err := config.LoadConfig("", flags); err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	t.Cleanup(config.ResetConfig)
}

// executeCommand runs a command and captures its stdout. Errors and
// usage text go to a separate buffer so JSON output stays parseable.
func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListCommand_Markdown(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadTestConfig(t, dir, "markdown")

	out, err := executeCommand(t, NewListCommand())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	testutil.AssertContains(t, out, "demo")
	testutil.AssertContains(t, out, "standard")
	testutil.AssertContains(t, out, "setup.cfg")
	testutil.AssertValidMarkdown(t, out)
	testutil.AssertNoANSI(t, out)
}

func TestListCommand_JSON(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadTestConfig(t, dir, "json")

	out, err := executeCommand(t, NewListCommand())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	var payload struct {
		Distributions []struct {
			Name   string   `json:"name"`
			Extras []string `json:"extras"`
		} `json:"distributions"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(payload.Distributions) != 1 || payload.Distributions[0].Name != "demo" {
		t.Errorf("unexpected distributions: %+v", payload.Distributions)
	}
}

func TestExtrasCommand(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadTestConfig(t, dir, "markdown")

	out, err := executeCommand(t, NewExtrasCommand(), "demo")
	if err != nil {
		t.Fatalf("extras failed: %v", err)
	}
	testutil.AssertContains(t, out, "standard")
	testutil.AssertContains(t, out, "uvloop")

	if _, err := executeCommand(t, NewExtrasCommand(), "unknown"); err == nil {
		t.Error("expected error for unknown distribution")
	}
}

func TestEvalCommand(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadTestConfig(t, dir, "json")

	out, err := executeCommand(t, NewEvalCommand(), "demo",
		"--extra", "standard", "--marker", "sys_platform=linux")
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}

	var payload struct {
		Distribution string `json:"distribution"`
		Requirements []struct {
			Canonical string `json:"canonical"`
		} `json:"requirements"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if payload.Distribution != "demo" {
		t.Errorf("unexpected distribution: %q", payload.Distribution)
	}

	names := make(map[string]bool)
	for _, r := range payload.Requirements {
		names[r.Canonical] = true
	}
	for _, want := range []string{"click", "h11", "uvloop"} {
		if !names[want] {
			t.Errorf("expected %s in requirements, got %v", want, names)
		}
	}
}

func TestEvalCommand_BadMarker(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadTestConfig(t, dir, "markdown")

	if _, err := executeCommand(t, NewEvalCommand(), "demo", "--marker", "oops"); err == nil {
		t.Error("expected error for malformed marker override")
	}
}

func TestCheckCommand_CleanProject(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadTestConfig(t, dir, "markdown")

	out, err := executeCommand(t, NewCheckCommand())
	if err != nil {
		t.Fatalf("check failed on clean project: %v\n%s", err, out)
	}
	testutil.AssertContains(t, out, "check out")
}

func TestCheckCommand_ParseErrors(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	broken := filepath.Join(dir, "demo", "demo.egg-info", "requires.txt")
	if err := os.WriteFile(broken, []byte("click>=8.0\nnot !! parseable\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	loadTestConfig(t, dir, "markdown")

	if _, err := executeCommand(t, NewCheckCommand()); err == nil {
		t.Error("expected check to fail with parse errors")
	}
}

func TestLintCommand_ReportsIssues(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	messy := filepath.Join(dir, "demo", "demo.egg-info", "requires.txt")
	if err := os.WriteFile(messy, []byte("click>=8.0\nClick\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	loadTestConfig(t, dir, "json")

	out, err := executeCommand(t, NewLintCommand(), "--format", "json")
	if err == nil {
		t.Fatal("expected lint to report issues")
	}

	var payload struct {
		Diagnostics []struct {
			RuleID string `json:"rule_id"`
		} `json:"diagnostics"`
	}
	if jsonErr := json.Unmarshal([]byte(out), &payload); jsonErr != nil {
		t.Fatalf("output is not JSON: %v\n%s", jsonErr, out)
	}

	fired := make(map[string]bool)
	for _, d := range payload.Diagnostics {
		fired[d.RuleID] = true
	}
	if !fired["RQ01"] {
		t.Errorf("expected RQ01 duplicate finding, got %v", fired)
	}
	if !fired["RQ04"] {
		t.Errorf("expected RQ04 non-canonical finding, got %v", fired)
	}
}

func TestLintCommand_DisableRule(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	messy := filepath.Join(dir, "demo", "demo.egg-info", "requires.txt")
	if err := os.WriteFile(messy, []byte("click>=8.0\nClick\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	loadTestConfig(t, dir, "json")

	out, err := executeCommand(t, NewLintCommand(),
		"--format", "json", "--disable", "RQ01,RQ03,RQ04")
	if err != nil {
		t.Fatalf("expected no findings with rules disabled: %v\n%s", err, out)
	}
}

func TestGraphCommand(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadTestConfig(t, dir, "markdown")

	out, err := executeCommand(t, NewGraphCommand())
	if err != nil {
		t.Fatalf("graph failed: %v", err)
	}
	testutil.AssertContains(t, out, "Wave 0")
	testutil.AssertContains(t, out, "demo[standard]")
	testutil.AssertValidMarkdown(t, out)
}

func TestRulesCommand(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadTestConfig(t, dir, "json")

	out, err := executeCommand(t, NewRulesCommand(), "--format", "json")
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}
	testutil.AssertContains(t, out, "RQ01")
	testutil.AssertContains(t, out, "CF01")

	out, err = executeCommand(t, NewRulesCommand(), "RQ01", "--format", "json")
	if err != nil {
		t.Fatalf("rules RQ01 failed: %v", err)
	}
	testutil.AssertContains(t, out, "requires.duplicate")

	if _, err := executeCommand(t, NewRulesCommand(), "ZZ99"); err == nil {
		t.Error("expected error for unknown rule")
	}
}

func TestScanCommand(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadTestConfig(t, dir, "json")

	out, err := executeCommand(t, NewScanCommand())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	var payload struct {
		ScanID string `json:"scan_id"`
		Status string `json:"status"`
		Files  int    `json:"files"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if payload.Status != "completed" || payload.Files != 2 {
		t.Errorf("unexpected scan result: %+v", payload)
	}
}

func TestDoctorCommand(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	loadTestConfig(t, dir, "json")

	out, err := executeCommand(t, NewDoctorCommand())
	if err != nil {
		t.Fatalf("doctor failed: %v", err)
	}

	var payload DoctorOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if payload.Distributions != 1 || payload.Configs != 1 {
		t.Errorf("unexpected counts: %+v", payload)
	}
	if payload.GraphWaves == 0 {
		t.Error("expected at least one install wave")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, NewVersionCommand("1.2.3", "abc123", "today"))
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "wheelhouse v1.2.3") || !strings.Contains(out, "abc123") {
		t.Errorf("unexpected version output: %q", out)
	}
}
