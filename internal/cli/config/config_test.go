package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "wheelhouse.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("project-dir", "", "")
	flags.String("state", "", "")
	flags.String("environment", "", "")
	flags.String("output", "", "")
	flags.Bool("verbose", false, "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()

	flags := newFlags()
	if err := flags.Parse([]string{"--project-dir", dir}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadConfig("", flags)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.ProjectRoot != dir {
		t.Errorf("expected project root %s, got %s", dir, cfg.ProjectRoot)
	}
	if cfg.Output != DefaultOutput {
		t.Errorf("expected default output, got %q", cfg.Output)
	}
	if cfg.Serve.Addr != DefaultAddr {
		t.Errorf("expected default addr, got %q", cfg.Serve.Addr)
	}
	want := filepath.Join(dir, DefaultStateFile)
	if cfg.StatePath != want {
		t.Errorf("expected state path %s, got %s", want, cfg.StatePath)
	}
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `
output: json
environment: py38-win
environments:
  py38-win:
    markers:
      python_version: "3.8"
      sys_platform: win32
lint:
  disabled: [RQ03]
  severity:
    RQ04: error
  rules:
    CF01:
      allow: [mytool]
`)

	cfg, err := LoadConfig(path, nil)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Output != "json" {
		t.Errorf("expected json output, got %q", cfg.Output)
	}
	if GetConfigFileUsed() != path {
		t.Errorf("expected config file %s, got %s", path, GetConfigFileUsed())
	}

	env := cfg.MarkerEnvironment()
	if env["python_version"] != "3.8" || env["sys_platform"] != "win32" {
		t.Errorf("expected profile markers applied, got %v", env)
	}
	if env["os_name"] == "" {
		t.Error("expected defaults under the profile overrides")
	}

	lintCfg := cfg.ToLintConfig()
	if !lintCfg.IsDisabled("RQ03") {
		t.Error("expected RQ03 disabled")
	}
	if lintCfg.GetSeverity("RQ04", lint.SeverityInfo) != lint.SeverityError {
		t.Error("expected RQ04 severity override")
	}
	if opts := lintCfg.GetRuleOptions("CF01"); opts["allow"] == nil {
		t.Error("expected CF01 allow option")
	}
}

func TestLoadConfig_UnknownEnvironment(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `
environment: nope
environments:
  py312: {}
`)

	if _, err := LoadConfig(path, nil); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestLoadConfig_EnvVarOverride(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, "output: text\n")

	t.Setenv("WHEELHOUSE_OUTPUT", "markdown")

	flags := newFlags()
	if err := flags.Parse([]string{"--project-dir", dir}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadConfig("", flags)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.Output != "markdown" {
		t.Errorf("expected env var to override file, got %q", cfg.Output)
	}
}

func TestLoadConfig_FlagOverridesEverything(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, "output: text\n")

	t.Setenv("WHEELHOUSE_OUTPUT", "markdown")

	flags := newFlags()
	if err := flags.Parse([]string{"--project-dir", dir, "--output", "json", "--verbose"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadConfig("", flags)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.Output != "json" {
		t.Errorf("expected flag to win, got %q", cfg.Output)
	}
	if !cfg.Verbose {
		t.Error("expected verbose set from flag")
	}
}

func TestLoadConfig_MarkersOverrideProfile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `
environment: py38
environments:
  py38:
    markers:
      python_version: "3.8"
markers:
  python_version: "3.13"
`)

	cfg, err := LoadConfig(path, nil)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if v := cfg.MarkerEnvironment()["python_version"]; v != "3.13" {
		t.Errorf("expected direct markers to win over profile, got %q", v)
	}
}
