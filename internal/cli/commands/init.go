package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wheelhouse-labs/wheelhouse/internal/cli/config"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Force bool // Overwrite an existing config file
}

// initScaffold is the generated wheelhouse.yaml content.
type initScaffold struct {
	StatePath    string                              `yaml:"state_path"`
	Environment  string                              `yaml:"environment,omitempty"`
	Environments map[string]config.EnvironmentConfig `yaml:"environments,omitempty"`
	Lint         config.LintConfig                   `yaml:"lint,omitempty"`
	Output       string                              `yaml:"output"`
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Initialize a wheelhouse project",
		Long: `Create a wheelhouse.yaml configuration file and the state
directory in the given directory (default: current directory).

The generated config includes two example environment profiles and an
empty lint section to edit.`,
		Example: `  # Initialize the current directory
  wheelhouse init

  # Initialize another directory
  wheelhouse init ./myproject`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, opts *InitOptions) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	cfgPath := filepath.Join(dir, "wheelhouse.yaml")
	if _, err := os.Stat(cfgPath); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}

	scaffold := initScaffold{
		StatePath: config.DefaultStateFile,
		Environments: map[string]config.EnvironmentConfig{
			"py312-linux": {Markers: map[string]string{
				"python_version": "3.12",
				"sys_platform":   "linux",
			}},
			"py39-win": {Markers: map[string]string{
				"python_version": "3.9",
				"sys_platform":   "win32",
				"os_name":        "nt",
			}},
		},
		Lint: config.LintConfig{
			Disabled: []string{},
		},
		Output: config.DefaultOutput,
	}

	data, err := yaml.Marshal(&scaffold)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	header := []byte("# wheelhouse project configuration\n")
	if err := os.WriteFile(cfgPath, append(header, data...), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	stateDir := filepath.Join(dir, filepath.Dir(config.DefaultStateFile))
	if err := os.MkdirAll(stateDir, 0750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Created %s\n", cfgPath)
	_, _ = fmt.Fprintf(out, "Created %s/\n", stateDir)
	_, _ = fmt.Fprintln(out, "Run 'wheelhouse list' to discover metadata files.")

	return nil
}
