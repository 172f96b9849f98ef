package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wheelhouse-labs/wheelhouse/internal/cli/output"
	"github.com/wheelhouse-labs/wheelhouse/internal/engine"
	"github.com/wheelhouse-labs/wheelhouse/pkg/requirement"
)

// EvalOptions holds options for the eval command.
type EvalOptions struct {
	Extras  []string // Extras to activate
	Markers []string // key=value marker overrides
}

// NewEvalCommand creates the eval command.
func NewEvalCommand() *cobra.Command {
	opts := &EvalOptions{}
	cmd := &cobra.Command{
		Use:   "eval <distribution>",
		Short: "Evaluate a distribution's requirements for an environment",
		Long: `Resolve the effective requirement set of a distribution: expand
requested extras (including self-referential ones), evaluate environment
markers, and print every requirement that applies.

The environment starts from the current platform defaults, then applies
the selected profile from wheelhouse.yaml, then any --marker overrides.`,
		Example: `  # Base requirements on the current platform
  wheelhouse eval uvicorn

  # With extras
  wheelhouse eval uvicorn --extra standard

  # Against a different platform
  wheelhouse eval uvicorn --extra standard --marker sys_platform=win32

  # Against a named profile from wheelhouse.yaml
  wheelhouse eval uvicorn -e py38-win`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Extras, "extra", nil, "Extras to activate (repeatable)")
	cmd.Flags().StringSliceVarP(&opts.Markers, "marker", "m", nil, "Marker overrides as key=value (repeatable)")

	return cmd
}

func runEval(cmd *cobra.Command, dist string, opts *EvalOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	if _, err := eng.Discover(cmd.Context(), engine.DiscoveryOptions{}); err != nil {
		return fmt.Errorf("failed to discover metadata files: %w", err)
	}

	env := eng.Environment().Clone()
	for _, override := range opts.Markers {
		key, value, ok := strings.Cut(override, "=")
		if !ok {
			return fmt.Errorf("invalid marker override %q, want key=value", override)
		}
		env[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	reqs, err := eng.Evaluate(dist, env, opts.Extras)
	if err != nil {
		return err
	}

	payload := output.EvalOutput{
		Distribution: requirement.CanonicalName(dist),
		Extras:       opts.Extras,
		Environment:  env,
	}
	for _, req := range reqs {
		info := output.RequirementInfo{
			Name:      req.Name,
			Canonical: req.CanonicalNameKey(),
		}
		if !req.Specifiers.Empty() {
			info.Specifier = req.Specifiers.String()
		}
		if len(req.Extras) > 0 {
			info.Extras = strings.Join(req.Extras, ",")
		}
		if req.Marker != nil {
			info.Marker = req.Marker.String()
		}
		payload.Requirements = append(payload.Requirements, info)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(payload)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Requirements: %s", payload.Distribution)))
		if len(opts.Extras) > 0 {
			r.Println(output.FormatKeyValue("Extras", strings.Join(opts.Extras, ", ")))
		}
		r.Println("")
		for _, req := range reqs {
			r.Printf("- `%s`\n", req.String())
		}
	default:
		styles := r.Styles()
		r.Header(1, fmt.Sprintf("Requirements: %s (%d)", payload.Distribution, len(reqs)))
		for _, req := range reqs {
			r.Printf("  %s\n", req.String())
		}
		if len(reqs) == 0 {
			r.Println(styles.Muted.Render("nothing applies in this environment"))
		}
	}

	return nil
}
