package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wheelhouse-labs/wheelhouse/internal/cli/output"
	"github.com/wheelhouse-labs/wheelhouse/pkg/lint"
	_ "github.com/wheelhouse-labs/wheelhouse/pkg/lint/rules" // register lint rules
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Group  string // Filter by group
	Format string // Output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List available lint rules",
		Long: `List all available lint rules with their documentation.

Rules are organized by group: requires (RQ rules for requires.txt
manifests) and toolconfig (CF rules for setup.cfg files).`,
		Example: `  # List all rules
  wheelhouse rules

  # Show details for a specific rule
  wheelhouse rules RQ01

  # List tool config rules only
  wheelhouse rules --group toolconfig

  # Output as JSON
  wheelhouse rules --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Filter by group")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	r := cmdCtx.Renderer

	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ParseMode(opts.Format))
	}

	var rules []lint.RuleDef
	if opts.Group != "" {
		rules = lint.GetByGroup(opts.Group)
	} else {
		rules = lint.GetAll()
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		infos := make([]lint.RuleInfo, 0, len(rules))
		for _, rule := range rules {
			infos = append(infos, lint.Info(rule))
		}
		return r.JSON(map[string]any{"rules": infos, "count": len(infos)})

	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Lint Rules"))
		r.Println("")
		currentGroup := ""
		for _, rule := range rules {
			if rule.Group != currentGroup {
				currentGroup = rule.Group
				r.Println(output.FormatHeader(2, currentGroup))
				r.Println("")
			}
			r.Printf("- **%s** - %s (`%s`)\n", rule.ID, rule.Name, rule.Severity.String())
		}
		r.Println("")

	default:
		styles := r.Styles()
		r.Header(1, fmt.Sprintf("Lint Rules (%d)", len(rules)))
		currentGroup := ""
		for _, rule := range rules {
			if rule.Group != currentGroup {
				currentGroup = rule.Group
				r.Println(styles.Header2.Render(currentGroup))
			}
			r.Printf("  %s  %s - %s\n",
				styles.Muted.Render(rule.ID),
				rule.Name,
				severityLabel(r, rule.Severity),
			)
		}
		r.Println("")
		r.Println(styles.Muted.Render("Use 'wheelhouse rules <rule-id>' for details"))
	}

	return nil
}

func showRule(cmd *cobra.Command, ruleID string, opts *RulesOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	r := cmdCtx.Renderer

	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ParseMode(opts.Format))
	}

	rule, ok := lint.GetByID(ruleID)
	if !ok {
		return fmt.Errorf("rule %q not found", ruleID)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(lint.Info(rule))

	case output.ModeMarkdown:
		r.Printf("# %s - %s\n\n", rule.ID, rule.Name)
		r.Printf("**Group:** %s | **Severity:** `%s`\n\n", rule.Group, rule.Severity.String())
		r.Println(rule.Description)
		if len(rule.ConfigKeys) > 0 {
			r.Println("")
			r.Printf("Options: `%s`\n", strings.Join(rule.ConfigKeys, "`, `"))
		}

	default:
		styles := r.Styles()
		r.Println("")
		r.Println(styles.Header1.Render(fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
		r.Println("")
		r.Printf("  %s: %s\n", styles.Bold.Render("Group"), rule.Group)
		r.Printf("  %s: %s\n", styles.Bold.Render("Severity"), rule.Severity.String())
		r.Println("")
		r.Println("  " + rule.Description)
		if len(rule.ConfigKeys) > 0 {
			r.Println("")
			r.Printf("  %s: %s\n", styles.Bold.Render("Options"), strings.Join(rule.ConfigKeys, ", "))
		}
		r.Println("")
	}

	return nil
}
