package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mechcore/internal/accessory"
	"mechcore/internal/config"
	"mechcore/internal/console"
	"mechcore/internal/ledger"
	"mechcore/internal/tier"
	"mechcore/internal/upgrade"
)

// options are the flags shared by every subcommand.
type options struct {
	configPath string
	reconcile  string
	tier       string
	output     string
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "coreinspect",
		Short:         "Inspect a mechanical core ledger the way accessories see it",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&o.configPath, "config", "", "YAML config supplying balance, thresholds and reconcile policy")
	root.PersistentFlags().StringVar(&o.reconcile, "reconcile", "", "Override the dual-encoding policy (prefer_structured, prefer_flat, highest_level)")

	evalCmd := &cobra.Command{
		Use:   "eval LEDGER",
		Short: "Evaluate every accessory's gate and bonus per tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, o, args[0])
		},
	}
	evalCmd.Flags().StringVar(&o.tier, "tier", "", "Only report this tier")
	evalCmd.Flags().StringVarP(&o.output, "output", "o", "text", "Output format: text or yaml")

	modulesCmd := &cobra.Command{
		Use:   "modules LEDGER",
		Short: "List the merged ledger records and where each one counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModules(cmd, o, args[0])
		},
	}
	modulesCmd.Flags().StringVarP(&o.output, "output", "o", "text", "Output format: text or yaml")

	gateCmd := &cobra.Command{
		Use:   "gate ID...",
		Short: "Show which energy tiers permit each module id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGate(cmd.OutOrStdout(), args)
		},
	}

	root.AddCommand(evalCmd, modulesCmd, gateCmd)
	return root
}

// load resolves the configuration and reads the ledger records.
func (o *options) load(cmd *cobra.Command, path string) (*config.Config, []ledger.Record, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	rec := cfg.Reconciler()
	if o.reconcile != "" {
		if rec, err = ledger.ParseReconciler(o.reconcile); err != nil {
			return nil, nil, err
		}
	}
	c, err := readLedger(path, cmd.InOrStdin())
	if err != nil {
		return nil, nil, err
	}
	return cfg, ledger.Read(c, rec), nil
}

func (o *options) tiers() ([]tier.Tier, error) {
	if o.tier == "" {
		return tier.All, nil
	}
	t, err := tier.Parse(o.tier)
	if err != nil {
		return nil, err
	}
	return []tier.Tier{t}, nil
}

func runEval(cmd *cobra.Command, o *options, path string) error {
	cfg, recs, err := o.load(cmd, path)
	if err != nil {
		return err
	}
	ts, err := o.tiers()
	if err != nil {
		return err
	}
	catalog := accessory.Catalog(cfg.Balance)
	reports := make([]TierReport, 0, len(ts))
	for _, t := range ts {
		reports = append(reports, evaluate(recs, t, catalog))
	}

	w := cmd.OutOrStdout()
	switch o.output {
	case "yaml":
		return writeYAML(w, reports)
	case "text":
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  active %d (with generators %d)\n", r.Tier, r.Active, r.ActiveWithGenerators)
		for _, a := range r.Accessories {
			mark := "x"
			if a.Allowed {
				mark = "+"
			}
			line := fmt.Sprintf("  %s %s %s", mark, console.Pad(a.Name, 24), console.Pad(fmt.Sprintf("%d/%d", a.Observed, a.Required), 7))
			if a.Allowed && a.Display != "" {
				line += " " + a.Display
			}
			if len(a.Unlocked) > 0 {
				line += " [" + strings.Join(a.Unlocked, ", ") + "]"
			}
			fmt.Fprintln(w, strings.TrimRight(line, " "))
		}
	}
	return nil
}

func runModules(cmd *cobra.Command, o *options, path string) error {
	_, recs, err := o.load(cmd, path)
	if err != nil {
		return err
	}
	ms := modules(recs)

	w := cmd.OutOrStdout()
	switch o.output {
	case "yaml":
		return writeYAML(w, ms)
	case "text":
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
	if len(ms) == 0 {
		fmt.Fprintln(w, "no upgrade modules")
		return nil
	}
	fmt.Fprintf(w, "%s LVL STATE   N P E C\n", console.Pad("MODULE", 20))
	for _, m := range ms {
		state := "on"
		switch {
		case !m.Enabled:
			state = "off"
		case m.Paused:
			state = "paused"
		}
		cols := make([]string, 0, len(tier.All))
		for _, t := range tier.All {
			cols = append(cols, permitMark(m.Permitted[t.String()]))
		}
		id := m.ID
		if m.Generator {
			id += "*"
		}
		fmt.Fprintf(w, "%s %3d %s %s\n", console.Pad(id, 20), m.Level, console.Pad(state, 7), strings.Join(cols, " "))
	}
	fmt.Fprintln(w, "* generator: left out of counts that exclude generators")
	return nil
}

func runGate(w io.Writer, ids []string) error {
	for _, raw := range ids {
		id := upgrade.Canon(raw)
		if id == "" {
			return fmt.Errorf("invalid module id %q", raw)
		}
		var permitted []string
		for _, t := range tier.All {
			if tier.Permitted(id, t) {
				permitted = append(permitted, t.String())
			}
		}
		var tags []string
		if tier.LifePreserving(id) {
			tags = append(tags, "life-preserving")
		}
		if upgrade.IsGenerator(id) {
			tags = append(tags, "generator")
		}
		line := fmt.Sprintf("%s %s", console.Pad(id, 20), strings.Join(permitted, " "))
		if len(tags) > 0 {
			line += "  (" + strings.Join(tags, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func permitMark(ok bool) string {
	if ok {
		return "+"
	}
	return "-"
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
