package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"fresh-go/internal/app"
	"fresh-go/internal/config"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a FreshApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Resolve", "Changed").
func newApp(operation string) (*app.FreshApp, error) {
	defaults := app.GetDefaults()

	cfg, err := config.ReadOrDefault(defaults["config_path"], defaults["base_dir"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewFreshApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// output writes tab-separated rows. On a terminal the columns are aligned;
// otherwise they are left as plain tabs for scripts.
type output struct {
	w  io.Writer
	tw *tabwriter.Writer
}

func newOutput() *output {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		return &output{w: tw, tw: tw}
	}
	return &output{w: os.Stdout}
}

func (o *output) row(format string, args ...any) {
	fmt.Fprintf(o.w, format+"\n", args...)
}

func (o *output) flush() {
	if o.tw != nil {
		o.tw.Flush()
	}
}

func formatResult(r app.Result, relative bool) string {
	if !r.Exists() {
		return "absent"
	}
	if relative {
		return humanize.Time(r.Time.Time())
	}
	return r.Time.Format()
}

var rootCmd = &cobra.Command{
	Use:   "fresh",
	Short: "Report file modification times the way a build engine sees them",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults := app.GetDefaults()

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults := app.GetDefaults()

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Log Level:  %s\n", cfg.LogLevel)
		fmt.Printf("Separator:  %s\n", cfg.Paths.Separator)
		fmt.Printf("Case Fold:  %t\n", cfg.Paths.CaseFold)
		fmt.Printf("Journal:    %s %s\n", cfg.Journal.Type, cfg.Journal.DataDir)
		fmt.Printf("S3 Enabled: %t\n", cfg.S3.Enabled)
		return nil
	},
}

// resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve PATH...",
	Short: "Print the modification time of each path",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		relative, _ := cmd.Flags().GetBool("relative")
		verbose, _ := cmd.Flags().GetBool("stats")

		a, err := newApp("Resolve")
		if err != nil {
			return err
		}
		defer a.Close()

		out := newOutput()
		for _, r := range a.ResolveAll(args) {
			out.row("%s\t%s", r.Path, formatResult(r, relative))
		}
		out.flush()

		if verbose {
			s := a.Stats()
			fmt.Fprintf(os.Stderr, "%d directory scan(s), %d archive scan(s), %d probe(s), %d binding(s)\n",
				s.DirectoryScans, s.ArchiveScans, s.Probes, s.Bindings)
		}
		return nil
	},
}

// newest command
var newestCmd = &cobra.Command{
	Use:   "newest PATH...",
	Short: "Print the most recently modified path",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		relative, _ := cmd.Flags().GetBool("relative")

		a, err := newApp("Newest")
		if err != nil {
			return err
		}
		defer a.Close()

		r, ok := a.Newest(args)
		if !ok {
			return fmt.Errorf("none of the %d path(s) exist", len(args))
		}

		out := newOutput()
		out.row("%s\t%s", r.Path, formatResult(r, relative))
		out.flush()
		return nil
	},
}

// changed command
var changedCmd = &cobra.Command{
	Use:   "changed PATH...",
	Short: "Compare paths with the last recorded run",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		a, err := newApp("Changed")
		if err != nil {
			return err
		}
		defer a.Close()

		changes, err := a.Changed(args)
		if err != nil {
			return err
		}

		out := newOutput()
		for _, c := range changes {
			if c.Status == app.ChangeUnchanged && !all {
				continue
			}
			out.row("%s\t%s", c.Status, c.Path)
		}
		out.flush()
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("GetHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		out := newOutput()
		for _, r := range runs {
			out.row("%s\t%s\t%s\t%d binding(s)",
				r.ID,
				r.RecordedAt.Format(),
				humanize.Time(r.RecordedAt.Time()),
				r.Bindings,
			)
		}
		out.flush()
		return nil
	},
}

// now command
var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Print the current time in timestamp format",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Now")
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Println(a.Now().Format())
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().BoolP("relative", "r", false, "Show times relative to now")
	resolveCmd.Flags().Bool("stats", false, "Print scan and probe counts to stderr")
	rootCmd.AddCommand(newestCmd)
	newestCmd.Flags().BoolP("relative", "r", false, "Show times relative to now")
	rootCmd.AddCommand(changedCmd)
	changedCmd.Flags().BoolP("all", "a", false, "Also list unchanged paths")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
	rootCmd.AddCommand(nowCmd)
}
