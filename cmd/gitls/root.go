package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphi011/gitls/internal/config"
	"github.com/raphi011/gitls/internal/log"
	"github.com/raphi011/gitls/internal/output"
	"github.com/raphi011/gitls/internal/pipeline"
)

var (
	// Global flags
	verbose bool
	quiet   bool

	// Scan flags, shared by the root command, fetch and pull
	depth    int
	all      bool
	switchTo string
	noColor  bool
	filter   string
	format   string
	copyOut  bool
	outFile  string
	workers  int
	timeout  time.Duration

	// Shared state injected into commands
	cfg *config.Config
)

// Command group IDs for organizing help output
const (
	GroupCore   = "core"
	GroupConfig = "config"
)

// rootCmd represents the base command. Without a subcommand it scans and
// prints the status table.
var rootCmd = &cobra.Command{
	Use:   "gitls [directory]",
	Short: "Show the status of every git repository below a directory",
	Long: `gitls recursively scans a directory for git repositories and shows
branch, upstream sync state, last commit and working tree changes of each.

With fetch or pull it updates every repository from origin first; with -s
it switches every clean repository to an existing local branch. Pull only
ever fast-forwards.`,
	Example: `  gitls                 # Scan the current directory (or default_dir)
  gitls ~/src -d 2      # Scan two levels below ~/src
  gitls -s main         # Switch clean repositories to main
  gitls fetch ~/src     # Fetch all repositories, then show status
  gitls pull --filter api --format json`,
	Args:                       cobra.MaximumNArgs(1),
	ValidArgsFunction:          completeDirectory,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}

		logger := log.New(os.Stderr, verbose, quiet)
		cmd.SetContext(log.WithLogger(cmd.Context(), logger))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd, args, pipeline.NoAction)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Load config
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg = &loadedCfg

	// Create context with signal handling; an interrupt stops workers from
	// starting new repositories and aborts running transfers.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Add output printer (stdout for the report)
	ctx = output.WithPrinter(ctx, os.Stdout)

	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Run 'gitls -h' for help")
		cancel()
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log per-repository progress and failures")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output except errors")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	addScanFlags(rootCmd)

	// Version flag
	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Bulk Operations:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newPullCmd())

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// addScanFlags registers the scan flags as persistent flags of cmd so that
// fetch and pull accept them too.
func addScanFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.IntVarP(&depth, "depth", "d", config.DefaultMaxDepth, "Max search depth below the directory")
	f.BoolVarP(&all, "all", "a", false, "Include hidden directories")
	f.StringVarP(&switchTo, "switch", "s", "", "Switch clean repositories to `branch` if it exists locally")
	f.BoolVar(&noColor, "no-color", false, "Disable colours")
	f.StringVar(&filter, "filter", "", "Only process repositories whose relative path fuzzy-matches `pattern`")
	f.StringVarP(&format, "format", "o", "table", "Output format: table, json or yaml")
	f.BoolVar(&copyOut, "copy", false, "Copy the report to the clipboard")
	f.StringVar(&outFile, "out", "", "Write the report to `file` instead of stdout")
	f.IntVar(&workers, "workers", 0, "Worker count (0 = CPU count, at most 8)")
	f.DurationVar(&timeout, "timeout", 0, "Per-repository deadline for fetch and pull (0 = none)")

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return config.ValidFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "fetch [directory]",
		Short:   "Fetch every repository from origin, then show status",
		GroupID: GroupCore,
		Long: `Fetch origin's configured refspecs in every repository, then show the
status table with refreshed ahead/behind counts. Working trees are never
touched.`,
		Example: `  gitls fetch
  gitls fetch ~/src --timeout 30s`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeDirectory,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, args, pipeline.FetchAction)
		},
	}
}

func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "pull [directory]",
		Short:   "Fast-forward every clean repository from its upstream",
		GroupID: GroupCore,
		Long: `Fetch origin in every repository without staged or modified changes and
fast-forward the current branch to its upstream. Repositories whose history
diverged are reported and left alone; nothing is ever merged or rebased.`,
		Example: `  gitls pull
  gitls pull -s main   # switch to main first, then pull`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeDirectory,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, args, pipeline.PullAction)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show version",
		GroupID: GroupConfig,
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			output.FromContext(cmd.Context()).Println(versionString())
		},
	}
}

func completeDirectory(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveFilterDirs
}
