package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/raphi011/gitls/internal/auth"
	"github.com/raphi011/gitls/internal/config"
	"github.com/raphi011/gitls/internal/git"
	"github.com/raphi011/gitls/internal/log"
	"github.com/raphi011/gitls/internal/output"
	"github.com/raphi011/gitls/internal/pipeline"
	"github.com/raphi011/gitls/internal/report"
	"github.com/raphi011/gitls/internal/scan"
	"github.com/raphi011/gitls/internal/ui/progress"
	"github.com/raphi011/gitls/internal/ui/styles"
)

// runStatus scans the directory, runs the requested operations on every
// repository found and writes the report.
func runStatus(cmd *cobra.Command, args []string, action pipeline.Action) error {
	ctx := cmd.Context()
	l := log.FromContext(ctx)

	if err := config.ValidateFormat(format); err != nil {
		return err
	}

	root, err := resolveRoot(args, cfg.DefaultDir)
	if err != nil {
		return err
	}

	local, err := config.LoadLocal(root)
	if err != nil {
		l.Warn("ignoring local config", "error", err)
	}
	eff := config.MergeLocal(*cfg, local)
	if err := applyFlags(cmd, &eff); err != nil {
		return err
	}

	if eff.NoColor {
		styles.Init("none")
	} else {
		styles.Init(eff.Theme)
	}

	req := pipeline.Request{SwitchTo: switchTo, Action: action}
	label := spinnerLabel(req, root)
	sp := progress.NewSpinner(label, eff.NoColor)
	sp.Start()

	paths := scan.Find(root, scan.Options{
		MaxDepth:      eff.MaxDepth,
		IncludeHidden: eff.IncludeHidden,
		ExtraSkip:     eff.SkipDirs,
	})
	paths = filterPaths(root, paths, filter)
	l.Debug("discovered repositories", "root", root, "count", len(paths))

	p := pipeline.New(git.Opener{}, pipeline.Config{
		Request: req,
		Workers: eff.Workers,
		Timeout: eff.Timeout.Duration,
		Auth:    auth.OptionsFromEnv(eff.SSHUser),
		Progress: func(done, total int) {
			sp.UpdateMessage(fmt.Sprintf("%s (%d/%d)", label, done, total))
		},
	})
	records := p.Run(ctx, paths)
	sp.Stop()

	opts := report.Options{Root: root, Request: req, Now: time.Now()}
	if err := writeReport(ctx, records, opts, eff.NoColor); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}
	return nil
}

// resolveRoot picks the scan root: the argument, else default_dir, else the
// working directory. The result is absolute with symlinks resolved.
func resolveRoot(args []string, defaultDir string) (string, error) {
	dir := "."
	switch {
	case len(args) > 0:
		dir = args[0]
	case defaultDir != "":
		dir = defaultDir
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %q: %w", dir, err)
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %q: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

// applyFlags overrides the effective config with explicitly set flags.
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("depth") {
		c.MaxDepth = max(depth, 0)
	}
	if flags.Changed("all") {
		c.IncludeHidden = all
	}
	if flags.Changed("no-color") && noColor {
		c.NoColor = true
	}
	if flags.Changed("workers") {
		if workers < 0 {
			return fmt.Errorf("invalid --workers %d: must be >= 0", workers)
		}
		c.Workers = workers
	}
	if flags.Changed("timeout") {
		if timeout < 0 {
			return fmt.Errorf("invalid --timeout %s: must not be negative", timeout)
		}
		c.Timeout = config.Duration{Duration: timeout}
	}
	return nil
}

// filterPaths keeps the paths whose path relative to root fuzzy-matches
// pattern, in their original order. An empty pattern keeps everything.
func filterPaths(root string, paths []string, pattern string) []string {
	if pattern == "" {
		return paths
	}

	names := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == "." {
			rel = filepath.Base(p)
		}
		names[i] = rel
	}

	matches := fuzzy.Find(pattern, names)
	keep := make([]int, 0, len(matches))
	for _, m := range matches {
		keep = append(keep, m.Index)
	}
	slices.Sort(keep)

	filtered := make([]string, len(keep))
	for i, idx := range keep {
		filtered[i] = paths[idx]
	}
	return filtered
}

// spinnerLabel names what the run is doing, e.g. "Fetching: /src".
func spinnerLabel(req pipeline.Request, root string) string {
	verb := "Scanning:"
	switch {
	case req.Action == pipeline.FetchAction:
		verb = "Fetching:"
	case req.Action == pipeline.PullAction:
		verb = "Pulling:"
	case req.SwitchTo != "":
		verb = "Switching:"
	}
	return styles.Bold.Render(verb) + " " + root
}

// writeReport renders the report in the selected format to stdout, or to
// --out, and copies it to the clipboard when asked.
func writeReport(ctx context.Context, records []pipeline.Record, opts report.Options, noColor bool) error {
	sum := pipeline.Aggregate(records)

	var buf bytes.Buffer
	if format == "" || format == "table" {
		if err := report.Render(&buf, records, sum, opts); err != nil {
			return err
		}
	} else {
		if err := report.Encode(&buf, report.NewDocument(records, sum, opts), format); err != nil {
			return err
		}
	}

	l := log.FromContext(ctx)
	if copyOut {
		if err := clipboard.WriteAll(ansi.Strip(buf.String())); err != nil {
			l.Warn("could not copy report to clipboard", "error", err)
		} else {
			l.Debug("copied report to clipboard")
		}
	}

	if outFile != "" {
		if err := report.WriteFile(outFile, []byte(ansi.Strip(buf.String()))); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		l.Printf("Wrote report to %s\n", outFile)
		return nil
	}

	w := report.NewWriter(output.FromContext(ctx), noColor)
	_, err := w.Write(buf.Bytes())
	return err
}
