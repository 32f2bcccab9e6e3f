// Command harmonize runs the harmonizer over local CSV exports (or published sheet
// URLs) and prints what the dashboard would load.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/brandpulse/internal/harmonize"
	"github.com/AngelCh415/brandpulse/internal/ingest"
	"github.com/AngelCh415/brandpulse/internal/models"
	"github.com/AngelCh415/brandpulse/internal/sheet"
)

type options struct {
	live       string
	historical []string
	targets    string
	events     string
	noFill     bool
	asJSON     bool
	verbose    bool
	timeout    time.Duration
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "harmonize",
		Short: "Harmonize live and historical sheet exports into one daily dataset",
		Example: "  harmonize --live live.csv --historical 2024=2024.csv --historical 2025=2025.csv \\\n" +
			"    --targets targets.csv --events events.csv --json",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, out)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.live, "live", "", "live tab (file or URL)")
	f.StringArrayVar(&opts.historical, "historical", nil, "historical tab as YEAR=file, repeatable")
	f.StringVar(&opts.targets, "targets", "", "monthly targets tab (file or URL)")
	f.StringVar(&opts.events, "events", "", "event annotations tab (file or URL)")
	f.BoolVar(&opts.noFill, "no-fill", false, "do not insert zero records for missing days")
	f.BoolVar(&opts.asJSON, "json", false, "print the full dataset as JSON")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log row-level warnings to stderr")
	f.DurationVar(&opts.timeout, "timeout", 15*time.Second, "HTTP timeout for URL sources")
	return cmd
}

func run(ctx context.Context, opts options, out io.Writer) error {
	if opts.live == "" && len(opts.historical) == 0 {
		return fmt.Errorf("%w: pass --live and/or --historical", ingest.ErrNoData)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	lvl := slog.LevelWarn
	if opts.verbose {
		lvl = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	client := ingest.NewHTTPClient(opts.timeout)
	load := func(src string) ([]sheet.Row, error) {
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			t, err := ingest.FetchSheet(ctx, client, src)
			return t.Rows, err
		}
		b, err := os.ReadFile(src)
		if err != nil {
			return nil, err
		}
		return sheet.ParseRows(b)
	}

	h := harmonize.New(harmonize.WithLogger(log))
	defer h.Clear()

	for _, arg := range opts.historical {
		year, src, err := parseHistorical(arg)
		if err != nil {
			return err
		}
		rows, err := load(src)
		if err != nil {
			return fmt.Errorf("historical %d: %w", year, err)
		}
		h.AddHistoricalBatch(rows, year)
	}
	if opts.live != "" {
		rows, err := load(opts.live)
		if err != nil {
			return fmt.Errorf("live: %w", err)
		}
		h.AddLiveBatch(rows)
	}
	// Targets and events are optional; a failure is a warning, not an error.
	if opts.targets != "" {
		if rows, err := load(opts.targets); err != nil {
			h.Warn(fmt.Sprintf("targets tab unavailable: %v", err))
		} else {
			h.AddTargets(rows)
		}
	}
	if opts.events != "" {
		if rows, err := load(opts.events); err != nil {
			h.Warn(fmt.Sprintf("events tab unavailable: %v", err))
		} else {
			h.AddEvents(rows)
		}
	}

	ds := h.Harmonize(!opts.noFill)
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ds)
	}
	printSummary(out, ds)
	return nil
}

func parseHistorical(arg string) (int, string, error) {
	y, src, ok := strings.Cut(arg, "=")
	if !ok || src == "" {
		return 0, "", fmt.Errorf("--historical %q: want YEAR=file", arg)
	}
	year, err := strconv.Atoi(strings.TrimSpace(y))
	if err != nil {
		return 0, "", fmt.Errorf("--historical %q: bad year: %w", arg, err)
	}
	return year, strings.TrimSpace(src), nil
}

func printSummary(w io.Writer, ds models.HarmonizedDataset) {
	fmt.Fprintf(w, "refresh:  %s\n", ds.RefreshID)
	fmt.Fprintf(w, "records:  %d\n", len(ds.Metrics))
	fmt.Fprintf(w, "labels:   %s\n", strings.Join(ds.Labels(), ", "))
	if from, to, ok := ds.Span(); ok {
		fmt.Fprintf(w, "span:     %s .. %s\n", from.Format(models.DateLayout), to.Format(models.DateLayout))
	}
	fmt.Fprintf(w, "targets:  %d\n", len(ds.Targets))
	fmt.Fprintf(w, "events:   %d\n", len(ds.Events))
	for _, s := range ds.Sources {
		name := string(s.Kind)
		if s.Year > 0 {
			name = fmt.Sprintf("%s %d", s.Kind, s.Year)
		}
		fmt.Fprintf(w, "source:   %-16s rows=%d accepted=%d errors=%d\n", name, s.Rows, s.Accepted, s.Errors)
	}
	fmt.Fprintf(w, "warnings: %d\n", len(ds.Warnings))
	for _, msg := range ds.Warnings {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
}
