// Package main is the entry point for the logsift CLI.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cisec/logsift/internal/config"
	"github.com/cisec/logsift/internal/export"
	"github.com/cisec/logsift/internal/filter"
	"github.com/cisec/logsift/internal/pipeline"
	"github.com/cisec/logsift/internal/reader"
	"github.com/cisec/logsift/internal/record"
	"github.com/cisec/logsift/internal/summary"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var (
	cfgFile  string
	logLevel string

	inputPath  string
	outputPath string
	format     string
	year       int
	showSum    bool
	topN       int
	workers    int

	filterFacility  []string
	filterMnemonic  []string
	filterEventType []string
	filterSeverity  []int
	filterInterface []string
	filterUser      []string
	regexPattern    string
	regexField      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "logsift",
		Short:   "Cisco syslog classification engine",
		Long:    `logsift parses Cisco-style syslog lines into structured, typed records and supports filtering, summaries and CSV/JSON export.`,
		Version: version,
		RunE:    run,
	}

	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path (optional)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "warn", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "-", "input log file (.gz/.zst supported, '-' for stdin)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (.gz/.zst supported)")
	rootCmd.Flags().StringVar(&format, "format", "csv", "output format: csv, json or ndjson")
	rootCmd.Flags().IntVarP(&year, "year", "y", 0, "year to resolve full timestamps with (optional)")
	rootCmd.Flags().BoolVar(&showSum, "summary", false, "print summary tables")
	rootCmd.Flags().IntVar(&topN, "top", summary.DefaultTopN, "size of the top failed-login sources table")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "classification worker count (overrides config)")

	rootCmd.Flags().StringSliceVar(&filterFacility, "filter-facility", nil, "filter by facility (e.g. SEC, SYS)")
	rootCmd.Flags().StringSliceVar(&filterMnemonic, "filter-mnemonic", nil, "filter by mnemonic (e.g. IPACCESSLOGP, UPDOWN)")
	rootCmd.Flags().StringSliceVar(&filterEventType, "filter-event-type", nil, "filter by derived event type (e.g. login_failed)")
	rootCmd.Flags().IntSliceVar(&filterSeverity, "filter-severity", nil, "filter by numeric severity (0-7)")
	rootCmd.Flags().StringSliceVar(&filterInterface, "filter-interface", nil, "filter by interface name")
	rootCmd.Flags().StringSliceVar(&filterUser, "filter-user", nil, "filter by username")
	rootCmd.Flags().StringVar(&regexPattern, "regex", "", "regex to match against a field (use with --regex-field)")
	rootCmd.Flags().StringVar(&regexField, "regex-field", "", "field name to run the regex against (e.g. message, f_command)")

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Commit: ` + commit + `
Build Date: ` + buildDate + "\n")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := setupLogger(logLevel)

	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	reg, err := cfg.BuildRegistry()
	if err != nil {
		return err
	}

	spec := filter.Spec{
		Facilities: filterFacility,
		Mnemonics:  filterMnemonic,
		EventTypes: filterEventType,
		Severities: filterSeverity,
		Interfaces: filterInterface,
		Users:      filterUser,
		Field:      regexField,
		Pattern:    regexPattern,
	}
	f, err := spec.Compile()
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	in, err := reader.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	if workers == 0 {
		workers = cfg.Pipeline.Workers
	}
	p := pipeline.New(reg, logger, pipeline.WithWorkers(workers))

	records, err := p.Run(in)
	if err != nil {
		return err
	}
	filtered := f.Apply(records)

	fmt.Printf("Parsed %d records. After filters: %d.\n", len(records), len(filtered))

	if showSum {
		printSummary(summary.Summarize(filtered, topN))
	}

	if outputPath != "" {
		if err := writeOutput(filtered, outputPath, format, year); err != nil {
			return err
		}
		fmt.Printf("Wrote %d records to %s (%s).\n", len(filtered), outputPath, format)
	}

	return nil
}

func writeOutput(records []record.Record, path, format string, year int) error {
	out, err := export.OpenWriter(path)
	if err != nil {
		return err
	}

	opts := export.Options{Year: year}
	switch format {
	case "csv":
		err = export.WriteCSV(out, records, opts)
	case "json":
		err = export.WriteJSON(out, records, opts)
	case "ndjson":
		opts.NDJSON = true
		err = export.WriteJSON(out, records, opts)
	default:
		out.Close()
		return fmt.Errorf("unsupported format %q: choose csv, json or ndjson", format)
	}
	if err != nil {
		out.Close()
		return fmt.Errorf("writing output: %w", err)
	}
	return out.Close()
}

func printSummary(sum summary.Summary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	section := func(title string) {
		fmt.Fprintf(w, "\n%s\n", title)
	}

	section("By event type:")
	for _, c := range sum.ByEventType {
		fmt.Fprintf(w, "  %s\t%d\n", c.Key, c.Count)
	}
	section("By mnemonic:")
	for _, c := range sum.ByMnemonic {
		fmt.Fprintf(w, "  %s\t%d\n", c.Key, c.Count)
	}
	section("By severity:")
	for _, c := range sum.BySeverity {
		fmt.Fprintf(w, "  %s\t%d\n", c.Key, c.Count)
	}
	if len(sum.TopFailedSources) > 0 {
		section("Top failed-login sources:")
		for _, c := range sum.TopFailedSources {
			fmt.Fprintf(w, "  %s\t%d\n", c.Key, c.Count)
		}
	}
	if len(sum.InterfaceFlaps) > 0 {
		section("Interface flaps:")
		for _, c := range sum.InterfaceFlaps {
			fmt.Fprintf(w, "  %s\t%d\n", c.Key, c.Count)
		}
	}
	if len(sum.ACLActivity) > 0 {
		section("ACL activity:")
		for _, c := range sum.ACLActivity {
			fmt.Fprintf(w, "  %s\t%s\t%d\n", c.ACL, c.Action, c.Count)
		}
	}
}

func setupLogger(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var l zerolog.Level
	switch level {
	case "debug":
		l = zerolog.DebugLevel
	case "info":
		l = zerolog.InfoLevel
	case "warn":
		l = zerolog.WarnLevel
	case "error":
		l = zerolog.ErrorLevel
	default:
		l = zerolog.WarnLevel
	}

	return zerolog.New(os.Stderr).
		Level(l).
		With().
		Timestamp().
		Str("service", "logsift").
		Logger()
}
