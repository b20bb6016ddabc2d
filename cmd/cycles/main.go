package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pbaille/cycles/internal/api"
	"github.com/pbaille/cycles/internal/config"
	"github.com/pbaille/cycles/internal/cycle"
	"github.com/pbaille/cycles/internal/domain"
	"github.com/pbaille/cycles/internal/export"
	"github.com/pbaille/cycles/internal/ingest"
	"github.com/pbaille/cycles/internal/log"
	"github.com/pbaille/cycles/internal/report"
	"github.com/pbaille/cycles/internal/store"
)

var (
	cfgPath string
	dbPath  string
	debug   bool
	cfg     config.Config
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "cycles",
		Short:         "Reconstruct cycles and statistics from a period tracking export",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", filepath.Join(config.DefaultDir(), "config.yaml"), "config file path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(cyclesCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(currentCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(importsCmd())
	rootCmd.AddCommand(serveCmd())

	err := rootCmd.Execute()
	log.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = dbPath
	}
	if debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return log.Init(cfg.Debug)
}

func getStore() (*store.Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.New(cfg.DBPath)
}

// storedSummary analyzes the entry log held in the database
func storedSummary(s *store.Store) (*domain.Summary, error) {
	entries, err := s.ListEntries()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries yet, use 'cycles import' first")
	}

	imp, err := s.LatestImport()
	if err != nil {
		return nil, err
	}
	return cycle.SummarizeEntries(entries, imp.Discarded, time.Now())
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file|url]",
		Short: "Import a tracking export, replacing stored entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := ingest.Load(args[0])
			if err != nil {
				return err
			}

			res, err := cycle.Normalize(raw)
			if err != nil {
				return fmt.Errorf("import rejected: %w", err)
			}
			closed, current, err := cycle.Segment(res.Entries)
			if err != nil {
				return fmt.Errorf("import rejected: %w", err)
			}

			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			imp, err := s.ReplaceEntries(args[0], res.Entries, res.Discarded)
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d entries (%d discarded) as %s\n", imp.Entries, imp.Discarded, imp.ID[:8])
			if current != nil {
				fmt.Printf("%d complete cycles extracted (plus current cycle)\n", len(closed))
			}
			return nil
		},
	}
}

func analyzeCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "analyze [file|url]",
		Short: "Analyze an export without storing it and write a CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := ingest.Load(args[0])
			if err != nil {
				return err
			}

			summary, err := cycle.Analyze(raw, time.Now())
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			printCycles(summary)
			printStats(summary)

			if summary.Stats == nil {
				fmt.Println(gray("(CSV skipped: no complete cycles)"))
				return nil
			}

			if outDir == "" {
				outDir = cfg.OutputDir
			}
			path := filepath.Join(outDir, export.FileName(args[0], time.Now()))
			if err := writeCSVFile(path, summary); err != nil {
				return err
			}
			fmt.Printf("CSV created: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	return cmd
}

func cyclesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cycles",
		Short: "List complete cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			summary, err := storedSummary(s)
			if err != nil {
				return err
			}

			printCycles(summary)
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cycle statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			summary, err := storedSummary(s)
			if err != nil {
				return err
			}

			printStats(summary)
			return nil
		},
	}
}

func currentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current cycle and the next-cycle prediction",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			summary, err := storedSummary(s)
			if err != nil {
				return err
			}

			c := summary.Current
			fmt.Printf("\n%s\n", cyan("=== Current Cycle ==="))
			fmt.Printf("  Started:  %s\n", c.StartDate.Format("02-Jan-2006"))
			fmt.Printf("  Entries:  %d\n", len(c.Entries))

			p := summary.Prediction
			if p == nil {
				fmt.Printf("  %s\n", gray("No prediction: not enough data yet"))
				return nil
			}
			fmt.Printf("  Cycle day: %d\n", p.CycleDay)
			fmt.Printf("  Next cycle expected: %s (%s)\n", bold(p.NextStart.Format("02-Jan-2006")), daysLabel(p.DaysUntilNext))
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored cycles to a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			summary, err := storedSummary(s)
			if err != nil {
				return err
			}

			if out == "" {
				imp, err := s.LatestImport()
				if err != nil {
					return err
				}
				out = filepath.Join(cfg.OutputDir, export.FileName(imp.Source, time.Now()))
			}
			if err := writeCSVFile(out, summary); err != nil {
				return err
			}
			fmt.Printf("CSV created: %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default in output dir)")
	return cmd
}

func reportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write an HTML report of stored cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			summary, err := storedSummary(s)
			if err != nil {
				return err
			}

			now := time.Now()
			if out == "" {
				out = filepath.Join(cfg.OutputDir, fmt.Sprintf("report_%s.html", now.Format("02-01-2006")))
			}
			if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create report: %w", err)
			}
			defer f.Close()

			if err := report.Render(f, summary, report.Options{Title: cfg.ReportTitle, Generated: now}); err != nil {
				return err
			}
			fmt.Printf("Report created: %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default in output dir)")
	return cmd
}

func importsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "imports",
		Short: "List recent imports",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			imports, err := s.ListImports(limit)
			if err != nil {
				return err
			}

			if len(imports) == 0 {
				fmt.Println("No imports yet. Use 'cycles import' to add one.")
				return nil
			}

			for _, imp := range imports {
				fmt.Printf("%s  %s  %4d entries  %s\n",
					imp.ID[:8], imp.ImportedAt.Local().Format("2006-01-02 15:04"), imp.Entries, imp.Source)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of imports to show")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			// Note: don't defer s.Close() as server runs indefinitely

			if addr == "" {
				addr = cfg.Addr
			}
			server := api.New(s, addr, cfg.ReportTitle)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (default from config)")
	return cmd
}

func writeCSVFile(path string, summary *domain.Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	if err := export.WriteCSV(f, summary); err != nil {
		return err
	}
	return f.Close()
}

func printCycles(summary *domain.Summary) {
	fmt.Printf("%d complete cycles extracted (plus current cycle)\n", len(summary.Cycles))
	for _, c := range summary.Cycles {
		fmt.Printf("%s - period %d days - cycle %d days\n",
			c.StartDate.Format("02-Jan-2006"), c.PeriodLength, *c.CycleLength)
	}
	if summary.Discarded > 0 {
		fmt.Println(gray(fmt.Sprintf("(%d entries without flow or device data ignored)", summary.Discarded)))
	}
}

func printStats(summary *domain.Summary) {
	st := summary.Stats
	if st == nil {
		fmt.Println(yellow("Not enough data yet: no complete cycles."))
		return
	}

	fmt.Printf("\n%s\n", cyan("=== Statistics ==="))
	fmt.Printf("  Complete cycles:       %d\n", st.NumCycles)
	fmt.Printf("  Average cycle length:  %.1f days\n", st.AverageCycleLength)
	fmt.Printf("  Shortest / longest:    %d / %d days\n", st.MinCycleLength, st.MaxCycleLength)
	fmt.Printf("  Cycle deviation:       %.1f days\n", st.CycleLengthStdDev)
	fmt.Printf("  Average period length: %.1f days\n", st.AveragePeriodLength)
}

func daysLabel(n int) string {
	switch {
	case n == 0:
		return "today"
	case n == 1:
		return "in 1 day"
	case n > 0:
		return fmt.Sprintf("in %d days", n)
	case n == -1:
		return "1 day late"
	default:
		return fmt.Sprintf("%d days late", -n)
	}
}
