package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"rulebase-advisor/internal/config"
	"rulebase-advisor/internal/engine"
	"rulebase-advisor/internal/export"
	"rulebase-advisor/internal/model"
	"rulebase-advisor/internal/parser"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	configFile string
	provider   string
	rulesFile  string
	hitsFile   string
	rulesDSN   string
	outDir     string
	formats    []string
	sourceName string
	logLevel   string
	logFile    string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rulebase-advisor",
		Short: "A read-only firewall rulebase analyzer",
		Long: `rulebase-advisor reads an ordered security rulebase snapshot plus its
	per-rule hit counters and reports unused rules, shadowed rules, and
	safe merge proposals. It never connects to or modifies a device.`,
		RunE: run,
	}

	rootCmd.Flags().StringVar(&configFile, "config", "", "YAML defaults file (flags override it)")
	rootCmd.Flags().StringVar(&provider, "provider", "csv", "Rule provider type: 'csv' or 'mariadb'")
	rootCmd.Flags().StringVar(&rulesFile, "rules", "", "Rulebase CSV export (for 'csv' provider)")
	rootCmd.Flags().StringVar(&hitsFile, "hits", "", "Hit-count overlay CSV (optional, 'csv' provider)")
	rootCmd.Flags().StringVar(&rulesDSN, "db", "", "Database connection string (for 'mariadb' provider)")
	rootCmd.Flags().StringVar(&outDir, "out", ".", "Output directory for report files")
	rootCmd.Flags().StringSliceVar(&formats, "format", []string{"csv"}, "Report formats: csv, xlsx, html")
	rootCmd.Flags().StringVar(&sourceName, "source", "", "Source label shown in reports (default: rules file or DSN)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		applyConfig(cmd, cfg)
	}

	logger := setupLogger(logLevel, logFile)
	slog.SetDefault(logger)

	slog.Info("Starting rulebase advisor", "provider", provider)
	startTime := time.Now()

	rules, hits, source, err := loadRulebase(provider, rulesFile, hitsFile, rulesDSN)
	if err != nil {
		slog.Error("Failed to load rulebase", "error", err)
		return err
	}
	if sourceName != "" {
		source = sourceName
	}
	slog.Info("Rulebase loaded", "rules", len(rules), "hit_entries", len(hits))

	analyzer := engine.NewAnalyzer(rules, hits)
	report := analyzer.Analyze()
	slog.Info("Analysis complete",
		"unused", len(report.Unused),
		"shadows", len(report.Shadows),
		"proposals", len(report.Proposals))

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		slog.Error("Failed to create output directory", "path", outDir, "error", err)
		return err
	}

	exporter := &export.Exporter{
		Rules:       analyzer.Rules(),
		Report:      report,
		Source:      source,
		GeneratedAt: startTime,
	}
	if err := writeReports(exporter, outDir, formats); err != nil {
		slog.Error("Failed to write reports", "error", err)
		return err
	}

	slog.Info("Advisory run complete", "duration", time.Since(startTime))
	return nil
}

// writeReports fans the requested formats out concurrently; each format
// writes to its own files, so they do not contend.
func writeReports(exporter *export.Exporter, dir string, formats []string) error {
	g := new(errgroup.Group)
	for _, format := range formats {
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "csv":
			g.Go(func() error {
				paths, err := export.ExportCSV(exporter, dir)
				if err == nil {
					slog.Info("Wrote CSV report", "files", paths)
				}
				return err
			})
		case "xlsx":
			g.Go(func() error {
				path, err := export.ExportXLSX(exporter, dir)
				if err == nil {
					slog.Info("Wrote XLSX report", "file", path)
				}
				return err
			})
		case "html":
			g.Go(func() error {
				path, err := export.ExportHTML(exporter, dir)
				if err == nil {
					slog.Info("Wrote HTML report", "file", path)
				}
				return err
			})
		default:
			return fmt.Errorf("unknown report format: %s", format)
		}
	}
	return g.Wait()
}

func loadRulebase(provider, rulesPath, hitsPath, dsn string) ([]model.Rule, map[string]model.HitInfo, string, error) {
	switch provider {
	case "csv":
		if rulesPath == "" {
			return nil, nil, "", fmt.Errorf("rules file path must be provided for csv provider")
		}
		file, err := os.Open(rulesPath)
		if err != nil {
			return nil, nil, "", err
		}
		defer file.Close()
		p := parser.NewCSVImporter(file)
		if err := p.Parse(); err != nil {
			return nil, nil, "", err
		}

		var hits map[string]model.HitInfo
		if hitsPath != "" {
			hitsF, err := os.Open(hitsPath)
			if err != nil {
				return nil, nil, "", err
			}
			defer hitsF.Close()
			hits, err = parser.ParseHitCounts(hitsF)
			if err != nil {
				return nil, nil, "", err
			}
		}
		return p.Rules, hits, "CSV Import: " + rulesPath, nil
	case "mariadb":
		if dsn == "" {
			return nil, nil, "", fmt.Errorf("database connection string must be provided for mariadb provider")
		}
		p, err := parser.NewMariaDBParser(dsn)
		if err != nil {
			return nil, nil, "", err
		}
		defer p.Close()
		if err := p.Parse(); err != nil {
			return nil, nil, "", err
		}
		return p.Rules, p.Hits, "MariaDB", nil
	default:
		return nil, nil, "", fmt.Errorf("unknown rule provider: %s", provider)
	}
}

// applyConfig fills in every flag the user did not set explicitly from
// the defaults file.
func applyConfig(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, apply func()) {
		if !cmd.Flags().Changed(name) {
			apply()
		}
	}
	set("provider", func() { provider = cfg.Provider })
	set("rules", func() { rulesFile = cfg.RulesFile })
	set("hits", func() { hitsFile = cfg.HitsFile })
	set("db", func() { rulesDSN = cfg.DSN })
	set("out", func() { outDir = cfg.OutputDir })
	set("format", func() { formats = cfg.Formats })
	set("source", func() { sourceName = cfg.Source })
	set("log-level", func() { logLevel = cfg.Logging.Level })
	set("log-file", func() { logFile = cfg.Logging.File })
}

func setupLogger(level, logFilePath string) *slog.Logger {
	var logWriter io.Writer = os.Stderr
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logWriter = f
		}
		// We don't log an error here because the logger isn't set up yet.
		// It will just fall back to stderr.
	}

	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "INFO":
		lvl = slog.LevelInfo
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: lvl}))
}
