// Package main provides the CLI entrypoint for timespent.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/minhnd/timespent/internal/config"
	"github.com/minhnd/timespent/internal/gitlab"
	"github.com/minhnd/timespent/internal/logger"
	"github.com/minhnd/timespent/internal/report"
	"github.com/minhnd/timespent/internal/store"
	"github.com/minhnd/timespent/internal/sync"
)

var (
	configPath string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "timespent",
	Short: "Track time logged on GitLab issues",
	Long: `timespent pulls your GitLab timelogs into a local database
and renders daily, monthly and yearly summaries from it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch your timelogs from GitLab and replace the local data",
	Long: `Fetch all of your timelogs from GitLab and replace the local data.

The previous entries are deleted and the freshly fetched set is saved;
a history record is kept for every attempt (see "timespent history").`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync attempts",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render summaries of the synced timelogs",
}

var reportMonthCmd = &cobra.Command{
	Use:   "month <YYYY-MM>",
	Short: "Daily breakdown and statistics for one month",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportMonth,
}

var reportYearCmd = &cobra.Command{
	Use:   "year <YYYY>",
	Short: "Per-month totals for one year",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportYear,
}

var historyLimit int

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.config/timespent/config.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", config.DefaultHistoryLimit, "number of sync attempts to show")

	reportCmd.AddCommand(reportMonthCmd)
	reportCmd.AddCommand(reportYearCmd)

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(reportCmd)
}

// openStore loads the config and opens the database, creating its parent
// directory if needed.
func openStore() (*config.Config, *store.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	return cfg, db, nil
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	client := gitlab.New(ctx, cfg.GitLabURL, cfg.Token)
	engine := sync.NewEngine(db, client, cfg.UserEmail)

	count, err := engine.Run(ctx, func(percent int, message string) {
		fmt.Printf("[%3d%%] %s\n", percent, message)
	})
	if err != nil {
		return errors.New(sync.FormatError(err))
	}

	fmt.Printf("synced %s records\n", humanize.Comma(int64(count)))
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.UserEmail == "" {
		return fmt.Errorf("user_email is not set: add it to the config file or set GITLAB_USER_EMAIL")
	}

	runs, err := db.ListRuns(cfg.UserEmail, historyLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no sync attempts yet, run \"timespent sync\" first")
		return nil
	}

	for _, run := range runs {
		fmt.Println(formatRun(run))
	}
	return nil
}

// formatRun renders one sync run as a history line.
func formatRun(run store.SyncRun) string {
	var line string
	switch run.Status {
	case store.StatusCompleted:
		line = fmt.Sprintf("✓ completed   %7s records", humanize.Comma(int64(run.RecordsCount)))
	case store.StatusError:
		line = fmt.Sprintf("✕ error       %s", run.ErrorMessage)
	default:
		line = "⟳ processing"
	}

	line += fmt.Sprintf("  %s", humanize.Time(run.StartedAt))
	if !run.CompletedAt.IsZero() {
		line += fmt.Sprintf(" (%s)", run.CompletedAt.Sub(run.StartedAt).Round(time.Second))
	}
	return line
}

func runReportMonth(cmd *cobra.Command, args []string) error {
	month := args[0]
	if _, err := time.Parse("2006-01", month); err != nil {
		return fmt.Errorf("invalid month %q: expected YYYY-MM", month)
	}

	cfg, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.ListEntriesByMonth(cfg.UserEmail, month)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Printf("no time logged in %s\n", month)
		return nil
	}

	fmt.Printf("daily breakdown for %s\n", month)
	for _, day := range report.DailyTotals(entries) {
		fmt.Printf("  %s  %s\n", day.Day, formatHours(day.TotalSeconds))
	}

	stats := report.MonthlyStats(entries, cfg.HourlyRate, cfg.ExchangeRate)
	fmt.Println()
	fmt.Printf("total time: %s\n", formatHours(stats.TotalSeconds))
	fmt.Printf("issues:     %d\n", stats.Issues)
	fmt.Printf("avg/issue:  %s\n", formatHours(stats.AverageSeconds))
	fmt.Printf("income:     $%s (%s VND)\n",
		humanize.CommafWithDigits(stats.IncomeUSD, 2),
		humanize.CommafWithDigits(stats.IncomeVND, 0))
	return nil
}

func runReportYear(cmd *cobra.Command, args []string) error {
	year := args[0]
	if _, err := time.Parse("2006", year); err != nil {
		return fmt.Errorf("invalid year %q: expected YYYY", year)
	}

	cfg, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	months, err := report.Yearly(db, cfg.UserEmail, year)
	if err != nil {
		return err
	}

	for _, month := range months {
		fmt.Printf("%s  %s\n", month.Month, formatHours(month.TotalSeconds))
	}

	total, err := db.TimeSpentByYear(cfg.UserEmail, year)
	if err != nil {
		return err
	}
	fmt.Printf("\nyear total: %s\n", formatHours(total))
	return nil
}

// formatHours renders seconds as hours with one decimal, e.g. "12.5h".
func formatHours(seconds int64) string {
	return fmt.Sprintf("%.1fh", float64(seconds)/3600)
}
