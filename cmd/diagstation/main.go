package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/spf13/cobra"

	"github.com/techbench/diagstation/internal/config"
	"github.com/techbench/diagstation/internal/diagtest"
	"github.com/techbench/diagstation/internal/hwinfo"
	"github.com/techbench/diagstation/internal/store"
)

var (
	version    = "dev"
	commitHash = "unknown"
	buildDate  = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "diagstation",
	Short: "Diagstation - workbench hardware diagnostic utility",
	Long: `Diagstation collects a hardware snapshot of the machine under test,
runs interactive peripheral tests (keyboard, USB, webcam, audio) plus
hardware presence probes, and writes a plain-text diagnostic report.

Run without a subcommand to start a full diagnostic session (equivalent
to 'run').`,
	RunE: runSession,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full interactive diagnostic session",
	RunE:  runSession,
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect a hardware snapshot and print it as JSON",
	RunE:  runCollect,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored diagnostic sessions",
	RunE:  runHistory,
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Purge session records older than the specified number of days",
	RunE:  runPurge,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("diagstation %s (commit: %s, built: %s)\n", version, commitHash, buildDate)
	},
}

var (
	purgeDays   int
	historyPage int
	collectOut  string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/diagstation.yaml)")
	rootCmd.PersistentFlags().String("report-dir", "", "directory for report files")
	rootCmd.PersistentFlags().String("database", "", "SQLite session database path (default diagstation.db)")
	rootCmd.PersistentFlags().Int("file-size", 0, "USB test file size in MB (default 100)")
	rootCmd.PersistentFlags().Int("keyboard-threshold", 0, "early-finish key count for the keyboard test (default 70)")
	rootCmd.PersistentFlags().String("tests", "", "comma-separated test ids to run (default: all)")

	collectCmd.Flags().StringVarP(&collectOut, "output", "o", "", "write JSON output to file instead of stdout")
	historyCmd.Flags().IntVar(&historyPage, "page", 1, "result page to show")
	purgeCmd.Flags().IntVar(&purgeDays, "days", 90, "purge records older than this many days")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// CLI flag overrides.
	if v, _ := cmd.Flags().GetString("report-dir"); v != "" {
		cfg.ReportDir = v
	}
	if v, _ := cmd.Flags().GetString("database"); v != "" {
		cfg.DatabasePath = v
	}
	if v, _ := cmd.Flags().GetInt("file-size"); v > 0 {
		cfg.TestFileSizeMB = v
	}
	if v, _ := cmd.Flags().GetInt("keyboard-threshold"); v > 0 {
		cfg.KeyboardThreshold = v
	}

	return cfg, nil
}

func newLogger() log.Logger {
	return log.With(log.NewStdLogger(os.Stderr),
		"ts", log.DefaultTimestamp,
		"service", "diagstation",
	)
}

// selectedTests parses the --tests flag. An empty flag selects every test in
// the standard order.
func selectedTests(cmd *cobra.Command) ([]diagtest.ID, error) {
	all := []diagtest.ID{
		diagtest.IDKeyboard,
		diagtest.IDUSB,
		diagtest.IDWebcam,
		diagtest.IDAudio,
		diagtest.IDTPM,
		diagtest.IDBluetooth,
		diagtest.IDWiFi,
	}

	raw, _ := cmd.Flags().GetString("tests")
	if strings.TrimSpace(raw) == "" {
		return all, nil
	}

	known := make(map[diagtest.ID]bool, len(all))
	for _, id := range all {
		known[id] = true
	}

	var ids []diagtest.ID
	for _, part := range strings.Split(raw, ",") {
		id := diagtest.ID(strings.ToLower(strings.TrimSpace(part)))
		if id == "" {
			continue
		}
		if !known[id] {
			return nil, fmt.Errorf("unknown test %q", id)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no tests selected")
	}
	return ids, nil
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger()
	collector := hwinfo.New(logger, hwinfo.WithQueryTimeout(cfg.QueryTimeout))
	snap := collector.CollectAll(ctx)

	w := os.Stdout
	if collectOut != "" {
		f, err := os.Create(collectOut)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if collectOut != "" {
		fmt.Fprintf(os.Stderr, "snapshot written to %s\n", collectOut)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := store.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	records, total, err := db.List(context.Background(), store.ListFilter{Page: historyPage})
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	if total == 0 {
		fmt.Println("No stored sessions.")
		return nil
	}

	fmt.Printf("%-36s  %-19s  %-15s  %-12s  %s\n", "ID", "DATE", "TECHNICIAN", "WORKBENCH", "RESULT")
	for _, r := range records {
		fmt.Printf("%-36s  %-19s  %-15s  %-12s  %d/%d passed\n",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Technician,
			r.Workbench,
			r.PassedTests, r.TotalTests,
		)
	}
	fmt.Printf("\n%d of %d sessions shown (page %d)\n", len(records), total, historyPage)
	return nil
}

func runPurge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := store.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	n, err := db.Purge(context.Background(), time.Duration(purgeDays)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("purge: %w", err)
	}

	fmt.Printf("Purged %d sessions older than %d days\n", n, purgeDays)
	return nil
}
