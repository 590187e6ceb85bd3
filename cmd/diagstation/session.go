package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/spf13/cobra"

	"github.com/techbench/diagstation/internal/capture"
	"github.com/techbench/diagstation/internal/config"
	"github.com/techbench/diagstation/internal/diagtest"
	"github.com/techbench/diagstation/internal/hwinfo"
	"github.com/techbench/diagstation/internal/orchestrator"
	"github.com/techbench/diagstation/internal/report"
	"github.com/techbench/diagstation/internal/server"
	"github.com/techbench/diagstation/internal/store"
	"github.com/techbench/diagstation/internal/termui"
)

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	tests, err := selectedTests(cmd)
	if err != nil {
		return err
	}

	// One diagnostic station per machine. A held port means another session
	// is active; that is a clean no-op, not a failure.
	guard, err := server.Acquire(cfg.SingletonPort)
	if err != nil {
		if errors.Is(err, server.ErrAlreadyRunning) {
			fmt.Println("Another diagstation session is already running on this machine.")
			return nil
		}
		return err
	}
	defer guard.Release()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger()
	helper := log.NewHelper(log.With(logger, "module", "session"))

	db, err := store.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	collector := hwinfo.New(logger, hwinfo.WithQueryTimeout(cfg.QueryTimeout))
	if !collector.SupportsHardwareQuery() {
		helper.Warn("platform hardware queries unsupported, snapshot will hold placeholders")
	}
	hwSvc := hwinfo.NewService(logger, collector)

	prompter := termui.StdPrompter()
	orch := buildOrchestrator(logger, cfg, prompter, hwSvc)

	statusSrv := server.New(logger, guard, server.StatusSource{
		Version:      version,
		HardwareSvc:  hwSvc,
		Orchestrator: orch,
	})
	go statusSrv.Start(ctx)

	// Hardware collection runs while the operator works through the
	// identification prompts.
	collectDone := make(chan struct{})
	go func() {
		defer close(collectDone)
		if _, err := hwSvc.Refresh(ctx); err != nil {
			helper.Warnf("hardware collection: %v", err)
		}
	}()

	ident, err := promptIdentification(prompter)
	if err != nil {
		return err
	}

	orch.Enqueue(tests...)
	outcomes, err := orch.Run(ctx)
	if err != nil {
		return fmt.Errorf("run tests: %w", err)
	}

	select {
	case <-collectDone:
	case <-ctx.Done():
	}
	snap := hwSvc.Latest()

	text := report.Assemble(ident, snap, outcomes)
	path, err := report.Write(cfg.ReportDir, ident, text)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("\nReport written to %s\n", path)

	if err := persistSession(ctx, db, ident, snap, outcomes, path); err != nil {
		// The report on disk is the deliverable; a history write failure
		// must not discard the session.
		helper.Warnf("store session: %v", err)
	}

	return nil
}

func buildOrchestrator(logger log.Logger, cfg *config.Config, prompter *termui.Prompter, hwSvc *hwinfo.Service) *orchestrator.Orchestrator {
	orch := orchestrator.New(logger, func(ev orchestrator.Event) {
		switch ev.Type {
		case orchestrator.EventTestStarted:
			fmt.Printf("\n--- Starting %s test ---\n", ev.TestID)
		case orchestrator.EventTestSkipped:
			fmt.Printf("\n--- Skipping %s test: %s ---\n", ev.TestID, ev.Reason)
		case orchestrator.EventTestCompleted:
			verdict := "FAIL"
			if ev.Outcome != nil && ev.Outcome.Result.Success {
				verdict = "PASS"
			}
			fmt.Printf("--- %s test: %s ---\n", ev.TestID, verdict)
		case orchestrator.EventRunFinished:
			fmt.Println("\nAll queued tests finished.")
		}
	})

	orch.Register(diagtest.IDKeyboard, func() diagtest.Module {
		keys, err := termui.NewTerminalKeys()
		if err != nil {
			// Initialize reports the missing source and the run moves on.
			return diagtest.NewKeyboard(prompter, nil, cfg.KeyboardThreshold)
		}
		return diagtest.NewKeyboard(prompter, keys, cfg.KeyboardThreshold)
	})
	orch.Register(diagtest.IDUSB, func() diagtest.Module {
		return diagtest.NewUSB(prompter, diagtest.NewSysfsLister(), cfg.TestFileSizeMB)
	})
	orch.Register(diagtest.IDWebcam, func() diagtest.Module {
		return diagtest.NewWebcam(prompter, capture.NewCamera())
	})
	orch.Register(diagtest.IDAudio, func() diagtest.Module {
		return diagtest.NewAudio(prompter, capture.NewRecorder(), capture.NewPlayer())
	})
	orch.Register(diagtest.IDTPM, func() diagtest.Module {
		return diagtest.NewTPMProbe(hwSvc.Latest)
	})
	orch.Register(diagtest.IDBluetooth, func() diagtest.Module {
		return diagtest.NewBluetoothProbe(hwSvc.Latest)
	})
	orch.Register(diagtest.IDWiFi, func() diagtest.Module {
		return diagtest.NewWiFiProbe(hwSvc.Latest)
	})

	return orch
}

// promptIdentification asks until both fields pass validation. The report
// cannot be assembled anonymously.
func promptIdentification(p *termui.Prompter) (report.Identification, error) {
	for {
		tech, err := p.ReadLine("Technician name")
		if err != nil {
			return report.Identification{}, err
		}
		bench, err := p.ReadLine("Workbench id")
		if err != nil {
			return report.Identification{}, err
		}

		ident := report.Identification{
			TechnicianName: tech,
			WorkbenchID:    bench,
			Timestamp:      time.Now(),
		}
		if err := ident.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			continue
		}
		return ident, nil
	}
}

func persistSession(ctx context.Context, db *store.Store, ident report.Identification, snap *hwinfo.Snapshot, outcomes []diagtest.Outcome, reportPath string) error {
	summary := report.Summarize(outcomes)

	rec := &store.SessionRecord{
		Technician:  ident.TechnicianName,
		Workbench:   ident.WorkbenchID,
		ReportPath:  reportPath,
		TotalTests:  summary.Total,
		PassedTests: summary.Passed,
	}

	if snap != nil {
		rec.Hostname = snap.Hostname
		rec.CollectedAt = snap.CollectedAt
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		rec.SnapshotJSON = string(data)
	} else {
		rec.CollectedAt = ident.Timestamp
	}

	results := make([]diagtest.Result, len(outcomes))
	for i, o := range outcomes {
		results[i] = o.Result
	}
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	rec.ResultsJSON = string(data)

	id, _, err := db.Insert(ctx, rec)
	if err != nil {
		return err
	}
	fmt.Printf("Session stored with id %s\n", id)
	return nil
}
