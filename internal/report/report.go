// Package report assembles the plain-text diagnostic report handed to the
// technician and writes it to disk.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/techbench/diagstation/internal/diagtest"
	"github.com/techbench/diagstation/internal/hwinfo"
)

const lineWidth = 80

var (
	majorRule = strings.Repeat("=", lineWidth)
	minorRule = strings.Repeat("-", lineWidth)
)

// Identification names the technician and workbench for the report header.
type Identification struct {
	TechnicianName string    `json:"technician_name"`
	WorkbenchID    string    `json:"workbench_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// Validate rejects identification with blank fields. Whitespace-only values
// count as blank.
func (id Identification) Validate() error {
	if strings.TrimSpace(id.TechnicianName) == "" {
		return errors.New("technician name must not be blank")
	}
	if strings.TrimSpace(id.WorkbenchID) == "" {
		return errors.New("workbench id must not be blank")
	}
	return nil
}

// Summary totals the outcomes of one run.
type Summary struct {
	Total       int
	Passed      int
	Failed      int
	SuccessRate float64
}

// Summarize computes run totals. The success rate of an empty run is zero.
func Summarize(outcomes []diagtest.Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Result.Success {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	if s.Total > 0 {
		s.SuccessRate = float64(s.Passed) / float64(s.Total) * 100
	}
	return s
}

// Assemble renders the full report text. Section order is fixed:
// identification, system summary, hardware detail, per-test results in
// completion order, then the run summary. Hardware categories that report
// nothing beyond placeholders are still printed so the technician sees what
// the machine could not answer.
func Assemble(ident Identification, snap *hwinfo.Snapshot, outcomes []diagtest.Outcome) string {
	var b strings.Builder

	ts := ident.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	b.WriteString(majorRule + "\n")
	writeCentered(&b, "HARDWARE DIAGNOSTIC REPORT")
	b.WriteString(majorRule + "\n\n")

	b.WriteString(fmt.Sprintf("Technician: %s\n", strings.TrimSpace(ident.TechnicianName)))
	b.WriteString(fmt.Sprintf("Workbench:  %s\n", strings.TrimSpace(ident.WorkbenchID)))
	b.WriteString(fmt.Sprintf("Date:       %s\n\n", ts.Format("2006-01-02 15:04:05")))

	writeHardware(&b, snap)
	writeResults(&b, outcomes)
	writeSummary(&b, Summarize(outcomes))

	b.WriteString(majorRule + "\n")
	writeCentered(&b, "END OF REPORT")
	b.WriteString(majorRule + "\n")

	return b.String()
}

func writeCentered(b *strings.Builder, text string) {
	pad := (lineWidth - len(text)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad) + text + "\n")
}

func sectionHeader(b *strings.Builder, title string) {
	b.WriteString(minorRule + "\n")
	b.WriteString(title + "\n")
	b.WriteString(minorRule + "\n")
}

func writeHardware(b *strings.Builder, snap *hwinfo.Snapshot) {
	sectionHeader(b, "SYSTEM INFORMATION")
	if snap == nil {
		b.WriteString("Hardware information was not collected.\n\n")
		return
	}

	b.WriteString(fmt.Sprintf("Hostname:         %s\n", snap.Hostname))
	b.WriteString(fmt.Sprintf("Operating System: %s\n", snap.OS.System))
	b.WriteString(fmt.Sprintf("Kernel:           %s\n", snap.OS.Release))
	b.WriteString(fmt.Sprintf("Architecture:     %s\n", snap.OS.Architecture))
	b.WriteString(fmt.Sprintf("Collected At:     %s\n\n", snap.CollectedAt.Format("2006-01-02 15:04:05")))

	b.WriteString("Motherboard:\n")
	b.WriteString(fmt.Sprintf("  Manufacturer: %s\n", snap.Motherboard.Manufacturer))
	b.WriteString(fmt.Sprintf("  Model:        %s\n", snap.Motherboard.Model))
	b.WriteString(fmt.Sprintf("  Serial:       %s\n\n", snap.Motherboard.SerialNumber))

	b.WriteString("Processor:\n")
	b.WriteString(fmt.Sprintf("  Brand:     %s\n", snap.CPU.Brand))
	b.WriteString(fmt.Sprintf("  Model:     %s\n", snap.CPU.Model))
	b.WriteString(fmt.Sprintf("  Cores:     %s\n", snap.CPU.Cores))
	b.WriteString(fmt.Sprintf("  Threads:   %s\n", snap.CPU.Threads))
	b.WriteString(fmt.Sprintf("  Max Speed: %s\n\n", snap.CPU.MaxSpeedMHz))

	b.WriteString("Memory:\n")
	b.WriteString(fmt.Sprintf("  Total:      %s\n", snap.RAM.Total))
	b.WriteString(fmt.Sprintf("  Slots Used: %s\n", snap.RAM.SlotsUsed))
	for _, m := range snap.RAM.Modules {
		b.WriteString(fmt.Sprintf("  %s: %s @ %s\n", m.BankLabel, m.Size, m.Speed))
	}
	b.WriteString("\n")

	b.WriteString("Storage:\n")
	if len(snap.Disks) == 0 {
		b.WriteString("  " + hwinfo.NotAvailable + "\n")
	}
	for _, d := range snap.Disks {
		b.WriteString(fmt.Sprintf("  %s (%s, %s)\n", d.Model, d.Size, d.Type))
	}
	b.WriteString("\n")

	b.WriteString("Graphics:\n")
	if len(snap.GPUs) == 0 {
		b.WriteString("  " + hwinfo.NotAvailable + "\n")
	}
	for _, g := range snap.GPUs {
		b.WriteString(fmt.Sprintf("  %s\n", g.Model))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Display Resolution: %s\n\n", snap.Display.Resolution))

	b.WriteString("TPM:\n")
	b.WriteString(fmt.Sprintf("  Status:       %s\n", snap.TPM.Status))
	b.WriteString(fmt.Sprintf("  Version:      %s\n", snap.TPM.Version))
	b.WriteString(fmt.Sprintf("  Manufacturer: %s\n\n", snap.TPM.Manufacturer))

	b.WriteString("Bluetooth:\n")
	b.WriteString(fmt.Sprintf("  Device: %s\n", snap.Bluetooth.DeviceName))
	b.WriteString(fmt.Sprintf("  Status: %s\n\n", snap.Bluetooth.DeviceStatus))

	b.WriteString("Wi-Fi:\n")
	b.WriteString(fmt.Sprintf("  Adapter: %s\n", snap.WiFi.AdapterName))
	b.WriteString(fmt.Sprintf("  Status:  %s\n", snap.WiFi.AdapterStatus))
	b.WriteString(fmt.Sprintf("  SSID:    %s\n\n", snap.WiFi.ConnectedSSID))
}

func writeResults(b *strings.Builder, outcomes []diagtest.Outcome) {
	sectionHeader(b, "TEST RESULTS")
	if len(outcomes) == 0 {
		b.WriteString("No tests were executed.\n\n")
		return
	}
	for _, o := range outcomes {
		b.WriteString(o.Formatted)
		if !strings.HasSuffix(o.Formatted, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
}

func writeSummary(b *strings.Builder, s Summary) {
	sectionHeader(b, "SUMMARY")
	b.WriteString(fmt.Sprintf("Total Tests:  %d\n", s.Total))
	b.WriteString(fmt.Sprintf("Passed:       %d\n", s.Passed))
	b.WriteString(fmt.Sprintf("Failed:       %d\n", s.Failed))
	b.WriteString(fmt.Sprintf("Success Rate: %.2f%%\n\n", s.SuccessRate))
}
