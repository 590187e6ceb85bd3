package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techbench/diagstation/internal/diagtest"
	"github.com/techbench/diagstation/internal/hwinfo"
)

func testIdentification() Identification {
	return Identification{
		TechnicianName: "Maria Silva",
		WorkbenchID:    "BENCH-07",
		Timestamp:      time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func testSnapshot() *hwinfo.Snapshot {
	return &hwinfo.Snapshot{
		CollectedAt: time.Date(2026, 3, 14, 9, 29, 0, 0, time.UTC),
		Hostname:    "bench-pc",
		OS: hwinfo.OSInfo{
			System:       "Ubuntu 22.04.4 LTS",
			Release:      "6.1.0-18",
			Architecture: "amd64",
			NodeName:     "bench-pc",
		},
		Motherboard: hwinfo.MotherboardInfo{Manufacturer: "ASUS", Model: "PRIME B450M", SerialNumber: "X123"},
		CPU: hwinfo.CPUInfo{
			Brand: "AMD", Model: "Ryzen 5 3600", Cores: "6", Threads: "12", MaxSpeedMHz: "4200 MHz",
		},
		RAM: hwinfo.RAMInfo{
			Total:     "16.00 GB",
			SlotsUsed: "2",
			Modules: []hwinfo.RAMModule{
				{BankLabel: "BANK 0", Size: "8.00 GB", Speed: "3200 MHz"},
				{BankLabel: "BANK 1", Size: "8.00 GB", Speed: "3200 MHz"},
			},
		},
		Disks:     []hwinfo.DiskInfo{{Model: "Samsung SSD 860", Size: "465.76 GB", Type: "SSD"}},
		GPUs:      []hwinfo.GPUInfo{{Model: "NVIDIA GTX 1660"}},
		Display:   hwinfo.DisplayInfo{Resolution: "1920x1080"},
		TPM:       hwinfo.TPMInfo{Status: "present", Version: "2.0", Manufacturer: "IFX"},
		Bluetooth: hwinfo.BluetoothInfo{DeviceName: "Intel AX200", DeviceStatus: "active"},
		WiFi:      hwinfo.WiFiInfo{AdapterName: "wlp3s0", AdapterStatus: "connected", ConnectedSSID: "bench-net"},
	}
}

func testOutcomes() []diagtest.Outcome {
	return []diagtest.Outcome{
		{
			Result:    diagtest.Result{ID: diagtest.IDKeyboard, Success: true, Message: "all keys registered"},
			Formatted: "Keyboard Test: PASS\nTotal keys: 88\nKeys registered: 88",
		},
		{
			Result:    diagtest.Result{ID: diagtest.IDUSB, Success: false, Message: "integrity failure"},
			Formatted: "USB Test: FAIL\nReason: integrity failure",
		},
	}
}

func TestIdentificationValidate(t *testing.T) {
	assert.NoError(t, testIdentification().Validate())

	blankTech := testIdentification()
	blankTech.TechnicianName = "   "
	assert.Error(t, blankTech.Validate())

	blankBench := testIdentification()
	blankBench.WorkbenchID = ""
	assert.Error(t, blankBench.Validate())
}

func TestSummarize(t *testing.T) {
	s := Summarize(testOutcomes())
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.InDelta(t, 50.0, s.SuccessRate, 0.001)

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, 0.0, empty.SuccessRate)
}

func TestAssembleDeterministic(t *testing.T) {
	a := Assemble(testIdentification(), testSnapshot(), testOutcomes())
	b := Assemble(testIdentification(), testSnapshot(), testOutcomes())
	assert.Equal(t, a, b)
}

func TestAssembleSectionOrder(t *testing.T) {
	text := Assemble(testIdentification(), testSnapshot(), testOutcomes())

	sections := []string{
		"HARDWARE DIAGNOSTIC REPORT",
		"Technician: Maria Silva",
		"Workbench:  BENCH-07",
		"SYSTEM INFORMATION",
		"Motherboard:",
		"Processor:",
		"Memory:",
		"Storage:",
		"Graphics:",
		"Display Resolution:",
		"TPM:",
		"Bluetooth:",
		"Wi-Fi:",
		"TEST RESULTS",
		"Keyboard Test: PASS",
		"USB Test: FAIL",
		"SUMMARY",
		"Success Rate: 50.00%",
		"END OF REPORT",
	}

	pos := -1
	for _, s := range sections {
		idx := strings.Index(text, s)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", s)
		assert.Greater(t, idx, pos, "section %q out of order", s)
		pos = idx
	}
}

func TestAssembleDelimiters(t *testing.T) {
	text := Assemble(testIdentification(), testSnapshot(), testOutcomes())

	major := strings.Repeat("=", 80)
	minor := strings.Repeat("-", 80)
	assert.Contains(t, text, major)
	assert.Contains(t, text, minor)

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "=") {
			assert.Equal(t, major, line)
		}
		if strings.HasPrefix(line, "-") {
			assert.Equal(t, minor, line)
		}
	}
}

func TestAssembleNilSnapshot(t *testing.T) {
	text := Assemble(testIdentification(), nil, testOutcomes())
	assert.Contains(t, text, "Hardware information was not collected.")
	assert.Contains(t, text, "TEST RESULTS")
}

func TestAssembleNoTests(t *testing.T) {
	text := Assemble(testIdentification(), testSnapshot(), nil)
	assert.Contains(t, text, "No tests were executed.")
	assert.Contains(t, text, "Success Rate: 0.00%")
}
