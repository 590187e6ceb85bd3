package diagtest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/techbench/diagstation/internal/hwinfo"
)

// SnapshotFunc supplies the latest hardware snapshot, or nil when none has
// been collected yet.
type SnapshotFunc func() *hwinfo.Snapshot

// probeEval judges one snapshot category: the flat fields to report, whether
// the category passes, and a one-line verdict.
type probeEval func(*hwinfo.Snapshot) (fields map[string]string, pass bool, msg string)

// ProbeTest is a non-interactive test over already-collected hardware facts.
// TPM, Bluetooth, and Wi-Fi checks share it; the pass verdict is an
// objective measurement, so no operator confirmation is involved.
type ProbeTest struct {
	id    ID
	title string
	state State
	snap  SnapshotFunc
	eval  probeEval

	result Result
}

// NewTPMProbe checks TPM presence and spec version.
func NewTPMProbe(snap SnapshotFunc) *ProbeTest {
	return &ProbeTest{id: IDTPM, title: "TPM", snap: snap, eval: evalTPM}
}

// NewBluetoothProbe checks for an active bluetooth radio.
func NewBluetoothProbe(snap SnapshotFunc) *ProbeTest {
	return &ProbeTest{id: IDBluetooth, title: "Bluetooth", snap: snap, eval: evalBluetooth}
}

// NewWiFiProbe checks for a connected wireless adapter.
func NewWiFiProbe(snap SnapshotFunc) *ProbeTest {
	return &ProbeTest{id: IDWiFi, title: "Wi-Fi", snap: snap, eval: evalWiFi}
}

func (t *ProbeTest) ID() ID       { return t.id }
func (t *ProbeTest) State() State { return t.state }

func (t *ProbeTest) Initialize(_ context.Context) error {
	if t.snap == nil || t.snap() == nil {
		err := fmt.Errorf("hardware snapshot not collected yet")
		t.result = Result{ID: t.id, Message: "initialization failed", Error: err.Error()}
		return err
	}
	t.state = StateInitialized
	return nil
}

func (t *ProbeTest) Execute(_ context.Context) error {
	if t.state != StateInitialized {
		return fmt.Errorf("%s probe not initialized", t.id)
	}
	t.state = StateRunning

	fields, pass, msg := t.eval(t.snap())
	t.result = Result{
		ID:      t.id,
		Success: pass,
		Message: msg,
		Details: ProbeDetails{Probe: t.id, Fields: fields},
	}
	t.state = StateCompleted
	return nil
}

func (t *ProbeTest) Result() Result { return t.result }

func (t *ProbeTest) FormattedResult() string {
	verdict := "FAIL"
	if t.result.Success {
		verdict = "PASS"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Test: %s\n%s", t.title, verdict, t.result.Message)

	if d, ok := t.result.Details.(ProbeDetails); ok {
		keys := make([]string, 0, len(d.Fields))
		for k := range d.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "\n%s: %s", k, d.Fields[k])
		}
	}
	return b.String()
}

func (t *ProbeTest) Cleanup() error { return nil }

func evalTPM(s *hwinfo.Snapshot) (map[string]string, bool, string) {
	fields := map[string]string{
		"Status":       s.TPM.Status,
		"Version":      s.TPM.Version,
		"Manufacturer": s.TPM.Manufacturer,
	}
	if s.TPM.Status == "present" {
		return fields, true, "TPM device present"
	}
	return fields, false, "no TPM device detected"
}

func evalBluetooth(s *hwinfo.Snapshot) (map[string]string, bool, string) {
	fields := map[string]string{
		"Device": s.Bluetooth.DeviceName,
		"Status": s.Bluetooth.DeviceStatus,
	}
	if s.Bluetooth.DeviceStatus == "active" {
		return fields, true, "bluetooth radio active"
	}
	return fields, false, "bluetooth radio missing or inactive"
}

func evalWiFi(s *hwinfo.Snapshot) (map[string]string, bool, string) {
	fields := map[string]string{
		"Adapter": s.WiFi.AdapterName,
		"Status":  s.WiFi.AdapterStatus,
		"SSID":    s.WiFi.ConnectedSSID,
	}
	if s.WiFi.AdapterName == hwinfo.NotAvailable {
		return fields, false, "no wireless adapter detected"
	}
	if s.WiFi.AdapterStatus == "connected" {
		return fields, true, "wireless adapter connected"
	}
	return fields, true, "wireless adapter present"
}
