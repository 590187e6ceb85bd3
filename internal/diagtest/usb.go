package diagtest

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// ErrInsufficientSpace means the selected volume cannot hold the test file
// plus its copy. The USB test aborts; the rest of the run continues.
var ErrInsufficientSpace = errors.New("insufficient free space on target volume")

const copyBlockSize = 1 << 20 // 1 MiB

// USBTest measures removable-storage throughput: write speed from two
// consecutive full-file copies (keeping the minimum, the faster pass being
// cache-assisted), read speed through an OS-bypass path when available, and
// integrity via content hashing. The procedure repeats across several file
// sizes and averages the measurements.
type USBTest struct {
	state    State
	prompter Prompter
	lister   DeviceLister

	fileSizeMB int
	tempDir    string
	device     RemovableDevice

	result Result
}

// NewUSB builds a USB throughput test. fileSizeMB <= 0 selects 100 MB.
func NewUSB(p Prompter, lister DeviceLister, fileSizeMB int) *USBTest {
	if fileSizeMB <= 0 {
		fileSizeMB = 100
	}
	return &USBTest{
		state:      StateUninitialized,
		prompter:   p,
		lister:     lister,
		fileSizeMB: fileSizeMB,
	}
}

func (t *USBTest) ID() ID       { return IDUSB }
func (t *USBTest) State() State { return t.state }

// Initialize enumerates removable volumes and allocates scratch storage.
// With no removable volume present the test degrades to the local temp
// directory, clearly labeled, so the measurement path itself can still be
// demonstrated.
func (t *USBTest) Initialize(_ context.Context) error {
	devices, err := t.lister.List()
	if err != nil || len(devices) == 0 {
		t.device = RemovableDevice{
			Name:      "local temp directory (fallback)",
			MountPath: os.TempDir(),
		}
	} else {
		t.device = devices[0]
	}

	dir, err := os.MkdirTemp("", "usbtest-")
	if err != nil {
		err = fmt.Errorf("create scratch directory: %w", err)
		t.result = Result{ID: IDUSB, Message: "initialization failed", Error: err.Error()}
		return err
	}
	t.tempDir = dir
	t.state = StateInitialized
	return nil
}

func (t *USBTest) Execute(ctx context.Context) error {
	if t.state != StateInitialized {
		return fmt.Errorf("usb test not initialized")
	}
	t.state = StateRunning
	defer t.cleanupScratch()

	if free, ok := volumeFreeBytes(t.device.MountPath); ok {
		required := uint64(t.fileSizeMB) * 2 * 1024 * 1024
		if free < required {
			t.prompter.Notify(fmt.Sprintf(
				"Insufficient space on %s: need %d MB, have %d MB. USB test aborted.",
				t.device.MountPath, t.fileSizeMB*2, free/(1024*1024)))
			t.finish(StateAborted, Result{
				ID:      IDUSB,
				Message: "insufficient free space on target volume",
				Error:   ErrInsufficientSpace.Error(),
				Details: USBDetails{Device: t.device.Name, MountPath: t.device.MountPath},
			})
			return nil
		}
	}

	t.prompter.Notify(fmt.Sprintf("Testing %s mounted at %s", t.device.Name, t.device.MountPath))

	runs, err := t.runAllSizes(ctx)
	if err != nil {
		state := StateAborted
		msg := "usb test failed"
		if errors.Is(err, context.Canceled) {
			msg = "test interrupted by operator"
		}
		t.finish(state, Result{
			ID:      IDUSB,
			Message: msg,
			Error:   err.Error(),
			Details: USBDetails{Device: t.device.Name, MountPath: t.device.MountPath, Runs: runs},
		})
		return nil
	}

	details := summarizeRuns(t.device, runs)
	res := Result{
		ID:      IDUSB,
		Success: details.Integrity,
		Message: "throughput test completed",
		Details: details,
	}
	if !details.Integrity {
		res.Message = "copied data failed integrity verification"
	}
	t.finish(StateCompleted, res)
	return nil
}

// runAllSizes measures one pass per file size: small, configured, large,
// deduplicated and capped at the configured size.
func (t *USBTest) runAllSizes(ctx context.Context) ([]USBRun, error) {
	sizes := testSizes(t.fileSizeMB)

	var runs []USBRun
	for _, sizeMB := range sizes {
		if err := ctx.Err(); err != nil {
			return runs, err
		}

		run, err := t.runOneSize(ctx, sizeMB)
		if err != nil {
			return runs, fmt.Errorf("measure %d MB: %w", sizeMB, err)
		}
		runs = append(runs, run)
		t.prompter.Notify(fmt.Sprintf(
			"%d MB pass: write %.2f MB/s, read %.2f MB/s, integrity %v",
			sizeMB, run.WriteSpeedMBps, run.ReadSpeedMBps, run.Integrity))
	}
	return runs, nil
}

func (t *USBTest) runOneSize(ctx context.Context, sizeMB int) (USBRun, error) {
	src := filepath.Join(t.tempDir, fmt.Sprintf("test_%dMB.bin", sizeMB))
	dst := filepath.Join(t.device.MountPath, fmt.Sprintf("usbtest_%dMB.bin", sizeMB))
	defer os.Remove(dst)

	if err := createRandomFile(src, sizeMB); err != nil {
		return USBRun{}, err
	}

	srcHash, err := fileSHA256(src)
	if err != nil {
		return USBRun{}, err
	}

	writeSpeed, err := measureWriteSpeed(ctx, src, dst)
	if err != nil {
		return USBRun{}, err
	}

	readSpeed := measureDirectReadSpeed(dst)
	if readSpeed <= 0 {
		readSpeed, err = measureBufferedReadSpeed(dst)
		if err != nil {
			return USBRun{}, err
		}
	}

	dstHash, err := fileSHA256(dst)
	if err != nil {
		return USBRun{}, err
	}

	return USBRun{
		SizeMB:         sizeMB,
		WriteSpeedMBps: writeSpeed,
		ReadSpeedMBps:  readSpeed,
		Integrity:      srcHash == dstHash,
	}, nil
}

func (t *USBTest) finish(state State, res Result) {
	t.state = state
	t.result = res
}

func (t *USBTest) Result() Result { return t.result }

func (t *USBTest) FormattedResult() string {
	d, ok := t.result.Details.(USBDetails)
	if t.result.Success && ok {
		integrity := "all files intact"
		if !d.Integrity {
			integrity = "corruption detected"
		}
		return fmt.Sprintf(
			"USB Test: PASS\nDevice: %s\nEstimated type: %s\nWrite speed: %.2f MB/s\nRead speed: %.2f MB/s\nIntegrity: %s",
			d.Device, d.USBType, d.WriteSpeedMBps, d.ReadSpeedMBps, integrity)
	}
	if t.result.Error != "" {
		return fmt.Sprintf("USB Test: FAIL\nReason: %s\nError: %s", t.result.Message, t.result.Error)
	}
	return fmt.Sprintf("USB Test: FAIL\nReason: %s", t.result.Message)
}

func (t *USBTest) Cleanup() error {
	t.cleanupScratch()
	return nil
}

func (t *USBTest) cleanupScratch() {
	if t.tempDir != "" {
		os.RemoveAll(t.tempDir)
		t.tempDir = ""
	}
}

// testSizes returns the measurement sizes for a configured file size:
// a small warm-up, the configured size, and a large pass, each capped at the
// configured size and deduplicated.
func testSizes(fileSizeMB int) []int {
	sizes := []int{10, fileSizeMB, 200}
	for i := range sizes {
		if sizes[i] > fileSizeMB {
			sizes[i] = fileSizeMB
		}
	}
	slices.Sort(sizes)
	return slices.Compact(sizes)
}

// summarizeRuns averages per-size measurements and classifies the inferred
// USB generation from the higher of the two averaged directions.
func summarizeRuns(dev RemovableDevice, runs []USBRun) USBDetails {
	d := USBDetails{
		Device:    dev.Name,
		MountPath: dev.MountPath,
		Runs:      runs,
		Integrity: true,
	}
	if len(runs) == 0 {
		d.Integrity = false
		d.USBType = "undetermined"
		return d
	}

	var writeSum, readSum float64
	for _, r := range runs {
		writeSum += r.WriteSpeedMBps
		readSum += r.ReadSpeedMBps
		if !r.Integrity {
			d.Integrity = false
		}
	}
	d.WriteSpeedMBps = writeSum / float64(len(runs))
	d.ReadSpeedMBps = readSum / float64(len(runs))
	d.USBType = classifyUSBType(max(d.WriteSpeedMBps, d.ReadSpeedMBps))
	return d
}

// classifyUSBType infers the USB generation from sustained throughput.
// The bands reflect what each generation reaches in practice, not its
// theoretical line rate.
func classifyUSBType(speedMBps float64) string {
	switch {
	case speedMBps < 35:
		return "USB 2.0 (up to 480 Mbps)"
	case speedMBps < 450:
		return "USB 3.2 Gen 1 (5 Gbps)"
	case speedMBps < 1100:
		return "USB 3.2 Gen 2 (10 Gbps)"
	case speedMBps < 2500:
		return "USB4/Thunderbolt (20 Gbps)"
	default:
		return "USB4/Thunderbolt (40 Gbps)"
	}
}

// createRandomFile writes sizeMB mebibytes of random data to path.
func createRandomFile(path string, sizeMB int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create test file: %w", err)
	}
	defer f.Close()

	block := make([]byte, copyBlockSize)
	for i := 0; i < sizeMB; i++ {
		if _, err := rand.Read(block); err != nil {
			return fmt.Errorf("generate test data: %w", err)
		}
		if _, err := f.Write(block); err != nil {
			return fmt.Errorf("write test file: %w", err)
		}
	}
	return f.Sync()
}

// measureWriteSpeed copies src to dst twice and keeps the slower pass; the
// faster one is treated as cache-assisted noise. This approximates
// steady-state throughput rather than validating it rigorously.
func measureWriteSpeed(ctx context.Context, src, dst string) (float64, error) {
	var speeds [2]float64
	for i := range speeds {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		s, err := timedCopy(src, dst)
		if err != nil {
			return 0, err
		}
		speeds[i] = s
	}
	return min(speeds[0], speeds[1]), nil
}

func timedCopy(src, dst string) (float64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	st, err := in.Stat()
	if err != nil {
		return 0, err
	}
	sizeMB := float64(st.Size()) / (1024 * 1024)

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("create destination: %w", err)
	}

	start := time.Now()
	_, err = io.Copy(out, in)
	if err == nil {
		err = out.Sync()
	}
	closeErr := out.Close()
	elapsed := time.Since(start).Seconds()

	if err != nil {
		return 0, fmt.Errorf("copy: %w", err)
	}
	if closeErr != nil {
		return 0, fmt.Errorf("close destination: %w", closeErr)
	}
	if elapsed <= 0 {
		return 0, nil
	}
	return sizeMB / elapsed, nil
}

// measureBufferedReadSpeed reads the whole file through the page cache.
func measureBufferedReadSpeed(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open for read: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	sizeMB := float64(st.Size()) / (1024 * 1024)

	buf := make([]byte, copyBlockSize)
	start := time.Now()
	for {
		_, err := f.Read(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read: %w", err)
		}
	}
	elapsed := time.Since(start).Seconds()
	if elapsed <= 0 {
		return 0, nil
	}
	return sizeMB / elapsed, nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
