package diagtest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedLister hands out a canned device list.
type fixedLister struct {
	devices []RemovableDevice
	err     error
}

func (l *fixedLister) List() ([]RemovableDevice, error) { return l.devices, l.err }

func TestClassifyUSBType(t *testing.T) {
	tests := []struct {
		speed float64
		want  string
	}{
		{20, "USB 2.0 (up to 480 Mbps)"},
		{34.9, "USB 2.0 (up to 480 Mbps)"},
		{40, "USB 3.2 Gen 1 (5 Gbps)"},
		{449, "USB 3.2 Gen 1 (5 Gbps)"},
		{900, "USB 3.2 Gen 2 (10 Gbps)"},
		{2000, "USB4/Thunderbolt (20 Gbps)"},
		{3000, "USB4/Thunderbolt (40 Gbps)"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, classifyUSBType(tc.speed), "speed %.1f", tc.speed)
	}
}

func TestTestSizes(t *testing.T) {
	// Configured size in the middle: three distinct passes.
	assert.Equal(t, []int{10, 100, 200}, testSizes(100))
	// Larger passes are capped at the configured size.
	assert.Equal(t, []int{10, 50}, testSizes(50))
	// A tiny configured size collapses everything into one pass.
	assert.Equal(t, []int{5}, testSizes(5))
	assert.Equal(t, []int{10}, testSizes(10))
	// Exactly at the large bound.
	assert.Equal(t, []int{10, 200}, testSizes(200))
}

func TestSummarizeRuns(t *testing.T) {
	dev := RemovableDevice{Name: "/dev/sdb1", MountPath: "/media/stick"}
	runs := []USBRun{
		{SizeMB: 10, WriteSpeedMBps: 30, ReadSpeedMBps: 90, Integrity: true},
		{SizeMB: 100, WriteSpeedMBps: 50, ReadSpeedMBps: 110, Integrity: true},
	}

	d := summarizeRuns(dev, runs)
	assert.Equal(t, "/dev/sdb1", d.Device)
	assert.InDelta(t, 40.0, d.WriteSpeedMBps, 0.001)
	assert.InDelta(t, 100.0, d.ReadSpeedMBps, 0.001)
	assert.True(t, d.Integrity)
	// Classification uses the faster direction.
	assert.Equal(t, "USB 3.2 Gen 1 (5 Gbps)", d.USBType)
}

func TestSummarizeRunsIntegrityFailurePropagates(t *testing.T) {
	runs := []USBRun{
		{SizeMB: 10, WriteSpeedMBps: 30, ReadSpeedMBps: 30, Integrity: true},
		{SizeMB: 100, WriteSpeedMBps: 30, ReadSpeedMBps: 30, Integrity: false},
	}
	d := summarizeRuns(RemovableDevice{}, runs)
	assert.False(t, d.Integrity)
}

func TestSummarizeRunsEmpty(t *testing.T) {
	d := summarizeRuns(RemovableDevice{Name: "x"}, nil)
	assert.False(t, d.Integrity)
	assert.Equal(t, "undetermined", d.USBType)
}

func TestCreateRandomFileAndHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")

	require.NoError(t, createRandomFile(path, 2))

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2*1024*1024), st.Size())

	h1, err := fileSHA256(path)
	require.NoError(t, err)
	h2, err := fileSHA256(path)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestMeasureWriteSpeedCopiesFaithfully(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	require.NoError(t, createRandomFile(src, 1))

	speed, err := measureWriteSpeed(context.Background(), src, dst)
	require.NoError(t, err)
	assert.Greater(t, speed, 0.0)

	srcHash, err := fileSHA256(src)
	require.NoError(t, err)
	dstHash, err := fileSHA256(dst)
	require.NoError(t, err)
	assert.Equal(t, srcHash, dstHash)
}

func TestMeasureWriteSpeedCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := measureWriteSpeed(ctx, "irrelevant", "irrelevant")
	require.ErrorIs(t, err, context.Canceled)
}

func TestUSBExecuteEndToEnd(t *testing.T) {
	target := t.TempDir()
	lister := &fixedLister{devices: []RemovableDevice{{
		Name:      "/dev/sdz1",
		MountPath: target,
		Removable: true,
	}}}

	p := &scriptPrompter{}
	ut := NewUSB(p, lister, 2)

	require.NoError(t, ut.Initialize(context.Background()))
	require.NoError(t, ut.Execute(context.Background()))
	require.NoError(t, ut.Cleanup())

	res := ut.Result()
	assert.True(t, res.Success)
	assert.Equal(t, StateCompleted, ut.State())

	d, ok := res.Details.(USBDetails)
	require.True(t, ok)
	assert.True(t, d.Integrity)
	assert.Greater(t, d.WriteSpeedMBps, 0.0)
	assert.Greater(t, d.ReadSpeedMBps, 0.0)
	assert.NotEmpty(t, d.USBType)
	require.Len(t, d.Runs, 1) // every pass capped to the 2 MB configured size and deduplicated

	// No test files left behind on the volume.
	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUSBFallbackToTempDir(t *testing.T) {
	lister := &fixedLister{err: errors.New("sysfs unavailable")}
	ut := NewUSB(&scriptPrompter{}, lister, 1)

	require.NoError(t, ut.Initialize(context.Background()))
	assert.Equal(t, "local temp directory (fallback)", ut.device.Name)
	assert.Equal(t, os.TempDir(), ut.device.MountPath)
	require.NoError(t, ut.Cleanup())
}
