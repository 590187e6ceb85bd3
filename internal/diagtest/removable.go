package diagtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// RemovableDevice is one writable removable volume.
type RemovableDevice struct {
	Name       string `json:"name"`
	MountPath  string `json:"mount_path"`
	SizeGB     string `json:"size_gb"`
	Filesystem string `json:"filesystem"`
	Removable  bool   `json:"removable"`
}

// DeviceLister enumerates candidate volumes for the USB test.
type DeviceLister interface {
	List() ([]RemovableDevice, error)
}

// sysfsLister walks /sys/block for removable disks and matches their
// partitions against the mount table.
type sysfsLister struct {
	sysBlock string
	mounts   string
}

// NewSysfsLister enumerates removable volumes from the default kernel paths.
func NewSysfsLister() DeviceLister {
	return &sysfsLister{sysBlock: "/sys/block", mounts: "/proc/mounts"}
}

func (l *sysfsLister) List() ([]RemovableDevice, error) {
	entries, err := os.ReadDir(l.sysBlock)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.sysBlock, err)
	}

	mountsData, err := os.ReadFile(l.mounts)
	if err != nil {
		return nil, fmt.Errorf("read mounts: %w", err)
	}
	mounts := parseMounts(string(mountsData))

	var devices []RemovableDevice
	for _, e := range entries {
		flag, err := os.ReadFile(filepath.Join(l.sysBlock, e.Name(), "removable"))
		if err != nil || strings.TrimSpace(string(flag)) != "1" {
			continue
		}

		devPrefix := "/dev/" + e.Name()
		for _, m := range mounts {
			if !strings.HasPrefix(m.device, devPrefix) {
				continue
			}
			dev := RemovableDevice{
				Name:       m.device,
				MountPath:  m.mountPoint,
				Filesystem: m.fsType,
				Removable:  true,
				SizeGB:     "unknown",
			}
			if total, ok := volumeTotalBytes(m.mountPoint); ok {
				dev.SizeGB = fmt.Sprintf("%.1f GB", float64(total)/(1024*1024*1024))
			}
			devices = append(devices, dev)
		}
	}

	return devices, nil
}

type mountEntry struct {
	device     string
	mountPoint string
	fsType     string
}

func parseMounts(data string) []mountEntry {
	var out []mountEntry
	for _, line := range strings.Split(data, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		out = append(out, mountEntry{
			device:     fields[0],
			mountPoint: unescapeMountPath(fields[1]),
			fsType:     fields[2],
		})
	}
	return out
}

// unescapeMountPath decodes the octal escapes /proc/mounts uses for spaces
// and other special characters.
func unescapeMountPath(p string) string {
	if !strings.Contains(p, `\`) {
		return p
	}
	var b strings.Builder
	for i := 0; i < len(p); i++ {
		if p[i] == '\\' && i+3 < len(p) {
			if v, err := strconv.ParseUint(p[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(p[i])
	}
	return b.String()
}

func volumeTotalBytes(path string) (uint64, bool) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, false
	}
	return st.Blocks * uint64(st.Bsize), true
}

func volumeFreeBytes(path string) (uint64, bool) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, false
	}
	return st.Bavail * uint64(st.Bsize), true
}
