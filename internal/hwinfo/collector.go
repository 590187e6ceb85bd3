package hwinfo

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/siderolabs/go-smbios/smbios"
)

// Collector gathers hardware facts for the local machine. Every category is
// collected independently; a failing query degrades that category to
// placeholder values and never disturbs the others. The collector holds no
// persistent handles beyond an optional SMBIOS table opened at construction.
type Collector struct {
	log    *log.Helper
	runner Runner
	dmi    *smbios.SMBIOS

	// sysfsRoot and osReleasePath are overridable for tests.
	sysfsRoot     string
	osReleasePath string
}

// Option configures a Collector.
type Option func(*Collector)

// WithRunner replaces the subprocess query runner.
func WithRunner(r Runner) Option {
	return func(c *Collector) { c.runner = r }
}

// WithSysfsRoot points the collector at an alternate /sys tree.
func WithSysfsRoot(root string) Option {
	return func(c *Collector) { c.sysfsRoot = root }
}

// WithOSReleasePath points the collector at an alternate os-release file.
func WithOSReleasePath(path string) Option {
	return func(c *Collector) { c.osReleasePath = path }
}

// WithQueryTimeout sets the per-query subprocess timeout. Non-positive
// values keep the default.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.runner = NewRunner(d)
		}
	}
}

// New constructs a Collector. Opening the SMBIOS table is best-effort: on
// failure the DMI-backed categories fall back to sysfs and placeholders, but
// construction never fails.
func New(logger log.Logger, opts ...Option) *Collector {
	c := &Collector{
		log:           log.NewHelper(log.With(logger, "module", "hwinfo")),
		runner:        NewRunner(10 * time.Second),
		sysfsRoot:     "/sys",
		osReleasePath: "/etc/os-release",
	}
	for _, o := range opts {
		o(c)
	}

	dmi, err := smbios.New()
	if err != nil {
		c.log.Warnf("smbios unavailable, falling back to sysfs: %v", err)
	} else {
		c.dmi = dmi
	}

	return c
}

// SupportsHardwareQuery reports whether the platform query layer is usable at
// all. Collection still runs when it is not, producing placeholder values.
func (c *Collector) SupportsHardwareQuery() bool {
	return runtime.GOOS == "linux"
}

// CollectAll gathers a full snapshot. Sub-queries are fault-isolated: any of
// them may fail without affecting the rest, so the returned snapshot is
// always fully populated.
func (c *Collector) CollectAll(ctx context.Context) *Snapshot {
	hostname, _ := os.Hostname()

	snap := &Snapshot{
		CollectedAt: time.Now().UTC(),
		Hostname:    orNotAvailable(hostname),
		OS:          c.collectOS(ctx),
		Motherboard: c.collectMotherboard(),
		CPU:         c.collectCPU(),
		RAM:         c.collectRAM(),
		Disks:       c.collectDisks(ctx),
		GPUs:        c.collectGPUs(ctx),
		Display:     c.collectDisplay(ctx),
		TPM:         c.collectTPM(),
		Bluetooth:   c.collectBluetooth(ctx),
		WiFi:        c.collectWiFi(ctx),
	}

	return snap
}

func (c *Collector) collectOS(ctx context.Context) OSInfo {
	info := defaultOS()
	info.System = runtime.GOOS
	info.Architecture = runtime.GOARCH

	if host, err := os.Hostname(); err == nil {
		info.NodeName = orNotAvailable(host)
	}

	if data, err := os.ReadFile(c.osReleasePath); err == nil {
		if name := parseOSRelease(string(data)); name != "" {
			info.System = name
		}
	}

	if out, err := c.runner.Run(ctx, "uname", "-r"); err == nil {
		info.Release = orNotAvailable(out)
	} else {
		c.log.Debugf("kernel release query failed: %v", err)
	}

	return info
}

func (c *Collector) collectMotherboard() MotherboardInfo {
	if c.dmi != nil {
		if info, ok := baseboardFromDMI(c.dmi); ok {
			return info
		}
	}

	// sysfs fallback: the DMI id directory mirrors the baseboard strings.
	info := defaultMotherboard()
	info.Manufacturer = orNotAvailable(c.readSysfs("class/dmi/id/board_vendor"))
	info.Model = orNotAvailable(c.readSysfs("class/dmi/id/board_name"))
	info.SerialNumber = orNotAvailable(c.readSysfs("class/dmi/id/board_serial"))
	return info
}

func (c *Collector) collectCPU() CPUInfo {
	if c.dmi != nil {
		if info, ok := cpuFromDMI(c.dmi); ok {
			return info
		}
	}

	// /proc/cpuinfo fallback for machines without readable DMI tables.
	info := defaultCPU()
	data, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		c.log.Warnf("cpu: %v", err)
		return info
	}
	for _, line := range strings.Split(string(data), "\n") {
		key, val, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if strings.TrimSpace(key) == "model name" {
			brand, model := splitCPUBrand(strings.TrimSpace(val))
			info.Brand = brand
			info.Model = model
			break
		}
	}
	info.Threads = strconv.Itoa(runtime.NumCPU())
	return info
}

func (c *Collector) collectRAM() RAMInfo {
	if c.dmi == nil {
		c.log.Warn("ram: smbios unavailable")
		return defaultRAM()
	}
	return ramFromDMI(c.dmi)
}

func (c *Collector) collectDisks(ctx context.Context) []DiskInfo {
	out, err := c.runner.Run(ctx, "lsblk", "-d", "-b", "-n", "-o", "NAME,SIZE,ROTA,TYPE,MODEL")
	if err != nil {
		c.log.Warnf("disks: %v", err)
		return nil
	}
	return parseLsblkDisks(out)
}

func (c *Collector) collectGPUs(ctx context.Context) []GPUInfo {
	out, err := c.runner.Run(ctx, "lspci")
	if err != nil {
		c.log.Warnf("gpu: %v", err)
		return nil
	}
	return parseLspciGPUs(out)
}

func (c *Collector) collectDisplay(ctx context.Context) DisplayInfo {
	info := defaultDisplay()
	out, err := c.runner.Run(ctx, "xrandr", "--current")
	if err != nil {
		c.log.Warnf("display: %v", err)
		return info
	}
	if res := parseXrandrResolution(out); res != "" {
		info.Resolution = res
	}
	return info
}

func (c *Collector) collectTPM() TPMInfo {
	info := defaultTPM()

	major := c.readSysfs("class/tpm/tpm0/tpm_version_major")
	if major == "" {
		// No device node at all counts as a determined absence.
		if _, err := os.Stat(c.sysfsPath("class/tpm/tpm0")); err != nil {
			info.Status = "not present"
			return info
		}
		info.Status = "present"
		return info
	}

	info.Status = "present"
	info.Version = major + ".0"
	if caps := c.readSysfs("class/tpm/tpm0/caps"); caps != "" {
		for _, line := range strings.Split(caps, "\n") {
			if v, ok := strings.CutPrefix(line, "Manufacturer: "); ok {
				info.Manufacturer = orNotAvailable(v)
			}
		}
	}
	return info
}

func (c *Collector) collectBluetooth(ctx context.Context) BluetoothInfo {
	info := defaultBluetooth()

	entries, err := os.ReadDir(c.sysfsPath("class/bluetooth"))
	if err != nil || len(entries) == 0 {
		info.DeviceStatus = "not present"
		return info
	}
	info.DeviceStatus = "active"

	out, err := c.runner.Run(ctx, "bluetoothctl", "show")
	if err != nil {
		c.log.Debugf("bluetooth: %v", err)
		return info
	}
	name, powered := parseBluetoothShow(out)
	// Generic "Microsoft" radios are virtual endpoints, not the physical
	// adapter; they are treated as absent.
	if name != "" && !strings.EqualFold(name, "microsoft") {
		info.DeviceName = name
	}
	if !powered {
		info.DeviceStatus = "inactive"
	}
	return info
}

func (c *Collector) collectWiFi(ctx context.Context) WiFiInfo {
	out, err := c.runner.Run(ctx, "nmcli", "-t", "-f", "DEVICE,TYPE,STATE,CONNECTION", "device", "status")
	if err != nil {
		c.log.Warnf("wifi: %v", err)
		return defaultWiFi()
	}
	return parseNmcliWiFi(out)
}

func (c *Collector) sysfsPath(rel string) string {
	return c.sysfsRoot + "/" + rel
}

func (c *Collector) readSysfs(rel string) string {
	data, err := os.ReadFile(c.sysfsPath(rel))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
