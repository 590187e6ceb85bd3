package hwinfo

import "time"

// NotAvailable is the placeholder substituted for every field that could not
// be determined. Snapshots never carry empty strings.
const NotAvailable = "not available"

// Snapshot holds a complete point-in-time set of hardware facts for the
// local bench machine. Once returned by the collector it is never mutated;
// re-collection produces a fresh value.
type Snapshot struct {
	CollectedAt time.Time `json:"collected_at"`
	Hostname    string    `json:"hostname"`

	OS          OSInfo          `json:"os"`
	Motherboard MotherboardInfo `json:"motherboard"`
	CPU         CPUInfo         `json:"cpu"`
	RAM         RAMInfo         `json:"ram"`
	Disks       []DiskInfo      `json:"disks"`
	GPUs        []GPUInfo       `json:"gpus"`
	Display     DisplayInfo     `json:"display"`
	TPM         TPMInfo         `json:"tpm"`
	Bluetooth   BluetoothInfo   `json:"bluetooth"`
	WiFi        WiFiInfo        `json:"wifi"`
}

// OSInfo holds operating system identification for the report system block.
type OSInfo struct {
	System       string `json:"system"`
	Release      string `json:"release"`
	Architecture string `json:"architecture"`
	NodeName     string `json:"node_name"`
}

// MotherboardInfo holds baseboard manufacturer, model, and serial number.
type MotherboardInfo struct {
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
}

// CPUInfo holds processor brand and model plus core topology.
type CPUInfo struct {
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Cores       string `json:"cores"`
	Threads     string `json:"threads"`
	MaxSpeedMHz string `json:"max_speed_mhz"`
}

// RAMInfo holds total physical memory and per-DIMM details.
type RAMInfo struct {
	Total     string      `json:"total"`
	SlotsUsed string      `json:"slots_used"`
	Modules   []RAMModule `json:"modules,omitempty"`
}

// RAMModule holds details for a single populated memory slot.
type RAMModule struct {
	BankLabel string `json:"bank_label"`
	Size      string `json:"size"`
	Speed     string `json:"speed"`
}

// DiskInfo holds model, capacity, and media type for one physical disk.
type DiskInfo struct {
	Model string `json:"model"`
	Size  string `json:"size"`
	Type  string `json:"type"`
}

// GPUInfo holds the model string of one video controller.
type GPUInfo struct {
	Model string `json:"model"`
}

// DisplayInfo holds the primary display resolution.
type DisplayInfo struct {
	Resolution string `json:"resolution"`
}

// TPMInfo holds TPM presence, spec version, and manufacturer.
type TPMInfo struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Manufacturer string `json:"manufacturer"`
}

// BluetoothInfo holds the radio device name and service status.
type BluetoothInfo struct {
	DeviceName   string `json:"device_name"`
	DeviceStatus string `json:"device_status"`
}

// WiFiInfo holds the wireless adapter name, link status, and connected SSID.
type WiFiInfo struct {
	AdapterName   string `json:"adapter_name"`
	AdapterStatus string `json:"adapter_status"`
	ConnectedSSID string `json:"connected_ssid"`
}

func defaultMotherboard() MotherboardInfo {
	return MotherboardInfo{
		Manufacturer: NotAvailable,
		Model:        NotAvailable,
		SerialNumber: NotAvailable,
	}
}

func defaultCPU() CPUInfo {
	return CPUInfo{
		Brand:       NotAvailable,
		Model:       NotAvailable,
		Cores:       NotAvailable,
		Threads:     NotAvailable,
		MaxSpeedMHz: NotAvailable,
	}
}

func defaultRAM() RAMInfo {
	return RAMInfo{
		Total:     NotAvailable,
		SlotsUsed: NotAvailable,
	}
}

func defaultDisplay() DisplayInfo {
	return DisplayInfo{Resolution: NotAvailable}
}

func defaultTPM() TPMInfo {
	return TPMInfo{
		Status:       NotAvailable,
		Version:      NotAvailable,
		Manufacturer: NotAvailable,
	}
}

func defaultBluetooth() BluetoothInfo {
	return BluetoothInfo{
		DeviceName:   NotAvailable,
		DeviceStatus: NotAvailable,
	}
}

func defaultWiFi() WiFiInfo {
	return WiFiInfo{
		AdapterName:   NotAvailable,
		AdapterStatus: NotAvailable,
		ConnectedSSID: NotAvailable,
	}
}

func defaultOS() OSInfo {
	return OSInfo{
		System:       NotAvailable,
		Release:      NotAvailable,
		Architecture: NotAvailable,
		NodeName:     NotAvailable,
	}
}
