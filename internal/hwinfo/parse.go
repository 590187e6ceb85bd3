package hwinfo

import (
	"strconv"
	"strings"
)

// parseLsblkDisks parses `lsblk -d -b -n -o NAME,SIZE,ROTA,TYPE,MODEL`
// output into disk records, keeping physical disks only.
func parseLsblkDisks(out string) []DiskInfo {
	var disks []DiskInfo
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		if fields[3] != "disk" {
			continue
		}

		size := NotAvailable
		if b, err := strconv.ParseUint(fields[1], 10, 64); err == nil {
			size = bytesToGB(b)
		}

		mediaType := "SSD"
		if fields[2] == "1" {
			mediaType = "HDD"
		}

		model := NotAvailable
		if len(fields) > 4 {
			model = strings.Join(fields[4:], " ")
		}

		disks = append(disks, DiskInfo{
			Model: model,
			Size:  size,
			Type:  mediaType,
		})
	}
	return disks
}

// parseLspciGPUs extracts video controller model strings from lspci output.
func parseLspciGPUs(out string) []GPUInfo {
	var gpus []GPUInfo
	for _, line := range strings.Split(out, "\n") {
		_, desc, found := strings.Cut(line, " ")
		if !found {
			continue
		}
		class, model, found := strings.Cut(desc, ": ")
		if !found {
			continue
		}
		switch {
		case strings.HasPrefix(class, "VGA compatible controller"),
			strings.HasPrefix(class, "3D controller"),
			strings.HasPrefix(class, "Display controller"):
			gpus = append(gpus, GPUInfo{Model: strings.TrimSpace(model)})
		}
	}
	return gpus
}

// parseXrandrResolution returns the resolution of the primary connected
// output, falling back to the first connected one.
func parseXrandrResolution(out string) string {
	var fallback string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[1] != "connected" {
			continue
		}

		res := ""
		for _, f := range fields[2:] {
			if cut, _, found := strings.Cut(f, "+"); found && strings.Contains(cut, "x") {
				res = cut
				break
			}
		}
		if res == "" {
			continue
		}
		if fields[2] == "primary" {
			return res
		}
		if fallback == "" {
			fallback = res
		}
	}
	return fallback
}

// parseBluetoothShow extracts the controller alias and powered state from
// `bluetoothctl show` output.
func parseBluetoothShow(out string) (name string, powered bool) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "Alias: "); ok {
			name = strings.TrimSpace(v)
		}
		if v, ok := strings.CutPrefix(line, "Powered: "); ok {
			powered = strings.TrimSpace(v) == "yes"
		}
	}
	return name, powered
}

// parseNmcliWiFi extracts the first wifi row from terse
// `nmcli -t -f DEVICE,TYPE,STATE,CONNECTION device status` output.
func parseNmcliWiFi(out string) WiFiInfo {
	info := defaultWiFi()
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, ":")
		if len(fields) < 4 || fields[1] != "wifi" {
			continue
		}
		info.AdapterName = orNotAvailable(fields[0])
		info.AdapterStatus = orNotAvailable(fields[2])
		if fields[2] == "connected" {
			info.ConnectedSSID = orNotAvailable(strings.Join(fields[3:], ":"))
		}
		break
	}
	return info
}

// parseOSRelease returns PRETTY_NAME from an os-release file body.
func parseOSRelease(data string) string {
	for _, line := range strings.Split(data, "\n") {
		if v, ok := strings.CutPrefix(line, "PRETTY_NAME="); ok {
			return strings.Trim(strings.TrimSpace(v), `"`)
		}
	}
	return ""
}
