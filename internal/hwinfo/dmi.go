package hwinfo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/siderolabs/go-smbios/smbios"
)

// baseboardFromDMI maps the SMBIOS baseboard structure onto the snapshot
// record. Returns ok=false when the table carries no usable strings.
func baseboardFromDMI(s *smbios.SMBIOS) (MotherboardInfo, bool) {
	b := s.BaseboardInformation
	if strings.TrimSpace(b.Manufacturer) == "" && strings.TrimSpace(b.Product) == "" {
		return MotherboardInfo{}, false
	}
	return MotherboardInfo{
		Manufacturer: orNotAvailable(b.Manufacturer),
		Model:        orNotAvailable(b.Product),
		SerialNumber: orNotAvailable(b.SerialNumber),
	}, true
}

func cpuFromDMI(s *smbios.SMBIOS) (CPUInfo, bool) {
	for _, p := range s.ProcessorInformation {
		if !p.Status.SocketPopulated() {
			continue
		}

		info := defaultCPU()
		brand, model := splitCPUBrand(strings.TrimSpace(p.ProcessorVersion))
		if brand == "" && model == "" {
			brand, model = splitCPUBrand(strings.TrimSpace(p.ProcessorManufacturer))
		}
		info.Brand = orNotAvailable(brand)
		info.Model = orNotAvailable(model)
		if p.CoreCount > 0 {
			info.Cores = strconv.Itoa(int(p.CoreCount))
		}
		if p.ThreadCount > 0 {
			info.Threads = strconv.Itoa(int(p.ThreadCount))
		}
		if p.MaxSpeed > 0 {
			info.MaxSpeedMHz = mhzString(uint64(p.MaxSpeed))
		}
		return info, true
	}
	return CPUInfo{}, false
}

func ramFromDMI(s *smbios.SMBIOS) RAMInfo {
	info := defaultRAM()

	var totalBytes uint64
	for _, m := range s.MemoryDevices {
		sizeMB, ok := memoryDeviceSizeMB(uint16(m.Size), uint32(m.ExtendedSize))
		if !ok {
			continue
		}
		sizeBytes := sizeMB * 1024 * 1024
		totalBytes += sizeBytes

		bank := strings.TrimSpace(m.BankLocator)
		if bank == "" {
			bank = strings.TrimSpace(m.DeviceLocator)
		}
		if bank == "" {
			bank = fmt.Sprintf("BANK %d", len(info.Modules)+1)
		}
		info.Modules = append(info.Modules, RAMModule{
			BankLabel: bank,
			Size:      bytesToGB(sizeBytes),
			Speed:     mhzString(uint64(m.Speed)),
		})
	}

	if totalBytes > 0 {
		info.Total = bytesToGB(totalBytes)
		info.SlotsUsed = strconv.Itoa(len(info.Modules))
	}
	return info
}

// memoryDeviceSizeMB decodes the SMBIOS memory device size field: 0 means an
// empty slot, 0xFFFF unknown, 0x7FFF redirects to the extended size field.
func memoryDeviceSizeMB(size uint16, extended uint32) (uint64, bool) {
	switch size {
	case 0, 0xFFFF:
		return 0, false
	case 0x7FFF:
		return uint64(extended), true
	default:
		return uint64(size), true
	}
}

// splitCPUBrand splits a raw processor name into vendor brand and model,
// recognising the two vendors bench machines actually carry.
func splitCPUBrand(full string) (brand, model string) {
	switch {
	case full == "":
		return "", ""
	case strings.Contains(full, "Intel"):
		return "Intel", strings.TrimSpace(strings.ReplaceAll(full, "Intel", ""))
	case strings.Contains(full, "AMD"):
		return "AMD", strings.TrimSpace(strings.ReplaceAll(full, "AMD", ""))
	default:
		return "", full
	}
}
