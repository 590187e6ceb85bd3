package hwinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytesToGB(t *testing.T) {
	assert.Equal(t, "8.00 GB", bytesToGB(8*1024*1024*1024))
	assert.Equal(t, "0.50 GB", bytesToGB(512*1024*1024))
	assert.Equal(t, "0.00 GB", bytesToGB(0))
	// Rounding keeps exactly two decimals.
	assert.Equal(t, "465.76 GB", bytesToGB(500107862016))
}

func TestMhzString(t *testing.T) {
	assert.Equal(t, "3200 MHz", mhzString(3200))
}

func TestOrNotAvailable(t *testing.T) {
	assert.Equal(t, "value", orNotAvailable(" value "))
	assert.Equal(t, NotAvailable, orNotAvailable(""))
	assert.Equal(t, NotAvailable, orNotAvailable("   "))
}

func TestMemoryDeviceSizeMB(t *testing.T) {
	tests := []struct {
		name     string
		size     uint16
		extended uint32
		wantMB   uint64
		wantOK   bool
	}{
		{"empty slot", 0, 0, 0, false},
		{"unknown", 0xFFFF, 0, 0, false},
		{"plain size", 8192, 0, 8192, true},
		{"extended size", 0x7FFF, 65536, 65536, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mb, ok := memoryDeviceSizeMB(tc.size, tc.extended)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantMB, mb)
		})
	}
}

func TestSplitCPUBrand(t *testing.T) {
	brand, model := splitCPUBrand("Intel(R) Core(TM) i7-8550U CPU @ 1.80GHz")
	assert.Equal(t, "Intel", brand)
	assert.Equal(t, "(R) Core(TM) i7-8550U CPU @ 1.80GHz", model)

	brand, model = splitCPUBrand("AMD Ryzen 7 5800X 8-Core Processor")
	assert.Equal(t, "AMD", brand)
	assert.Equal(t, "Ryzen 7 5800X 8-Core Processor", model)

	brand, model = splitCPUBrand("Unknown CPU")
	assert.Equal(t, "", brand)
	assert.Equal(t, "Unknown CPU", model)

	brand, model = splitCPUBrand("")
	assert.Equal(t, "", brand)
	assert.Equal(t, "", model)
}
