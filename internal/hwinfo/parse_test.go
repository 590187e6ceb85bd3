package hwinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLsblkDisks(t *testing.T) {
	out := `sda  500107862016 0 disk Samsung SSD 860 EVO 500GB
sdb  2000398934016 1 disk WDC WD20EZRZ-00Z
sr0  1073741312 1 rom  DVD-RW
loop0 4096 0 loop`

	disks := parseLsblkDisks(out)
	require.Len(t, disks, 2)

	assert.Equal(t, "Samsung SSD 860 EVO 500GB", disks[0].Model)
	assert.Equal(t, "465.76 GB", disks[0].Size)
	assert.Equal(t, "SSD", disks[0].Type)

	assert.Equal(t, "WDC WD20EZRZ-00Z", disks[1].Model)
	assert.Equal(t, "HDD", disks[1].Type)
}

func TestParseLsblkDisksMissingModel(t *testing.T) {
	disks := parseLsblkDisks("nvme0n1 1024209543168 0 disk")
	require.Len(t, disks, 1)
	assert.Equal(t, NotAvailable, disks[0].Model)
	assert.Equal(t, "SSD", disks[0].Type)
}

func TestParseLspciGPUs(t *testing.T) {
	out := `00:02.0 VGA compatible controller: Intel Corporation UHD Graphics 620 (rev 07)
00:14.0 USB controller: Intel Corporation Sunrise Point-LP USB 3.0
01:00.0 3D controller: NVIDIA Corporation GP108M [GeForce MX150] (rev a1)`

	gpus := parseLspciGPUs(out)
	require.Len(t, gpus, 2)
	assert.Equal(t, "Intel Corporation UHD Graphics 620 (rev 07)", gpus[0].Model)
	assert.Equal(t, "NVIDIA Corporation GP108M [GeForce MX150] (rev a1)", gpus[1].Model)
}

func TestParseXrandrResolution(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want string
	}{
		{
			name: "primary output wins",
			out: `HDMI-1 connected 1920x1080+1366+0 (normal left inverted) 509mm x 286mm
eDP-1 connected primary 1366x768+0+0 (normal left inverted) 309mm x 173mm`,
			want: "1366x768",
		},
		{
			name: "first connected without primary",
			out:  `HDMI-1 connected 2560x1440+0+0 (normal) 597mm x 336mm`,
			want: "2560x1440",
		},
		{
			name: "disconnected outputs ignored",
			out:  `VGA-1 disconnected (normal left inverted right x axis y axis)`,
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseXrandrResolution(tc.out))
		})
	}
}

func TestParseBluetoothShow(t *testing.T) {
	out := `Controller AA:BB:CC:DD:EE:FF (public)
	Name: thinkpad
	Alias: Intel AX201 Bluetooth
	Powered: yes
	Discoverable: no`

	name, powered := parseBluetoothShow(out)
	assert.Equal(t, "Intel AX201 Bluetooth", name)
	assert.True(t, powered)

	name, powered = parseBluetoothShow("Alias: hci0\nPowered: no")
	assert.Equal(t, "hci0", name)
	assert.False(t, powered)
}

func TestParseNmcliWiFi(t *testing.T) {
	out := `enp0s31f6:ethernet:connected:Wired connection 1
wlp2s0:wifi:connected:bench-net:5GHz
lo:loopback:unmanaged:`

	info := parseNmcliWiFi(out)
	assert.Equal(t, "wlp2s0", info.AdapterName)
	assert.Equal(t, "connected", info.AdapterStatus)
	// The connection name may itself contain colons.
	assert.Equal(t, "bench-net:5GHz", info.ConnectedSSID)
}

func TestParseNmcliWiFiDisconnected(t *testing.T) {
	info := parseNmcliWiFi("wlp2s0:wifi:disconnected:")
	assert.Equal(t, "wlp2s0", info.AdapterName)
	assert.Equal(t, "disconnected", info.AdapterStatus)
	assert.Equal(t, NotAvailable, info.ConnectedSSID)
}

func TestParseNmcliWiFiNoAdapter(t *testing.T) {
	info := parseNmcliWiFi("enp0s31f6:ethernet:connected:Wired connection 1")
	assert.Equal(t, NotAvailable, info.AdapterName)
	assert.Equal(t, NotAvailable, info.AdapterStatus)
}

func TestParseOSRelease(t *testing.T) {
	data := `NAME="Ubuntu"
VERSION="22.04.4 LTS (Jammy Jellyfish)"
PRETTY_NAME="Ubuntu 22.04.4 LTS"
ID=ubuntu`

	assert.Equal(t, "Ubuntu 22.04.4 LTS", parseOSRelease(data))
	assert.Equal(t, "", parseOSRelease("ID=debian"))
}
