package diagtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMounts(t *testing.T) {
	data := `/dev/nvme0n1p2 / ext4 rw,relatime 0 0
/dev/sdb1 /media/tech/STICK vfat rw,nosuid 0 0
tmpfs /run tmpfs rw,nosuid,nodev 0 0
malformed`

	mounts := parseMounts(data)
	require.Len(t, mounts, 3)

	assert.Equal(t, "/dev/sdb1", mounts[1].device)
	assert.Equal(t, "/media/tech/STICK", mounts[1].mountPoint)
	assert.Equal(t, "vfat", mounts[1].fsType)
}

func TestUnescapeMountPath(t *testing.T) {
	// /proc/mounts escapes spaces as \040.
	assert.Equal(t, "/media/tech/MY STICK", unescapeMountPath(`/media/tech/MY\040STICK`))
	assert.Equal(t, "/plain/path", unescapeMountPath("/plain/path"))
	// A trailing backslash without a full octal triple stays literal.
	assert.Equal(t, `/odd\`, unescapeMountPath(`/odd\`))
}
