package server

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	require.NoError(t, lis.Close())
	return port
}

func TestGuardAcquireAndRelease(t *testing.T) {
	port := freePort(t)

	g, err := Acquire(port)
	require.NoError(t, err)
	require.NotNil(t, g.Listener())

	// A second acquire on the same port reports the running instance.
	_, err = Acquire(port)
	require.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, g.Release())

	// After release the port is free again.
	g2, err := Acquire(port)
	require.NoError(t, err)
	assert.NoError(t, g2.Release())
}
