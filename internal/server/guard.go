// Package server holds the single-instance guard and the local status
// endpoint that rides on the guard's listener.
package server

import (
	"errors"
	"fmt"
	"net"
)

// ErrAlreadyRunning reports that the guard port is held by another instance.
// Callers treat this as a clean "nothing to do" exit, not a failure.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Guard holds the loopback port that enforces one running instance per
// machine. The listener stays open for the process lifetime; the operating
// system releases it on any exit path, including crashes.
type Guard struct {
	lis net.Listener
}

// Acquire binds the loopback guard port. A bind failure means another
// instance owns the port and is reported as ErrAlreadyRunning.
func Acquire(port int) (*Guard, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w (port %d)", ErrAlreadyRunning, port)
	}
	return &Guard{lis: lis}, nil
}

// Listener exposes the bound listener so the status server can serve on it.
func (g *Guard) Listener() net.Listener {
	return g.lis
}

// Release closes the guard listener.
func (g *Guard) Release() error {
	if g.lis == nil {
		return nil
	}
	return g.lis.Close()
}
