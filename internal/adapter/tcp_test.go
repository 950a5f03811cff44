package adapter

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listen starts a loopback listener that accepts and drops connections
func listen(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

// closedPort returns a loopback port with nothing listening on it
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestTCPProber(t *testing.T) {
	host, port := listen(t)
	p := NewTCPProber(nil, time.Second)

	assert.Equal(t, "tcp", p.Name())
	assert.True(t, p.Probe(context.Background(), host, port))
	assert.False(t, p.Probe(context.Background(), "127.0.0.1", closedPort(t)))
}

func TestTCPProber_InvalidInput(t *testing.T) {
	p := NewTCPProber(nil, time.Second)

	assert.False(t, p.Probe(context.Background(), "127.0.0.1", 0))
	assert.False(t, p.Probe(context.Background(), "127.0.0.1", 70000))
	assert.False(t, p.Probe(context.Background(), "", 22))
	assert.False(t, p.Probe(context.Background(), "host.invalid", 22))
}

func TestTCPProber_CancelledContext(t *testing.T) {
	host, port := listen(t)
	p := NewTCPProber(nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, p.Probe(ctx, host, port))
}

func TestNewTCPProber_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewTCPProber(nil, 0).timeout)
}
