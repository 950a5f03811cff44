package adapter

import (
	"context"
	"net"
	"strconv"
	"time"

	"siteinventory/internal/logger"
)

// TCPProber checks a port with a plain TCP connect. It needs no external
// binary and is the fallback when nmap is not installed.
type TCPProber struct {
	timeout time.Duration
	dialer  net.Dialer
	log     *logger.Logger
}

// NewTCPProber creates a connect-based prober
func NewTCPProber(log *logger.Logger, timeout time.Duration) *TCPProber {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TCPProber{timeout: timeout, log: log}
}

// Name returns the backend identifier
func (p *TCPProber) Name() string {
	return "tcp"
}

// Probe reports whether a TCP connection to address:port completes
func (p *TCPProber) Probe(ctx context.Context, address string, port int) bool {
	return runProbe(ctx, p.log, p.Name(), p.timeout, address, port, p.dial)
}

func (p *TCPProber) dial(ctx context.Context, address string, port int) (bool, error) {
	conn, err := p.dialer.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		return false, err
	}
	_ = conn.Close()
	return true, nil
}
