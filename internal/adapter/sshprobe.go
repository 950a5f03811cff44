package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/ssh"

	"siteinventory/internal/logger"
)

// errHostKeySeen aborts the handshake once the server has proven it speaks SSH
var errHostKeySeen = errors.New("host key received")

// SSHProber treats an endpoint as reachable only when it completes the SSH
// key exchange. No authentication is attempted: the handshake is aborted as
// soon as the server presents its host key.
type SSHProber struct {
	timeout time.Duration
	user    string
	dialer  net.Dialer
	log     *logger.Logger
}

// NewSSHProber creates a handshake-based prober
func NewSSHProber(log *logger.Logger, timeout time.Duration) *SSHProber {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SSHProber{timeout: timeout, user: "probe", log: log}
}

// Name returns the backend identifier
func (p *SSHProber) Name() string {
	return "ssh"
}

// Probe reports whether address:port answers an SSH key exchange
func (p *SSHProber) Probe(ctx context.Context, address string, port int) bool {
	return runProbe(ctx, p.log, p.Name(), p.timeout, address, port, p.handshake)
}

func (p *SSHProber) handshake(ctx context.Context, address string, port int) (bool, error) {
	addr := net.JoinHostPort(address, strconv.Itoa(port))

	conn, err := p.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	var keyType atomic.Value
	config := &ssh.ClientConfig{
		User: p.user,
		HostKeyCallback: func(_ string, _ net.Addr, key ssh.PublicKey) error {
			keyType.Store(key.Type())
			return errHostKeySeen
		},
		Timeout: p.timeout,
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err == nil {
		// only reachable if the callback stopped being consulted
		_ = ssh.NewClient(sshConn, chans, reqs).Close()
		return true, nil
	}

	if kt, ok := keyType.Load().(string); ok {
		p.log.Debug("ssh host key received", "endpoint", addr, "key_type", kt)
		return true, nil
	}
	if ctx.Err() != nil {
		return false, fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	return false, fmt.Errorf("%w: %w", ErrNotSSH, err)
}
