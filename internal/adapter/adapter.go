package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"

	"siteinventory/internal/logger"
)

// Prober checks TCP reachability of a single endpoint
type Prober interface {
	// Probe reports whether port is open on address. It never fails:
	// any error is reported as not open.
	Probe(ctx context.Context, address string, port int) bool
}

// ProberFunc adapts a function to the Prober interface
type ProberFunc func(ctx context.Context, address string, port int) bool

// Probe calls f
func (f ProberFunc) Probe(ctx context.Context, address string, port int) bool {
	return f(ctx, address, port)
}

// DefaultTimeout bounds a single probe attempt when none is configured
const DefaultTimeout = 2 * time.Second

var (
	// ErrInvalidPort is returned by ParsePort for non-numeric or out of range ports
	ErrInvalidPort = errors.New("invalid port")
	// ErrAmbiguousResult means a scan finished without reporting the port
	ErrAmbiguousResult = errors.New("scan result does not report the port")
	// ErrNotSSH means the peer accepted the connection but did not speak SSH
	ErrNotSSH = errors.New("peer did not complete an SSH key exchange")
)

// ParsePort converts a table cell into a TCP port number
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidPort, s)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("%w %d: out of range", ErrInvalidPort, port)
	}
	return port, nil
}

// FailureClass categorizes why a probe reported "not open"
type FailureClass string

const (
	FailureTimeout        FailureClass = "timeout"
	FailureRefused        FailureClass = "refused"
	FailureResolve        FailureClass = "resolve"
	FailureUnreachable    FailureClass = "unreachable"
	FailureCancelled      FailureClass = "cancelled"
	FailureScannerMissing FailureClass = "scanner-missing"
	FailureInvalidPort    FailureClass = "invalid-port"
	FailureAmbiguous      FailureClass = "ambiguous"
	FailureProtocol       FailureClass = "protocol"
	FailureUnexpected     FailureClass = "unexpected"
)

// Classify maps a probe error to its failure class. The boolean is false for
// FailureUnexpected, which callers should surface at warning level.
func Classify(err error) (FailureClass, bool) {
	var (
		dnsErr *net.DNSError
		netErr net.Error
	)
	switch {
	case err == nil:
		return "", true
	case errors.Is(err, context.Canceled):
		return FailureCancelled, true
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, nmap.ErrScanTimeout):
		return FailureTimeout, true
	case errors.Is(err, ErrInvalidPort):
		return FailureInvalidPort, true
	case errors.Is(err, nmap.ErrNmapNotInstalled), errors.Is(err, exec.ErrNotFound):
		return FailureScannerMissing, true
	case errors.Is(err, ErrAmbiguousResult):
		return FailureAmbiguous, true
	case errors.Is(err, ErrNotSSH):
		return FailureProtocol, true
	case errors.As(err, &dnsErr), errors.Is(err, nmap.ErrResolveName):
		return FailureResolve, true
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return FailureRefused, true
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return FailureUnreachable, true
	case errors.As(err, &netErr) && netErr.Timeout():
		return FailureTimeout, true
	}
	return FailureUnexpected, false
}

// checkFunc performs one probe attempt and reports errors as they are
type checkFunc func(ctx context.Context, address string, port int) (bool, error)

// runProbe runs check under a per-attempt timeout and folds every failure,
// including a panic inside check, into "not open"
func runProbe(ctx context.Context, log *logger.Logger, backend string, timeout time.Duration,
	address string, port int, check checkFunc) (open bool) {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	endpoint := net.JoinHostPort(address, strconv.Itoa(port))

	fail := func(err error) bool {
		class, expected := Classify(err)
		if expected {
			log.Debug("probe failed", "backend", backend, "endpoint", endpoint, "class", class, "error", err)
		} else {
			log.Warning("probe failed unexpectedly", "backend", backend, "endpoint", endpoint, "class", class, "error", err)
		}
		return false
	}

	if port < 1 || port > 65535 {
		return fail(fmt.Errorf("%w %d: out of range", ErrInvalidPort, port))
	}
	if strings.TrimSpace(address) == "" {
		return fail(&net.DNSError{Err: "empty address", Name: address, IsNotFound: true})
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			open = fail(fmt.Errorf("probe panic: %v", r))
		}
	}()

	start := time.Now()
	open, err := check(attemptCtx, address, port)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.Canceled):
			err = fmt.Errorf("%w: %w", context.Canceled, err)
		case errors.Is(attemptCtx.Err(), context.DeadlineExceeded):
			err = fmt.Errorf("%w after %s: %w", context.DeadlineExceeded, timeout, err)
		}
		return fail(err)
	}

	log.Debug("probe finished", "backend", backend, "endpoint", endpoint, "open", open, "elapsed", time.Since(start).Round(time.Millisecond))
	return open
}
