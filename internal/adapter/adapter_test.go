package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"syscall"
	"testing"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siteinventory/internal/logger"
)

func TestParsePort(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "22", want: 22},
		{in: " 2222 ", want: 2222},
		{in: "1", want: 1},
		{in: "65535", want: 65535},
		{in: "0", wantErr: true},
		{in: "65536", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "ssh", wantErr: true},
		{in: "22.0", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePort(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPort)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		want         FailureClass
		wantExpected bool
	}{
		{"cancelled", fmt.Errorf("dial: %w", context.Canceled), FailureCancelled, true},
		{"deadline", context.DeadlineExceeded, FailureTimeout, true},
		{"nmap timeout", nmap.ErrScanTimeout, FailureTimeout, true},
		{"net timeout", &net.OpError{Op: "dial", Err: timeoutErr{}}, FailureTimeout, true},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, FailureRefused, true},
		{"unreachable", &net.OpError{Op: "dial", Err: syscall.EHOSTUNREACH}, FailureUnreachable, true},
		{"resolve", &net.DNSError{Err: "no such host", Name: "x.invalid", IsNotFound: true}, FailureResolve, true},
		{"nmap missing", nmap.ErrNmapNotInstalled, FailureScannerMissing, true},
		{"exec missing", &exec.Error{Name: "nmap", Err: exec.ErrNotFound}, FailureScannerMissing, true},
		{"invalid port", fmt.Errorf("%w 0", ErrInvalidPort), FailureInvalidPort, true},
		{"ambiguous", ErrAmbiguousResult, FailureAmbiguous, true},
		{"not ssh", ErrNotSSH, FailureProtocol, true},
		{"unexpected", errors.New("boom"), FailureUnexpected, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, expected := Classify(tt.err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantExpected, expected)
		})
	}
}

func TestRunProbe_FailsClosed(t *testing.T) {
	ctx := context.Background()

	t.Run("error", func(t *testing.T) {
		open := runProbe(ctx, logger.Nop(), "test", time.Second, "127.0.0.1", 22,
			func(context.Context, string, int) (bool, error) { return true, errors.New("boom") })
		assert.False(t, open)
	})

	t.Run("panic", func(t *testing.T) {
		open := runProbe(ctx, logger.Nop(), "test", time.Second, "127.0.0.1", 22,
			func(context.Context, string, int) (bool, error) { panic("scanner exploded") })
		assert.False(t, open)
	})

	t.Run("invalid port skips check", func(t *testing.T) {
		called := false
		open := runProbe(ctx, logger.Nop(), "test", time.Second, "127.0.0.1", 0,
			func(context.Context, string, int) (bool, error) { called = true; return true, nil })
		assert.False(t, open)
		assert.False(t, called)
	})

	t.Run("attempt timeout", func(t *testing.T) {
		open := runProbe(ctx, logger.Nop(), "test", 20*time.Millisecond, "127.0.0.1", 22,
			func(ctx context.Context, _ string, _ int) (bool, error) {
				<-ctx.Done()
				return false, ctx.Err()
			})
		assert.False(t, open)
	})

	t.Run("open", func(t *testing.T) {
		open := runProbe(ctx, logger.Nop(), "test", time.Second, "127.0.0.1", 22,
			func(context.Context, string, int) (bool, error) { return true, nil })
		assert.True(t, open)
	})
}

func TestProberFunc(t *testing.T) {
	var p Prober = ProberFunc(func(_ context.Context, address string, port int) bool {
		return address == "10.0.0.1" && port == 22
	})
	assert.True(t, p.Probe(context.Background(), "10.0.0.1", 22))
	assert.False(t, p.Probe(context.Background(), "10.0.0.1", 23))
}

func TestNewProber(t *testing.T) {
	ctx := context.Background()

	p, name, err := NewProber(ctx, Options{Backend: "tcp", Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "tcp", name)
	assert.IsType(t, &TCPProber{}, p)

	p, name, err = NewProber(ctx, Options{Backend: "SSH"})
	require.NoError(t, err)
	assert.Equal(t, "ssh", name)
	assert.IsType(t, &SSHProber{}, p)

	_, _, err = NewProber(ctx, Options{Backend: "icmp"})
	assert.Error(t, err)
}

func TestNewProber_NmapFallback(t *testing.T) {
	p, name, err := NewProber(context.Background(), Options{Backend: "nmap", NmapPath: "/nonexistent/nmap"})
	require.NoError(t, err)
	assert.Equal(t, "tcp", name)
	assert.IsType(t, &TCPProber{}, p)
}
