package adapter

import (
	"context"
	"testing"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNmapProber_Options(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := NewNmapProber(nil)
		assert.Equal(t, DefaultTimeout, p.timeout)
		assert.Equal(t, nmap.TimingAggressive, p.timing)
		assert.True(t, p.connectScan)
		assert.Empty(t, p.binaryPath)
		assert.Equal(t, "nmap", p.Name())
	})

	t.Run("WithTimeout", func(t *testing.T) {
		p := NewNmapProber(nil, WithTimeout(500*time.Millisecond))
		assert.Equal(t, 500*time.Millisecond, p.timeout)
	})

	t.Run("WithTimeout ignores non-positive", func(t *testing.T) {
		p := NewNmapProber(nil, WithTimeout(0))
		assert.Equal(t, DefaultTimeout, p.timeout)
	})

	t.Run("WithTiming", func(t *testing.T) {
		p := NewNmapProber(nil, WithTiming(nmap.TimingPolite))
		assert.Equal(t, nmap.TimingPolite, p.timing)
	})

	t.Run("WithConnectScan", func(t *testing.T) {
		p := NewNmapProber(nil, WithConnectScan(false))
		assert.False(t, p.connectScan)
	})

	t.Run("WithBinaryPath", func(t *testing.T) {
		p := NewNmapProber(nil, WithBinaryPath("/opt/nmap/bin/nmap"))
		assert.Equal(t, "/opt/nmap/bin/nmap", p.binaryPath)
	})
}

func TestPortOpen(t *testing.T) {
	result := &nmap.Run{
		Hosts: []nmap.Host{
			{
				Addresses: []nmap.Address{{Addr: "192.0.2.10", AddrType: "ipv4"}},
				Status:    nmap.Status{State: "up"},
				Ports: []nmap.Port{
					{ID: 22, Protocol: "tcp", State: nmap.State{State: "open"}},
					{ID: 80, Protocol: "tcp", State: nmap.State{State: "closed"}},
					{ID: 443, Protocol: "tcp", State: nmap.State{State: "filtered"}},
					{ID: 53, Protocol: "udp", State: nmap.State{State: "open"}},
				},
			},
		},
	}

	tests := []struct {
		name    string
		port    int
		want    bool
		wantErr error
	}{
		{name: "open", port: 22, want: true},
		{name: "closed", port: 80, want: false},
		{name: "filtered", port: 443, want: false},
		{name: "udp only", port: 53, wantErr: ErrAmbiguousResult},
		{name: "not reported", port: 8080, wantErr: ErrAmbiguousResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open, err := portOpen(result, tt.port)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, open)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, open)
		})
	}
}

func TestPortOpen_NoHosts(t *testing.T) {
	_, err := portOpen(&nmap.Run{}, 22)
	assert.ErrorIs(t, err, ErrAmbiguousResult)

	_, err = portOpen(nil, 22)
	assert.ErrorIs(t, err, ErrAmbiguousResult)
}

func TestNmapProber_MissingBinary(t *testing.T) {
	p := NewNmapProber(nil, WithBinaryPath("/nonexistent/nmap"), WithTimeout(time.Second))

	assert.False(t, p.Available(context.Background()))
	assert.False(t, p.Probe(context.Background(), "127.0.0.1", 22))
}
