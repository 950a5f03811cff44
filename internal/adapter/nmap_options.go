package adapter

import (
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
)

// NmapOption is a functional option for configuring NmapProber
type NmapOption func(*NmapProber)

// WithTimeout bounds each single-port scan, including nmap start-up
func WithTimeout(d time.Duration) NmapOption {
	return func(n *NmapProber) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// WithTiming sets the nmap timing template (-T0 .. -T5)
func WithTiming(t nmap.Timing) NmapOption {
	return func(n *NmapProber) {
		n.timing = t
	}
}

// WithConnectScan toggles -sT. Disabling it lets nmap pick its default scan
// type, which is a SYN scan when running as root.
func WithConnectScan(enabled bool) NmapOption {
	return func(n *NmapProber) {
		n.connectScan = enabled
	}
}

// WithBinaryPath points at a specific nmap binary instead of $PATH
func WithBinaryPath(path string) NmapOption {
	return func(n *NmapProber) {
		n.binaryPath = path
	}
}
