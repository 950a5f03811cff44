package adapter

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"

	"siteinventory/internal/logger"
)

// NmapProber checks a single TCP port per call using the nmap binary
type NmapProber struct {
	timeout     time.Duration
	timing      nmap.Timing
	connectScan bool
	binaryPath  string
	log         *logger.Logger

	once      sync.Once
	available bool
}

// NewNmapProber creates an nmap-backed prober. Host discovery is always
// skipped (-Pn): only the TCP state of the requested port matters.
func NewNmapProber(log *logger.Logger, opts ...NmapOption) *NmapProber {
	if log == nil {
		log = logger.Nop()
	}
	prober := &NmapProber{
		timeout:     DefaultTimeout,
		timing:      nmap.TimingAggressive,
		connectScan: true, // -sT works without root
		log:         log,
	}

	for _, opt := range opts {
		opt(prober)
	}

	return prober
}

// Name returns the backend identifier
func (n *NmapProber) Name() string {
	return "nmap"
}

// Available reports whether the nmap binary can run. The check runs once.
func (n *NmapProber) Available(ctx context.Context) bool {
	n.once.Do(func() {
		opts := []nmap.Option{
			nmap.WithTargets("localhost"),
			nmap.WithListScan(),
		}
		if n.binaryPath != "" {
			opts = append(opts, nmap.WithBinaryPath(n.binaryPath))
		}
		scanner, err := nmap.NewScanner(ctx, opts...)
		if err != nil {
			n.log.Debug("nmap unavailable", "error", err)
			return
		}
		if _, _, err = scanner.Run(); err != nil {
			n.log.Debug("nmap list scan failed", "error", err)
			return
		}
		n.available = true
	})
	return n.available
}

// Probe runs a connect scan of address:port
func (n *NmapProber) Probe(ctx context.Context, address string, port int) bool {
	return runProbe(ctx, n.log, n.Name(), n.timeout, address, port, n.scan)
}

func (n *NmapProber) scan(ctx context.Context, address string, port int) (bool, error) {
	opts := []nmap.Option{
		nmap.WithTargets(address),
		nmap.WithPorts(strconv.Itoa(port)),
		nmap.WithSkipHostDiscovery(),
		nmap.WithTimingTemplate(n.timing),
	}
	if n.connectScan {
		opts = append(opts, nmap.WithConnectScan())
	}
	if n.binaryPath != "" {
		opts = append(opts, nmap.WithBinaryPath(n.binaryPath))
	}

	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return false, fmt.Errorf("create scanner: %w", err)
	}

	result, warnings, err := scanner.Run()
	if warnings != nil && len(*warnings) > 0 {
		n.log.Debug("nmap warnings", "target", address, "port", port, "warnings", *warnings)
	}
	if err != nil {
		return false, fmt.Errorf("scan %s:%d: %w", address, port, err)
	}

	return portOpen(result, port)
}

// portOpen extracts the state of a single TCP port from a scan result
func portOpen(result *nmap.Run, port int) (bool, error) {
	if result == nil {
		return false, fmt.Errorf("nil scan result: %w", ErrAmbiguousResult)
	}

	for _, host := range result.Hosts {
		for _, p := range host.Ports {
			if int(p.ID) != port || (p.Protocol != "" && p.Protocol != "tcp") {
				continue
			}
			return p.State.State == "open", nil
		}
	}

	return false, fmt.Errorf("port %d (%d hosts): %w", port, len(result.Hosts), ErrAmbiguousResult)
}
