package adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"siteinventory/internal/logger"
)

// Options selects and configures a prober backend
type Options struct {
	// Backend is "nmap", "tcp" or "ssh"; empty means nmap
	Backend string
	// Timeout bounds a single probe attempt
	Timeout time.Duration
	// NmapPath overrides the nmap binary lookup
	NmapPath string
	Log      *logger.Logger
}

// NewProber builds the requested backend and returns it with the name of the
// backend actually in use. A missing nmap binary is not fatal: the TCP
// backend is used instead and a warning is logged.
func NewProber(ctx context.Context, opts Options) (Prober, string, error) {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", "nmap":
		nmapOpts := []NmapOption{WithTimeout(opts.Timeout)}
		if opts.NmapPath != "" {
			nmapOpts = append(nmapOpts, WithBinaryPath(opts.NmapPath))
		}
		prober := NewNmapProber(log, nmapOpts...)
		if prober.Available(ctx) {
			return prober, prober.Name(), nil
		}
		fallback := NewTCPProber(log, opts.Timeout)
		log.Warning("nmap not available, falling back to tcp connect probing")
		return fallback, fallback.Name(), nil
	case "tcp":
		prober := NewTCPProber(log, opts.Timeout)
		return prober, prober.Name(), nil
	case "ssh":
		prober := NewSSHProber(log, opts.Timeout)
		return prober, prober.Name(), nil
	}

	return nil, "", fmt.Errorf("unknown probe backend %q", opts.Backend)
}
