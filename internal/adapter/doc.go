// Package adapter implements the reachability probers used by the inventory
// pipeline.
//
// A Prober answers one question: is TCP port P open on address A right now?
// It never returns an error. Every failure (timeout, refused connection,
// resolution failure, missing scanner, malformed port, ambiguous scan result)
// is folded into "not open" so that an endpoint that cannot be probed is
// routed to the unreachable sidecar instead of aborting the run.
//
// # Backends
//
// NmapProber runs a single-port connect scan through the nmap binary with
// host discovery skipped (-Pn), so ICMP reachability is never required.
//
// TCPProber dials the endpoint directly with a bounded timeout.
//
// SSHProber dials the endpoint and requires the peer to present an SSH host
// key. It stops right after key exchange and never authenticates.
//
// NewProber selects a backend by name and falls back to TCPProber when the
// nmap binary is not installed.
//
// # Failure classes
//
// Classify maps probe errors to a FailureClass. Expected classes are logged
// at debug level; anything else is logged as a warning so genuine defects
// stay visible while the result is still "not open".
package adapter
