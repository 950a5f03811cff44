package service

import (
	"context"
	"fmt"
	"sync"
)

// scriptedProber answers from a fixed address:port table and records calls.
// Endpoints listed in block wait for ctx to end and report not open.
type scriptedProber struct {
	open  map[string]bool
	block map[string]bool

	mu    sync.Mutex
	calls []string
}

func newScriptedProber(open ...string) *scriptedProber {
	p := &scriptedProber{open: make(map[string]bool), block: make(map[string]bool)}
	for _, ep := range open {
		p.open[ep] = true
	}
	return p
}

func (p *scriptedProber) Probe(ctx context.Context, address string, port int) bool {
	ep := fmt.Sprintf("%s:%d", address, port)

	p.mu.Lock()
	p.calls = append(p.calls, ep)
	p.mu.Unlock()

	if p.block[ep] {
		<-ctx.Done()
		return false
	}
	return p.open[ep]
}

func (p *scriptedProber) called(ep string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.calls {
		if c == ep {
			return true
		}
	}
	return false
}
