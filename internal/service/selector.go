package service

import (
	"context"
	"strings"

	"siteinventory/internal/adapter"
	"siteinventory/internal/domain"
	"siteinventory/internal/logger"
)

// Selection is the outcome of evaluating one record
type Selection struct {
	Group    string
	Selected bool
	// Slot is the label of the chosen slot
	Slot  string
	Entry domain.HostEntry
	// Reason is set when nothing was selected
	Reason domain.UnreachableReason
}

// Selector picks the first reachable slot of a record
type Selector struct {
	prober adapter.Prober
	log    *logger.Logger
}

// NewSelector creates a selector probing through prober
func NewSelector(prober adapter.Prober, log *logger.Logger) *Selector {
	if log == nil {
		log = logger.Nop()
	}
	return &Selector{prober: prober, log: log}
}

// Select evaluates slots in order, skipping unusable ones. The first slot
// whose port is open wins and no later slot is probed. A malformed port
// counts as not open. When ctx is done before a slot could be probed, the
// record is reported as not probed.
func (s *Selector) Select(ctx context.Context, rec domain.SiteRecord) Selection {
	sel := Selection{Group: rec.Group()}
	usable := false

	for _, slot := range rec.Slots {
		if !slot.Usable() {
			continue
		}
		usable = true
		if ctx.Err() != nil {
			break
		}

		port, err := adapter.ParsePort(slot.Port)
		if err != nil {
			s.log.Warning("malformed port, slot treated as not open",
				"line", rec.Line, "name", rec.Name, "slot", slot.Label, "error", err)
			continue
		}

		address := strings.TrimSpace(slot.Address)
		if s.prober.Probe(ctx, address, port) {
			sel.Selected = true
			sel.Slot = slot.Label
			sel.Entry = domain.HostEntry{Address: address, Port: port}
			s.log.Debug("slot selected", "line", rec.Line, "group", sel.Group, "slot", slot.Label, "endpoint", sel.Entry.Endpoint())
			return sel
		}
		s.log.Debug("slot not reachable", "line", rec.Line, "name", rec.Name, "slot", slot.Label)
	}

	switch {
	case !usable:
		sel.Reason = domain.ReasonNoUsableSlot
	case ctx.Err() != nil:
		sel.Reason = domain.ReasonNotProbed
	default:
		sel.Reason = domain.ReasonNotReachable
	}
	return sel
}
