package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"siteinventory/internal/adapter"
	"siteinventory/internal/codec"
	"siteinventory/internal/config"
	"siteinventory/internal/domain"
	"siteinventory/internal/loader"
	"siteinventory/internal/logger"
	"siteinventory/internal/report"
)

// Result summarizes a finished run
type Result struct {
	InventoryPath string `json:"inventory_path"`
	// UnreachablePath is empty when every row was placed
	UnreachablePath string `json:"unreachable_path,omitempty"`

	Rows        int            `json:"rows"`
	Selected    int            `json:"selected"`
	BySlot      map[string]int `json:"by_slot"`
	Unreachable int            `json:"unreachable"`
	NotProbed   int            `json:"not_probed"`
	Groups      int            `json:"groups"`
	Hosts       int            `json:"hosts"`
	Duration    time.Duration  `json:"duration"`
}

// ViaPrimary returns how many rows were placed through the primary slot
func (r *Result) ViaPrimary() int { return r.BySlot[domain.SlotPrimary] }

// ViaSecondary returns how many rows were placed through the secondary slot
func (r *Result) ViaSecondary() int { return r.BySlot[domain.SlotSecondary] }

// Pipeline reads the site table, probes every row and writes the artifacts
type Pipeline struct {
	cfg    *config.Config
	prober adapter.Prober
	log    *logger.Logger
	events *EventBus
}

// NewPipeline creates a pipeline. cfg must already carry defaults.
func NewPipeline(cfg *config.Config, prober adapter.Prober, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		cfg:    cfg,
		prober: prober,
		log:    log,
		events: NewEventBus(),
	}
}

// Events returns the bus on which row outcomes and the final result are
// published
func (p *Pipeline) Events() *EventBus {
	return p.events
}

// Run processes the table at inputPath (the configured input when empty).
// Probing is bounded by probe.concurrency; rows are aggregated in input
// order once probing is over, so the output does not depend on probe
// timing. When probe.deadline expires, rows not yet resolved are reported
// as not probed and the artifacts are still written. Cancelling ctx aborts
// the run without writing anything.
func (p *Pipeline) Run(ctx context.Context, inputPath string) (*Result, error) {
	start := time.Now()

	cfg := *p.cfg
	if inputPath != "" {
		cfg.Input.Path = inputPath
	}

	table, err := loader.ReadTable(cfg.Input.Path, loaderOptions(&cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputNotFound, err)
	}
	if len(table.Missing) > 0 {
		p.log.Warning("expected columns missing from header, treated as empty",
			"input", cfg.Input.Path, "missing", table.Missing)
	}
	p.log.Info("input loaded", "input", cfg.Input.Path, "rows", len(table.Records))

	selections := p.probe(ctx, &cfg, table.Records)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run aborted: %w", err)
	}

	inv := domain.NewInventory(cfg.Inventory.RootGroup, domain.Vars(cfg.Inventory.Vars))
	if cfg.Inventory.HostSuffix != "" {
		inv.HostSuffix = cfg.Inventory.HostSuffix
	}

	result := &Result{
		Rows:   len(table.Records),
		BySlot: make(map[string]int),
	}
	var unreachable []domain.UnreachableRecord
	for i, sel := range selections {
		rec := table.Records[i]
		if !sel.Selected {
			unreachable = append(unreachable, domain.UnreachableRecord{Record: rec, Reason: sel.Reason})
			if sel.Reason == domain.ReasonNotProbed {
				result.NotProbed++
			}
			continue
		}
		key := inv.AddHost(sel.Group, sel.Entry)
		result.Selected++
		result.BySlot[sel.Slot]++
		p.log.Debug("host added", "line", rec.Line, "group", sel.Group, "host", key)
	}
	result.Unreachable = len(unreachable)
	result.Groups = len(inv.Groups())
	result.Hosts = inv.HostCount()

	for _, u := range unreachable {
		p.log.Info("row not placed", "line", u.Record.Line, "name", u.Record.Name, "reason", u.Reason)
	}
	if result.NotProbed > 0 {
		p.log.Warning("probe deadline reached before every row was probed",
			"deadline", cfg.Probe.Deadline.Duration(), "not_probed", result.NotProbed)
	}

	exporter, err := codec.ForFormat(cfg.Output.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	writer := report.NewWriter(exporter, loaderOptions(&cfg).Delimiter, p.log)

	result.InventoryPath = cfg.InventoryPath()
	if err := writer.WriteInventory(result.InventoryPath, inv); err != nil {
		return nil, fmt.Errorf("%w: inventory: %w", ErrOutputWrite, err)
	}

	result.UnreachablePath, err = writer.WriteUnreachable(cfg.UnreachablePath(), table.Header, unreachable)
	if err != nil {
		// the inventory is already in place and is not rolled back
		return result, fmt.Errorf("%w: unreachable sidecar: %w", ErrOutputWrite, err)
	}

	result.Duration = time.Since(start)
	p.log.Info("run finished", "rows", result.Rows, "selected", result.Selected,
		"unreachable", result.Unreachable, "groups", result.Groups, "elapsed", result.Duration.Round(time.Millisecond))
	p.events.Publish(Event{Type: EventRunFinished, Payload: result})

	return result, nil
}

// probe runs the selector over every record on a bounded pool. Each worker
// writes only its own slot of the returned slice.
func (p *Pipeline) probe(ctx context.Context, cfg *config.Config, records []domain.SiteRecord) []Selection {
	probeCtx := ctx
	if d := cfg.Probe.Deadline.Duration(); d > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeoutCause(ctx, d, errDeadline)
		defer cancel()
	}

	selector := NewSelector(p.prober, p.log)
	selections := make([]Selection, len(records))
	total := len(records)
	var completed atomic.Int64

	workers := pool.New().WithMaxGoroutines(max(cfg.Probe.Concurrency, 1))
	for i, rec := range records {
		workers.Go(func() {
			sel := selector.Select(probeCtx, rec)
			selections[i] = sel

			outcome := RowOutcome{
				Line:      rec.Line,
				Name:      rec.Name,
				Group:     sel.Group,
				Slot:      sel.Slot,
				Reason:    string(sel.Reason),
				Completed: int(completed.Add(1)),
				Total:     total,
			}
			if sel.Selected {
				outcome.Endpoint = sel.Entry.Endpoint()
			}
			p.events.Publish(Event{Type: EventRowResolved, Payload: outcome})
		})
	}
	workers.Wait()

	if errors.Is(context.Cause(probeCtx), errDeadline) {
		p.log.Debug("probe deadline expired", "deadline", cfg.Probe.Deadline.Duration())
	}
	return selections
}

var errDeadline = errors.New("probe deadline reached")

func loaderOptions(cfg *config.Config) loader.Options {
	opts := loader.Options{
		Delimiter:     ',',
		Encoding:      cfg.Input.Encoding,
		NameColumn:    cfg.Input.Columns.Name,
		Slots:         cfg.Input.Columns.Slots,
		AddressSuffix: cfg.Input.Columns.AddressSuffix,
		PortSuffix:    cfg.Input.Columns.PortSuffix,
	}
	if r := []rune(cfg.Input.Delimiter); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	return opts
}
