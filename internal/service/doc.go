// Package service runs the inventory pipeline.
//
// Pipeline.Run loads the site table, probes every row on a bounded worker
// pool, folds the selections into an inventory in input order and hands the
// result to the report writer.
//
// # Selection
//
// Selector evaluates the slots of a row in order (Primary, then Secondary by
// default). Unusable slots are skipped, the first open slot is selected and
// no later slot is probed. Rows with no selection go to the unreachable
// sidecar with a reason: no usable slot, not reachable, or not probed when
// the probe deadline expired first.
//
// # Errors
//
// Only two conditions end a run: ErrInputNotFound (nothing is written) and
// ErrOutputWrite. Probe failures and malformed cells are handled per row.
//
// # Events
//
// Row outcomes and the final Result are published on the pipeline's
// EventBus. Publishing never blocks a probe worker; slow subscribers miss
// events.
package service
