// Package domain defines the core types of the site inventory generator.
//
// # Core Types
//
// SiteRecord is one row of the input table: a display name and an ordered list
// of endpoint slots (Primary, Secondary) plus the verbatim row for re-triage.
//
// Inventory is the Ansible inventory under construction: a root group holding
// ordered connection vars and one child group per sanitized site name.
//
// # Design Principles
//
// - No I/O, no network, no external dependencies beyond encoding tags
// - Deterministic: the same input order yields the same inventory order
package domain
