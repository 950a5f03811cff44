package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Default slot labels, evaluated in this order
const (
	SlotPrimary   = "Primary"
	SlotSecondary = "Secondary"
)

// Slot is one labeled endpoint candidate on an input row
type Slot struct {
	Label   string
	Address string
	Port    string
}

// Usable reports whether both address and port are present
func (s Slot) Usable() bool {
	return strings.TrimSpace(s.Address) != "" && strings.TrimSpace(s.Port) != ""
}

// String returns address:port for logging
func (s Slot) String() string {
	return fmt.Sprintf("%s %s:%s", s.Label, s.Address, s.Port)
}

// SiteRecord is one input row
type SiteRecord struct {
	// Line is the 1-based line number in the input table (header is line 1)
	Line  int
	Name  string
	Slots []Slot
	// Row holds the original fields verbatim, in header order
	Row []string
}

// Group returns the sanitized group key for this record
func (r SiteRecord) Group() string {
	return Sanitize(r.Name)
}

// HostEntry is a reachable endpoint bound to a group
type HostEntry struct {
	Address string `yaml:"ansible_host" json:"ansible_host"`
	Port    int    `yaml:"ansible_port" json:"ansible_port"`
}

// Endpoint returns address:port
func (h HostEntry) Endpoint() string {
	return fmt.Sprintf("%s:%d", h.Address, h.Port)
}

// UnreachableReason explains why a row produced no selection
type UnreachableReason string

const (
	ReasonNoUsableSlot UnreachableReason = "no usable slot"
	ReasonNotReachable UnreachableReason = "not reachable"
	ReasonNotProbed    UnreachableReason = "not probed"
)

// UnreachableRecord is a row that yielded no usable and reachable slot
type UnreachableRecord struct {
	Record SiteRecord
	Reason UnreachableReason
}

var nonWord = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// Sanitize turns a free-text label into a group identifier: surrounding
// whitespace is trimmed and every run of non-word characters becomes "_".
func Sanitize(name string) string {
	return nonWord.ReplaceAllString(strings.TrimSpace(name), "_")
}
