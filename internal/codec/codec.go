// Package codec encodes the inventory and the unreachable sidecar.
package codec

import (
	"fmt"
	"io"
	"strings"

	"siteinventory/internal/domain"
)

// Exporter writes an inventory in one output format
type Exporter interface {
	Export(inv *domain.Inventory, w io.Writer) error
	Format() string
	Extension() string
}

// ForFormat returns the exporter registered for format
func ForFormat(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		return NewAnsibleCodec(), nil
	case "json":
		return NewAnsibleJSONCodec(), nil
	}
	return nil, fmt.Errorf("unknown inventory format %q", format)
}
