// Package loader reads the site table into domain records.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"siteinventory/internal/domain"
)

// Options describes the table layout
type Options struct {
	Delimiter rune
	// Encoding is a WHATWG encoding label (utf-8, gbk, windows-1252, ...)
	Encoding      string
	NameColumn    string
	Slots         []string
	AddressSuffix string
	PortSuffix    string
}

// DefaultOptions matches the usual "BPO NAME, Primary IP, Primary Port, ..." layout
func DefaultOptions() Options {
	return Options{
		Delimiter:     ',',
		Encoding:      "utf-8",
		NameColumn:    "BPO NAME",
		Slots:         []string{domain.SlotPrimary, domain.SlotSecondary},
		AddressSuffix: " IP",
		PortSuffix:    " Port",
	}
}

// Table is a parsed site table
type Table struct {
	// Header is the header row exactly as read
	Header  []string
	Records []domain.SiteRecord
	// Missing lists expected columns absent from the header; the values they
	// would carry are treated as empty
	Missing []string
}

// ReadTable opens and parses the table at path
func ReadTable(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Parse reads a delimited table with a header row. A leading byte order mark
// is stripped. Short rows are padded to the header width; surplus fields are
// kept as they are.
func Parse(r io.Reader, opts Options) (*Table, error) {
	decoder, err := newDecoder(opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(transform.NewReader(r, decoder))
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	table := &Table{Header: header}
	cols := newColumnIndex(header)

	nameIdx := cols.lookup(opts.NameColumn, &table.Missing)
	type slotIdx struct {
		label         string
		address, port int
	}
	slots := make([]slotIdx, 0, len(opts.Slots))
	for _, label := range opts.Slots {
		slots = append(slots, slotIdx{
			label:   label,
			address: cols.lookup(label+opts.AddressSuffix, &table.Missing),
			port:    cols.lookup(label+opts.PortSuffix, &table.Missing),
		})
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		for len(row) < len(header) {
			row = append(row, "")
		}

		rec := domain.SiteRecord{
			Line:  line,
			Name:  strings.TrimSpace(field(row, nameIdx)),
			Slots: make([]domain.Slot, 0, len(slots)),
			Row:   row,
		}
		for _, s := range slots {
			rec.Slots = append(rec.Slots, domain.Slot{
				Label:   s.label,
				Address: strings.TrimSpace(field(row, s.address)),
				Port:    strings.TrimSpace(field(row, s.port)),
			})
		}
		table.Records = append(table.Records, rec)
	}

	return table, nil
}

func newDecoder(label string) (transform.Transformer, error) {
	if label == "" {
		label = "utf-8"
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	return unicode.BOMOverride(enc.NewDecoder()), nil
}

// columnIndex maps header names to positions; the first occurrence of a
// duplicated name wins
type columnIndex map[string]int

func newColumnIndex(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	return idx
}

func (c columnIndex) lookup(name string, missing *[]string) int {
	if i, ok := c[strings.TrimSpace(name)]; ok {
		return i
	}
	*missing = append(*missing, name)
	return -1
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
