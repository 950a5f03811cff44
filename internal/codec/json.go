package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"siteinventory/internal/domain"
)

// AnsibleJSONCodec writes the inventory in the shape returned by an Ansible
// dynamic inventory script for --list
type AnsibleJSONCodec struct{}

// NewAnsibleJSONCodec creates a new JSON codec
func NewAnsibleJSONCodec() *AnsibleJSONCodec {
	return &AnsibleJSONCodec{}
}

// Format returns the codec format identifier
func (c *AnsibleJSONCodec) Format() string {
	return "json"
}

// Extension returns the conventional file extension
func (c *AnsibleJSONCodec) Extension() string {
	return ".json"
}

// member is one key of an ordered JSON object
type member struct {
	key   string
	value any
}

// object marshals its members in order
type object []member

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Export encodes inv as --list JSON
func (c *AnsibleJSONCodec) Export(inv *domain.Inventory, w io.Writer) error {
	vars := make(object, 0, len(inv.Vars))
	for _, kv := range inv.Vars {
		vars = append(vars, member{kv.Key, kv.Value})
	}

	groups := inv.Groups()
	children := make([]string, 0, len(groups))
	hostvars := object{}
	doc := object{}
	for _, g := range groups {
		children = append(children, g.Name)
		hosts := make([]string, 0, len(g.Hosts))
		for _, h := range g.Hosts {
			hosts = append(hosts, h.Key)
			hostvars = append(hostvars, member{h.Key, h.Entry})
		}
		doc = append(doc, member{g.Name, object{{"hosts", hosts}}})
	}

	doc = append(object{{inv.Root, object{{"children", children}, {"vars", vars}}}}, doc...)
	doc = append(doc, member{"_meta", object{{"hostvars", hostvars}}})

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON inventory: %w", err)
	}

	return nil
}
