package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"siteinventory/internal/domain"
)

// AnsibleCodec writes the inventory as an Ansible YAML inventory:
//
//	all:
//	  vars: {...}
//	  children:
//	    <group>:
//	      hosts:
//	        <group>_host: {ansible_host: ..., ansible_port: ...}
//
// Vars, groups and hosts keep insertion order.
type AnsibleCodec struct{}

// NewAnsibleCodec creates a new Ansible codec
func NewAnsibleCodec() *AnsibleCodec {
	return &AnsibleCodec{}
}

// Format returns the codec format identifier
func (c *AnsibleCodec) Format() string {
	return "yaml"
}

// Extension returns the conventional file extension
func (c *AnsibleCodec) Extension() string {
	return ".yml"
}

// Export encodes inv as YAML
func (c *AnsibleCodec) Export(inv *domain.Inventory, w io.Writer) error {
	doc, err := c.document(inv)
	if err != nil {
		return err
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode Ansible inventory: %w", err)
	}
	return encoder.Close()
}

func (c *AnsibleCodec) document(inv *domain.Inventory) (*yaml.Node, error) {
	vars := mappingNode()
	for _, kv := range inv.Vars {
		value, err := valueNode(kv.Value)
		if err != nil {
			return nil, fmt.Errorf("var %s: %w", kv.Key, err)
		}
		vars.Content = append(vars.Content, keyNode(kv.Key), value)
	}

	children := mappingNode()
	for _, g := range inv.Groups() {
		hosts := mappingNode()
		for _, h := range g.Hosts {
			entry := mappingNode()
			entry.Content = append(entry.Content,
				keyNode("ansible_host"), keyNode(h.Entry.Address),
				keyNode("ansible_port"), &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(h.Entry.Port)},
			)
			hosts.Content = append(hosts.Content, keyNode(h.Key), entry)
		}
		group := mappingNode()
		group.Content = append(group.Content, keyNode("hosts"), hosts)
		children.Content = append(children.Content, keyNode(g.Name), group)
	}

	root := mappingNode()
	root.Content = append(root.Content, keyNode("vars"), vars, keyNode("children"), children)

	doc := mappingNode()
	doc.Content = append(doc.Content, keyNode(inv.Root), root)
	return doc, nil
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// keyNode builds a string scalar; the encoder quotes it when it would
// otherwise resolve to another type
func keyNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func valueNode(v any) (*yaml.Node, error) {
	if s, ok := v.(string); ok {
		return keyNode(s), nil
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}
