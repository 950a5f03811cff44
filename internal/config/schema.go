package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"siteinventory/internal/domain"
)

// Config is the root configuration structure
type Config struct {
	Version   int             `yaml:"version"`
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Probe     ProbeConfig     `yaml:"probe"`
	Inventory InventoryConfig `yaml:"inventory"`
	Log       LogConfig       `yaml:"log"`
}

// InputConfig describes the site table
type InputConfig struct {
	Path      string        `yaml:"path"`
	Delimiter string        `yaml:"delimiter"`
	Encoding  string        `yaml:"encoding"` // utf-8, gbk, windows-1252, ...
	Columns   ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig names the columns the pipeline reads. Slot columns are
// "<Label><AddressSuffix>" and "<Label><PortSuffix>".
type ColumnsConfig struct {
	Name          string   `yaml:"name"`
	Slots         []string `yaml:"slots"`
	AddressSuffix string   `yaml:"address_suffix"`
	PortSuffix    string   `yaml:"port_suffix"`
}

// OutputConfig holds artifact paths; empty paths derive from the input path
type OutputConfig struct {
	Inventory   string `yaml:"inventory,omitempty"`
	Unreachable string `yaml:"unreachable,omitempty"`
	Format      string `yaml:"format"` // yaml, json
}

// ProbeConfig controls reachability probing
type ProbeConfig struct {
	Backend     string   `yaml:"backend"` // nmap, tcp, ssh
	Timeout     Duration `yaml:"timeout"`
	Concurrency int      `yaml:"concurrency"`
	// Deadline bounds the whole probing phase; zero means no deadline
	Deadline Duration `yaml:"deadline,omitempty"`
}

// InventoryConfig shapes the emitted inventory
type InventoryConfig struct {
	RootGroup  string `yaml:"root_group"`
	HostSuffix string `yaml:"host_suffix"`
	Vars       Vars   `yaml:"vars"`
}

// LogConfig configures the logger
type LogConfig struct {
	Name    string   `yaml:"name"`
	Dir     string   `yaml:"dir,omitempty"`
	Levels  []string `yaml:"levels,omitempty"`
	NoColor bool     `yaml:"no_color,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Vars is an inventory vars mapping decoded in document order
type Vars domain.Vars

// UnmarshalYAML keeps mapping keys in the order they appear
func (v *Vars) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("vars: expected mapping, got %s", kindName(node.Kind))
	}
	out := make(Vars, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("vars.%s: %w", node.Content[i].Value, err)
		}
		out = Vars(domain.Vars(out).Set(node.Content[i].Value, value))
	}
	*v = out
	return nil
}

// MarshalYAML writes the vars back as an ordered mapping
func (v Vars) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, kv := range v {
		val := &yaml.Node{}
		if err := val.Encode(kv.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: kv.Key},
			val,
		)
	}
	return node, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	}
	return "mapping"
}
