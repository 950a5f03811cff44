package domain

import "strconv"

const (
	// DefaultRootGroup is the top-level Ansible group
	DefaultRootGroup = "all"
	// DefaultHostSuffix is appended to a group key to derive its host key
	DefaultHostSuffix = "_host"
)

// Var is a single connection variable
type Var struct {
	Key   string
	Value any
}

// Vars is an ordered key/value mapping. Keys are unique; Set on an existing
// key replaces its value in place.
type Vars []Var

// DefaultVars returns the placeholder connection defaults emitted under the
// root group. Values are examples and are expected to be replaced per
// deployment.
func DefaultVars() Vars {
	return Vars{
		{Key: "ansible_ssh_common_args", Value: "-o StrictHostKeyChecking=no -o UserKnownHostsFile=/dev/null"},
		{Key: "ansible_python_interpreter", Value: "/usr/bin/python3"},
		{Key: "ansible_ssh_user", Value: "yourUserName"},
		{Key: "ansible_ssh_password", Value: "yourPassword"},
		{Key: "ansible_become_pass", Value: "yourSudoPassword"},
		{Key: "ansible_become_method", Value: "sudo"},
		{Key: "ansible_become", Value: true},
		{Key: "ansible_become_ask_pass", Value: false},
	}
}

// Get returns the value for key
func (v Vars) Get(key string) (any, bool) {
	for _, kv := range v {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Set replaces the value for key or appends it
func (v Vars) Set(key string, value any) Vars {
	for i := range v {
		if v[i].Key == key {
			v[i].Value = value
			return v
		}
	}
	return append(v, Var{Key: key, Value: value})
}

// Host is a host entry under its derived key
type Host struct {
	Key   string
	Entry HostEntry
}

// Group is a set of hosts aggregated under one sanitized name
type Group struct {
	Name  string
	Hosts []Host
}

func (g *Group) hostIndex(key string) int {
	for i, h := range g.Hosts {
		if h.Key == key {
			return i
		}
	}
	return -1
}

// Inventory is the grouped document under construction. It is not safe for
// concurrent use; a single goroutine owns it for the duration of a run.
type Inventory struct {
	Root       string
	Vars       Vars
	HostSuffix string

	groups []*Group
	index  map[string]*Group
}

// NewInventory creates an empty inventory with the given root group and vars
func NewInventory(root string, vars Vars) *Inventory {
	if root == "" {
		root = DefaultRootGroup
	}
	return &Inventory{
		Root:       root,
		Vars:       vars,
		HostSuffix: DefaultHostSuffix,
		index:      make(map[string]*Group),
	}
}

// AddHost binds entry to group, creating the group on first occurrence, and
// returns the host key used. Distinct endpoints in one group get distinct
// keys (<group>_host, <group>_host_2, ...). An endpoint already present in the
// group keeps its key and is overwritten.
func (inv *Inventory) AddHost(group string, entry HostEntry) string {
	g, ok := inv.index[group]
	if !ok {
		g = &Group{Name: group}
		inv.index[group] = g
		inv.groups = append(inv.groups, g)
	}

	for i, h := range g.Hosts {
		if h.Entry.Endpoint() == entry.Endpoint() {
			g.Hosts[i].Entry = entry
			return h.Key
		}
	}

	base := group + inv.HostSuffix
	key := base
	for n := 2; g.hostIndex(key) >= 0; n++ {
		key = base + "_" + strconv.Itoa(n)
	}
	g.Hosts = append(g.Hosts, Host{Key: key, Entry: entry})
	return key
}

// Groups returns the groups in first-seen order
func (inv *Inventory) Groups() []*Group {
	out := make([]*Group, len(inv.groups))
	copy(out, inv.groups)
	return out
}

// Group looks up a group by key
func (inv *Inventory) Group(name string) (*Group, bool) {
	g, ok := inv.index[name]
	return g, ok
}

// HostCount returns the total number of hosts across groups
func (inv *Inventory) HostCount() int {
	n := 0
	for _, g := range inv.groups {
		n += len(g.Hosts)
	}
	return n
}
