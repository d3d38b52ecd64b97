// Package naming loads naming standards: the role → joint-name tables that pair a house
// skeleton with an imported one.
package naming

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"rig-reorient/internal/datablock"
)

// Side names one of the two parallel standards.
type Side string

const (
	Generic Side = "generic"
	Client  Side = "client"
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == Client {
		return Generic
	}
	return Client
}

// Children optionally names the child to aim down for a role, per side.
type Children struct {
	Generic string `yaml:"generic"`
	Client  string `yaml:"client"`
}

func (c Children) side(s Side) string {
	if s == Client {
		return c.Client
	}
	return c.Generic
}

// Mapping pairs canonical roles with joint names on both sides. Roles keeps document order:
// the generic table first, then roles only the client table lists.
type Mapping struct {
	Roles     []string
	Generic   map[string]string
	Client    map[string]string
	Children  map[string]Children
	Reference Side // the side whose orientation is copied
}

// Pair is one role resolved to concrete joints. Source is the reference joint, Target the
// joint that gets re-oriented. Either may be blank.
type Pair struct {
	Role        string
	Source      string
	Target      string
	SourceChild string
	TargetChild string
}

// Blank reports whether either side is unmapped; such roles are skipped, never dereferenced.
func (p Pair) Blank() bool {
	return p.Source == "" || p.Target == ""
}

type document struct {
	Reference string              `yaml:"reference"`
	Generic   yaml.Node           `yaml:"generic"`
	Client    yaml.Node           `yaml:"client"`
	Children  map[string]Children `yaml:"children"`
}

// Load reads a naming standard from a YAML file.
func Load(path string) (*Mapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("naming: read %s: %w", path, err)
	}
	m, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("naming: %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a naming standard document.
func Parse(raw []byte) (*Mapping, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	m := &Mapping{
		Generic:   map[string]string{},
		Client:    map[string]string{},
		Children:  doc.Children,
		Reference: Side(strings.TrimSpace(doc.Reference)),
	}
	if m.Reference == "" {
		m.Reference = Generic
	}
	if m.Children == nil {
		m.Children = map[string]Children{}
	}

	seen := map[string]bool{}
	for _, t := range []struct {
		side  Side
		node  *yaml.Node
		table map[string]string
	}{
		{Generic, &doc.Generic, m.Generic},
		{Client, &doc.Client, m.Client},
	} {
		roles, err := readTable(t.node, t.table)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.side, err)
		}
		for _, r := range roles {
			if !seen[r] {
				seen[r] = true
				m.Roles = append(m.Roles, r)
			}
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// readTable copies a role → name mapping node into table and returns its keys in order.
func readTable(n *yaml.Node, table map[string]string) ([]string, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: want a role: name mapping", n.Line)
	}
	var roles []string
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		role := strings.TrimSpace(k.Value)
		if role == "" {
			return nil, fmt.Errorf("line %d: empty role", k.Line)
		}
		if _, dup := table[role]; dup {
			return nil, fmt.Errorf("line %d: role %q listed twice", k.Line, role)
		}
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: role %q: want a joint name", v.Line, role)
		}
		name := v.Value
		if v.Tag == "!!null" {
			name = ""
		}
		table[role] = datablock.StripNamespace(strings.TrimSpace(name))
		roles = append(roles, role)
	}
	return roles, nil
}

// Validate checks the reference side and that at least one role exists.
func (m *Mapping) Validate() error {
	if m.Reference != Generic && m.Reference != Client {
		return fmt.Errorf("reference %q: must be %q or %q", m.Reference, Generic, Client)
	}
	if len(m.Roles) == 0 {
		return fmt.Errorf("no roles defined")
	}
	for role := range m.Children {
		if _, ok := m.Generic[role]; ok {
			continue
		}
		if _, ok := m.Client[role]; !ok {
			return fmt.Errorf("children: unknown role %q", role)
		}
	}
	return nil
}

func (m *Mapping) table(s Side) map[string]string {
	if s == Client {
		return m.Client
	}
	return m.Generic
}

// Pairs resolves every role in order. Blank roles are included so callers can report them.
func (m *Mapping) Pairs() []Pair {
	src, dst := m.table(m.Reference), m.table(m.Reference.Other())
	out := make([]Pair, 0, len(m.Roles))
	for _, role := range m.Roles {
		c := m.Children[role]
		out = append(out, Pair{
			Role:        role,
			Source:      src[role],
			Target:      dst[role],
			SourceChild: datablock.StripNamespace(c.side(m.Reference)),
			TargetChild: datablock.StripNamespace(c.side(m.Reference.Other())),
		})
	}
	return out
}

// Lookup returns the joint a side maps role to.
func (m *Mapping) Lookup(s Side, role string) (string, bool) {
	name, ok := m.table(s)[role]
	return name, ok && name != ""
}
