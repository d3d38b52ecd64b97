package datablock

import "strings"

// Record is one imported node. Field names follow the importer's JSON keys.
type Record struct {
	Name          string     `json:"name"`
	FullName      string     `json:"full_name,omitempty"`
	NodeType      string     `json:"nodeType"`
	Parent        *string    `json:"parent"`
	Children      []string   `json:"children"`
	WorldSpacePos [3]float64 `json:"world_space_pos"`
	JointOrient   [3]float64 `json:"jointOrient"`
	Rotate        [3]float64 `json:"rotate"`
	RotateOrder   Order      `json:"rotate_order"`
}

// Datablock is the flat record set produced by a skeleton import.
// Duplicates lists short names that resolved to more than one node in the source file.
type Datablock struct {
	Joints     []Record `json:"joints"`
	Duplicates []string `json:"duplicates,omitempty"`
}

// Node types the importer emits.
const (
	NodeJoint     = "joint"
	NodeTransform = "transform"
)

// NamespaceSep separates a namespace from a node name ("match_import:hip").
const NamespaceSep = ":"

// StripNamespace drops every namespace qualifier and returns the final segment.
func StripNamespace(name string) string {
	if i := strings.LastIndex(name, NamespaceSep); i >= 0 {
		return name[i+len(NamespaceSep):]
	}
	return name
}

// ParentName returns the namespace-stripped parent, or "" for a root.
func (r Record) ParentName() string {
	if r.Parent == nil {
		return ""
	}
	return StripNamespace(*r.Parent)
}

// ShortName is the namespace-stripped node name.
func (r Record) ShortName() string {
	return StripNamespace(r.Name)
}

// ChildNames returns the namespace-stripped children.
func (r Record) ChildNames() []string {
	out := make([]string, 0, len(r.Children))
	for _, c := range r.Children {
		out = append(out, StripNamespace(c))
	}
	return out
}

// Find returns the record whose stripped name matches name.
func (d *Datablock) Find(name string) (Record, bool) {
	name = StripNamespace(name)
	for _, r := range d.Joints {
		if r.ShortName() == name {
			return r, true
		}
	}
	return Record{}, false
}
