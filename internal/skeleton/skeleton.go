package skeleton

import (
	"fmt"
	"slices"

	"rig-reorient/internal/datablock"
	"rig-reorient/internal/mathutil"
)

// Skeleton is an in-memory node hierarchy addressed by namespace-stripped name.
// It is not safe for concurrent mutation.
type Skeleton struct {
	joints map[string]*Joint
	order  []string
}

func New() *Skeleton {
	return &Skeleton{joints: make(map[string]*Joint)}
}

func (s *Skeleton) lookup(name string) (*Joint, error) {
	j, ok := s.joints[datablock.StripNamespace(name)]
	if !ok {
		return nil, fmt.Errorf("skeleton: %q: %w", name, ErrUnknownJoint)
	}
	return j, nil
}

// Len is the number of nodes.
func (s *Skeleton) Len() int { return len(s.joints) }

// Has reports whether name resolves to a node.
func (s *Skeleton) Has(name string) bool {
	_, ok := s.joints[datablock.StripNamespace(name)]
	return ok
}

// Names returns node names in insertion order.
func (s *Skeleton) Names() []string {
	return slices.Clone(s.order)
}

// Joint returns a copy of the named node.
func (s *Skeleton) Joint(name string) (Joint, error) {
	j, err := s.lookup(name)
	if err != nil {
		return Joint{}, err
	}
	c := *j
	c.Children = slices.Clone(j.Children)
	return c, nil
}

// AddJoint inserts j under j.Parent ("" for world). Translate is taken as parent-local.
func (s *Skeleton) AddJoint(j Joint) error {
	j.Name = datablock.StripNamespace(j.Name)
	j.Parent = datablock.StripNamespace(j.Parent)
	if j.Name == "" {
		return fmt.Errorf("skeleton: add joint: empty name")
	}
	if _, dup := s.joints[j.Name]; dup {
		return fmt.Errorf("skeleton: add %s: %w", j.Name, ErrDuplicateJoint)
	}
	if j.Parent != "" {
		p, err := s.lookup(j.Parent)
		if err != nil {
			return fmt.Errorf("skeleton: add %s: parent: %w", j.Name, err)
		}
		p.Children = append(p.Children, j.Name)
	}
	j.Children = nil
	s.joints[j.Name] = &j
	s.order = append(s.order, j.Name)
	return nil
}

// AddJointAt inserts a node at a world-space position. Channels are parent-local.
func (s *Skeleton) AddJointAt(name string, kind Kind, parent string, pos mathutil.Vec3, ch Channels) error {
	if err := s.AddJoint(Joint{
		Name:        name,
		Kind:        kind,
		Parent:      parent,
		JointOrient: ch.JointOrient,
		Rotate:      ch.Rotate,
		RotateOrder: ch.RotateOrder,
	}); err != nil {
		return err
	}
	return s.SetWorldPosition(name, pos)
}

// Kind returns the node's classification.
func (s *Skeleton) Kind(name string) (Kind, error) {
	j, err := s.lookup(name)
	if err != nil {
		return KindOther, err
	}
	return j.Kind, nil
}

// Children returns the node's children in order.
func (s *Skeleton) Children(name string) ([]string, error) {
	j, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return slices.Clone(j.Children), nil
}

// Parent returns the parent name, or "" for a node under world.
func (s *Skeleton) Parent(name string) (string, error) {
	j, err := s.lookup(name)
	if err != nil {
		return "", err
	}
	return j.Parent, nil
}

// Roots lists the nodes parented to world.
func (s *Skeleton) Roots() []string {
	var roots []string
	for _, n := range s.order {
		if s.joints[n].Parent == "" {
			roots = append(roots, n)
		}
	}
	return roots
}

// Descendants returns every node below name, depth first.
func (s *Skeleton) Descendants(name string) ([]string, error) {
	j, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	var out []string
	var walk func(*Joint)
	walk = func(n *Joint) {
		for _, c := range n.Children {
			out = append(out, c)
			walk(s.joints[c])
		}
	}
	walk(j)
	return out, nil
}

// Topological returns every node with parents before children.
func (s *Skeleton) Topological() []string {
	out := make([]string, 0, len(s.joints))
	var walk func(string)
	walk = func(n string) {
		out = append(out, n)
		for _, c := range s.joints[n].Children {
			walk(c)
		}
	}
	for _, r := range s.Roots() {
		walk(r)
	}
	return out
}

// Reparent moves name under parent ("" for world) keeping its world transform.
// For joints the rotate channel is kept and joint-orient absorbs the change, as the host does.
func (s *Skeleton) Reparent(name, parent string) error {
	j, err := s.lookup(name)
	if err != nil {
		return err
	}
	parent = datablock.StripNamespace(parent)
	if parent == j.Parent {
		return nil
	}

	var np *Joint
	if parent != "" {
		if np, err = s.lookup(parent); err != nil {
			return fmt.Errorf("skeleton: reparent %s: %w", name, err)
		}
		for a := np; a != nil; {
			if a.Name == j.Name {
				return fmt.Errorf("skeleton: reparent %s under %s: %w", j.Name, parent, ErrCycle)
			}
			if a.Parent == "" {
				break
			}
			a = s.joints[a.Parent]
		}
	}

	world, err := s.WorldMatrix(j.Name)
	if err != nil {
		return err
	}

	if j.Parent != "" {
		op := s.joints[j.Parent]
		op.Children = slices.DeleteFunc(op.Children, func(c string) bool { return c == j.Name })
	}
	pw := mathutil.Mat4Identity()
	if np != nil {
		np.Children = append(np.Children, j.Name)
		if pw, err = s.WorldMatrix(np.Name); err != nil {
			return err
		}
	}
	j.Parent = parent

	setLocal(j, mathutil.Mat4Mul(world, pw.RigidInverse()), j.Kind == KindJoint)
	return nil
}

// Channels returns the rotation fields of the node.
func (s *Skeleton) Channels(name string) (Channels, error) {
	j, err := s.lookup(name)
	if err != nil {
		return Channels{}, err
	}
	return j.Channels(), nil
}

// SetChannels overwrites the rotation fields. Children follow the new orientation.
func (s *Skeleton) SetChannels(name string, c Channels) error {
	j, err := s.lookup(name)
	if err != nil {
		return err
	}
	j.JointOrient = c.JointOrient
	j.Rotate = c.Rotate
	j.RotateOrder = c.RotateOrder
	return nil
}

// SwapChannels exchanges the joint-orient and rotate values of a node.
func (s *Skeleton) SwapChannels(name string) error {
	j, err := s.lookup(name)
	if err != nil {
		return err
	}
	j.JointOrient, j.Rotate = j.Rotate, j.JointOrient
	return nil
}
