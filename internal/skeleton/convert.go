package skeleton

import (
	"fmt"
	"slices"

	"github.com/tiendc/go-deepcopy"

	"rig-reorient/internal/datablock"
)

// FromDatablock builds a skeleton from imported records. Records are placed at their world
// positions with their channels read as parent-local; a record whose parent is not in the
// block becomes a root. Later records that repeat a short name are dropped.
func FromDatablock(db *datablock.Datablock) (*Skeleton, error) {
	s := New()
	if err := s.AddDatablock(db); err != nil {
		return nil, err
	}
	return s, nil
}

// AddDatablock adds the block's records to an existing skeleton.
func (s *Skeleton) AddDatablock(db *datablock.Datablock) error {
	byName := make(map[string]datablock.Record, len(db.Joints))
	var pending []string
	for _, r := range db.Joints {
		n := r.ShortName()
		if _, dup := byName[n]; dup || s.Has(n) {
			continue
		}
		byName[n] = r
		pending = append(pending, n)
	}

	for len(pending) > 0 {
		var next []string
		for _, n := range pending {
			r := byName[n]
			parent := r.ParentName()
			if _, inBlock := byName[parent]; parent != "" && inBlock && !s.Has(parent) {
				next = append(next, n)
				continue
			}
			if !s.Has(parent) {
				parent = ""
			}
			ch := Channels{
				JointOrient: r.JointOrient,
				Rotate:      r.Rotate,
				RotateOrder: r.RotateOrder.RotateOrder(),
			}
			if err := s.AddJointAt(n, KindFromNodeType(r.NodeType), parent, r.WorldSpacePos, ch); err != nil {
				return fmt.Errorf("skeleton: build %s: %w", n, err)
			}
		}
		if len(next) == len(pending) {
			return fmt.Errorf("skeleton: build %v: %w", next, ErrCycle)
		}
		pending = next
	}

	for n, r := range byName {
		s.orderChildren(n, r.ChildNames())
	}
	return nil
}

// orderChildren sorts a node's children to follow want; unlisted children keep their order at the end.
func (s *Skeleton) orderChildren(name string, want []string) {
	j := s.joints[name]
	if j == nil || len(j.Children) < 2 || len(want) == 0 {
		return
	}
	rank := func(c string) int {
		if i := slices.Index(want, c); i >= 0 {
			return i
		}
		return len(want)
	}
	slices.SortStableFunc(j.Children, func(a, b string) int { return rank(a) - rank(b) })
}

// ToDatablock exports joints and transforms with world positions and current channels.
// With names given only those nodes are exported.
func (s *Skeleton) ToDatablock(names ...string) *datablock.Datablock {
	var only map[string]bool
	if len(names) > 0 {
		only = make(map[string]bool, len(names))
		for _, n := range names {
			only[datablock.StripNamespace(n)] = true
		}
	}
	worlds := s.WorldMatrices()
	db := &datablock.Datablock{}
	for _, n := range s.Topological() {
		j := s.joints[n]
		if !j.Kind.Transformable() || (only != nil && !only[n]) {
			continue
		}
		r := datablock.Record{
			Name:          j.Name,
			NodeType:      j.Kind.String(),
			WorldSpacePos: worlds[n].Translation(),
			JointOrient:   j.JointOrient,
			Rotate:        j.Rotate,
			RotateOrder:   datablock.Order(j.RotateOrder),
		}
		if j.Parent != "" {
			p := j.Parent
			r.Parent = &p
		}
		for _, c := range j.Children {
			if s.joints[c].Kind.Transformable() && (only == nil || only[c]) {
				r.Children = append(r.Children, c)
			}
		}
		db.Joints = append(db.Joints, r)
	}
	return db
}

// Duplicate copies the hierarchy under root with every name prefixed. The copy is parented
// to world at root's world transform and its descendants keep their local values.
// It returns the new root name.
func (s *Skeleton) Duplicate(root, prefix string) (string, error) {
	src, err := s.lookup(root)
	if err != nil {
		return "", err
	}
	desc, err := s.Descendants(src.Name)
	if err != nil {
		return "", err
	}
	for _, n := range append([]string{src.Name}, desc...) {
		if s.Has(prefix + n) {
			return "", fmt.Errorf("skeleton: duplicate %s: %s: %w", root, prefix+n, ErrDuplicateJoint)
		}
	}

	world, err := s.WorldMatrix(src.Name)
	if err != nil {
		return "", err
	}
	nr := *src
	nr.Name = prefix + src.Name
	nr.Parent = ""
	if err := s.AddJoint(nr); err != nil {
		return "", err
	}
	setLocal(s.joints[nr.Name], world, nr.Kind == KindJoint)

	for _, n := range desc {
		c := *s.joints[n]
		c.Name = prefix + n
		c.Parent = prefix + c.Parent
		if err := s.AddJoint(c); err != nil {
			return "", err
		}
	}
	return nr.Name, nil
}

// DuplicateRoots duplicates every root hierarchy that contains one of names.
func (s *Skeleton) DuplicateRoots(prefix string, names []string) ([]string, error) {
	var roots []string
	for _, n := range names {
		j, err := s.lookup(n)
		if err != nil {
			return nil, err
		}
		for j.Parent != "" {
			j = s.joints[j.Parent]
		}
		if !slices.Contains(roots, j.Name) {
			roots = append(roots, j.Name)
		}
	}

	var out []string
	for _, r := range roots {
		nr, err := s.Duplicate(r, prefix)
		if err != nil {
			return out, err
		}
		out = append(out, nr)
	}
	return out, nil
}

// Snapshot is a deep copy of a skeleton's nodes.
type Snapshot struct {
	Joints map[string]*Joint
	Order  []string
}

// Snapshot captures the current state for a later Restore.
func (s *Skeleton) Snapshot() (*Snapshot, error) {
	src := &Snapshot{Joints: s.joints, Order: s.order}
	var dst Snapshot
	if err := deepcopy.Copy(&dst, src); err != nil {
		return nil, fmt.Errorf("skeleton: snapshot: %w", err)
	}
	if dst.Joints == nil {
		dst.Joints = make(map[string]*Joint)
	}
	return &dst, nil
}

// Restore replaces the current state with a deep copy of snap.
func (s *Skeleton) Restore(snap *Snapshot) error {
	var dst Snapshot
	if err := deepcopy.Copy(&dst, snap); err != nil {
		return fmt.Errorf("skeleton: restore: %w", err)
	}
	if dst.Joints == nil {
		dst.Joints = make(map[string]*Joint)
	}
	s.joints, s.order = dst.Joints, dst.Order
	return nil
}

// Clone returns an independent copy.
func (s *Skeleton) Clone() (*Skeleton, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return &Skeleton{joints: snap.Joints, order: snap.Order}, nil
}

// MaxPositionDelta is the largest world-position difference between nodes present in both skeletons.
func MaxPositionDelta(a, b *Skeleton) float64 {
	wa, wb := a.WorldMatrices(), b.WorldMatrices()
	var worst float64
	for n, m := range wa {
		o, ok := wb[n]
		if !ok {
			continue
		}
		d := m.Translation().Sub(o.Translation()).Len()
		worst = max(worst, d)
	}
	return worst
}
