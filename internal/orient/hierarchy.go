// Package orient re-orients joints by matching local axes between two hierarchies.
//
// All matrices follow the row convention of mathutil: rows 0-2 of a world matrix are the
// node's local x, y and z axes in world space.
package orient

import (
	"errors"

	"rig-reorient/internal/mathutil"
	"rig-reorient/internal/skeleton"
)

// Hierarchy is the scene access the orientation operations need.
// *skeleton.Skeleton implements it.
type Hierarchy interface {
	Kind(name string) (skeleton.Kind, error)
	WorldPosition(name string) (mathutil.Vec3, error)
	WorldMatrix(name string) (mathutil.Mat4, error)
	SetWorldMatrix(name string, m mathutil.Mat4) error
	Children(name string) ([]string, error)
	Parent(name string) (string, error)
	// Reparent moves name under parent ("" for world) keeping its world transform.
	Reparent(name, parent string) error
	Channels(name string) (skeleton.Channels, error)
	SetChannels(name string, c skeleton.Channels) error
}

var _ Hierarchy = (*skeleton.Skeleton)(nil)

var (
	ErrAmbiguousChild        = errors.New("more than one child, none chosen")
	ErrInsufficientAxes      = errors.New("fewer than two target axes specified")
	ErrInvalidAxisAssignment = errors.New("aim and pole share an axis")
	ErrInvalidJointState     = errors.New("joint-orient and rotate cannot be reconciled")
	// ErrAmbiguousMatch marks a closest-axis tie. It is reported, never returned by the matcher.
	ErrAmbiguousMatch = errors.New("closest axis is not unique")
	// ErrNoDownAxis is returned by SmartCopyOrient when either joint has no child to aim down.
	ErrNoDownAxis = errors.New("no down axis")
)

// transformChildren lists the children that carry their own transform.
func transformChildren(h Hierarchy, name string) ([]string, error) {
	kids, err := h.Children(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(kids))
	for _, c := range kids {
		k, err := h.Kind(c)
		if err != nil {
			return nil, err
		}
		if k.Transformable() {
			out = append(out, c)
		}
	}
	return out, nil
}

// detachChildren moves the transform children of name to world and returns the release
// that puts them back in their original order. On a partial failure the children already
// moved are reattached before the error is returned.
func detachChildren(h Hierarchy, name string) (func() error, error) {
	kids, err := transformChildren(h, name)
	if err != nil {
		return nil, err
	}

	var moved []string
	release := func() error {
		var errs []error
		for _, c := range moved {
			if err := h.Reparent(c, name); err != nil {
				errs = append(errs, err)
			}
		}
		moved = nil
		return errors.Join(errs...)
	}

	for _, c := range kids {
		if err := h.Reparent(c, ""); err != nil {
			return nil, errors.Join(err, release())
		}
		moved = append(moved, c)
	}
	return release, nil
}

// withChildrenDetached runs fn while the children of name sit under world.
func withChildrenDetached(h Hierarchy, name string, detach bool, fn func() error) (err error) {
	if !detach {
		return fn()
	}
	release, err := detachChildren(h, name)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, release())
	}()
	return fn()
}
