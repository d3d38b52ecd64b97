// Package reorient runs a correspondence mapping over a hierarchy, re-orienting every target joint
// to follow its reference and reporting what happened to each role.
package reorient

import (
	"errors"
	"fmt"
	"io"
	"log"

	"rig-reorient/internal/naming"
	"rig-reorient/internal/orient"
	"rig-reorient/internal/skeleton"
)

// Snapshotter is implemented by hierarchies that can roll back a failed role.
type Snapshotter interface {
	Snapshot() (*skeleton.Snapshot, error)
	Restore(*skeleton.Snapshot) error
}

// Options configures Run. The zero value detaches children and logs nowhere.
type Options struct {
	Logger   *log.Logger
	Progress Progress

	// SnapPositions moves each target onto its reference's world position before orienting.
	SnapPositions bool
	// MoveChildren lets children follow the re-oriented joint instead of keeping their world transforms.
	MoveChildren  bool
	Match         orient.MatchOptions
	LegacyZSource bool
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	if o.Progress == nil {
		o.Progress = NopProgress{}
	}
	return o
}

// Run visits every pair in order. It never aborts: each role ends in a terminal state and the
// report carries the failures.
func Run(h orient.Hierarchy, pairs []naming.Pair, opts Options) *Report {
	opts = opts.withDefaults()
	rep := &Report{Outcomes: make([]Outcome, 0, len(pairs))}
	snap, canSnap := h.(Snapshotter)

	opts.Progress.Start(len(pairs), "Re-orienting joints")
	defer opts.Progress.End()

	for _, p := range pairs {
		var (
			before  *skeleton.Snapshot
			snapErr error
		)
		if canSnap && !p.Blank() {
			if before, snapErr = snap.Snapshot(); snapErr != nil {
				opts.Logger.Printf("%s: snapshot: %v", p.Role, snapErr)
			}
		}

		o := runRole(h, p, opts)
		if snapErr != nil {
			o.Warnings = append(o.Warnings, "no rollback, snapshot failed: "+snapErr.Error())
		}
		if o.State == Failed {
			opts.Logger.Printf("%s: %s ← %s failed: %v", o.Role, o.Target, o.Source, o.err)
			if before != nil {
				if err := snap.Restore(before); err != nil {
					opts.Logger.Printf("%s: rollback: %v", o.Role, err)
					o.Warnings = append(o.Warnings, "rollback failed: "+err.Error())
				}
			}
		}
		rep.record(o)
		opts.Progress.Advance(1)
	}
	opts.Logger.Print(rep.Summary())
	return rep
}

// runRole recovers panics so one bad role cannot take down the batch.
func runRole(h orient.Hierarchy, p naming.Pair, opts Options) (o Outcome) {
	o = Outcome{Role: p.Role, Source: p.Source, Target: p.Target, State: Pending}
	if p.Blank() {
		o.State = Skipped
		opts.Logger.Printf("%s: skipped, mapping is blank", p.Role)
		return o
	}

	defer func() {
		if r := recover(); r != nil {
			o.fail(fmt.Errorf("panic: %v", r))
		}
	}()

	parentSafe := !opts.MoveChildren
	if opts.SnapPositions {
		if err := orient.MatchPosition(h, p.Source, p.Target, parentSafe); err != nil {
			o.fail(err)
			return o
		}
	}

	res, err := orient.SmartCopyOrient(h, p.Source, p.Target, orient.CopyOptions{
		ReferenceChild: p.SourceChild,
		JointChild:     p.TargetChild,
		ParentSafe:     parentSafe,
		Match:          opts.Match,
		LegacyZSource:  opts.LegacyZSource,
	})
	switch {
	case err == nil:
		o.State = SmartOriented
		o.Aim, o.Pole = res.Aim.String(), res.PoleSwap.String()
		if res.Pole.Ambiguous {
			w := fmt.Sprintf("pole match %s→%s is %v", res.Pole.Source, res.Pole.Target, orient.ErrAmbiguousMatch)
			o.Warnings = append(o.Warnings, w)
			opts.Logger.Printf("%s: %s", p.Role, w)
		}
		opts.Logger.Printf("%s: %s ← %s aim %s pole %s", p.Role, p.Target, p.Source, o.Aim, o.Pole)
	case errors.Is(err, orient.ErrNoDownAxis):
		if err := orient.CopyOrient(h, p.Source, p.Target, parentSafe); err != nil {
			o.fail(err)
			return o
		}
		o.State = DumbOriented
		opts.Logger.Printf("%s: %s ← %s copied directly (%v)", p.Role, p.Target, p.Source, err)
	default:
		o.fail(err)
	}
	return o
}

func (o *Outcome) fail(err error) {
	o.State = Failed
	o.err = err
	o.Error = err.Error()
}

// FilterRoles keeps the pairs whose role is listed, in their original order.
func FilterRoles(pairs []naming.Pair, roles []string) []naming.Pair {
	want := make(map[string]bool, len(roles))
	for _, r := range roles {
		want[r] = true
	}
	var out []naming.Pair
	for _, p := range pairs {
		if want[p.Role] {
			out = append(out, p)
		}
	}
	return out
}
