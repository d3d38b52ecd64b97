package orient

import (
	"fmt"
	"math"

	"rig-reorient/internal/mathutil"
)

// Match pairs a signed source axis with the unsigned target axis it lies closest to.
type Match struct {
	Source    mathutil.Axis
	Target    mathutil.Axis
	Vector    mathutil.Vec3 // the target axis, world space
	Angle     float64       // radians
	Ambiguous bool          // a conflicting pair tied within mathutil.AngleTieEpsilon
}

// MatchOptions tunes candidate exclusion.
type MatchOptions struct {
	// ExcludeMirror also drops the negated source exclusion (-x when x is excluded).
	ExcludeMirror bool
}

// ClosestAxis searches every signed source axis against every unsigned target axis, skipping
// the excluded ones, and returns the pair with the smallest angle. The scan runs source-outer,
// target-inner and the first minimum wins. A later pair within the tie tolerance that claims the
// same source line or the same target axis sets Ambiguous; a tie on two unrelated axes is the
// normal outcome for aligned joints and is not flagged.
// A target exclusion removes the whole axis line regardless of its sign.
func ClosestAxis(source, target [3]mathutil.Vec3, sExclude, tExclude mathutil.Axis, opts MatchOptions) (Match, error) {
	best := Match{Angle: math.Inf(1)}
	for _, s := range mathutil.SignedAxes {
		if s == sExclude || (opts.ExcludeMirror && sExclude.Valid() && s.Abs() == sExclude.Abs()) {
			continue
		}
		sv := s.Vector(source)
		for _, t := range mathutil.UnsignedAxes {
			if tExclude.Valid() && t.Index() == tExclude.Index() {
				continue
			}
			tv := t.Vector(target)
			ang, err := mathutil.Angle(sv, tv)
			if err != nil {
				return Match{}, fmt.Errorf("orient: closest axis %s/%s: %w", s, t, err)
			}
			switch {
			case ang < best.Angle-mathutil.AngleTieEpsilon:
				best = Match{Source: s, Target: t, Vector: tv, Angle: ang}
			case math.Abs(ang-best.Angle) <= mathutil.AngleTieEpsilon:
				if s.Abs() == best.Source.Abs() || t == best.Target {
					best.Ambiguous = true
				}
			}
		}
	}
	if !best.Source.Valid() {
		return Match{}, fmt.Errorf("orient: closest axis: no candidates left: %w", ErrInsufficientAxes)
	}
	return best, nil
}

// MatchAxes runs ClosestAxis on the world axes of two nodes.
func MatchAxes(h Hierarchy, source, target string, sExclude, tExclude mathutil.Axis, opts MatchOptions) (Match, error) {
	sm, err := h.WorldMatrix(source)
	if err != nil {
		return Match{}, err
	}
	tm, err := h.WorldMatrix(target)
	if err != nil {
		return Match{}, err
	}
	m, err := ClosestAxis(sm.Axes(), tm.Axes(), sExclude, tExclude, opts)
	if err != nil {
		return Match{}, fmt.Errorf("orient: match %s to %s: %w", source, target, err)
	}
	return m, nil
}
