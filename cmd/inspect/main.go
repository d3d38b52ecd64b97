package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"rig-reorient/internal/datablock"
	"rig-reorient/internal/mathutil"
	"rig-reorient/internal/orient"
	"rig-reorient/internal/skeleton"
)

func main() {
	joint := flag.String("joint", "", "Inspect only this joint")
	against := flag.String("against", "", "Match -joint's axes against this joint")
	mirror := flag.Bool("exclude-mirror", false, "Exclude both signs of the down axis when matching")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: inspect [-joint name [-against name]] <datablock.json[.zst]>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	db, err := datablock.Load(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	s, err := skeleton.FromDatablock(db)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s: %d records, %d nodes, %d roots\n", path, len(db.Joints), s.Len(), len(s.Roots()))
	for _, d := range db.Duplicates {
		fmt.Printf("  duplicate name: %s\n", d)
	}

	names := s.Topological()
	if *joint != "" {
		names = []string{*joint}
	}
	for _, n := range names {
		if err := printJoint(s, n); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *joint != "" && *against != "" {
		if err := printMatch(s, *against, *joint, orient.MatchOptions{ExcludeMirror: *mirror}); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
}

func printJoint(s *skeleton.Skeleton, name string) error {
	j, err := s.Joint(name)
	if err != nil {
		return err
	}
	m, err := s.WorldMatrix(name)
	if err != nil {
		return err
	}
	p := m.Translation()
	fmt.Printf("%s [%s] parent=%q\n", j.Name, j.Kind, j.Parent)
	fmt.Printf("    pos (%.3f, %.3f, %.3f)  jo (%.2f, %.2f, %.2f)  rot (%.2f, %.2f, %.2f) %s\n",
		p[0], p[1], p[2],
		j.JointOrient[0], j.JointOrient[1], j.JointOrient[2],
		j.Rotate[0], j.Rotate[1], j.Rotate[2], j.RotateOrder)

	d, ok, err := orient.FindDownAxis(s, name, "")
	switch {
	case errors.Is(err, orient.ErrAmbiguousChild):
		fmt.Printf("    down: ambiguous, %d children\n", len(j.Children))
	case err != nil:
		fmt.Printf("    down: %v\n", err)
	case !ok:
		fmt.Println("    down: none (leaf)")
	default:
		fmt.Printf("    down: %s → %s (%.2f°)\n", d.Axis, d.Child, mathutil.Rad2Deg(d.Angle))
	}
	return nil
}

func printMatch(s *skeleton.Skeleton, reference, joint string, opts orient.MatchOptions) error {
	rd, ok, err := orient.FindDownAxis(s, reference, "")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", reference, orient.ErrNoDownAxis)
	}
	jd, ok, err := orient.FindDownAxis(s, joint, "")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", joint, orient.ErrNoDownAxis)
	}
	pole, err := orient.MatchAxes(s, reference, joint, rd.Axis, jd.Axis, opts)
	if err != nil {
		return err
	}
	aim, poleSwap := orient.Swaps(rd.Axis, jd.Axis, pole)

	fmt.Printf("\n%s ← %s\n", joint, reference)
	fmt.Printf("    down: %s / %s\n", jd.Axis, rd.Axis)
	fmt.Printf("    pole: %s ~ %s (%.2f°)", pole.Source, pole.Target, mathutil.Rad2Deg(pole.Angle))
	if pole.Ambiguous {
		fmt.Print(" ambiguous")
	}
	fmt.Printf("\n    swaps: aim %s, pole %s\n", aim, poleSwap)
	return nil
}
