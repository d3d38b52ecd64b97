package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"rig-reorient/internal/datablock"
	"rig-reorient/internal/mathutil"
	"rig-reorient/internal/orient"
	"rig-reorient/internal/skeleton"
)

func main() {
	joint := flag.String("joint", "", "Joint to aim")
	at := flag.String("at", "", "Aim at this node")
	along := flag.String("along", "", "Aim along a world direction \"x,y,z\"")
	up := flag.String("up", "0,0,1", "World up vector \"x,y,z\"")
	aimAxis := flag.String("aim", "x", "Local axis that points at the target")
	poleAxis := flag.String("pole", "z", "Local axis that follows the up vector")
	output := flag.String("output", "", "Output datablock (default: overwrite input)")
	moveChildren := flag.Bool("move-children", false, "Let children follow the joint")
	flag.Parse()

	if flag.NArg() < 1 || *joint == "" || (*at == "") == (*along == "") {
		fmt.Fprintln(os.Stderr, "usage: aimjoint -joint name (-at node | -along x,y,z) [-up x,y,z] <datablock>")
		os.Exit(1)
	}
	path := flag.Arg(0)
	if *output == "" {
		*output = path
	}

	opts := orient.AimOptions{ParentSafe: !*moveChildren}
	var err error
	if opts.Up, err = parseVec(*up); err != nil {
		fmt.Fprintf(os.Stderr, "Error: -up: %v\n", err)
		os.Exit(1)
	}
	if opts.AimAxis, err = mathutil.ParseAxis(*aimAxis); err != nil {
		fmt.Fprintf(os.Stderr, "Error: -aim: %v\n", err)
		os.Exit(1)
	}
	if opts.PoleAxis, err = mathutil.ParseAxis(*poleAxis); err != nil {
		fmt.Fprintf(os.Stderr, "Error: -pole: %v\n", err)
		os.Exit(1)
	}

	db, err := datablock.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading datablock: %v\n", err)
		os.Exit(1)
	}
	s, err := skeleton.FromDatablock(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	kind, err := s.Kind(*joint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	opts.OrientJoint = kind == skeleton.KindJoint

	if *at != "" {
		err = orient.AimAt(s, *joint, *at, opts)
	} else {
		var dir mathutil.Vec3
		if dir, err = parseVec(*along); err == nil {
			err = orient.AimAlong(s, *joint, dir, opts)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := datablock.Save(*output, s.ToDatablock()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing datablock: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved: %s\n", *output)
}

func parseVec(s string) (mathutil.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mathutil.Vec3{}, fmt.Errorf("want 3 comma-separated numbers, got %q", s)
	}
	var v mathutil.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mathutil.Vec3{}, err
		}
		v[i] = f
	}
	return v, nil
}
