package main

import (
	"flag"
	"fmt"
	"os"

	"rig-reorient/internal/datablock"
	"rig-reorient/internal/mathutil"
	"rig-reorient/internal/orient"
	"rig-reorient/internal/skeleton"
)

func main() {
	joint := flag.String("joint", "", "Joint to rebuild")
	aimFrom := flag.String("aim-from", "", "Old axis fed into the aim row (x, y, z, -x, -y, -z)")
	aimTo := flag.String("aim-to", "", "Row that takes the aim axis")
	poleFrom := flag.String("pole-from", "", "Old axis fed into the pole row")
	poleTo := flag.String("pole-to", "", "Row that takes the pole axis")
	output := flag.String("output", "", "Output datablock (default: overwrite input)")
	moveChildren := flag.Bool("move-children", false, "Let children follow the joint")
	legacyZ := flag.Bool("legacy-z", false, "Feed old y into a row asked to take old z")
	swapChannels := flag.Bool("swap-channels", false, "Swap joint-orient and rotate values instead")
	flag.Parse()

	if flag.NArg() < 1 || *joint == "" {
		fmt.Fprintln(os.Stderr, "usage: swapaxis -joint name -aim-from a -aim-to b [-pole-from c -pole-to d] <datablock>")
		os.Exit(1)
	}
	path := flag.Arg(0)
	if *output == "" {
		*output = path
	}

	var axes [4]mathutil.Axis
	for i, s := range []string{*aimFrom, *aimTo, *poleFrom, *poleTo} {
		a, err := mathutil.ParseAxis(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		axes[i] = a
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

	if *swapChannels {
		err = s.SwapChannels(*joint)
	} else {
		var kind skeleton.Kind
		if kind, err = s.Kind(*joint); err == nil {
			aim := orient.Swap{From: axes[0], To: axes[1]}
			pole := orient.Swap{From: axes[2], To: axes[3]}
			err = orient.SwapAxis(s, *joint, aim, pole, orient.SwapOptions{
				OrientJoint:   kind == skeleton.KindJoint,
				ParentSafe:    !*moveChildren,
				LegacyZSource: *legacyZ,
			})
			fmt.Printf("%s: aim %s, pole %s\n", *joint, aim, pole)
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
