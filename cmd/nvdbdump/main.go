package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lumen3d/lumen/internal/assets"
)

// nvdbdump prints the grid metadata of one or more .nvdb volume containers.
func main() {
	verbose := flag.Bool("v", false, "also print bounding boxes and node counts")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: nvdbdump [-v] file.nvdb ...")
		os.Exit(2)
	}

	exit := 0
	for _, path := range flag.Args() {
		if err := dump(path, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "nvdbdump: %s: %v\n", path, err)
			exit = 1
		}
	}
	os.Exit(exit)
}

func dump(path string, verbose bool) error {
	metas, err := assets.ReadGridMetaData(path)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d grid(s)\n", path, len(metas))
	for i, m := range metas {
		fmt.Printf("  [%d] %-20s type=%-7s voxels=%d\n", i, m.Name, m.Type, m.VoxelCount)
		if !verbose {
			continue
		}
		fmt.Printf("      nodes (leaf..root): %d %d %d %d\n",
			m.NodeCounts[0], m.NodeCounts[1], m.NodeCounts[2], m.NodeCounts[3])
		fmt.Printf("      world bbox: min (%g, %g, %g) max (%g, %g, %g)\n",
			m.WorldBBoxMin[0], m.WorldBBoxMin[1], m.WorldBBoxMin[2],
			m.WorldBBoxMax[0], m.WorldBBoxMax[1], m.WorldBBoxMax[2])
		fmt.Printf("      index bbox: min (%d, %d, %d) max (%d, %d, %d)\n",
			m.IndexBBoxMin[0], m.IndexBBoxMin[1], m.IndexBBoxMin[2],
			m.IndexBBoxMax[0], m.IndexBBoxMax[1], m.IndexBBoxMax[2])
	}
	return nil
}
