package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"chosenoffset.com/deepruins/internal/assets"
)

func main() {
	dir := flag.String("out", "assets", "directory to write the placeholder PNGs into")
	flag.Parse()

	fmt.Println("Deep Ruins Placeholder Graphics Generator")
	fmt.Println("=========================================")
	fmt.Println()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	names := make([]string, 0, len(assets.Manifest))
	for name := range assets.Manifest {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(*dir, assets.Manifest[name])
		if err := assets.SavePNG(assets.Placeholder(name), path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  %-20s -> %s\n", name, path)
	}

	fmt.Println()
	fmt.Printf("Done! Point asset_dir at %s to use them.\n", *dir)
}
