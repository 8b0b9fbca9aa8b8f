package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chenBenjamin97/partial-skeleton/pkg/search"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <first> <second>",
	Short: "Splice the top of one full body image onto the legs of another and compare the skeletons",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func runCompare(cmd *cobra.Command, args []string) error {
	first, err := readImage(args[0])
	if err != nil {
		return err
	}
	defer first.Close()

	second, err := readImage(args[1])
	if err != nil {
		return err
	}
	defer second.Close()

	est, release, err := newEstimator(cfg)
	if err != nil {
		return err
	}
	defer release()

	cmp, err := search.Compare(est, first, second)
	if err != nil {
		return err
	}
	defer cmp.Close()

	fmt.Printf("RMSE x: %.3f y: %.3f total: %.3f\n", cmp.RMSE.X, cmp.RMSE.Y, cmp.RMSE.Total)
	fmt.Printf("Reference length (left knee to left ankle): %.3f\n", cmp.ReferenceLength)

	name := baseName(args[0]) + "_" + baseName(args[1])
	if _, err := writeImage(name+"_merged.png", cmp.Merged); err != nil {
		return err
	}
	path, err := writeImage(name+"_legs.png", cmp.Legs)
	if err != nil {
		return err
	}
	fmt.Printf("Legs written to %s\n", path)

	if cfg.Display.Show {
		show("legs", cmp.Legs)
	}
	return nil
}
