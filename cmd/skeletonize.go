package main

import (
	"errors"
	"fmt"

	"github.com/chenBenjamin97/partial-skeleton/pkg/geometry"
	"github.com/chenBenjamin97/partial-skeleton/pkg/search"
	"github.com/spf13/cobra"
)

var skeletonizeCmd = &cobra.Command{
	Use:   "skeletonize <dummy> <legs>",
	Short: "Re-pose a full body dummy above a legs image and draw the legs skeleton",
	Long: `Fit the dummy's (right hip, left hip, left ear) triangle onto --hip, flip it
vertically, place the legs image below the dummy's left hip and draw the skeleton
estimated on the result. Only the legs region is written.`,
	Args: cobra.ExactArgs(2),
	RunE: runSkeletonize,
}

var hipPoints []float64

func init() {
	rootCmd.AddCommand(skeletonizeCmd)

	skeletonizeCmd.Flags().Float64SliceVar(&hipPoints, "hip", nil, "Target triangle in pixels: x1,y1,x2,y2,x3,y3 (right hip, left hip, left ear)")
	skeletonizeCmd.MarkFlagRequired("hip")
}

func hipTriangle(points []float64) (geometry.Triangle, error) {
	var tri geometry.Triangle
	if len(points) != 6 {
		return tri, errors.New("hipTriangle: --hip needs exactly 6 values")
	}
	for i := range tri {
		tri[i] = geometry.Pt(points[2*i], points[2*i+1])
	}
	return tri, nil
}

func runSkeletonize(cmd *cobra.Command, args []string) error {
	hip, err := hipTriangle(hipPoints)
	if err != nil {
		return err
	}

	dummy, err := readImage(args[0])
	if err != nil {
		return err
	}
	defer dummy.Close()

	legs, err := readImage(args[1])
	if err != nil {
		return err
	}
	defer legs.Close()

	est, release, err := newEstimator(cfg)
	if err != nil {
		return err
	}
	defer release()

	out, err := search.Skeletonize(est, dummy, legs, hip)
	if err != nil {
		return err
	}
	defer out.Close()

	path, err := writeImage("skeleton_"+baseName(args[1])+".png", out)
	if err != nil {
		return err
	}
	fmt.Printf("Skeleton written to %s\n", path)

	if cfg.Display.Show {
		show("skeleton", out)
	}
	return nil
}
