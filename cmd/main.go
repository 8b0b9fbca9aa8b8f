package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/chenBenjamin97/partial-skeleton/pkg/config"
	"github.com/chenBenjamin97/partial-skeleton/pkg/pose"
	"github.com/chenBenjamin97/partial-skeleton/pkg/utils"
	"github.com/spf13/cobra"
	"gocv.io/x/gocv"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "partial-skeleton",
	Short: "Align upper body images onto bottom images and score the merged skeleton",
	Long: `partial-skeleton searches for the scale and horizontal offset that best join an
upper body image with a bottom (legs) image. Every candidate composite is run through
a pose estimator and scored against the naively stacked reference composite.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}

		//create results directory in case it does not exist
		return utils.EnsureDir(cfg.Directory.Results)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./config.yaml)")
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

//newEstimator builds the configured pose estimator, the returned func releases it
func newEstimator(cfg *config.Config) (pose.Estimator, func(), error) {
	switch cfg.Estimator.Kind {
	case config.EstimatorScript:
		return &pose.ScriptEstimator{
			Python:  cfg.Estimator.Python,
			Script:  cfg.Estimator.Script,
			Width:   cfg.Canvas.Width,
			Height:  cfg.Canvas.Height,
			Timeout: cfg.Estimator.Timeout,
		}, func() {}, nil
	default:
		op, err := pose.NewOpenPose(cfg.Estimator.Model, cfg.Canvas.Width, cfg.Canvas.Height, cfg.Estimator.Threshold)
		if err != nil {
			return nil, nil, err
		}
		return op, func() { op.Close() }, nil
	}
}

//show displays img in a window until a key is pressed
func show(title string, img gocv.Mat) {
	window := gocv.NewWindow(title)
	defer window.Close()

	window.IMShow(img)
	window.WaitKey(0)
}

//readImage reads one color image from disk
func readImage(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, fmt.Errorf("readImage: Could not decode '%s'", path)
	}
	return img, nil
}

//writeImage writes img to the results directory
func writeImage(name string, img gocv.Mat) (string, error) {
	path := filepath.Join(cfg.Directory.Results, name)
	if !gocv.IMWrite(path, img) {
		return "", fmt.Errorf("writeImage: Could not write '%s'", path)
	}
	return path, nil
}
