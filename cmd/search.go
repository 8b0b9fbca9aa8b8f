package main

import (
	"fmt"
	"log"

	"github.com/chenBenjamin97/partial-skeleton/pkg/bbox"
	"github.com/chenBenjamin97/partial-skeleton/pkg/config"
	"github.com/chenBenjamin97/partial-skeleton/pkg/evaluate"
	"github.com/chenBenjamin97/partial-skeleton/pkg/pose"
	"github.com/chenBenjamin97/partial-skeleton/pkg/report"
	"github.com/chenBenjamin97/partial-skeleton/pkg/search"
	"github.com/chenBenjamin97/partial-skeleton/pkg/utils"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the best scale and translation over the upper and bottom image directories",
	Long: `Search every (upper, bottom, scale, translation) hypothesis, rank the scored
candidates and report the winner. The candidates are exported to report.path and the
winner composite, with its skeleton drawn, is written to the results directory.`,
	RunE: runSearch,
}

var (
	searchMode  string
	searchNoBar bool
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchMode, "mode", "", "Override search.mode (scale or translate)")
	searchCmd.Flags().BoolVar(&searchNoBar, "no-progress", false, "Do not show a progress bar")
}

//loadCache loads the bbox cache when one is configured, nil otherwise
func loadCache(cfg *config.Config) (*bbox.Cache, error) {
	if cfg.BBox.Cache == "" {
		return nil, nil
	}
	return bbox.Load(cfg.BBox.Cache)
}

//searchDirectories loads both image directories and runs one search over them
func searchDirectories(cfg *config.Config, est pose.Estimator, cache *bbox.Cache, progress bool) (*search.Result, error) {
	uppers, err := utils.LoadImagesFromFolder(cfg.Directory.Upper)
	if err != nil {
		return nil, err
	}
	defer utils.CloseImages(uppers)

	bottoms, err := utils.LoadImagesFromFolder(cfg.Directory.Bottom)
	if err != nil {
		return nil, err
	}
	defer utils.CloseImages(bottoms)

	log.Printf("searchDirectories: %d upper and %d bottom images", len(uppers), len(bottoms))

	d := search.NewDriver(est, cfg.SearchConfig(), cache)
	if !progress {
		return d.Run(uppers, bottoms)
	}

	bar := progressbar.NewOptions(d.Total(len(uppers), len(bottoms)),
		progressbar.OptionSetDescription("Searching"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("hypotheses"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
	d.OnHypothesis = func(evaluate.Hypothesis) {
		bar.Add(1)
	}

	res, err := d.Run(uppers, bottoms)
	bar.Finish()
	fmt.Println()
	return res, err
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchMode != "" {
		cfg.Search.Mode = searchMode
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	est, release, err := newEstimator(cfg)
	if err != nil {
		return err
	}
	defer release()

	cache, err := loadCache(cfg)
	if err != nil {
		return err
	}

	res, err := searchDirectories(cfg, est, cache, !searchNoBar)
	if err != nil {
		return err
	}
	defer res.Close()

	fmt.Printf("Scored %d of %d hypotheses (%d skipped)\n", res.Population.Len(), res.Hypotheses, res.Skipped)
	fmt.Printf("Mean RMSE: %.3f\n", res.MeanRMSE)
	fmt.Printf("Winner: upper '%s' bottom '%s' scale %v translation %d (rmse %.3f, confidence %.3f)\n",
		res.Winner.Upper, res.Winner.Bottom, res.Winner.Scale, res.Winner.Translation, res.Winner.RMSE.Total, res.Winner.Confidence)

	if err := report.Write(cfg.Report.Path, res.Ranked); err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", cfg.Report.Path)

	drawn, err := res.Render()
	if err != nil {
		return err
	}
	defer drawn.Close()

	path, err := writeImage("winner.png", drawn)
	if err != nil {
		return err
	}
	fmt.Printf("Winner composite written to %s\n", path)

	if cfg.Display.Show {
		show("winner", drawn)
	}

	if cache != nil {
		if err := cache.Save(); err != nil {
			return err
		}
		log.Printf("runSearch: Saved %d bbox entries to '%s'", cache.Len(), cfg.BBox.Cache)
	}

	return nil
}
