package main

import (
	"log"

	"github.com/chenBenjamin97/partial-skeleton/pkg/api"
	"github.com/chenBenjamin97/partial-skeleton/pkg/search"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the HTTP api. POST /api/Search runs one search in the background over the
configured image directories, GET /api/Result and GET /api/SkeletonImage return its outcome.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "", "Port to listen on (default http.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.HTTP.Port = port
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

	run := func() (*search.Result, error) {
		res, err := searchDirectories(cfg, est, cache, false)
		if err != nil {
			return nil, err
		}
		if cache != nil {
			if err := cache.Save(); err != nil {
				log.Printf("runServe: Could not save bbox cache, got '%v'", err)
			}
		}
		return res, nil
	}

	r := api.SetRouter(api.Directories{Upper: cfg.Directory.Upper, Bottom: cfg.Directory.Bottom}, run)
	log.Printf("runServe: Listening on port %s", cfg.HTTP.Port)
	return r.Run(":" + cfg.HTTP.Port)
}
