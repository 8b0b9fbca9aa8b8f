//Package config loads the typed configuration of the tool through viper.
package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/chenBenjamin97/partial-skeleton/pkg/search"
	"github.com/chenBenjamin97/partial-skeleton/pkg/utils"
	"github.com/spf13/viper"
)

const (
	EstimatorOpenPose = "openpose"
	EstimatorScript   = "script"
)

type Config struct {
	Canvas    CanvasConfig
	Search    SearchConfig
	Directory DirectoryConfig
	Estimator EstimatorConfig
	BBox      BBoxConfig
	Report    ReportConfig
	Display   DisplayConfig
	HTTP      HTTPConfig
}

type CanvasConfig struct {
	Width  int
	Height int
}

type SearchConfig struct {
	Mode         string
	Scales       []float64
	Translations []int
	Lambda       float64
}

type DirectoryConfig struct {
	Upper   string
	Bottom  string
	Results string
}

type EstimatorConfig struct {
	Kind      string //openpose or script
	Model     string //tensorflow graph, openpose only
	Python    string
	Script    string
	Threshold float64
	Timeout   time.Duration //per inference, script only
}

type BBoxConfig struct {
	Cache string //optional
}

type ReportConfig struct {
	Path string
}

type DisplayConfig struct {
	Show bool
}

type HTTPConfig struct {
	Port string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("canvas.width", utils.CanvasWidth)
	v.SetDefault("canvas.height", utils.CanvasHeight)

	v.SetDefault("search.mode", utils.ModeScale)
	v.SetDefault("search.scales", utils.DefaultScales)
	v.SetDefault("search.translations", utils.DefaultTranslations)
	v.SetDefault("search.lambda", utils.DefaultLambda)

	v.SetDefault("directory.upper", "./images/upper/")
	v.SetDefault("directory.bottom", "./images/bottom/")
	v.SetDefault("directory.results", "./images/results/")

	v.SetDefault("estimator.kind", EstimatorOpenPose)
	v.SetDefault("estimator.model", "./openpose/graph_opt.pb")
	v.SetDefault("estimator.python", "python3")
	v.SetDefault("estimator.script", "./openpose/estimate.py")
	v.SetDefault("estimator.threshold", utils.JointThreshold)
	v.SetDefault("estimator.timeout", time.Minute)

	v.SetDefault("bbox.cache", "")
	v.SetDefault("report.path", "./results.xlsx")
	v.SetDefault("display.show", false)
	v.SetDefault("http.port", "8080")
}

//Load reads the yaml file at path, or config.yaml in the working directory when path is empty.
//A missing config.yaml falls back to the defaults, a missing explicit path is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("Load: Could not read config file, got '%w'", err)
		}
		log.Printf("Load: No config file found, using defaults")
	}

	cfg := &Config{
		Canvas: CanvasConfig{
			Width:  v.GetInt("canvas.width"),
			Height: v.GetInt("canvas.height"),
		},
		Search: SearchConfig{
			Mode:         v.GetString("search.mode"),
			Translations: v.GetIntSlice("search.translations"),
			Lambda:       v.GetFloat64("search.lambda"),
		},
		Directory: DirectoryConfig{
			Upper:   v.GetString("directory.upper"),
			Bottom:  v.GetString("directory.bottom"),
			Results: v.GetString("directory.results"),
		},
		Estimator: EstimatorConfig{
			Kind:      v.GetString("estimator.kind"),
			Model:     v.GetString("estimator.model"),
			Python:    v.GetString("estimator.python"),
			Script:    v.GetString("estimator.script"),
			Threshold: v.GetFloat64("estimator.threshold"),
			Timeout:   v.GetDuration("estimator.timeout"),
		},
		BBox:    BBoxConfig{Cache: v.GetString("bbox.cache")},
		Report:  ReportConfig{Path: v.GetString("report.path")},
		Display: DisplayConfig{Show: v.GetBool("display.show")},
		HTTP:    HTTPConfig{Port: v.GetString("http.port")},
	}

	scales, err := floatSlice(v.Get("search.scales"))
	if err != nil {
		return nil, fmt.Errorf("Load: search.scales, got '%w'", err)
	}
	cfg.Search.Scales = scales

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

//viper has no float slice getter; yaml lists decode as []interface{}.
func floatSlice(value interface{}) ([]float64, error) {
	switch values := value.(type) {
	case []float64:
		return values, nil
	case []interface{}:
		out := make([]float64, 0, len(values))
		for _, raw := range values {
			switch n := raw.(type) {
			case float64:
				out = append(out, n)
			case int:
				out = append(out, float64(n))
			default:
				return nil, fmt.Errorf("floatSlice: not a number '%v'", raw)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("floatSlice: not a list '%v'", value)
}

//Validate checks the settings the search and the estimator depend on
func (c *Config) Validate() error {
	if c.Estimator.Kind != EstimatorOpenPose && c.Estimator.Kind != EstimatorScript {
		return fmt.Errorf("Validate: unknown estimator '%s'", c.Estimator.Kind)
	}
	if c.Estimator.Kind == EstimatorOpenPose && c.Estimator.Model == "" {
		return errors.New("Validate: Missing estimator.model")
	}
	if c.Estimator.Kind == EstimatorScript && c.Estimator.Script == "" {
		return errors.New("Validate: Missing estimator.script")
	}
	if c.Directory.Results == "" {
		return errors.New("Validate: Missing directory.results")
	}
	if err := c.SearchConfig().Validate(); err != nil {
		return fmt.Errorf("Validate: Error, got '%w'", err)
	}
	return nil
}

//SearchConfig returns the search driver settings
func (c *Config) SearchConfig() search.Config {
	return search.Config{
		Mode:         c.Search.Mode,
		Scales:       c.Search.Scales,
		Translations: c.Search.Translations,
		CanvasWidth:  c.Canvas.Width,
		CanvasHeight: c.Canvas.Height,
		Lambda:       c.Search.Lambda,
	}
}
