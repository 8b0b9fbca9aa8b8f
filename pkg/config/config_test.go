package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chenBenjamin97/partial-skeleton/pkg/utils"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "http:\n  port: \"9090\"\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Canvas.Width != utils.CanvasWidth || cfg.Canvas.Height != utils.CanvasHeight {
		t.Errorf("unexpected canvas %+v", cfg.Canvas)
	}
	if cfg.Search.Mode != utils.ModeScale || cfg.Search.Lambda != utils.DefaultLambda {
		t.Errorf("unexpected search %+v", cfg.Search)
	}
	if len(cfg.Search.Scales) != len(utils.DefaultScales) || len(cfg.Search.Translations) != len(utils.DefaultTranslations) {
		t.Errorf("unexpected enumerations %v %v", cfg.Search.Scales, cfg.Search.Translations)
	}
	if cfg.Estimator.Kind != EstimatorOpenPose || cfg.Estimator.Timeout != time.Minute {
		t.Errorf("unexpected estimator %+v", cfg.Estimator)
	}
	if cfg.HTTP.Port != "9090" {
		t.Errorf("expected port override, got %s", cfg.HTTP.Port)
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
search:
  mode: translate
  scales: [0.5, 1]
  translations: [0, 10]
  lambda: 0.5
estimator:
  kind: script
  script: ./estimate.py
  timeout: 30s
directory:
  results: ./out/
display:
  show: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Search.Mode != utils.ModeTranslate || cfg.Search.Lambda != 0.5 {
		t.Errorf("unexpected search %+v", cfg.Search)
	}
	if len(cfg.Search.Scales) != 2 || cfg.Search.Scales[1] != 1 {
		t.Errorf("unexpected scales %v", cfg.Search.Scales)
	}
	if len(cfg.Search.Translations) != 2 || cfg.Search.Translations[1] != 10 {
		t.Errorf("unexpected translations %v", cfg.Search.Translations)
	}
	if cfg.Estimator.Kind != EstimatorScript || cfg.Estimator.Timeout != 30*time.Second {
		t.Errorf("unexpected estimator %+v", cfg.Estimator)
	}
	if !cfg.Display.Show || cfg.Directory.Results != "./out/" {
		t.Errorf("unexpected display/directory %+v %+v", cfg.Display, cfg.Directory)
	}

	sc := cfg.SearchConfig()
	if got := sc.ScaleFactors(); len(got) != 1 || got[0] != 1 {
		t.Errorf("expected translate mode to collapse scales, got %v", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown estimator", "estimator:\n  kind: yolo\n"},
		{"unknown mode", "search:\n  mode: rotate\n"},
		{"negative translation", "search:\n  translations: [-5]\n"},
		{"scale not a number", "search:\n  scales: [big]\n"},
		{"lambda", "search:\n  lambda: 3\n"},
		{"broken yaml", "search: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}
