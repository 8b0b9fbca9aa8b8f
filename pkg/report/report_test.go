package report

import (
	"path/filepath"
	"testing"

	"github.com/chenBenjamin97/partial-skeleton/pkg/evaluate"
	"github.com/xuri/excelize/v2"
)

func ranked() []evaluate.Ranked {
	candidate := func(upper, bottom string, scale float64, t int, rmse, score, confidence float64) evaluate.Ranked {
		return evaluate.Ranked{
			OptimalParams: &evaluate.OptimalParams{
				Hypothesis: evaluate.Hypothesis{Upper: upper, Bottom: bottom, Scale: scale, Translation: t},
				RMSE:       evaluate.RMSE{Total: rmse},
				Score:      score,
			},
			Confidence: confidence,
		}
	}
	return []evaluate.Ranked{
		candidate("u2.png", "b1.png", 0.5, 0, 3.5, 5.1, 0.7),
		candidate("u1.png", "b1.png", 0.5, 5, 7.25, 4.9, -0.7),
		candidate("u1.png", "b2.png", 0.6, 5, 1, 5, 0),
	}
}

func TestImages(t *testing.T) {
	got := Images(ranked())
	want := []Image{{"u1.png", "upper"}, {"u2.png", "upper"}, {"b1.png", "bottom"}, {"b2.png", "bottom"}}
	if len(got) != len(want) {
		t.Fatalf("expected %d images, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("image %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	if err := Write(path, ranked()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("could not open report: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(CandidatesSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "bottom" || rows[0][6] != ConfidenceHeader {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "b1.png" || rows[1][1] != "u2.png" || rows[1][3] != "0" || rows[1][4] != "3.5" {
		t.Errorf("unexpected first row %v", rows[1])
	}
	if rows[2][4] != "7.25" {
		t.Errorf("unexpected rmse cell %q", rows[2][4])
	}

	images, err := f.GetRows(ImagesSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 5 || images[1][0] != "u1.png" || images[4][1] != "bottom" {
		t.Errorf("unexpected images sheet %v", images)
	}
}

func TestWrite_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "results.xlsx")
	if err := Write(path, ranked()); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
