//Package report exports the scored candidates of a search as a spreadsheet.
package report

import (
	"fmt"
	"sort"

	"github.com/chenBenjamin97/partial-skeleton/pkg/evaluate"
	"github.com/xuri/excelize/v2"
)

const (
	CandidatesSheet = "Candidates"
	ImagesSheet     = "Images"
)

//ConfidenceHeader names the formula, the rmse z-score is negated so higher is better
const ConfidenceHeader = "confidence = (1-lambda)*z(-rmse) + lambda*z(score)"

var candidateHeader = []interface{}{"bottom", "upper", "scale", "translation", "rmse", "skeleton score", ConfidenceHeader}

//Write stores one row per ranked candidate in the candidates sheet and the distinct
//image identifiers in the images sheet of a new workbook at path
func Write(path string, ranked []evaluate.Ranked) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CandidatesSheet); err != nil {
		return fmt.Errorf("Write: Error, got '%w'", err)
	}
	if _, err := f.NewSheet(ImagesSheet); err != nil {
		return fmt.Errorf("Write: Error, got '%w'", err)
	}

	if err := setRow(f, CandidatesSheet, 1, candidateHeader); err != nil {
		return err
	}
	for i, r := range ranked {
		row := []interface{}{r.Bottom, r.Upper, r.Scale, r.Translation, r.RMSE.Total, r.Score, r.Confidence}
		if err := setRow(f, CandidatesSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := setRow(f, ImagesSheet, 1, []interface{}{"image", "role"}); err != nil {
		return err
	}
	for i, img := range Images(ranked) {
		if err := setRow(f, ImagesSheet, i+2, []interface{}{img.ID, img.Role}); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("Write: Could not save '%s', got '%w'", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("setRow: Error, got '%w'", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("setRow: Error writing '%s' row %d, got '%w'", sheet, row, err)
	}
	return nil
}

//Image is an identifier used by at least one candidate
type Image struct {
	ID   string
	Role string //"upper" or "bottom"
}

//Images returns the distinct upper and bottom identifiers of ranked, uppers first, each group sorted
func Images(ranked []evaluate.Ranked) []Image {
	uppers, bottoms := map[string]bool{}, map[string]bool{}
	for _, r := range ranked {
		uppers[r.Upper] = true
		bottoms[r.Bottom] = true
	}

	images := make([]Image, 0, len(uppers)+len(bottoms))
	for _, group := range []struct {
		role string
		ids  map[string]bool
	}{{"upper", uppers}, {"bottom", bottoms}} {
		ids := make([]string, 0, len(group.ids))
		for id := range group.ids {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			images = append(images, Image{ID: id, Role: group.role})
		}
	}
	return images
}
