package utils

import (
	"fmt"
	"log"
	"path/filepath"

	"gocv.io/x/gocv"
)

//NamedImage is an image loaded from disk together with its file name, the name is used for reporting only
type NamedImage struct {
	ID  string
	Mat gocv.Mat
}

//LoadImagesFromFolder reads every image file in given directory (sorted by name).
//An unreadable directory is an error, a file that can not be decoded is logged and skipped.
//The caller owns the returned mats and should release them with CloseImages.
func LoadImagesFromFolder(dir string) ([]NamedImage, error) {
	names, err := ListImages(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadImagesFromFolder: Could not list '%s', got '%w'", dir, err)
	}

	images := make([]NamedImage, 0, len(names))
	for _, name := range names {
		mat := gocv.IMRead(filepath.Join(dir, name), gocv.IMReadColor)
		if mat.Empty() {
			log.Printf("LoadImagesFromFolder: Could not decode '%s', skipping", name)
			mat.Close()
			continue
		}
		images = append(images, NamedImage{ID: name, Mat: mat})
	}

	return images, nil
}

//CloseImages releases the mats of given images
func CloseImages(images []NamedImage) {
	for i := range images {
		images[i].Mat.Close()
	}
}
