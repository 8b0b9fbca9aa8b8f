package utils

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//InSlice returns true if given string appears in given slice
func InSlice(lookingFor string, slice []string) bool {
	for _, s := range slice {
		if s == lookingFor {
			return true
		}
	}

	return false
}

//ListDir returns a sorted list of files/ directories in given path
func ListDir(path string) ([]string, error) {
	names := make([]string, 0)
	if files, err := ioutil.ReadDir(path); err != nil {
		return nil, fmt.Errorf("ListDir: Error, got '%w'", err)
	} else {
		for _, f := range files {
			names = append(names, f.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}

//ListImages returns the sorted names of image files (by extension) in given path
func ListImages(path string) ([]string, error) {
	names, err := ListDir(path)
	if err != nil {
		return nil, err
	}

	images := make([]string, 0, len(names))
	for _, name := range names {
		if InSlice(strings.ToLower(filepath.Ext(name)), ImageExtensions) {
			images = append(images, name)
		}
	}

	return images, nil
}

//EnsureDir creates given directory (and parents) in case it does not exist
func EnsureDir(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(path, 0766); err != nil {
				return fmt.Errorf("EnsureDir: Error creating '%s', got '%w'", path, err)
			}
			return nil
		}
		return fmt.Errorf("EnsureDir: Error, got '%w'", err)
	}

	return nil
}
