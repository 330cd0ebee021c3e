package util

import (
	"fmt"
	"os"
)

// MissingInputError reports a required input file that does not exist
type MissingInputError struct {
	Title string
	Path  string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Path)
}

// IsFile reports whether path names an existing regular file
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// CheckInputs verifies the frequency file and, when given, the cluster and vector files
func CheckInputs(freqsPath, clustersPath, vectorsPath string) error {
	if !IsFile(freqsPath) {
		return &MissingInputError{Title: "No frequencies file found", Path: freqsPath}
	}
	if clustersPath != "" && !IsFile(clustersPath) {
		return &MissingInputError{Title: "No Brown clusters file found", Path: clustersPath}
	}
	if vectorsPath != "" && !IsFile(vectorsPath) {
		return &MissingInputError{Title: "No word vectors file found", Path: vectorsPath}
	}
	return nil
}
