package filestore

import (
	"io"
	"path/filepath"

	U "cellscope/util"
)

// Logical folders objects are filed under.
const (
	ResultsFolder     = "results"
	AnnotationsFolder = "uploads/annotations"
)

// FileManager stores binary artifacts under generated keys and returns a
// stable retrieval URL for each.
type FileManager interface {
	// Create uploads the object and returns its retrieval URL.
	Create(folder, fileName string, reader io.Reader, contentType string) (url string, err error)
	// Delete removes a previously created object by its URL. Best effort;
	// used only to compensate partially failed upload groups.
	Delete(url string) error
}

// AnnotatedImageName returns a collision resistant object name for an
// annotated result image. The inference service always responds with PNG.
func AnnotatedImageName() string {
	return U.UniqueObjectKey("annotated", ".png")
}

// OriginalImageName returns an object name for the normalized original image.
func OriginalImageName() string {
	return U.UniqueObjectKey("original", ".png")
}

// AnnotationFileName returns an object name for an uploaded annotation file,
// keeping the client supplied extension.
func AnnotationFileName(originalName string) string {
	return U.GetUUID() + filepath.Ext(originalName)
}
