// Package staging writes incoming multipart files to a local temporary
// directory before they are forwarded to the analysis service. Every
// request gets one Stage; Cleanup runs on success and failure paths alike
// so the staging directory cannot grow unbounded.
package staging

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	U "cellscope/util"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Stage struct {
	dir   string
	paths []string
}

// New prepares a stage rooted at dir, creating it if needed. An empty
// dir falls back to the OS temp dir.
func New(dir string) (*Stage, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "cellscope-staging")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create staging dir")
	}
	return &Stage{dir: dir}, nil
}

// Save writes the uploaded file under a generated name and returns its
// path. The field name keeps staged files attributable when inspecting
// the directory.
func (stage *Stage) Save(field string, header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", errors.Wrapf(err, "open uploaded %s", field)
	}
	defer src.Close()

	name := field + "-" + U.GetUUID() + U.FileExtension(header.Filename)
	path := filepath.Join(stage.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "stage file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", errors.Wrap(err, "write staged file")
	}

	stage.paths = append(stage.paths, path)
	return path, nil
}

// Cleanup deletes every staged file. Safe to call more than once.
func (stage *Stage) Cleanup() {
	for _, path := range stage.paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.WithField("path", path).WithError(err).Error("Failed to remove staged file")
		}
	}
	stage.paths = nil
}
