package disk

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"cellscope/filestore"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var _ filestore.FileManager = (*DiskDriver)(nil)

// DiskDriver stores objects under a local base directory and returns
// URLs under the configured public base. Used for development runs; the
// app serves baseDir on the base URL's path.
type DiskDriver struct {
	baseDir string
	baseURL string
}

func New(baseDir, baseURL string) *DiskDriver {
	return &DiskDriver{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (dd *DiskDriver) BaseDir() string {
	return dd.baseDir
}

func (dd *DiskDriver) Create(folder, fileName string, reader io.Reader, contentType string) (string, error) {
	dir := filepath.Join(dd.baseDir, folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.WithError(err).Errorln("Failed to create dir")
		return "", err
	}

	file, err := os.Create(filepath.Join(dir, fileName))
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return "", err
	}

	return dd.baseURL + "/" + folder + "/" + fileName, nil
}

func (dd *DiskDriver) Delete(objectURL string) error {
	parsed, err := url.Parse(objectURL)
	if err != nil {
		return errors.Wrap(err, "parse object url")
	}

	base, err := url.Parse(dd.baseURL)
	if err != nil {
		return err
	}

	key := strings.TrimPrefix(parsed.Path, base.Path)
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return errors.Errorf("no object key on url %q", objectURL)
	}

	return os.Remove(filepath.Join(dd.baseDir, filepath.FromSlash(key)))
}
