package gcstorage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cellscope/filestore"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
)

const (
	separator     = "/"
	publicBaseURL = "https://storage.googleapis.com"
)

var _ filestore.FileManager = (*GCSDriver)(nil)

type GCSDriver struct {
	client     *storage.Client
	BucketName string
}

func New(bucketName string) (*GCSDriver, error) {
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSDriver{
		client:     client,
		BucketName: bucketName,
	}, nil
}

func (gcsd *GCSDriver) Create(folder, fileName string, reader io.Reader, contentType string) (string, error) {
	ctx := context.Background()

	key := folder + separator + fileName
	w := gcsd.client.Bucket(gcsd.BucketName).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, reader); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s", publicBaseURL, gcsd.BucketName, key), nil
}

func (gcsd *GCSDriver) Delete(objectURL string) error {
	parsed, err := url.Parse(objectURL)
	if err != nil {
		return errors.Wrap(err, "parse object url")
	}

	key := strings.TrimPrefix(parsed.Path, "/")
	key = strings.TrimPrefix(key, gcsd.BucketName+separator)
	if key == "" {
		return errors.Errorf("no object key on url %q", objectURL)
	}

	ctx := context.Background()
	return gcsd.client.Bucket(gcsd.BucketName).Object(key).Delete(ctx)
}
