package s3

import (
	"io"
	"net/url"
	"strings"

	"cellscope/filestore"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
)

const (
	separator = "/"
)

var _ filestore.FileManager = (*S3Driver)(nil)

type S3Driver struct {
	uploader   *s3manager.Uploader
	s3         *s3.S3
	BucketName string
	Region     string
}

func New(bucketName, region string) *S3Driver {
	sess := session.New(aws.NewConfig().WithRegion(region))
	return &S3Driver{
		uploader:   s3manager.NewUploader(sess),
		s3:         s3.New(sess),
		BucketName: bucketName,
		Region:     region,
	}
}

func (sd *S3Driver) Create(folder, fileName string, reader io.Reader, contentType string) (string, error) {
	output, err := sd.uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(sd.BucketName),
		Key:         aws.String(folder + separator + fileName),
		Body:        reader,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return output.Location, nil
}

func (sd *S3Driver) Delete(objectURL string) error {
	key, err := sd.keyFromURL(objectURL)
	if err != nil {
		return err
	}

	_, err = sd.s3.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(sd.BucketName),
		Key:    aws.String(key),
	})
	return err
}

func (sd *S3Driver) keyFromURL(objectURL string) (string, error) {
	parsed, err := url.Parse(objectURL)
	if err != nil {
		return "", errors.Wrap(err, "parse object url")
	}

	key := strings.TrimPrefix(parsed.Path, "/")
	// Path-style URLs carry the bucket as the first path segment.
	key = strings.TrimPrefix(key, sd.BucketName+separator)
	if key == "" {
		return "", errors.Errorf("no object key on url %q", objectURL)
	}
	return key, nil
}
