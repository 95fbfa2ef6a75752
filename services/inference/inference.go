// Package inference holds the client for the external analysis service.
// The service takes one microscopy image and its YOLO annotation file and
// responds with an annotated image, a PNG-normalized copy of the original
// and a per-category cell count summary.
package inference

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cellscope/model/model"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const defaultTimeout = 120 * time.Second

// Result is the decoded response for one analyzed pair.
type Result struct {
	// Annotated image bytes, always PNG.
	AnnotatedImage []byte
	// The original image re-encoded to PNG by the service.
	OriginalImage []byte
	Summary       model.Summary
}

// Analyzer analyzes one image/annotation pair already staged on disk.
type Analyzer interface {
	Analyze(imagePath, annotationPath string) (*Result, error)
}

var _ Analyzer = (*Client)(nil)

// Client calls the analyze endpoint over HTTP. No retries; a transport
// error or non-success status fails the pair.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type analyzeResponse struct {
	AnnotatedImageBase64    string        `json:"annotated_image_base64"`
	ConvertedOriginalBase64 string        `json:"converted_original_base64"`
	Summary                 model.Summary `json:"summary"`
}

func (client *Client) Analyze(imagePath, annotationPath string) (*Result, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := attachFile(writer, "image", imagePath); err != nil {
		return nil, err
	}
	if err := attachFile(writer, "yolo", annotationPath); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, client.endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "build analyze request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "analysis service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 4096))
		log.WithFields(log.Fields{"status": resp.StatusCode,
			"body": string(respBody)}).Error("Analysis service returned non-success")
		return nil, errors.Errorf("analysis service returned status %d", resp.StatusCode)
	}

	var decoded analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, "decode analyze response")
	}

	annotated, err := base64.StdEncoding.DecodeString(decoded.AnnotatedImageBase64)
	if err != nil {
		return nil, errors.Wrap(err, "decode annotated image")
	}
	original, err := base64.StdEncoding.DecodeString(decoded.ConvertedOriginalBase64)
	if err != nil {
		return nil, errors.Wrap(err, "decode original image")
	}

	summary := decoded.Summary
	if summary == nil {
		summary = model.Summary{}
	}

	return &Result{
		AnnotatedImage: annotated,
		OriginalImage:  original,
		Summary:        summary,
	}, nil
}

func attachFile(writer *multipart.Writer, field, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s file", field)
	}
	defer file.Close()

	part, err := writer.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}
