package staging

import (
	"bytes"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func multipartHeader(t *testing.T, field, fileName, content string) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, fileName)
	assert.NoError(t, err)
	part.Write([]byte(content))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	assert.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File[field][0]
}

func TestStageSave(t *testing.T) {
	dir := t.TempDir()
	stage, err := New(dir)
	assert.NoError(t, err)

	header := multipartHeader(t, "image", "cells.PNG", "png-bytes")
	path, err := stage.Save("image", header)
	assert.NoError(t, err)

	// Field-prefixed name with the lower-cased client extension.
	assert.True(t, strings.HasPrefix(filepath.Base(path), "image-"))
	assert.True(t, strings.HasSuffix(path, ".png"))

	content, err := ioutil.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))
}

func TestStageCleanup(t *testing.T) {
	dir := t.TempDir()
	stage, err := New(dir)
	assert.NoError(t, err)

	_, err = stage.Save("image", multipartHeader(t, "image", "a.png", "a"))
	assert.NoError(t, err)
	_, err = stage.Save("annotation", multipartHeader(t, "annotation", "a.txt", "b"))
	assert.NoError(t, err)

	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 2)

	stage.Cleanup()
	entries, _ = os.ReadDir(dir)
	assert.Empty(t, entries)

	// Idempotent.
	stage.Cleanup()
}

func TestNewDefaultsToTempDir(t *testing.T) {
	stage, err := New("")
	assert.NoError(t, err)

	path, err := stage.Save("image", multipartHeader(t, "image", "a.png", "a"))
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, os.TempDir()))

	stage.Cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
