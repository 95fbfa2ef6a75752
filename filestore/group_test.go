package filestore

import (
	"fmt"
	"io"
	"io/ioutil"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingFileManager struct {
	mu      sync.Mutex
	bodies  map[string]string
	deletes []string
	failOn  string
}

func newRecordingFileManager() *recordingFileManager {
	return &recordingFileManager{bodies: map[string]string{}}
}

func (fm *recordingFileManager) Create(folder, fileName string, reader io.Reader, contentType string) (string, error) {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	if fm.failOn == fileName {
		return "", fmt.Errorf("refused %s", fileName)
	}
	body, _ := ioutil.ReadAll(reader)
	url := "https://files.test/" + folder + "/" + fileName
	fm.bodies[url] = string(body)
	return url, nil
}

func (fm *recordingFileManager) Delete(url string) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.deletes = append(fm.deletes, url)
	delete(fm.bodies, url)
	return nil
}

func TestPutGroup(t *testing.T) {
	fm := newRecordingFileManager()

	urls, err := PutGroup(fm, []Object{
		{Folder: ResultsFolder, Name: "annotated-1.png", Body: []byte("a"), ContentType: "image/png"},
		{Folder: ResultsFolder, Name: "original-1.png", Body: []byte("b"), ContentType: "image/png"},
		{Folder: AnnotationsFolder, Name: "1.txt", Body: []byte("c"), ContentType: "text/plain"},
	})
	assert.NoError(t, err)

	// URLs come back in input order regardless of upload interleaving.
	assert.Equal(t, []string{
		"https://files.test/results/annotated-1.png",
		"https://files.test/results/original-1.png",
		"https://files.test/uploads/annotations/1.txt",
	}, urls)
	assert.Equal(t, "a", fm.bodies[urls[0]])
	assert.Empty(t, fm.deletes)
}

func TestPutGroupCompensatesOnFailure(t *testing.T) {
	fm := newRecordingFileManager()
	fm.failOn = "original-1.png"

	urls, err := PutGroup(fm, []Object{
		{Folder: ResultsFolder, Name: "annotated-1.png", Body: []byte("a")},
		{Folder: ResultsFolder, Name: "original-1.png", Body: []byte("b")},
		{Folder: AnnotationsFolder, Name: "1.txt", Body: []byte("c")},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "original-1.png")
	assert.Nil(t, urls)

	// Succeeded members were rolled back; the store holds nothing.
	assert.Empty(t, fm.bodies)
	assert.Len(t, fm.deletes, 2)
}

func TestObjectNames(t *testing.T) {
	annotated := AnnotatedImageName()
	assert.True(t, strings.HasPrefix(annotated, "annotated-"))
	assert.True(t, strings.HasSuffix(annotated, ".png"))
	assert.NotEqual(t, annotated, AnnotatedImageName())

	original := OriginalImageName()
	assert.True(t, strings.HasPrefix(original, "original-"))
	assert.True(t, strings.HasSuffix(original, ".png"))

	assert.True(t, strings.HasSuffix(AnnotationFileName("cells.txt"), ".txt"))
	assert.NotEqual(t, AnnotationFileName("cells.txt"), AnnotationFileName("cells.txt"))
}
