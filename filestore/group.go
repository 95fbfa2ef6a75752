package filestore

import (
	"bytes"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Object is one member of an upload group.
type Object struct {
	Folder      string
	Name        string
	Body        []byte
	ContentType string
}

// PutGroup uploads the objects concurrently and returns their URLs in
// input order. If any member fails, members that already succeeded are
// deleted best effort before the first error is returned, so a failed
// group leaves nothing behind on the store.
func PutGroup(fm FileManager, objects []Object) ([]string, error) {
	urls := make([]string, len(objects))
	uploadErrs := make([]error, len(objects))

	var wg sync.WaitGroup
	for i := range objects {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			object := &objects[i]
			url, err := fm.Create(object.Folder, object.Name,
				bytes.NewReader(object.Body), object.ContentType)
			if err != nil {
				uploadErrs[i] = errors.Wrapf(err, "upload %s/%s", object.Folder, object.Name)
				return
			}
			urls[i] = url
		}(i)
	}
	wg.Wait()

	var firstErr error
	for _, err := range uploadErrs {
		if err != nil {
			firstErr = err
			break
		}
	}
	if firstErr == nil {
		return urls, nil
	}

	// Compensate uploads that made it through.
	for i, url := range urls {
		if url == "" {
			continue
		}
		if err := fm.Delete(url); err != nil {
			log.WithFields(log.Fields{"url": url,
				"object": objects[i].Name}).WithError(err).Error("Failed to delete orphan upload")
		}
	}

	return nil, firstErr
}
