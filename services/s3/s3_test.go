package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyFromURL(t *testing.T) {
	driver := New("cellscope-uploads", "us-east-1")

	// Virtual-hosted style.
	key, err := driver.keyFromURL(
		"https://cellscope-uploads.s3.us-east-1.amazonaws.com/results/annotated-1.png")
	assert.NoError(t, err)
	assert.Equal(t, "results/annotated-1.png", key)

	// Path style carries the bucket as the first segment.
	key, err = driver.keyFromURL(
		"https://s3.us-east-1.amazonaws.com/cellscope-uploads/results/annotated-1.png")
	assert.NoError(t, err)
	assert.Equal(t, "results/annotated-1.png", key)

	_, err = driver.keyFromURL("https://s3.us-east-1.amazonaws.com/")
	assert.Error(t, err)
}
