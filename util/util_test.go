package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("ada@example.com"))
	assert.True(t, IsEmail("ada+lab@example.co.uk"))
	assert.False(t, IsEmail("not-an-email"))
	assert.False(t, IsEmail(""))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "experiment_1", SanitizeFilename("experiment 1"))
	assert.Equal(t, "a_b_c.png", SanitizeFilename("a/b:c.png"))
	assert.Equal(t, "plain-name_v2.txt", SanitizeFilename("plain-name_v2.txt"))
}

func TestFileExtension(t *testing.T) {
	assert.Equal(t, ".png", FileExtension("cells.PNG"))
	assert.Equal(t, ".txt", FileExtension("labels.txt"))
	assert.Equal(t, "", FileExtension("no-extension"))
}

func TestExtensionFromURL(t *testing.T) {
	assert.Equal(t, "png", ExtensionFromURL("https://files.test/results/annotated-1.png"))
	assert.Equal(t, "tiff", ExtensionFromURL("https://files.test/results/scan.TIFF"))
	// Defaults when the URL carries no extension.
	assert.Equal(t, "jpg", ExtensionFromURL("https://files.test/results/raw"))
	assert.Equal(t, "jpg", ExtensionFromURL(""))
}

func TestStringValueIn(t *testing.T) {
	list := []string{".jpg", ".png"}
	assert.True(t, StringValueIn(".png", list))
	assert.False(t, StringValueIn(".gif", list))
	assert.False(t, StringValueIn(".png", nil))
}

func TestUniqueObjectKey(t *testing.T) {
	key := UniqueObjectKey("annotated", ".png")
	assert.True(t, strings.HasPrefix(key, "annotated-"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	uuidPart := strings.TrimSuffix(strings.TrimPrefix(key, "annotated-"), ".png")
	assert.True(t, IsValidUUID(uuidPart))
	assert.NotEqual(t, key, UniqueObjectKey("annotated", ".png"))
}
