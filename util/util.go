package util

import (
	"fmt"
	"net/mail"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var nonFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func GetUUID() string {
	return uuid.New().String()
}

func IsValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func IsEmail(str string) bool {
	_, err := mail.ParseAddress(str)
	return err == nil
}

// SanitizeFilename replaces characters unsafe for filenames or
// content-disposition headers with underscores.
func SanitizeFilename(name string) string {
	return nonFilenameChars.ReplaceAllString(name, "_")
}

// FileExtension returns the lower-cased extension of name including the dot.
func FileExtension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// ExtensionFromURL returns the extension of the path component of a stored
// object URL, without the dot. Defaults to jpg when the URL has none.
func ExtensionFromURL(url string) string {
	ext := strings.TrimPrefix(FileExtension(url), ".")
	if ext == "" {
		return "jpg"
	}
	return ext
}

func IfThenElse(condition bool, a interface{}, b interface{}) interface{} {
	if condition {
		return a
	}
	return b
}

// StringValueIn returns true if value is present in list.
func StringValueIn(value string, list []string) bool {
	for _, str := range list {
		if value == str {
			return true
		}
	}
	return false
}

// UniqueObjectKey builds an object key of the form <prefix>-<uuid><ext>.
func UniqueObjectKey(prefix, ext string) string {
	return fmt.Sprintf("%s-%s%s", prefix, GetUUID(), ext)
}
