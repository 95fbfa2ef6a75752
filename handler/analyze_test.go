package handler

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"cellscope/model/model"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeHandler(t *testing.T) {
	env := setupTestEnv(t)
	env.analyzer.summaries = []model.Summary{{"Activated": 7}}

	w := sendMultipart(env.router, "/api/analyze", nil, []filePart{
		{field: "image", fileName: "cells.png", content: "png-bytes"},
		{field: "annotation", fileName: "cells.txt", content: "0 0.5 0.5 0.1 0.1"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeJSON(t, w)
	assert.True(t, strings.HasPrefix(body["annotatedImageUrl"].(string),
		"https://files.test/results/annotated-"))
	assert.Equal(t, map[string]interface{}{"Activated": float64(7)}, body["summary"])

	// Only the annotated image is stored; nothing is persisted.
	assert.Equal(t, 1, env.fileStore.createCount())
	assert.Equal(t, 0, stagingDirEntries(t, env.staging))
}

func TestAnalyzeHandlerMissingFiles(t *testing.T) {
	env := setupTestEnv(t)

	w := sendMultipart(env.router, "/api/analyze", nil, []filePart{
		{field: "image", fileName: "cells.png", content: "png-bytes"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing image or annotation file", decodeJSON(t, w)["message"])
	assert.Equal(t, 0, env.analyzer.callCount())
}

func TestAnalyzeHandlerServiceFailure(t *testing.T) {
	env := setupTestEnv(t)
	env.analyzer.err = errors.New("analysis service unreachable")

	w := sendMultipart(env.router, "/api/analyze", nil, []filePart{
		{field: "image", fileName: "cells.png", content: "png-bytes"},
		{field: "annotation", fileName: "cells.txt", content: "yolo"},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Processing failed", decodeJSON(t, w)["message"])
	assert.Equal(t, 0, env.fileStore.createCount())
	assert.Equal(t, 0, stagingDirEntries(t, env.staging))
}
