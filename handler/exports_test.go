package handler

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"cellscope/model/model"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestExportDatasetExcelHandler(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "ada@example.com")
	dataset := env.createDataset(t, user, "experiment-1")

	w := sendGET(env.router, "/api/export/dataset/"+dataset.ID.Hex()+"/excel")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, excelContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "experiment-1_results.xlsx")

	// xlsx files are zip archives.
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestExportDatasetExcelHandlerMultiple(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "ada@example.com")

	dataset, errCode := env.store.CreateDataset(&model.Dataset{
		Name:   "batch-1",
		UserID: user.ID,
		Images: []string{"https://files.test/results/a.png", "https://files.test/results/b.png"},
		ModelOutput: model.ModelOutput{
			Type: model.ModelOutputMultiple,
			Results: []model.AnalysisResult{
				{
					Annotated: "https://files.test/results/a.png",
					Summary:   model.Summary{"Resting": 1},
					ImageName: "a.png", AnnotationName: "a.txt",
				},
				{
					Annotated: "https://files.test/results/b.png",
					Summary:   model.Summary{"Activated": 2},
					ImageName: "b.png", AnnotationName: "b.txt",
				},
			},
			TotalSummary: model.Summary{"Resting": 1, "Activated": 2},
		},
	})
	assert.Equal(t, http.StatusCreated, errCode)

	w := sendGET(env.router, "/api/export/dataset/"+dataset.ID.Hex()+"/excel")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestExportDatasetExcelHandlerErrors(t *testing.T) {
	env := setupTestEnv(t)

	w := sendGET(env.router, "/api/export/dataset/not-an-id/excel")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = sendGET(env.router, "/api/export/dataset/"+primitive.NewObjectID().Hex()+"/excel")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportUserDatasetsExcelHandler(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "ada@example.com")
	env.createDataset(t, user, "run-1")
	env.createDataset(t, user, "run-2")

	w := sendGET(env.router, "/api/export/user/"+user.ID.Hex()+"/excel")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "all_datasets_results.xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestExportUserDatasetsExcelHandlerNoDatasets(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "ada@example.com")

	w := sendGET(env.router, "/api/export/user/"+user.ID.Hex()+"/excel")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No datasets found", decodeJSON(t, w)["message"])

	w = sendGET(env.router, "/api/export/user/not-an-id/excel")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportDatasetZipHandler(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "ada@example.com")

	// Serve the stored images the export will download.
	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image-bytes-for-" + r.URL.Path))
	}))
	defer images.Close()

	dataset, errCode := env.store.CreateDataset(&model.Dataset{
		Name:   "experiment 1",
		UserID: user.ID,
		Images: []string{images.URL + "/results/annotated-x.png"},
		ModelOutput: model.ModelOutput{
			Type:      model.ModelOutputSingle,
			Original:  images.URL + "/results/original-x.png",
			Annotated: images.URL + "/results/annotated-x.png",
			Summary:   model.Summary{"Resting": 2},
		},
	})
	assert.Equal(t, http.StatusCreated, errCode)

	w := sendGET(env.router, "/api/export/dataset/"+dataset.ID.Hex()+"/zip")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "experiment_1_images.zip")

	reader, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	assert.NoError(t, err)

	names := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		names = append(names, file.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"experiment_1/original.png",
		"experiment_1/predicted.png",
	}, names)
}

func TestExportDatasetZipHandlerMultiple(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "ada@example.com")

	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image-bytes"))
	}))
	defer images.Close()

	dataset, errCode := env.store.CreateDataset(&model.Dataset{
		Name:   "batch-1",
		UserID: user.ID,
		ModelOutput: model.ModelOutput{
			Type: model.ModelOutputMultiple,
			Results: []model.AnalysisResult{
				{
					Original:  images.URL + "/results/o1.png",
					Annotated: images.URL + "/results/a1.png",
					ImageName: "sample one.png",
				},
				{
					Original:  images.URL + "/results/o2.png",
					Annotated: images.URL + "/results/a2.png",
				},
			},
		},
	})
	assert.Equal(t, http.StatusCreated, errCode)

	w := sendGET(env.router, "/api/export/dataset/"+dataset.ID.Hex()+"/zip")
	assert.Equal(t, http.StatusOK, w.Code)

	reader, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	assert.NoError(t, err)

	names := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		names = append(names, file.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"File_1_sample_one.png/original.png",
		"File_1_sample_one.png/predicted.png",
		"File_2_image_2/original.png",
		"File_2_image_2/predicted.png",
	}, names)
}

func TestExportDatasetZipHandlerNothingDownloadable(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "ada@example.com")

	// Stored URLs that respond with errors yield an empty export.
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer broken.Close()

	dataset, errCode := env.store.CreateDataset(&model.Dataset{
		Name:   "lost",
		UserID: user.ID,
		ModelOutput: model.ModelOutput{
			Type:      model.ModelOutputSingle,
			Original:  broken.URL + "/results/original.png",
			Annotated: broken.URL + "/results/annotated.png",
		},
	})
	assert.Equal(t, http.StatusCreated, errCode)

	w := sendGET(env.router, "/api/export/dataset/"+dataset.ID.Hex()+"/zip")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No images could be added to the ZIP file", decodeJSON(t, w)["message"])
}
