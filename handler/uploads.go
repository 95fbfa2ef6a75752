package handler

import (
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"strings"

	C "cellscope/config"
	"cellscope/filestore"
	mid "cellscope/middleware"
	"cellscope/model/model"
	"cellscope/model/store"
	"cellscope/services/staging"
	U "cellscope/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	log "github.com/sirupsen/logrus"
)

var allowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".tif", ".tiff", ".bmp"}

const annotationExtension = ".txt"

// UploadDatasetHandler runs the single pair upload flow: validate,
// stage, analyze, upload artifacts, persist, cleanup. The conflict check
// runs before any file processing so a duplicate name costs nothing.
func UploadDatasetHandler(c *gin.Context) {
	logCtx := log.WithField("reqId", U.GetScopeByKeyAsString(c, mid.SCOPE_REQ_ID))

	name := strings.TrimSpace(c.PostForm("name"))
	description := c.PostForm("description")
	userID := c.PostForm("userId")
	imageHeader, imageErr := c.FormFile("image")
	annotationHeader, annotationErr := c.FormFile("annotation")

	if name == "" || userID == "" || imageErr != nil || annotationErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}
	if !validUploadPair(imageHeader, annotationHeader) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Unsupported file format"})
		return
	}
	if !model.IsValidID(userID) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}

	if _, errCode := store.GetStore().GetDatasetByNameAndUser(name, userID); errCode == http.StatusFound {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "Dataset name already exists"})
		return
	}

	stage, err := staging.New(C.GetConfig().StagingDir)
	if err != nil {
		logCtx.WithError(err).Error("Upload failed. Staging unavailable.")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Upload failed"})
		return
	}
	defer stage.Cleanup()

	result, err := analyzePair(stage, imageHeader, annotationHeader)
	if err != nil {
		logCtx.WithError(err).Error("Upload failed.")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"message": "Upload failed", "error": err.Error()})
		return
	}

	userObjectID, _ := primitive.ObjectIDFromHex(userID)
	dataset, errCode := store.GetStore().CreateDataset(&model.Dataset{
		Name:        name,
		Description: description,
		UserID:      userObjectID,
		Images:      []string{result.Annotated},
		ModelOutput: model.ModelOutput{
			Type:           model.ModelOutputSingle,
			Original:       result.Original,
			AnnotationFile: result.AnnotationFile,
			Annotated:      result.Annotated,
			Summary:        result.Summary,
		},
	})
	if errCode != http.StatusCreated {
		if errCode == http.StatusConflict {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "Dataset name already exists"})
			return
		}
		logCtx.WithField("err_code", errCode).Error("Upload failed on dataset create.")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Upload failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Dataset uploaded and analyzed",
		"dataset": dataset,
	})
}

// UploadDatasetMultipleHandler runs the multi pair flow. Pairs are
// analyzed one at a time in submission order; a failure on any pair
// aborts the rest and nothing is persisted.
func UploadDatasetMultipleHandler(c *gin.Context) {
	logCtx := log.WithField("reqId", U.GetScopeByKeyAsString(c, mid.SCOPE_REQ_ID))

	name := strings.TrimSpace(c.PostForm("name"))
	description := c.PostForm("description")
	userID := c.PostForm("userId")

	form, err := c.MultipartForm()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Missing required fields or files"})
		return
	}
	imageHeaders := form.File["images"]
	annotationHeaders := form.File["annotations"]

	if name == "" || userID == "" || len(imageHeaders) == 0 || len(annotationHeaders) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Missing required fields or files"})
		return
	}
	if len(imageHeaders) != len(annotationHeaders) {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			gin.H{"message": "Number of images must match number of annotation files"})
		return
	}
	for i := range imageHeaders {
		if !validUploadPair(imageHeaders[i], annotationHeaders[i]) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Unsupported file format"})
			return
		}
	}
	if !model.IsValidID(userID) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}

	if _, errCode := store.GetStore().GetDatasetByNameAndUser(name, userID); errCode == http.StatusFound {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "Dataset name already exists"})
		return
	}

	stage, err := staging.New(C.GetConfig().StagingDir)
	if err != nil {
		logCtx.WithError(err).Error("Upload failed. Staging unavailable.")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Upload failed"})
		return
	}
	defer stage.Cleanup()

	results := make([]model.AnalysisResult, 0, len(imageHeaders))
	images := make([]string, 0, len(imageHeaders))
	for i := range imageHeaders {
		result, err := analyzePair(stage, imageHeaders[i], annotationHeaders[i])
		if err != nil {
			logCtx.WithField("pair", i).WithError(err).Error("Upload failed.")
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"message": "Upload failed", "error": err.Error()})
			return
		}
		results = append(results, *result)
		images = append(images, result.Annotated)
	}

	userObjectID, _ := primitive.ObjectIDFromHex(userID)
	dataset, errCode := store.GetStore().CreateDataset(&model.Dataset{
		Name:        name,
		Description: description,
		UserID:      userObjectID,
		Images:      images,
		ModelOutput: model.ModelOutput{
			Type:         model.ModelOutputMultiple,
			Results:      results,
			TotalSummary: model.TotalOfSummaries(results),
		},
	})
	if errCode != http.StatusCreated {
		if errCode == http.StatusConflict {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "Dataset name already exists"})
			return
		}
		logCtx.WithField("err_code", errCode).Error("Upload failed on dataset create.")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Upload failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Multiple files uploaded and analyzed",
		"dataset": dataset,
	})
}

// analyzePair stages one image/annotation pair, runs it through the
// analysis service and uploads the three resulting artifacts as one
// group. The group either fully succeeds or leaves nothing behind.
func analyzePair(stage *staging.Stage, imageHeader, annotationHeader *multipart.FileHeader) (*model.AnalysisResult, error) {
	imagePath, err := stage.Save("image", imageHeader)
	if err != nil {
		return nil, err
	}
	annotationPath, err := stage.Save("annotation", annotationHeader)
	if err != nil {
		return nil, err
	}

	analysis, err := C.GetServices().Analyzer.Analyze(imagePath, annotationPath)
	if err != nil {
		return nil, err
	}

	annotationBytes, err := ioutil.ReadFile(annotationPath)
	if err != nil {
		return nil, err
	}
	annotationContentType := annotationHeader.Header.Get("Content-Type")
	if annotationContentType == "" {
		annotationContentType = "text/plain"
	}

	urls, err := filestore.PutGroup(C.GetServices().FileStore, []filestore.Object{
		{
			Folder:      filestore.ResultsFolder,
			Name:        filestore.AnnotatedImageName(),
			Body:        analysis.AnnotatedImage,
			ContentType: "image/png",
		},
		{
			Folder:      filestore.ResultsFolder,
			Name:        filestore.OriginalImageName(),
			Body:        analysis.OriginalImage,
			ContentType: "image/png",
		},
		{
			Folder:      filestore.AnnotationsFolder,
			Name:        filestore.AnnotationFileName(annotationHeader.Filename),
			Body:        annotationBytes,
			ContentType: annotationContentType,
		},
	})
	if err != nil {
		return nil, err
	}

	return &model.AnalysisResult{
		Annotated:      urls[0],
		Original:       urls[1],
		AnnotationFile: urls[2],
		Summary:        analysis.Summary,
		ImageName:      imageHeader.Filename,
		AnnotationName: annotationHeader.Filename,
	}, nil
}

func validUploadPair(imageHeader, annotationHeader *multipart.FileHeader) bool {
	return U.StringValueIn(U.FileExtension(imageHeader.Filename), allowedImageExtensions) &&
		U.FileExtension(annotationHeader.Filename) == annotationExtension
}
