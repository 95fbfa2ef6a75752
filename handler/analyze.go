package handler

import (
	"bytes"
	"net/http"

	C "cellscope/config"
	"cellscope/filestore"
	mid "cellscope/middleware"
	"cellscope/services/staging"
	U "cellscope/util"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// AnalyzeHandler runs a single pair through the analysis service without
// persisting anything. Only the annotated image is uploaded; the caller
// gets its URL and the summary back.
func AnalyzeHandler(c *gin.Context) {
	logCtx := log.WithField("reqId", U.GetScopeByKeyAsString(c, mid.SCOPE_REQ_ID))

	imageHeader, imageErr := c.FormFile("image")
	annotationHeader, annotationErr := c.FormFile("annotation")
	if imageErr != nil || annotationErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			gin.H{"message": "Missing image or annotation file"})
		return
	}

	stage, err := staging.New(C.GetConfig().StagingDir)
	if err != nil {
		logCtx.WithError(err).Error("Analyze failed. Staging unavailable.")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Processing failed"})
		return
	}
	defer stage.Cleanup()

	imagePath, err := stage.Save("image", imageHeader)
	if err != nil {
		logCtx.WithError(err).Error("Analyze failed on staging.")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Processing failed"})
		return
	}
	annotationPath, err := stage.Save("annotation", annotationHeader)
	if err != nil {
		logCtx.WithError(err).Error("Analyze failed on staging.")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Processing failed"})
		return
	}

	analysis, err := C.GetServices().Analyzer.Analyze(imagePath, annotationPath)
	if err != nil {
		logCtx.WithError(err).Error("Analyze failed.")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"message": "Processing failed", "error": err.Error()})
		return
	}

	url, err := C.GetServices().FileStore.Create(
		filestore.ResultsFolder, filestore.AnnotatedImageName(),
		bytes.NewReader(analysis.AnnotatedImage), "image/png")
	if err != nil {
		logCtx.WithError(err).Error("Analyze failed on upload.")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"message": "Processing failed", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"annotatedImageUrl": url,
		"summary":           analysis.Summary,
	})
}
