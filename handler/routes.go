package handler

import (
	"net/http"

	C "cellscope/config"

	"github.com/gin-gonic/gin"
)

func InitAppRoutes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API is running...")
	})

	users := r.Group("/api/users")
	users.POST("/register", RegisterUserHandler)
	users.POST("/login", LoginUserHandler)
	users.GET("/profile/:id", GetUserProfileHandler)
	users.PUT("/:id", UpdateUserProfileHandler)
	users.GET("/datasets/:id", GetUserDatasetsHandler)

	upload := r.Group("/api/upload")
	upload.POST("/dataset", UploadDatasetHandler)
	upload.POST("/dataset-multiple", UploadDatasetMultipleHandler)

	r.POST("/api/analyze", AnalyzeHandler)

	datasets := r.Group("/api/datasets")
	datasets.GET("/:id", GetDatasetHandler)
	datasets.PUT("/:id", UpdateDatasetHandler)
	datasets.DELETE("/:id", DeleteDatasetHandler)

	export := r.Group("/api/export")
	export.GET("/dataset/:id/excel", ExportDatasetExcelHandler)
	export.GET("/dataset/:id/zip", ExportDatasetZipHandler)
	export.GET("/user/:id/excel", ExportUserDatasetsExcelHandler)

	// The disk file store has no server of its own; serve its base dir.
	if C.GetConfig().FileStoreBackend == C.FileStoreBackendDisk {
		r.Static("/files", C.GetConfig().DiskStoreDir)
	}
}
