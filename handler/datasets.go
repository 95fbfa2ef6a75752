package handler

import (
	"net/http"

	"cellscope/model/model"
	"cellscope/model/store"

	"github.com/gin-gonic/gin"
)

func GetDatasetHandler(c *gin.Context) {
	dataset, errCode := store.GetStore().GetDataset(c.Param("id"))
	if errCode != http.StatusFound {
		abortWithDatasetError(c, errCode)
		return
	}

	c.JSON(http.StatusOK, dataset)
}

// UpdateDatasetHandler updates name and description. Every other field of
// the payload is ignored; model output is immutable after creation.
func UpdateDatasetHandler(c *gin.Context) {
	var fields model.DatasetUpdate
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid update payload"})
		return
	}

	dataset, errCode := store.GetStore().UpdateDataset(c.Param("id"), &fields)
	if errCode != http.StatusAccepted {
		if errCode == http.StatusConflict {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "Dataset name already exists"})
			return
		}
		abortWithDatasetError(c, errCode)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dataset updated successfully",
		"dataset": dataset,
	})
}

// DeleteDatasetHandler removes the record only; stored objects referenced
// by it remain on the file store.
func DeleteDatasetHandler(c *gin.Context) {
	errCode := store.GetStore().DeleteDataset(c.Param("id"))
	if errCode != http.StatusAccepted {
		abortWithDatasetError(c, errCode)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Dataset deleted successfully"})
}

func abortWithDatasetError(c *gin.Context, errCode int) {
	switch errCode {
	case http.StatusBadRequest:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid dataset id"})
	case http.StatusNotFound:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Dataset not found"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}
