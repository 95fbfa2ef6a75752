package handler

import (
	"net/http"

	mid "cellscope/middleware"
	"cellscope/model/model"
	"cellscope/model/store"
	U "cellscope/util"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type registerUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// RegisterUserHandler creates a user and returns its representation for
// automatic login on the client.
func RegisterUserHandler(c *gin.Context) {
	logCtx := log.WithField("reqId", U.GetScopeByKeyAsString(c, mid.SCOPE_REQ_ID))

	var payload registerUserRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid user data"})
		return
	}

	if payload.FirstName == "" || payload.LastName == "" ||
		payload.Password == "" || !U.IsEmail(payload.Email) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid user data"})
		return
	}

	if _, errCode := store.GetStore().GetUserByEmail(payload.Email); errCode == http.StatusFound {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		logCtx.WithError(err).Error("RegisterUser failed. Password hashing failed.")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Registration failed"})
		return
	}

	user, errCode := store.GetStore().CreateUser(&model.User{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Password:  string(hash),
	})
	if errCode != http.StatusCreated {
		logCtx.WithField("err_code", errCode).Error("RegisterUser failed on create.")
		c.AbortWithStatusJSON(errCode, gin.H{"message": "User already exists"})
		return
	}

	c.JSON(http.StatusCreated, user.Info())
}

func LoginUserHandler(c *gin.Context) {
	var payload loginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials payload"})
		return
	}

	user, errCode := store.GetStore().GetUserByEmail(payload.Email)
	if errCode != http.StatusFound {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Incorrect password"})
		return
	}

	c.JSON(http.StatusOK, user.Info())
}

// GetUserProfileHandler returns the profile representation of one user.
func GetUserProfileHandler(c *gin.Context) {
	id := c.Param("id")
	if !model.IsValidID(id) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}

	user, errCode := store.GetStore().GetUserByID(id)
	if errCode != http.StatusFound {
		if errCode == http.StatusNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.AbortWithStatusJSON(errCode, gin.H{"message": "Failed to retrieve user"})
		return
	}

	c.JSON(http.StatusOK, user.Info())
}

// UpdateUserProfileHandler updates the name fields only. Email stays
// immutable after registration.
func UpdateUserProfileHandler(c *gin.Context) {
	id := c.Param("id")
	if !model.IsValidID(id) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}

	var payload updateProfileRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid profile payload"})
		return
	}

	user, errCode := store.GetStore().UpdateUserInfo(id, payload.FirstName, payload.LastName)
	if errCode != http.StatusAccepted {
		if errCode == http.StatusNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.AbortWithStatusJSON(errCode, gin.H{"message": "Update failed"})
		return
	}

	c.JSON(http.StatusOK, user.Info())
}

// GetUserDatasetsHandler drives the past results listing, newest first.
func GetUserDatasetsHandler(c *gin.Context) {
	id := c.Param("id")

	datasets, errCode := store.GetStore().GetDatasetsByUser(id)
	if errCode != http.StatusFound {
		if errCode == http.StatusBadRequest {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
			return
		}
		c.AbortWithStatusJSON(errCode, gin.H{"message": "Failed to retrieve datasets"})
		return
	}

	c.JSON(http.StatusOK, datasets)
}
