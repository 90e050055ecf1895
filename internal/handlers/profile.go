package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ideamentor-dev/ideamentor/db"
	"github.com/ideamentor-dev/ideamentor/internal/authz"
	"github.com/ideamentor-dev/ideamentor/internal/models"
	"github.com/ideamentor-dev/ideamentor/internal/utils"
	"gorm.io/gorm"
)

func readImageUpload(ctx *gin.Context) (name, mimeType string, data []byte, ok bool) {
	fileHeader, err := ctx.FormFile("file")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return "", "", nil, false
	}

	mimeType = fileHeader.Header.Get("Content-Type")

	if !strings.HasPrefix(mimeType, "image/") {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type"})
		return "", "", nil, false
	}

	file, err := fileHeader.Open()

	if err != nil {
		log.Printf("Failed to open uploaded file: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return "", "", nil, false
	}
	defer file.Close()

	data, err = io.ReadAll(file)

	if err != nil {
		log.Printf("Failed to read uploaded file: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return "", "", nil, false
	}

	return fileHeader.Filename, mimeType, data, true
}

// UploadProfileImage stores the caller's profile image, replacing any
// previous one so a user keeps at most a single image.
func UploadProfileImage(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	name, mimeType, data, ok := readImageUpload(ctx)

	if !ok {
		return
	}

	image := models.ProfileImage{
		Name:      name,
		MimeType:  mimeType,
		ImageData: data,
		UserID:    userID,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.ProfileImage{}).Error; err != nil {
			return err
		}

		return tx.Create(&image).Error
	})

	if err != nil {
		log.Printf("Failed to store profile image: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.Data(http.StatusCreated, image.MimeType, image.ImageData)
}

func GetProfileImage(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	image, err := authz.ProfileImage(db.DB, userID)

	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	ctx.Data(http.StatusOK, image.MimeType, image.ImageData)
}

// UpdateProfileImage replaces the stored image in place; unlike upload it
// requires an existing one.
func UpdateProfileImage(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	image, err := authz.ProfileImage(db.DB, userID)

	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	name, mimeType, data, ok := readImageUpload(ctx)

	if !ok {
		return
	}

	err = db.DB.Model(&image).Updates(map[string]interface{}{
		"name":       name,
		"mime_type":  mimeType,
		"image_data": data,
	}).Error

	if err != nil {
		log.Printf("Failed to update profile image: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Image updated successfully"})
}
