package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ideamentor-dev/ideamentor/db"
	"github.com/ideamentor-dev/ideamentor/internal/authz"
	"github.com/ideamentor-dev/ideamentor/internal/models"
	"github.com/ideamentor-dev/ideamentor/internal/types"
	"github.com/ideamentor-dev/ideamentor/internal/utils"
)

type ResourceRequest struct {
	ResourceTitle       string `json:"resource_title" binding:"required,min=3,max=30"`
	ResourceDescription string `json:"resource_description" binding:"required,min=10,max=100"`
	Link                string `json:"link" binding:"required"`
	ResourceType        string `json:"resource_type"`
}

func resourceResponse(resource models.Resource) types.ResourceResponse {
	return types.ResourceResponse{
		ID:                  resource.ID,
		ResourceTitle:       resource.ResourceTitle,
		ResourceDescription: resource.ResourceDescription,
		Link:                resource.Link,
		ResourceType:        resource.ResourceType,
		TodoID:              resource.TodoID,
	}
}

// ListResources returns every resource across all of the caller's
// projects, walking the full ownership chain.
func ListResources(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var resources []models.Resource

	err = db.DB.
		Joins("JOIN todos ON todos.id = resources.todo_id AND todos.deleted_at IS NULL").
		Joins("JOIN projects ON projects.id = todos.project_id AND projects.deleted_at IS NULL").
		Where("projects.user_id = ?", userID).
		Find(&resources).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve resources"})
		return
	}

	response := make([]types.ResourceResponse, 0, len(resources))

	for _, resource := range resources {
		response = append(response, resourceResponse(resource))
	}

	ctx.JSON(http.StatusOK, response)
}

func ListTodoResources(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	todoID, ok := parseIDParam(ctx, "todo_id")

	if !ok {
		return
	}

	todo, err := authz.Todo(db.DB, userID, todoID)

	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todo"})
		}
		return
	}

	var resources []models.Resource

	if err := db.DB.Where("todo_id = ?", todo.ID).Find(&resources).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve resources"})
		return
	}

	response := make([]types.ResourceResponse, 0, len(resources))

	for _, resource := range resources {
		response = append(response, resourceResponse(resource))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateResource(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body ResourceRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	todoID, ok := parseIDParam(ctx, "todo_id")

	if !ok {
		return
	}

	todo, err := authz.Todo(db.DB, userID, todoID)

	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todo"})
		}
		return
	}

	resourceType := body.ResourceType

	if resourceType == "" {
		resourceType = "web page"
	}

	resource := models.Resource{
		ResourceTitle:       body.ResourceTitle,
		ResourceDescription: body.ResourceDescription,
		Link:                body.Link,
		ResourceType:        resourceType,
		TodoID:              todo.ID,
	}

	if err := db.DB.Create(&resource).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create resource"})
		return
	}

	ctx.JSON(http.StatusCreated, resourceResponse(resource))
}

func UpdateResource(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body ResourceRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	resourceID, ok := parseIDParam(ctx, "resource_id")

	if !ok {
		return
	}

	resource, err := authz.Resource(db.DB, userID, resourceID)

	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve resource"})
		}
		return
	}

	resource.ResourceTitle = body.ResourceTitle
	resource.ResourceDescription = body.ResourceDescription
	resource.Link = body.Link

	if body.ResourceType != "" {
		resource.ResourceType = body.ResourceType
	}

	if err := db.DB.Save(&resource).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update resource"})
		return
	}

	ctx.JSON(http.StatusOK, resourceResponse(resource))
}

func DeleteResource(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	resourceID, ok := parseIDParam(ctx, "resource_id")

	if !ok {
		return
	}

	resource, err := authz.Resource(db.DB, userID, resourceID)

	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve resource"})
		}
		return
	}

	if err := db.DB.Delete(&resource).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete resource"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Resource deleted successfully"})
}
