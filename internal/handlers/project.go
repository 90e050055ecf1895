package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ideamentor-dev/ideamentor/db"
	"github.com/ideamentor-dev/ideamentor/internal/authz"
	"github.com/ideamentor-dev/ideamentor/internal/models"
	"github.com/ideamentor-dev/ideamentor/internal/types"
	"github.com/ideamentor-dev/ideamentor/internal/utils"
)

type CreateProjectRequest struct {
	Title               string `json:"title" binding:"required,min=3,max=255"`
	BriefDescription    string `json:"brief_description" binding:"max=225"`
	DetailedDescription string `json:"detailed_description"`
	Status              string `json:"status"`
}

type UpdateProjectRequest struct {
	Title               string `json:"title" binding:"required,min=3,max=255"`
	BriefDescription    string `json:"brief_description" binding:"max=225"`
	DetailedDescription string `json:"detailed_description"`
	Status              string `json:"status"`
}

func projectResponse(project models.Project) types.ProjectResponse {
	return types.ProjectResponse{
		ID:                  project.ID,
		Title:               project.Title,
		BriefDescription:    project.BriefDescription,
		DetailedDescription: project.DetailedDescription,
		Status:              project.Status,
		CreatedDate:         project.CreatedDate,
		UserID:              project.UserID,
	}
}

func ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var projects []models.Project

	if err := db.DB.Where("user_id = ?", userID).Find(&projects).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := make([]types.ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response = append(response, projectResponse(project))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, ok := parseIDParam(ctx, "project_id")

	if !ok {
		return
	}

	project, err := authz.Project(db.DB, userID, projectID)

	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	ctx.JSON(http.StatusOK, projectResponse(project))
}

func CreateProject(ctx *gin.Context) {
	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	status := body.Status

	if status == "" {
		status = models.DefaultProjectStatus
	}

	project := models.Project{
		Title:               body.Title,
		BriefDescription:    body.BriefDescription,
		DetailedDescription: body.DetailedDescription,
		Status:              status,
		CreatedDate:         time.Now(),
		UserID:              userID,
	}

	if err := db.DB.Create(&project).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	ctx.JSON(http.StatusCreated, projectResponse(project))
}

func UpdateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	projectID, ok := parseIDParam(ctx, "project_id")

	if !ok {
		return
	}

	project, err := authz.Project(db.DB, userID, projectID)

	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	project.Title = body.Title
	project.BriefDescription = body.BriefDescription
	project.DetailedDescription = body.DetailedDescription

	if body.Status != "" {
		project.Status = body.Status
	}

	if err := db.DB.Save(&project).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	ctx.JSON(http.StatusOK, projectResponse(project))
}

// DeleteProject removes the project and every descendant todo and
// resource in one transaction.
func DeleteProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, ok := parseIDParam(ctx, "project_id")

	if !ok {
		return
	}

	if err := authz.DeleteProjectTree(db.DB, userID, projectID); err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Project and all related todos and resources deleted successfully"})
}
