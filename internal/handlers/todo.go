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
	"gorm.io/gorm"
)

type TodoRequest struct {
	TaskTitle       string `json:"task_title" binding:"required,min=3,max=50"`
	TaskDescription string `json:"task_description" binding:"max=104"`
	Completed       bool   `json:"completed"`
}

func todoResponse(todo models.Todo) types.TodoResponse {
	return types.TodoResponse{
		ID:              todo.ID,
		TaskTitle:       todo.TaskTitle,
		TaskDescription: todo.TaskDescription,
		Completed:       todo.Completed,
		ProjectID:       todo.ProjectID,
	}
}

// ListTodos returns every todo across all of the caller's projects.
func ListTodos(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var todos []models.Todo

	err = db.DB.
		Joins("JOIN projects ON projects.id = todos.project_id AND projects.deleted_at IS NULL").
		Where("projects.user_id = ?", userID).
		Find(&todos).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todos"})
		return
	}

	response := make([]types.TodoResponse, 0, len(todos))

	for _, todo := range todos {
		response = append(response, todoResponse(todo))
	}

	ctx.JSON(http.StatusOK, response)
}

func ListProjectTodos(ctx *gin.Context) {
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

	var todos []models.Todo

	if err := db.DB.Where("project_id = ?", project.ID).Find(&todos).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todos"})
		return
	}

	response := make([]types.TodoResponse, 0, len(todos))

	for _, todo := range todos {
		response = append(response, todoResponse(todo))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateTodo(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body TodoRequest

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

	todo := models.Todo{
		TaskTitle:       body.TaskTitle,
		TaskDescription: body.TaskDescription,
		Completed:       body.Completed,
		ProjectID:       project.ID,
	}

	if err := db.DB.Create(&todo).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create todo"})
		return
	}

	ctx.JSON(http.StatusCreated, todoResponse(todo))
}

func UpdateTodo(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body TodoRequest

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

	todo.TaskTitle = body.TaskTitle
	todo.TaskDescription = body.TaskDescription
	todo.Completed = body.Completed

	if err := db.DB.Save(&todo).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update todo"})
		return
	}

	ctx.JSON(http.StatusOK, todoResponse(todo))
}

// DeleteTodo removes the todo together with its resources.
func DeleteTodo(ctx *gin.Context) {
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

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("todo_id = ?", todo.ID).Delete(&models.Resource{}).Error; err != nil {
			return err
		}

		return tx.Delete(&todo).Error
	})

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete todo"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Todo deleted successfully"})
}
