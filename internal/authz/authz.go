package authz

import (
	"errors"

	"github.com/ideamentor-dev/ideamentor/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound covers both true absence and ownership mismatch. Collapsing
// the two keeps tenants from probing for ids that exist under other users.
var ErrNotFound = errors.New("authz: entity not found")

// Project returns the project only if it belongs to userID. The lookup and
// the ownership comparison are a single combined filter.
func Project(db *gorm.DB, userID, projectID uint) (models.Project, error) {
	var project models.Project

	err := db.Where("id = ? AND user_id = ?", projectID, userID).First(&project).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, ErrNotFound
		}
		return models.Project{}, err
	}

	return project, nil
}

// Todo walks the chain Todo -> Project -> User.
func Todo(db *gorm.DB, userID, todoID uint) (models.Todo, error) {
	var todo models.Todo

	err := db.
		Joins("JOIN projects ON projects.id = todos.project_id AND projects.deleted_at IS NULL").
		Where("todos.id = ? AND projects.user_id = ?", todoID, userID).
		First(&todo).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Todo{}, ErrNotFound
		}
		return models.Todo{}, err
	}

	return todo, nil
}

// Resource walks the chain Resource -> Todo -> Project -> User.
func Resource(db *gorm.DB, userID, resourceID uint) (models.Resource, error) {
	var resource models.Resource

	err := db.
		Joins("JOIN todos ON todos.id = resources.todo_id AND todos.deleted_at IS NULL").
		Joins("JOIN projects ON projects.id = todos.project_id AND projects.deleted_at IS NULL").
		Where("resources.id = ? AND projects.user_id = ?", resourceID, userID).
		First(&resource).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Resource{}, ErrNotFound
		}
		return models.Resource{}, err
	}

	return resource, nil
}

// ProfileImage is owned directly by the user.
func ProfileImage(db *gorm.DB, userID uint) (models.ProfileImage, error) {
	var image models.ProfileImage

	err := db.Where("user_id = ?", userID).First(&image).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ProfileImage{}, ErrNotFound
		}
		return models.ProfileImage{}, err
	}

	return image, nil
}

// DeleteProjectTree removes a project and every descendant todo and
// resource in one transaction. Partial deletion is never observable.
func DeleteProjectTree(db *gorm.DB, userID, projectID uint) error {
	project, err := Project(db, userID, projectID)

	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		todoIDs := tx.Model(&models.Todo{}).Select("id").Where("project_id = ?", project.ID)

		if err := tx.Where("todo_id IN (?)", todoIDs).Delete(&models.Resource{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Todo{}).Error; err != nil {
			return err
		}

		return tx.Delete(&project).Error
	})
}

// DeleteUserTree removes the user and everything they own: projects,
// todos, resources and the profile image, all or nothing.
func DeleteUserTree(db *gorm.DB, userID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		projectIDs := tx.Model(&models.Project{}).Select("id").Where("user_id = ?", userID)
		todoIDs := tx.Model(&models.Todo{}).Select("id").Where("project_id IN (?)", projectIDs)

		if err := tx.Where("todo_id IN (?)", todoIDs).Delete(&models.Resource{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id IN (?)", projectIDs).Delete(&models.Todo{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Project{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.ProfileImage{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, userID).Error
	})
}
