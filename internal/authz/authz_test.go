package authz_test

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/ideamentor-dev/ideamentor/internal/authz"
	"github.com/ideamentor-dev/ideamentor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.User{},
		&models.OTPRecord{},
		&models.Project{},
		&models.Todo{},
		&models.Resource{},
		&models.ProfileImage{},
	))

	return gdb
}

type tree struct {
	user     models.User
	project  models.Project
	todo     models.Todo
	resource models.Resource
}

func seedTree(t *testing.T, gdb *gorm.DB, email, username string) tree {
	t.Helper()

	user := models.User{Email: email, Username: username, IsActive: true}
	require.NoError(t, gdb.Create(&user).Error)

	project := models.Project{Title: "plan", Status: models.DefaultProjectStatus, UserID: user.ID}
	require.NoError(t, gdb.Create(&project).Error)

	todo := models.Todo{TaskTitle: "write draft", ProjectID: project.ID}
	require.NoError(t, gdb.Create(&todo).Error)

	resource := models.Resource{ResourceTitle: "style guide", ResourceDescription: "reference material", TodoID: todo.ID}
	require.NoError(t, gdb.Create(&resource).Error)

	return tree{user: user, project: project, todo: todo, resource: resource}
}

func TestOwnerCanReachWholeChain(t *testing.T) {
	gdb := setupTestDB(t)
	owned := seedTree(t, gdb, "a@x.com", "alice1")

	project, err := authz.Project(gdb, owned.user.ID, owned.project.ID)
	require.NoError(t, err)
	assert.Equal(t, owned.project.ID, project.ID)

	todo, err := authz.Todo(gdb, owned.user.ID, owned.todo.ID)
	require.NoError(t, err)
	assert.Equal(t, owned.todo.ID, todo.ID)

	resource, err := authz.Resource(gdb, owned.user.ID, owned.resource.ID)
	require.NoError(t, err)
	assert.Equal(t, owned.resource.ID, resource.ID)
}

func TestOwnershipMismatchLooksLikeAbsence(t *testing.T) {
	gdb := setupTestDB(t)
	alices := seedTree(t, gdb, "a@x.com", "alice1")
	bobs := seedTree(t, gdb, "b@x.com", "bobby1")

	_, err := authz.Project(gdb, bobs.user.ID, alices.project.ID)
	assert.ErrorIs(t, err, authz.ErrNotFound)

	_, err = authz.Todo(gdb, bobs.user.ID, alices.todo.ID)
	assert.ErrorIs(t, err, authz.ErrNotFound)

	_, err = authz.Resource(gdb, bobs.user.ID, alices.resource.ID)
	assert.ErrorIs(t, err, authz.ErrNotFound)

	// A truly absent id produces the same error.
	_, err = authz.Project(gdb, bobs.user.ID, 9999)
	assert.ErrorIs(t, err, authz.ErrNotFound)
}

func TestProfileImageOwnership(t *testing.T) {
	gdb := setupTestDB(t)
	alices := seedTree(t, gdb, "a@x.com", "alice1")
	bobs := seedTree(t, gdb, "b@x.com", "bobby1")

	image := models.ProfileImage{Name: "avatar.png", MimeType: "image/png", ImageData: []byte{1, 2, 3}, UserID: alices.user.ID}
	require.NoError(t, gdb.Create(&image).Error)

	found, err := authz.ProfileImage(gdb, alices.user.ID)
	require.NoError(t, err)
	assert.Equal(t, image.ID, found.ID)

	_, err = authz.ProfileImage(gdb, bobs.user.ID)
	assert.ErrorIs(t, err, authz.ErrNotFound)
}

func TestDeleteProjectTreeRemovesDescendants(t *testing.T) {
	gdb := setupTestDB(t)
	owned := seedTree(t, gdb, "a@x.com", "alice1")
	other := seedTree(t, gdb, "b@x.com", "bobby1")

	require.NoError(t, authz.DeleteProjectTree(gdb, owned.user.ID, owned.project.ID))

	_, err := authz.Project(gdb, owned.user.ID, owned.project.ID)
	assert.ErrorIs(t, err, authz.ErrNotFound)

	_, err = authz.Todo(gdb, owned.user.ID, owned.todo.ID)
	assert.ErrorIs(t, err, authz.ErrNotFound)

	_, err = authz.Resource(gdb, owned.user.ID, owned.resource.ID)
	assert.ErrorIs(t, err, authz.ErrNotFound)

	// The other tenant's tree is untouched.
	_, err = authz.Resource(gdb, other.user.ID, other.resource.ID)
	assert.NoError(t, err)
}

func TestDeleteProjectTreeRejectsForeignProject(t *testing.T) {
	gdb := setupTestDB(t)
	alices := seedTree(t, gdb, "a@x.com", "alice1")
	bobs := seedTree(t, gdb, "b@x.com", "bobby1")

	err := authz.DeleteProjectTree(gdb, bobs.user.ID, alices.project.ID)
	assert.ErrorIs(t, err, authz.ErrNotFound)

	_, err = authz.Todo(gdb, alices.user.ID, alices.todo.ID)
	assert.NoError(t, err)
}

func TestDeleteProjectTreeIsAtomic(t *testing.T) {
	gdb := setupTestDB(t)
	owned := seedTree(t, gdb, "a@x.com", "alice1")

	// Fail the cascade partway: resources delete first, todos blow up.
	err := gdb.Callback().Delete().Before("gorm:delete").Register("fail_todo_delete", func(d *gorm.DB) {
		if d.Statement.Table == "todos" {
			d.AddError(errors.New("simulated mid-cascade failure"))
		}
	})
	require.NoError(t, err)
	defer gdb.Callback().Delete().Remove("fail_todo_delete")

	err = authz.DeleteProjectTree(gdb, owned.user.ID, owned.project.ID)
	require.Error(t, err)

	// All-or-nothing: the already-deleted resources were rolled back.
	_, err = authz.Resource(gdb, owned.user.ID, owned.resource.ID)
	assert.NoError(t, err)

	_, err = authz.Todo(gdb, owned.user.ID, owned.todo.ID)
	assert.NoError(t, err)

	_, err = authz.Project(gdb, owned.user.ID, owned.project.ID)
	assert.NoError(t, err)
}

func TestDeleteUserTreeRemovesEverything(t *testing.T) {
	gdb := setupTestDB(t)
	owned := seedTree(t, gdb, "a@x.com", "alice1")

	image := models.ProfileImage{Name: "avatar.png", MimeType: "image/png", ImageData: []byte{1}, UserID: owned.user.ID}
	require.NoError(t, gdb.Create(&image).Error)

	require.NoError(t, authz.DeleteUserTree(gdb, owned.user.ID))

	var count int64
	require.NoError(t, gdb.Model(&models.User{}).Where("id = ?", owned.user.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	_, err := authz.Project(gdb, owned.user.ID, owned.project.ID)
	assert.ErrorIs(t, err, authz.ErrNotFound)

	_, err = authz.Resource(gdb, owned.user.ID, owned.resource.ID)
	assert.ErrorIs(t, err, authz.ErrNotFound)

	_, err = authz.ProfileImage(gdb, owned.user.ID)
	assert.ErrorIs(t, err, authz.ErrNotFound)
}
