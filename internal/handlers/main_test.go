package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/ideamentor-dev/ideamentor/db"
	"github.com/ideamentor-dev/ideamentor/internal/handlers"
	"github.com/ideamentor-dev/ideamentor/internal/middleware"
	"github.com/ideamentor-dev/ideamentor/internal/models"
	"github.com/ideamentor-dev/ideamentor/internal/otp"
	"github.com/ideamentor-dev/ideamentor/internal/token"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testJWTSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"
	testOTPSecret = "JBSWY3DPEHPK3PXP"
)

type sentMail struct {
	to, subject, body string
}

type fakeSender struct {
	sent []sentMail
	fail bool
}

func (f *fakeSender) Send(to, subject, body string) error {
	if f.fail {
		return errors.New("smtp connection refused")
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type testEnv struct {
	router *gin.Engine
	sender *fakeSender
	tokens *token.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	db.DB = gdb

	sender := &fakeSender{}
	tokens := token.NewService(testJWTSecret)
	otps := otp.NewService(testOTPSecret, sender)
	authHandler := handlers.NewAuthHandler(tokens, otps)
	requireAuth := middleware.AuthMiddleware(tokens)

	r := gin.New()

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/resend-otp", authHandler.ResendOTP)
			auth.POST("/verify/:code", authHandler.VerifyOTP)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		users := api.Group("/users", requireAuth)
		{
			users.GET("/me", handlers.UserInfo)
			users.PUT("/password", handlers.ChangePassword)
			users.DELETE("/me", handlers.DeleteAccount)
		}

		projects := api.Group("/projects", requireAuth)
		{
			projects.GET("", handlers.ListProjects)
			projects.POST("", handlers.CreateProject)
			projects.GET("/:project_id", handlers.GetProject)
			projects.PUT("/:project_id", handlers.UpdateProject)
			projects.DELETE("/:project_id", handlers.DeleteProject)
			projects.GET("/:project_id/todos", handlers.ListProjectTodos)
			projects.POST("/:project_id/todos", handlers.CreateTodo)
		}

		todos := api.Group("/todos", requireAuth)
		{
			todos.GET("", handlers.ListTodos)
			todos.PUT("/:todo_id", handlers.UpdateTodo)
			todos.DELETE("/:todo_id", handlers.DeleteTodo)
			todos.GET("/:todo_id/resources", handlers.ListTodoResources)
			todos.POST("/:todo_id/resources", handlers.CreateResource)
		}

		resources := api.Group("/resources", requireAuth)
		{
			resources.GET("", handlers.ListResources)
			resources.PUT("/:resource_id", handlers.UpdateResource)
			resources.DELETE("/:resource_id", handlers.DeleteResource)
		}

		profile := api.Group("/profile", requireAuth)
		{
			profile.POST("/image", handlers.UploadProfileImage)
			profile.GET("/image", handlers.GetProfileImage)
			profile.PUT("/image", handlers.UpdateProfileImage)
		}
	}

	return &testEnv{router: r, sender: sender, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, accessToken string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	return w
}

func (e *testEnv) doUpload(t *testing.T, method, path, filename, contentType string, data []byte, accessToken string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)

	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))

	return out
}

// signupAndActivate walks the full signup/verify/login flow and returns
// the activated user's id and a usable access token.
func (e *testEnv) signupAndActivate(t *testing.T, email, username, password string) (uint, string) {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/auth/signup", gin.H{
		"email":     email,
		"firstname": "Test",
		"lastname":  "Person",
		"username":  username,
		"password":  password,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var record models.OTPRecord
	require.NoError(t, db.DB.Where("email = ?", email).First(&record).Error)

	w = e.do(t, http.MethodPost, "/api/auth/verify/"+record.Code, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeJSON(t, w)
	accessToken, ok := body["access_token"].(string)
	require.True(t, ok)

	var user models.User
	require.NoError(t, db.DB.Where("email = ?", email).First(&user).Error)

	return user.ID, accessToken
}
